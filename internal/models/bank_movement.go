package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BankMovement is a single transaction line imported from a bank statement.
// Date is kept as text: the importer rewrites it to YYYY-MM-DD when it can
// parse the bank's format, and leaves the original string otherwise.
type BankMovement struct {
	ID          uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	CompanyID   uuid.UUID       `gorm:"type:char(36);index;not null" json:"companyId"`
	Date        string          `gorm:"size:50;not null" json:"date"`
	Description string          `gorm:"size:500;not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency    string          `gorm:"size:3;not null;default:USD" json:"currency"`
	Reference   string          `gorm:"uniqueIndex;size:100;not null" json:"reference"`
	InvoiceID   *uuid.UUID      `gorm:"type:char(36);index" json:"invoiceId,omitempty"`
	UserID      uuid.UUID       `gorm:"type:char(36);index" json:"userId"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (m *BankMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
