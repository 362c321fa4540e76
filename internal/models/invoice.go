package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
	// InvoiceStatusOverdue is display-only, derived at read time and never persisted.
	InvoiceStatusOverdue = "overdue"
)

type Invoice struct {
	ID         uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	Number     string          `gorm:"uniqueIndex;size:100;not null" json:"number"`
	CustomerID uuid.UUID       `gorm:"type:char(36);index;not null" json:"customerId"`
	CategoryID *uuid.UUID      `gorm:"type:char(36);index" json:"categoryId,omitempty"`
	CompanyID  uuid.UUID       `gorm:"type:char(36);index;not null" json:"companyId"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency   string          `gorm:"size:3;not null;default:USD" json:"currency"`
	Status     string          `gorm:"size:50;not null;default:pending" json:"status"`
	IssuedAt   time.Time       `json:"issuedAt"`
	DueAt      time.Time       `json:"dueAt"`
	PaidAt     *time.Time      `json:"paidAt,omitempty"`
	Notes      string          `gorm:"type:text" json:"notes"`
	UserID     uuid.UUID       `gorm:"type:char(36);index" json:"userId"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
