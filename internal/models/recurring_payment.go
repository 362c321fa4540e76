package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	FrequencyMonthly   = "monthly"
	FrequencyQuarterly = "quarterly"
	FrequencyYearly    = "yearly"
)

// RecurringPayment is a schedule that generates an invoice each time
// NextRun comes due.
type RecurringPayment struct {
	ID         uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	CustomerID uuid.UUID       `gorm:"type:char(36);index;not null" json:"customerId"`
	CategoryID *uuid.UUID      `gorm:"type:char(36);index" json:"categoryId,omitempty"`
	CompanyID  uuid.UUID       `gorm:"type:char(36);index;not null" json:"companyId"`
	Concept    string          `gorm:"size:255;not null" json:"concept"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency   string          `gorm:"size:3;not null;default:USD" json:"currency"`
	Frequency  string          `gorm:"size:20;not null" json:"frequency"`
	NextRun    time.Time       `gorm:"index" json:"nextRun"`
	Active     bool            `gorm:"not null;default:true" json:"active"`
	Notes      string          `gorm:"type:text" json:"notes"`
	UserID     uuid.UUID       `gorm:"type:char(36);index" json:"userId"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

func (r *RecurringPayment) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
