package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is an invoicing entity owned by the user. Invoices are issued in
// its name and bank statements are imported against it.
type Company struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	TaxID     string    `gorm:"size:50" json:"taxId"`
	Address   string    `gorm:"size:500" json:"address"`
	Email     string    `gorm:"size:255" json:"email"`
	Currency  string    `gorm:"size:3;not null;default:USD" json:"currency"`
	UserID    uuid.UUID `gorm:"type:char(36);index" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
