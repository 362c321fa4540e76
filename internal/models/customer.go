package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CustomerStatusActive   = "active"
	CustomerStatusInactive = "inactive"
	CustomerStatusLead     = "lead"
)

type Customer struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Contact   string    `gorm:"size:255" json:"contact"`
	Email     string    `gorm:"size:255" json:"email"`
	Phone     string    `gorm:"size:50" json:"phone"`
	Address   string    `gorm:"size:500" json:"address"`
	City      string    `gorm:"size:120" json:"city"`
	Country   string    `gorm:"size:120" json:"country"`
	Status    string    `gorm:"size:50;not null;default:active" json:"status"`
	Notes     string    `gorm:"type:text" json:"notes"`
	UserID    uuid.UUID `gorm:"type:char(36);index" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
