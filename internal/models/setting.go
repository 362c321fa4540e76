package models

import "time"

// Setting is a single application-wide key/value pair, such as the logo
// shown on rendered invoices.
type Setting struct {
	Key       string    `gorm:"size:64;primaryKey" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}
