package models

import "time"

// OTP is a short-lived password reset code. Only the bcrypt hash of the
// code is stored; a row is spent once UsedAt is set.
type OTP struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"index;size:255;not null"`
	CodeHash  string `gorm:"size:255;not null"`
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

func (o *OTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
