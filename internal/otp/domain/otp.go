package domain

import (
	"time"

	"github.com/google/uuid"
)

// OTP is a one-time verification code issued against a phone number before
// any user record exists. Resends insert new rows; the most recently
// created row per phone is the authoritative one.
type OTP struct {
	ID        uuid.UUID `json:"id"`
	Phone     string    `json:"phone"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the code is past its validity window.
func (o *OTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
