package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. MessagesRemaining is the prepaid credit
// balance and never goes below zero; MessagesSent counts completed sends.
type User struct {
	ID                uuid.UUID `json:"id"`
	Username          string    `json:"username"`
	HashedPassword    string    `json:"-"`
	FullName          string    `json:"fullName"`
	Phone             string    `json:"phone"`
	MessagesRemaining int       `json:"messagesRemaining"`
	MessagesSent      int       `json:"messagesSent"`
	IsAdmin           bool      `json:"isAdmin"`
	IsActive          bool      `json:"isActive"`
	LastActivity      time.Time `json:"lastActivity"`
	CreatedAt         time.Time `json:"createdAt"`
}
