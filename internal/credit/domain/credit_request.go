package domain

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// CreditRequest is a user's ask for more send credits. Amount and reason
// are stored as typed fields; the linked audit message row mirrors the
// request in the user's message history. Transitions are one-way:
// pending moves to approved or rejected and both are terminal.
type CreditRequest struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"userId"`
	Amount    int           `json:"amount"`
	Reason    string        `json:"reason"`
	Status    RequestStatus `json:"status"`
	MessageID uuid.UUID     `json:"messageId"`
	CreatedAt time.Time     `json:"createdAt"`
	DecidedAt *time.Time    `json:"decidedAt,omitempty"`
}
