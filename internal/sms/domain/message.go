package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageStatus string

const (
	StatusSent     MessageStatus = "sent"
	StatusPending  MessageStatus = "pending"
	StatusApproved MessageStatus = "approved"
	StatusRejected MessageStatus = "rejected"
	StatusFailed   MessageStatus = "failed"
)

type MessageType string

const (
	TypeCustom        MessageType = "custom"
	TypeBomber        MessageType = "bomber"
	TypeCreditRequest MessageType = "credit_request"
	TypeSystem        MessageType = "system"
)

// Message is the audit record written for every send, credit request and
// system action. Only the status field ever changes after creation
// (pending requests move to approved or rejected, both terminal).
type Message struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"userId"`
	Phone     string        `json:"phone"`
	Body      string        `json:"message"`
	Status    MessageStatus `json:"status"`
	Type      MessageType   `json:"type"`
	CreatedAt time.Time     `json:"createdAt"`
}
