package httpapi

import "github.com/google/uuid"

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName" validate:"required,max=100"`
	Phone    string `json:"phone" validate:"required,numeric,min=10,max=15"`
	IsAdmin  bool   `json:"isAdmin"`
}

type VerifyOTPRequest struct {
	Phone string `json:"phone" validate:"required,numeric,min=10,max=15"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

type SendMessageRequest struct {
	Phone   string `json:"phone" validate:"required,numeric,min=10,max=15"`
	Message string `json:"message" validate:"required,max=160"`
}

type BomberRequest struct {
	Phone   string `json:"phone" validate:"required,numeric,min=10,max=15"`
	Repeat  int    `json:"repeat" validate:"required,min=1,max=100"`
	Message string `json:"message" validate:"omitempty,max=160"`
}

type RequestCreditsRequest struct {
	Credits int    `json:"credits" validate:"required,min=1,max=100"`
	Reason  string `json:"reason" validate:"required,max=500"`
}

type AdminCreditsRequest struct {
	UserID  uuid.UUID `json:"userId" validate:"required"`
	Credits int       `json:"credits" validate:"required,min=1"`
}

type ToggleUserRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
}

type PhoneRequest struct {
	Phone string `json:"phone" validate:"required,numeric,min=10,max=15"`
}

type CreditRequestDecision struct {
	RequestID uuid.UUID `json:"requestId" validate:"required"`
}

type DeleteMessageRequest struct {
	MessageID uuid.UUID `json:"messageId" validate:"required"`
}

type DeleteMessagesRequest struct {
	MessageIDs []uuid.UUID `json:"messageIds" validate:"required,min=1"`
}
