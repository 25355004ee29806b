package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAlreadyProtected = errors.New("number is already protected")
	ErrNotProtected     = errors.New("number is not protected")
)

// ProtectedNumber marks a phone number as exempt from bomber sends.
// A nil UserID means the entry was created by an administrator rather than
// by the number's owner.
type ProtectedNumber struct {
	ID        uuid.UUID     `json:"id"`
	Phone     string        `json:"phone"`
	UserID    uuid.NullUUID `json:"userId"`
	CreatedAt time.Time     `json:"createdAt"`
}

type ProtectedNumberRepository interface {
	IsProtected(ctx context.Context, phone string) (bool, error)
	// Protect inserts the entry; ErrAlreadyProtected if the phone exists.
	Protect(ctx context.Context, entry *ProtectedNumber) error
	// Unprotect removes the entry; ErrNotProtected if the phone is absent.
	Unprotect(ctx context.Context, phone string) error
	List(ctx context.Context) ([]ProtectedNumber, error)
	Count(ctx context.Context) (int, error)
}
