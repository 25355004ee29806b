package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/vbs-0/bomber/internal/otp/domain"
)

var ErrNotFound = errors.New("otp not found")

type OTPRepository interface {
	Create(ctx context.Context, otp *domain.OTP) error
	// LatestByPhone returns the most recently created row for the phone.
	LatestByPhone(ctx context.Context, phone string) (*domain.OTP, error)
	MarkVerified(ctx context.Context, id uuid.UUID) error
}
