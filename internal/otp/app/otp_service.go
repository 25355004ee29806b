package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/vbs-0/bomber/internal/otp/domain"
	"github.com/vbs-0/bomber/internal/otp/repository"
)

var (
	ErrNotFound        = errors.New("no verification code found for this number")
	ErrExpired         = errors.New("verification code has expired")
	ErrAlreadyVerified = errors.New("verification code already used")
	ErrCodeMismatch    = errors.New("incorrect verification code")
	ErrNotVerified     = errors.New("phone number not verified")
)

// Service issues and verifies one-time codes keyed by phone number.
type Service struct {
	repo   repository.OTPRepository
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo repository.OTPRepository, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		ttl:    ttl,
		logger: logger.With("service", "otp"),
		now:    time.Now,
	}
}

// Issue stores a fresh 6-digit code for the phone. Older rows are left in
// place; verification only ever looks at the latest one.
func (s *Service) Issue(ctx context.Context, phone string) (*domain.OTP, error) {
	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("generating otp code: %w", err)
	}

	now := s.now().UTC()
	otp := &domain.OTP{
		ID:        uuid.New(),
		Phone:     phone,
		Code:      code,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, otp); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "OTP issued", "phone", phone, "expires_at", otp.ExpiresAt)
	return otp, nil
}

// Verify checks the supplied code against the latest row for the phone and
// marks it verified on success.
func (s *Service) Verify(ctx context.Context, phone, code string) error {
	otp, err := s.repo.LatestByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if otp.Verified {
		return ErrAlreadyVerified
	}
	if otp.Expired(s.now()) {
		return ErrExpired
	}
	if otp.Code != code {
		return ErrCodeMismatch
	}

	if err := s.repo.MarkVerified(ctx, otp.ID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "OTP verified", "phone", phone)
	return nil
}

// RequireVerified ensures the latest code for the phone has been verified.
// It deliberately does not re-check expiry: a user who verified in time may
// complete registration later, matching the original behavior.
func (s *Service) RequireVerified(ctx context.Context, phone string) error {
	otp, err := s.repo.LatestByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotVerified
		}
		return err
	}
	if !otp.Verified {
		return ErrNotVerified
	}
	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
