package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vbs-0/bomber/internal/protection/domain"
)

// Service manages the protected-number registry. Self-service calls operate
// on the caller's own phone; admin calls may protect any phone without an
// owning user.
type Service struct {
	repo   domain.ProtectedNumberRepository
	logger *slog.Logger
}

func NewService(repo domain.ProtectedNumberRepository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With("service", "protection")}
}

func (s *Service) IsProtected(ctx context.Context, phone string) (bool, error) {
	return s.repo.IsProtected(ctx, phone)
}

// ProtectOwn registers the caller's own phone.
func (s *Service) ProtectOwn(ctx context.Context, userID uuid.UUID, phone string) error {
	return s.protect(ctx, phone, uuid.NullUUID{UUID: userID, Valid: true})
}

// ProtectByAdmin registers an arbitrary phone as administrator-owned.
func (s *Service) ProtectByAdmin(ctx context.Context, phone string) error {
	return s.protect(ctx, phone, uuid.NullUUID{})
}

func (s *Service) protect(ctx context.Context, phone string, userID uuid.NullUUID) error {
	entry := &domain.ProtectedNumber{
		ID:        uuid.New(),
		Phone:     phone,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Protect(ctx, entry); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Number protected", "phone", phone, "admin", !userID.Valid)
	return nil
}

func (s *Service) Unprotect(ctx context.Context, phone string) error {
	if err := s.repo.Unprotect(ctx, phone); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Number unprotected", "phone", phone)
	return nil
}

func (s *Service) List(ctx context.Context) ([]domain.ProtectedNumber, error) {
	return s.repo.List(ctx)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
