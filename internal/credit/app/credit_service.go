package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vbs-0/bomber/internal/credit/domain"
	"github.com/vbs-0/bomber/internal/credit/repository"
	smsdomain "github.com/vbs-0/bomber/internal/sms/domain"
	smsrepo "github.com/vbs-0/bomber/internal/sms/repository"
	userrepo "github.com/vbs-0/bomber/internal/user/repository"
)

var (
	ErrRequestNotFound = errors.New("credit request not found or already decided")
	ErrUserNotFound    = errors.New("user not found")
)

// Service owns the credit ledger and the credit-request workflow.
type Service struct {
	users    userrepo.UserRepository
	requests repository.CreditRequestRepository
	messages smsrepo.MessageRepository
	logger   *slog.Logger
}

func NewService(
	users userrepo.UserRepository,
	requests repository.CreditRequestRepository,
	messages smsrepo.MessageRepository,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:    users,
		requests: requests,
		messages: messages,
		logger:   logger.With("service", "credit"),
	}
}

// Debit charges one credit and bumps the sent counter; called after a
// successful single send.
func (s *Service) Debit(ctx context.Context, userID uuid.UUID) error {
	return s.users.Debit(ctx, userID)
}

// DebitBomber charges repeat credits for a bomber burst but bumps the sent
// counter by exactly one. The asymmetry is preserved from the original
// system; do not "fix" it without a migration plan for existing balances.
func (s *Service) DebitBomber(ctx context.Context, userID uuid.UUID, repeat int) error {
	return s.users.DebitBomber(ctx, userID, repeat)
}

// Add grants credits; admin-only, unbounded.
func (s *Service) Add(ctx context.Context, userID uuid.UUID, n int) error {
	if err := s.users.AddCredits(ctx, userID, n); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.logger.InfoContext(ctx, "Credits added", "user_id", userID, "amount", n)
	return nil
}

// Remove revokes credits, floored at zero; admin-only.
func (s *Service) Remove(ctx context.Context, userID uuid.UUID, n int) error {
	if err := s.users.RemoveCredits(ctx, userID, n); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.logger.InfoContext(ctx, "Credits removed", "user_id", userID, "amount", n)
	return nil
}

// Request records a pending credit request plus its audit message row.
func (s *Service) Request(ctx context.Context, userID uuid.UUID, phone string, amount int, reason string) (*domain.CreditRequest, error) {
	now := time.Now().UTC()
	msg := &smsdomain.Message{
		ID:        uuid.New(),
		UserID:    userID,
		Phone:     phone,
		Body:      fmt.Sprintf("Requested %d credits: %s", amount, reason),
		Status:    smsdomain.StatusPending,
		Type:      smsdomain.TypeCreditRequest,
		CreatedAt: now,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	req := &domain.CreditRequest{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    amount,
		Reason:    reason,
		Status:    domain.RequestPending,
		MessageID: msg.ID,
		CreatedAt: now,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Credit request created", "request_id", req.ID, "user_id", userID, "amount", amount)
	return req, nil
}

// Approve grants the requested credits, closes the request and writes a
// system message for the requester.
func (s *Service) Approve(ctx context.Context, requestID uuid.UUID) error {
	req, err := s.getPending(ctx, requestID)
	if err != nil {
		return err
	}

	if err := s.users.AddCredits(ctx, req.UserID, req.Amount); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.decide(ctx, req, domain.RequestApproved); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return err
	}
	system := &smsdomain.Message{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Phone:     user.Phone,
		Body:      fmt.Sprintf("Your request for %d credits was approved.", req.Amount),
		Status:    smsdomain.StatusSent,
		Type:      smsdomain.TypeSystem,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, system); err != nil {
		s.logger.WarnContext(ctx, "Failed to write approval system message", "error", err, "request_id", requestID)
	}
	s.logger.InfoContext(ctx, "Credit request approved", "request_id", requestID, "amount", req.Amount)
	return nil
}

// Reject closes the request with no ledger effect.
func (s *Service) Reject(ctx context.Context, requestID uuid.UUID) error {
	req, err := s.getPending(ctx, requestID)
	if err != nil {
		return err
	}
	if err := s.decide(ctx, req, domain.RequestRejected); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Credit request rejected", "request_id", requestID)
	return nil
}

func (s *Service) ListPending(ctx context.Context) ([]domain.CreditRequest, error) {
	return s.requests.ListPending(ctx)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.CreditRequest, error) {
	return s.requests.ListAll(ctx)
}

func (s *Service) CountPending(ctx context.Context) (int, error) {
	return s.requests.CountPending(ctx)
}

func (s *Service) getPending(ctx context.Context, requestID uuid.UUID) (*domain.CreditRequest, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if req.Status != domain.RequestPending {
		return nil, ErrRequestNotFound
	}
	return req, nil
}

func (s *Service) decide(ctx context.Context, req *domain.CreditRequest, status domain.RequestStatus) error {
	if err := s.requests.SetDecided(ctx, req.ID, status, time.Now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRequestNotFound
		}
		return err
	}
	// Mirror the decision on the audit message row.
	msgStatus := smsdomain.StatusApproved
	if status == domain.RequestRejected {
		msgStatus = smsdomain.StatusRejected
	}
	if err := s.messages.UpdateStatus(ctx, req.MessageID, msgStatus); err != nil {
		s.logger.WarnContext(ctx, "Failed to mirror decision on audit message", "error", err, "request_id", req.ID)
	}
	return nil
}
