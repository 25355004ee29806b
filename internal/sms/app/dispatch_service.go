package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vbs-0/bomber/internal/sms/domain"
	"github.com/vbs-0/bomber/internal/sms/provider"
	"github.com/vbs-0/bomber/internal/sms/repository"
	userdomain "github.com/vbs-0/bomber/internal/user/domain"
)

var (
	ErrAccountSuspended   = errors.New("your account has been suspended")
	ErrNoCredit           = errors.New("you don't have any credits left")
	ErrInsufficientCredit = errors.New("you don't have enough credits")
	ErrNumberProtected    = errors.New("this number is protected")
	ErrGatewayFailure     = errors.New("failed to send message")
)

// Ledger is the slice of the credit ledger the dispatcher mutates.
type Ledger interface {
	Debit(ctx context.Context, userID uuid.UUID) error
	DebitBomber(ctx context.Context, userID uuid.UUID, repeat int) error
}

// ProtectionChecker answers whether a phone is exempt from bomber sends.
type ProtectionChecker interface {
	IsProtected(ctx context.Context, phone string) (bool, error)
}

// DispatchService runs the credit-gated message workflows. Every path is a
// straight-line check sequence: authorization and balance checks first,
// then the gateway call, and ledger/audit writes only after the gateway
// reports success.
type DispatchService struct {
	gateway    provider.Gateway
	messages   repository.MessageRepository
	ledger     Ledger
	protection ProtectionChecker
	logger     *slog.Logger
}

func NewDispatchService(
	gateway provider.Gateway,
	messages repository.MessageRepository,
	ledger Ledger,
	protection ProtectionChecker,
	logger *slog.Logger,
) *DispatchService {
	return &DispatchService{
		gateway:    gateway,
		messages:   messages,
		ledger:     ledger,
		protection: protection,
		logger:     logger.With("service", "dispatch"),
	}
}

// SendSingle delivers one custom message for the user, debiting one credit
// on success. A gateway failure leaves balance and history untouched.
func (s *DispatchService) SendSingle(ctx context.Context, user *userdomain.User, phone, text string) (*domain.Message, error) {
	if !user.IsActive {
		return nil, ErrAccountSuspended
	}
	if user.MessagesRemaining <= 0 {
		return nil, ErrNoCredit
	}

	outcome, err := s.timedSendCustom(ctx, phone, text)
	if err != nil || !outcome.Success {
		dispatchSendsTotal.WithLabelValues("custom", "gateway_failure").Inc()
		s.logger.WarnContext(ctx, "Gateway rejected single send", "error", err, "user_id", user.ID)
		return nil, ErrGatewayFailure
	}

	if err := s.ledger.Debit(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("debiting credit: %w", err)
	}

	msg := &domain.Message{
		ID:        uuid.New(),
		UserID:    user.ID,
		Phone:     phone,
		Body:      text,
		Status:    domain.StatusSent,
		Type:      domain.TypeCustom,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	dispatchSendsTotal.WithLabelValues("custom", "success").Inc()
	s.logger.InfoContext(ctx, "Message sent", "user_id", user.ID, "provider_message_id", outcome.ProviderMessageID)
	return msg, nil
}

// SendBomber runs a self-service bomber burst. Credits for the full repeat
// count are required up front and the gateway is never called for a
// protected number.
func (s *DispatchService) SendBomber(ctx context.Context, user *userdomain.User, phone string, repeat int) error {
	if user.MessagesRemaining < repeat {
		return ErrInsufficientCredit
	}
	if !user.IsActive {
		return ErrAccountSuspended
	}
	protected, err := s.protection.IsProtected(ctx, phone)
	if err != nil {
		return err
	}
	if protected {
		dispatchSendsTotal.WithLabelValues("bomber", "protected").Inc()
		return ErrNumberProtected
	}

	start := time.Now()
	err = s.gateway.SendBomber(ctx, phone, repeat)
	gatewayCallDurationHist.WithLabelValues("bomber").Observe(time.Since(start).Seconds())
	if err != nil {
		dispatchSendsTotal.WithLabelValues("bomber", "gateway_failure").Inc()
		s.logger.WarnContext(ctx, "Gateway rejected bomber send", "error", err, "user_id", user.ID)
		return ErrGatewayFailure
	}

	if err := s.ledger.DebitBomber(ctx, user.ID, repeat); err != nil {
		return fmt.Errorf("debiting bomber credits: %w", err)
	}

	msg := &domain.Message{
		ID:        uuid.New(),
		UserID:    user.ID,
		Phone:     phone,
		Body:      fmt.Sprintf("Bomber burst of %d messages", repeat),
		Status:    domain.StatusSent,
		Type:      domain.TypeBomber,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return err
	}
	dispatchSendsTotal.WithLabelValues("bomber", "success").Inc()
	return nil
}

// AdminBomber runs an unmetered bomber burst on behalf of an admin. With an
// explicit message the client performs the fan-out itself: repeat
// sequential custom sends, always attempting all of them and reporting the
// success count. Without a message a single bomber-endpoint call is made.
func (s *DispatchService) AdminBomber(ctx context.Context, admin *userdomain.User, phone string, repeat int, message string) (string, error) {
	protected, err := s.protection.IsProtected(ctx, phone)
	if err != nil {
		return "", err
	}
	if protected {
		dispatchSendsTotal.WithLabelValues("admin_bomber", "protected").Inc()
		return "", ErrNumberProtected
	}

	if message == "" {
		if err := s.gateway.SendBomber(ctx, phone, repeat); err != nil {
			dispatchSendsTotal.WithLabelValues("admin_bomber", "gateway_failure").Inc()
			return "", ErrGatewayFailure
		}
		s.audit(ctx, admin.ID, phone, fmt.Sprintf("Bomber burst of %d messages", repeat), domain.StatusSent, domain.TypeBomber)
		dispatchSendsTotal.WithLabelValues("admin_bomber", "success").Inc()
		return "Bomber messages sent successfully", nil
	}

	successCount := 0
	for i := 0; i < repeat; i++ {
		outcome, err := s.timedSendCustom(ctx, phone, message)
		if err == nil && outcome.Success {
			successCount++
		}
	}

	status := domain.StatusSent
	if successCount == 0 {
		status = domain.StatusFailed
	}
	s.audit(ctx, admin.ID, phone, message, status, domain.TypeBomber)
	dispatchSendsTotal.WithLabelValues("admin_bomber", "success").Inc()
	s.logger.InfoContext(ctx, "Admin bomber completed", "admin_id", admin.ID, "success", successCount, "repeat", repeat)
	return fmt.Sprintf("Sent %d of %d messages successfully", successCount, repeat), nil
}

// AdminCustom sends one custom message without touching any ledger.
func (s *DispatchService) AdminCustom(ctx context.Context, admin *userdomain.User, phone, text string) error {
	outcome, err := s.timedSendCustom(ctx, phone, text)
	if err != nil || !outcome.Success {
		dispatchSendsTotal.WithLabelValues("admin_custom", "gateway_failure").Inc()
		return ErrGatewayFailure
	}
	s.audit(ctx, admin.ID, phone, text, domain.StatusSent, domain.TypeCustom)
	dispatchSendsTotal.WithLabelValues("admin_custom", "success").Inc()
	return nil
}

// DeliverOTP sends the registration verification code.
func (s *DispatchService) DeliverOTP(ctx context.Context, phone, code string) error {
	start := time.Now()
	err := s.gateway.SendOTP(ctx, phone, code)
	gatewayCallDurationHist.WithLabelValues("custom_sms").Observe(time.Since(start).Seconds())
	if err != nil {
		dispatchSendsTotal.WithLabelValues("otp", "gateway_failure").Inc()
		return ErrGatewayFailure
	}
	dispatchSendsTotal.WithLabelValues("otp", "success").Inc()
	return nil
}

func (s *DispatchService) timedSendCustom(ctx context.Context, phone, text string) (*provider.SendOutcome, error) {
	start := time.Now()
	outcome, err := s.gateway.SendCustom(ctx, phone, text)
	gatewayCallDurationHist.WithLabelValues("custom_sms").Observe(time.Since(start).Seconds())
	return outcome, err
}

func (s *DispatchService) audit(ctx context.Context, userID uuid.UUID, phone, body string, status domain.MessageStatus, msgType domain.MessageType) {
	msg := &domain.Message{
		ID:        uuid.New(),
		UserID:    userID,
		Phone:     phone,
		Body:      body,
		Status:    status,
		Type:      msgType,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "Failed to write audit message", "error", err, "user_id", userID)
	}
}
