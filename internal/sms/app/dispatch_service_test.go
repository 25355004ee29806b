package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vbs-0/bomber/internal/sms/domain"
	"github.com/vbs-0/bomber/internal/sms/provider"
	userdomain "github.com/vbs-0/bomber/internal/user/domain"
)

type mockGateway struct{ mock.Mock }

func (m *mockGateway) SendOTP(ctx context.Context, phone, code string) error {
	args := m.Called(ctx, phone, code)
	return args.Error(0)
}

func (m *mockGateway) SendCustom(ctx context.Context, phone, text string) (*provider.SendOutcome, error) {
	args := m.Called(ctx, phone, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.SendOutcome), args.Error(1)
}

func (m *mockGateway) SendBomber(ctx context.Context, phone string, repeat int) error {
	args := m.Called(ctx, phone, repeat)
	return args.Error(0)
}

type mockLedger struct{ mock.Mock }

func (m *mockLedger) Debit(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockLedger) DebitBomber(ctx context.Context, userID uuid.UUID, repeat int) error {
	args := m.Called(ctx, userID, repeat)
	return args.Error(0)
}

type mockMessageRepo struct{ mock.Mock }

func (m *mockMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockMessageRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Message, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *mockMessageRepo) ListAll(ctx context.Context) ([]domain.Message, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *mockMessageRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.MessageStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockMessageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockMessageRepo) DeleteMany(ctx context.Context, ids []uuid.UUID) (int, error) {
	args := m.Called(ctx, ids)
	return args.Int(0), args.Error(1)
}

func (m *mockMessageRepo) CountSent(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockProtection struct{ mock.Mock }

func (m *mockProtection) IsProtected(ctx context.Context, phone string) (bool, error) {
	args := m.Called(ctx, phone)
	return args.Bool(0), args.Error(1)
}

type dispatchComponents struct {
	gateway    *mockGateway
	ledger     *mockLedger
	messages   *mockMessageRepo
	protection *mockProtection
	service    *DispatchService
}

func newDispatchComponents() dispatchComponents {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := dispatchComponents{
		gateway:    &mockGateway{},
		ledger:     &mockLedger{},
		messages:   &mockMessageRepo{},
		protection: &mockProtection{},
	}
	c.service = NewDispatchService(c.gateway, c.messages, c.ledger, c.protection, logger)
	return c
}

func activeUser(remaining int) *userdomain.User {
	return &userdomain.User{
		ID:                uuid.New(),
		Username:          "tester",
		Phone:             "5550001111",
		MessagesRemaining: remaining,
		IsActive:          true,
		CreatedAt:         time.Now(),
	}
}

func TestSendSingle_Success(t *testing.T) {
	c := newDispatchComponents()
	user := activeUser(1)

	c.gateway.On("SendCustom", mock.Anything, "5551234567", "hello").
		Return(&provider.SendOutcome{Success: true, ProviderMessageID: "gw-1"}, nil).Once()
	c.ledger.On("Debit", mock.Anything, user.ID).Return(nil).Once()
	c.messages.On("Create", mock.Anything, mock.MatchedBy(func(msg *domain.Message) bool {
		return msg.UserID == user.ID &&
			msg.Phone == "5551234567" &&
			msg.Body == "hello" &&
			msg.Status == domain.StatusSent &&
			msg.Type == domain.TypeCustom
	})).Return(nil).Once()

	msg, err := c.service.SendSingle(context.Background(), user, "5551234567", "hello")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSent, msg.Status)

	c.gateway.AssertExpectations(t)
	c.ledger.AssertExpectations(t)
	c.messages.AssertExpectations(t)
}

func TestSendSingle_GatewayFailure_NoSideEffects(t *testing.T) {
	c := newDispatchComponents()
	user := activeUser(3)

	c.gateway.On("SendCustom", mock.Anything, "5551234567", "hello").
		Return(&provider.SendOutcome{Success: false}, nil).Once()

	_, err := c.service.SendSingle(context.Background(), user, "5551234567", "hello")
	assert.ErrorIs(t, err, ErrGatewayFailure)

	c.ledger.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything)
	c.messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSendSingle_Suspended(t *testing.T) {
	c := newDispatchComponents()
	user := activeUser(3)
	user.IsActive = false

	_, err := c.service.SendSingle(context.Background(), user, "5551234567", "hello")
	assert.ErrorIs(t, err, ErrAccountSuspended)
	c.gateway.AssertNotCalled(t, "SendCustom", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendSingle_NoCredit(t *testing.T) {
	c := newDispatchComponents()
	user := activeUser(0)

	_, err := c.service.SendSingle(context.Background(), user, "5551234567", "hello")
	assert.ErrorIs(t, err, ErrNoCredit)
	c.gateway.AssertNotCalled(t, "SendCustom", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendBomber_InsufficientCredit_NoGatewayCall(t *testing.T) {
	c := newDispatchComponents()
	user := activeUser(2)

	err := c.service.SendBomber(context.Background(), user, "5551234567", 5)
	assert.ErrorIs(t, err, ErrInsufficientCredit)
	c.gateway.AssertNotCalled(t, "SendBomber", mock.Anything, mock.Anything, mock.Anything)
	c.protection.AssertNotCalled(t, "IsProtected", mock.Anything, mock.Anything)
}

func TestSendBomber_ProtectedNumber_NoGatewayCall(t *testing.T) {
	c := newDispatchComponents()
	user := activeUser(10)

	c.protection.On("IsProtected", mock.Anything, "5551234567").Return(true, nil).Once()

	err := c.service.SendBomber(context.Background(), user, "5551234567", 3)
	assert.ErrorIs(t, err, ErrNumberProtected)
	c.gateway.AssertNotCalled(t, "SendBomber", mock.Anything, mock.Anything, mock.Anything)
	c.ledger.AssertNotCalled(t, "DebitBomber", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendBomber_Success_DebitsFullRepeat(t *testing.T) {
	c := newDispatchComponents()
	user := activeUser(5)

	c.protection.On("IsProtected", mock.Anything, "5551234567").Return(false, nil).Once()
	c.gateway.On("SendBomber", mock.Anything, "5551234567", 3).Return(nil).Once()
	c.ledger.On("DebitBomber", mock.Anything, user.ID, 3).Return(nil).Once()
	c.messages.On("Create", mock.Anything, mock.MatchedBy(func(msg *domain.Message) bool {
		return msg.Type == domain.TypeBomber && msg.Status == domain.StatusSent
	})).Return(nil).Once()

	err := c.service.SendBomber(context.Background(), user, "5551234567", 3)
	require.NoError(t, err)

	c.gateway.AssertExpectations(t)
	c.ledger.AssertExpectations(t)
	c.messages.AssertExpectations(t)
}

func TestSendBomber_GatewayFailure_NoMutation(t *testing.T) {
	c := newDispatchComponents()
	user := activeUser(5)

	c.protection.On("IsProtected", mock.Anything, "5551234567").Return(false, nil).Once()
	c.gateway.On("SendBomber", mock.Anything, "5551234567", 3).Return(errors.New("boom")).Once()

	err := c.service.SendBomber(context.Background(), user, "5551234567", 3)
	assert.ErrorIs(t, err, ErrGatewayFailure)
	c.ledger.AssertNotCalled(t, "DebitBomber", mock.Anything, mock.Anything, mock.Anything)
	c.messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminBomber_WithMessage_ReportsSuccessCount(t *testing.T) {
	c := newDispatchComponents()
	admin := activeUser(0)
	admin.IsAdmin = true

	c.protection.On("IsProtected", mock.Anything, "5551234567").Return(false, nil).Once()
	c.gateway.On("SendCustom", mock.Anything, "5551234567", "notice").
		Return(&provider.SendOutcome{Success: true}, nil).Twice()
	c.gateway.On("SendCustom", mock.Anything, "5551234567", "notice").
		Return(&provider.SendOutcome{Success: false}, nil).Once()
	c.messages.On("Create", mock.Anything, mock.MatchedBy(func(msg *domain.Message) bool {
		return msg.Type == domain.TypeBomber && msg.Status == domain.StatusSent
	})).Return(nil).Once()

	summary, err := c.service.AdminBomber(context.Background(), admin, "5551234567", 3, "notice")
	require.NoError(t, err)
	assert.Equal(t, "Sent 2 of 3 messages successfully", summary)

	// Admin sends are unmetered.
	c.ledger.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything)
	c.ledger.AssertNotCalled(t, "DebitBomber", mock.Anything, mock.Anything, mock.Anything)
	c.gateway.AssertExpectations(t)
}

func TestAdminBomber_Protected(t *testing.T) {
	c := newDispatchComponents()
	admin := activeUser(0)
	admin.IsAdmin = true

	c.protection.On("IsProtected", mock.Anything, "5551234567").Return(true, nil).Once()

	_, err := c.service.AdminBomber(context.Background(), admin, "5551234567", 3, "notice")
	assert.ErrorIs(t, err, ErrNumberProtected)
	c.gateway.AssertNotCalled(t, "SendCustom", mock.Anything, mock.Anything, mock.Anything)
	c.gateway.AssertNotCalled(t, "SendBomber", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminBomber_WithoutMessage_UsesBomberEndpoint(t *testing.T) {
	c := newDispatchComponents()
	admin := activeUser(0)
	admin.IsAdmin = true

	c.protection.On("IsProtected", mock.Anything, "5551234567").Return(false, nil).Once()
	c.gateway.On("SendBomber", mock.Anything, "5551234567", 7).Return(nil).Once()
	c.messages.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	summary, err := c.service.AdminBomber(context.Background(), admin, "5551234567", 7, "")
	require.NoError(t, err)
	assert.Equal(t, "Bomber messages sent successfully", summary)
	c.gateway.AssertNotCalled(t, "SendCustom", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeliverOTP_GatewayFailure(t *testing.T) {
	c := newDispatchComponents()

	c.gateway.On("SendOTP", mock.Anything, "5551234567", "123456").Return(errors.New("down")).Once()

	err := c.service.DeliverOTP(context.Background(), "5551234567", "123456")
	assert.ErrorIs(t, err, ErrGatewayFailure)
}
