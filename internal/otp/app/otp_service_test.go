package app

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vbs-0/bomber/internal/otp/domain"
	"github.com/vbs-0/bomber/internal/otp/repository"
)

type mockOTPRepo struct{ mock.Mock }

func (m *mockOTPRepo) Create(ctx context.Context, otp *domain.OTP) error {
	args := m.Called(ctx, otp)
	return args.Error(0)
}

func (m *mockOTPRepo) LatestByPhone(ctx context.Context, phone string) (*domain.OTP, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OTP), args.Error(1)
}

func (m *mockOTPRepo) MarkVerified(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newOTPService(repo *mockOTPRepo) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, 15*time.Minute, logger)
}

func TestIssue_SixDigitCode(t *testing.T) {
	repo := &mockOTPRepo{}
	svc := newOTPService(repo)

	var created *domain.OTP
	repo.On("Create", mock.Anything, mock.MatchedBy(func(otp *domain.OTP) bool {
		created = otp
		return otp.Phone == "5551234567"
	})).Return(nil).Once()

	otp, err := svc.Issue(context.Background(), "5551234567")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), otp.Code)
	assert.Equal(t, created, otp)
	assert.WithinDuration(t, otp.CreatedAt.Add(15*time.Minute), otp.ExpiresAt, time.Second)
	assert.False(t, otp.Verified)
}

func TestVerify_Success_MarksVerified(t *testing.T) {
	repo := &mockOTPRepo{}
	svc := newOTPService(repo)

	id := uuid.New()
	repo.On("LatestByPhone", mock.Anything, "5551234567").Return(&domain.OTP{
		ID:        id,
		Phone:     "5551234567",
		Code:      "123456",
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}, nil).Once()
	repo.On("MarkVerified", mock.Anything, id).Return(nil).Once()

	err := svc.Verify(context.Background(), "5551234567", "123456")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestVerify_Expired(t *testing.T) {
	repo := &mockOTPRepo{}
	svc := newOTPService(repo)
	svc.now = func() time.Time { return time.Now().Add(20 * time.Minute) }

	repo.On("LatestByPhone", mock.Anything, "5551234567").Return(&domain.OTP{
		ID:        uuid.New(),
		Code:      "123456",
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil).Once()

	err := svc.Verify(context.Background(), "5551234567", "123456")
	assert.ErrorIs(t, err, ErrExpired)
	repo.AssertNotCalled(t, "MarkVerified", mock.Anything, mock.Anything)
}

func TestVerify_Mismatch(t *testing.T) {
	repo := &mockOTPRepo{}
	svc := newOTPService(repo)

	repo.On("LatestByPhone", mock.Anything, "5551234567").Return(&domain.OTP{
		ID:        uuid.New(),
		Code:      "123456",
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}, nil).Once()

	err := svc.Verify(context.Background(), "5551234567", "654321")
	assert.ErrorIs(t, err, ErrCodeMismatch)
	repo.AssertNotCalled(t, "MarkVerified", mock.Anything, mock.Anything)
}

func TestVerify_AlreadyVerified(t *testing.T) {
	repo := &mockOTPRepo{}
	svc := newOTPService(repo)

	repo.On("LatestByPhone", mock.Anything, "5551234567").Return(&domain.OTP{
		ID:        uuid.New(),
		Code:      "123456",
		Verified:  true,
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}, nil).Once()

	err := svc.Verify(context.Background(), "5551234567", "123456")
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestVerify_NoCodeIssued(t *testing.T) {
	repo := &mockOTPRepo{}
	svc := newOTPService(repo)

	repo.On("LatestByPhone", mock.Anything, "5551234567").Return(nil, repository.ErrNotFound).Once()

	err := svc.Verify(context.Background(), "5551234567", "123456")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRequireVerified(t *testing.T) {
	t.Run("verified", func(t *testing.T) {
		repo := &mockOTPRepo{}
		svc := newOTPService(repo)
		repo.On("LatestByPhone", mock.Anything, "5551234567").Return(&domain.OTP{
			Verified:  true,
			ExpiresAt: time.Now().Add(10 * time.Minute),
		}, nil).Once()
		assert.NoError(t, svc.RequireVerified(context.Background(), "5551234567"))
	})

	t.Run("not verified", func(t *testing.T) {
		repo := &mockOTPRepo{}
		svc := newOTPService(repo)
		repo.On("LatestByPhone", mock.Anything, "5551234567").Return(&domain.OTP{
			ExpiresAt: time.Now().Add(10 * time.Minute),
		}, nil).Once()
		assert.ErrorIs(t, svc.RequireVerified(context.Background(), "5551234567"), ErrNotVerified)
	})

	// Expiry is not re-checked once the code has been verified.
	t.Run("verified but expired", func(t *testing.T) {
		repo := &mockOTPRepo{}
		svc := newOTPService(repo)
		repo.On("LatestByPhone", mock.Anything, "5551234567").Return(&domain.OTP{
			Verified:  true,
			ExpiresAt: time.Now().Add(-time.Hour),
		}, nil).Once()
		assert.NoError(t, svc.RequireVerified(context.Background(), "5551234567"))
	})

	t.Run("no row", func(t *testing.T) {
		repo := &mockOTPRepo{}
		svc := newOTPService(repo)
		repo.On("LatestByPhone", mock.Anything, "5551234567").Return(nil, repository.ErrNotFound).Once()
		assert.ErrorIs(t, svc.RequireVerified(context.Background(), "5551234567"), ErrNotVerified)
	})
}
