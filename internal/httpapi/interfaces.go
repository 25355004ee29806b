package httpapi

import (
	"context"
	"time"

	"github.com/google/uuid"

	creditdomain "github.com/vbs-0/bomber/internal/credit/domain"
	otpdomain "github.com/vbs-0/bomber/internal/otp/domain"
	protectiondomain "github.com/vbs-0/bomber/internal/protection/domain"
	smsdomain "github.com/vbs-0/bomber/internal/sms/domain"
	userapp "github.com/vbs-0/bomber/internal/user/app"
	userdomain "github.com/vbs-0/bomber/internal/user/domain"
)

// Consumer-side interfaces over the app services, so handlers can be tested
// with testify mocks.

type AuthService interface {
	CheckAvailability(ctx context.Context, username, phone string) error
	CreateAccount(ctx context.Context, acct userapp.NewAccount) (*userdomain.User, error)
	Authenticate(ctx context.Context, username, password string) (*userdomain.User, error)
	CreateSession(user *userdomain.User) (string, time.Time, error)
	ValidateSession(token string) (uuid.UUID, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, current, newPassword string) error
	GetUser(ctx context.Context, id uuid.UUID) (*userdomain.User, error)
}

type OTPService interface {
	Issue(ctx context.Context, phone string) (*otpdomain.OTP, error)
	Verify(ctx context.Context, phone, code string) error
	RequireVerified(ctx context.Context, phone string) error
}

type Dispatcher interface {
	SendSingle(ctx context.Context, user *userdomain.User, phone, text string) (*smsdomain.Message, error)
	SendBomber(ctx context.Context, user *userdomain.User, phone string, repeat int) error
	AdminBomber(ctx context.Context, admin *userdomain.User, phone string, repeat int, message string) (string, error)
	AdminCustom(ctx context.Context, admin *userdomain.User, phone, text string) error
	DeliverOTP(ctx context.Context, phone, code string) error
}

type CreditService interface {
	Request(ctx context.Context, userID uuid.UUID, phone string, amount int, reason string) (*creditdomain.CreditRequest, error)
	Approve(ctx context.Context, requestID uuid.UUID) error
	Reject(ctx context.Context, requestID uuid.UUID) error
	Add(ctx context.Context, userID uuid.UUID, n int) error
	Remove(ctx context.Context, userID uuid.UUID, n int) error
	ListPending(ctx context.Context) ([]creditdomain.CreditRequest, error)
	ListAll(ctx context.Context) ([]creditdomain.CreditRequest, error)
	CountPending(ctx context.Context) (int, error)
}

type ProtectionService interface {
	IsProtected(ctx context.Context, phone string) (bool, error)
	ProtectOwn(ctx context.Context, userID uuid.UUID, phone string) error
	ProtectByAdmin(ctx context.Context, phone string) error
	Unprotect(ctx context.Context, phone string) error
	List(ctx context.Context) ([]protectiondomain.ProtectedNumber, error)
	Count(ctx context.Context) (int, error)
}
