package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/vbs-0/bomber/internal/user/domain"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("user already exists")
)

// UserRepository persists users. Usernames are unique case-insensitively;
// the ledger operations mutate the credit columns atomically per row.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Count(ctx context.Context) (int, error)

	UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error
	TouchLastActivity(ctx context.Context, id uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	// AddCredits raises messages_remaining by n.
	AddCredits(ctx context.Context, id uuid.UUID, n int) error
	// RemoveCredits lowers messages_remaining by n, floored at zero.
	RemoveCredits(ctx context.Context, id uuid.UUID, n int) error
	// Debit lowers messages_remaining by one (floored at zero) and raises
	// messages_sent by one.
	Debit(ctx context.Context, id uuid.UUID) error
	// DebitBomber lowers messages_remaining by n (floored at zero) and
	// raises messages_sent by one. The sent counter moves by one per burst,
	// not per repeat; callers rely on that.
	DebitBomber(ctx context.Context, id uuid.UUID, n int) error
}
