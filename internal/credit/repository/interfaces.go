package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/vbs-0/bomber/internal/credit/domain"
)

var ErrNotFound = errors.New("credit request not found")

type CreditRequestRepository interface {
	Create(ctx context.Context, req *domain.CreditRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CreditRequest, error)
	SetDecided(ctx context.Context, id uuid.UUID, status domain.RequestStatus, decidedAt time.Time) error
	ListPending(ctx context.Context) ([]domain.CreditRequest, error)
	ListAll(ctx context.Context) ([]domain.CreditRequest, error)
	CountPending(ctx context.Context) (int, error)
}
