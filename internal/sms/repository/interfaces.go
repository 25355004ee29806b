package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/vbs-0/bomber/internal/sms/domain"
)

var ErrNotFound = errors.New("message not found")

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Message, error)
	ListAll(ctx context.Context) ([]domain.Message, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.MessageStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteMany(ctx context.Context, ids []uuid.UUID) (int, error)
	CountSent(ctx context.Context) (int, error)
}
