package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vbs-0/bomber/internal/platform/database"
	"github.com/vbs-0/bomber/internal/sms/domain"
	"github.com/vbs-0/bomber/internal/sms/repository"
)

type PgMessageRepository struct {
	db     database.Querier
	logger *slog.Logger
}

func NewPgMessageRepository(db database.Querier, logger *slog.Logger) repository.MessageRepository {
	return &PgMessageRepository{db: db, logger: logger.With("component", "message_repository_pg")}
}

func (r *PgMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, user_id, phone, body, status, type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(ctx, query, msg.ID, msg.UserID, msg.Phone, msg.Body, msg.Status, msg.Type, msg.CreatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert message", "error", err, "user_id", msg.UserID)
		return fmt.Errorf("inserting message: %w", err)
	}
	return nil
}

const messageColumns = `id, user_id, phone, body, status, type, created_at`

func (r *PgMessageRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing messages for user: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (r *PgMessageRepository) ListAll(ctx context.Context) ([]domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (r *PgMessageRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.MessageStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE messages SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("updating message status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PgMessageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PgMessageRepository) DeleteMany(ctx context.Context, ids []uuid.UUID) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM messages WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("deleting messages: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *PgMessageRepository) CountSent(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM messages WHERE status = $1`
	if err := r.db.QueryRow(ctx, query, domain.StatusSent).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting sent messages: %w", err)
	}
	return count, nil
}

func scanMessages(rows pgx.Rows) ([]domain.Message, error) {
	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.Phone, &m.Body, &m.Status, &m.Type, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
