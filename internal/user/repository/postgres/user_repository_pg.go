package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vbs-0/bomber/internal/platform/database"
	"github.com/vbs-0/bomber/internal/user/domain"
	"github.com/vbs-0/bomber/internal/user/repository"
)

const uniqueViolationCode = "23505"

type PgUserRepository struct {
	db     database.Querier
	logger *slog.Logger
}

func NewPgUserRepository(db database.Querier, logger *slog.Logger) repository.UserRepository {
	return &PgUserRepository{db: db, logger: logger.With("component", "user_repository_pg")}
}

const userColumns = `id, username, hashed_password, full_name, phone, messages_remaining, messages_sent, is_admin, is_active, last_activity, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Username, &u.HashedPassword, &u.FullName, &u.Phone,
		&u.MessagesRemaining, &u.MessagesSent, &u.IsAdmin, &u.IsActive,
		&u.LastActivity, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *PgUserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, username, hashed_password, full_name, phone, messages_remaining, messages_sent, is_admin, is_active, last_activity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Username, user.HashedPassword, user.FullName, user.Phone,
		user.MessagesRemaining, user.MessagesSent, user.IsAdmin, user.IsActive,
		user.LastActivity, user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return repository.ErrDuplicate
		}
		r.logger.ErrorContext(ctx, "Failed to insert user", "error", err, "username", user.Username)
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *PgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = LOWER($1)`
	return scanUser(r.db.QueryRow(ctx, query, username))
}

func (r *PgUserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`
	return scanUser(r.db.QueryRow(ctx, query, phone))
}

func (r *PgUserRepository) List(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID, &u.Username, &u.HashedPassword, &u.FullName, &u.Phone,
			&u.MessagesRemaining, &u.MessagesSent, &u.IsAdmin, &u.IsActive,
			&u.LastActivity, &u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PgUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

func (r *PgUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error {
	return r.execOnUser(ctx, `UPDATE users SET hashed_password = $2 WHERE id = $1`, id, hashedPassword)
}

func (r *PgUserRepository) TouchLastActivity(ctx context.Context, id uuid.UUID) error {
	return r.execOnUser(ctx, `UPDATE users SET last_activity = NOW() WHERE id = $1`, id)
}

func (r *PgUserRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.execOnUser(ctx, `UPDATE users SET is_active = $2 WHERE id = $1`, id, active)
}

func (r *PgUserRepository) AddCredits(ctx context.Context, id uuid.UUID, n int) error {
	return r.execOnUser(ctx, `UPDATE users SET messages_remaining = messages_remaining + $2 WHERE id = $1`, id, n)
}

func (r *PgUserRepository) RemoveCredits(ctx context.Context, id uuid.UUID, n int) error {
	return r.execOnUser(ctx, `UPDATE users SET messages_remaining = GREATEST(messages_remaining - $2, 0) WHERE id = $1`, id, n)
}

func (r *PgUserRepository) Debit(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET messages_remaining = GREATEST(messages_remaining - 1, 0), messages_sent = messages_sent + 1 WHERE id = $1`
	return r.execOnUser(ctx, query, id)
}

func (r *PgUserRepository) DebitBomber(ctx context.Context, id uuid.UUID, n int) error {
	query := `UPDATE users SET messages_remaining = GREATEST(messages_remaining - $2, 0), messages_sent = messages_sent + 1 WHERE id = $1`
	return r.execOnUser(ctx, query, id, n)
}

func (r *PgUserRepository) execOnUser(ctx context.Context, query string, id uuid.UUID, args ...any) error {
	tag, err := r.db.Exec(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		r.logger.ErrorContext(ctx, "User update failed", "error", err, "user_id", id)
		return fmt.Errorf("updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
