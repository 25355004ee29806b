package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vbs-0/bomber/internal/platform/database"
	"github.com/vbs-0/bomber/internal/protection/domain"
)

const uniqueViolationCode = "23505"

type PgProtectedNumberRepository struct {
	db     database.Querier
	logger *slog.Logger
}

func NewPgProtectedNumberRepository(db database.Querier, logger *slog.Logger) domain.ProtectedNumberRepository {
	return &PgProtectedNumberRepository{db: db, logger: logger.With("component", "protected_number_repository_pg")}
}

func (r *PgProtectedNumberRepository) IsProtected(ctx context.Context, phone string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM protected_numbers WHERE phone = $1)`
	if err := r.db.QueryRow(ctx, query, phone).Scan(&exists); err != nil {
		r.logger.ErrorContext(ctx, "Error checking protected number", "error", err)
		return false, fmt.Errorf("checking protected number: %w", err)
	}
	return exists, nil
}

func (r *PgProtectedNumberRepository) Protect(ctx context.Context, entry *domain.ProtectedNumber) error {
	query := `INSERT INTO protected_numbers (id, phone, user_id, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.Exec(ctx, query, entry.ID, entry.Phone, entry.UserID, entry.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return domain.ErrAlreadyProtected
		}
		return fmt.Errorf("inserting protected number: %w", err)
	}
	return nil
}

func (r *PgProtectedNumberRepository) Unprotect(ctx context.Context, phone string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM protected_numbers WHERE phone = $1`, phone)
	if err != nil {
		return fmt.Errorf("deleting protected number: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotProtected
	}
	return nil
}

func (r *PgProtectedNumberRepository) List(ctx context.Context) ([]domain.ProtectedNumber, error) {
	query := `SELECT id, phone, user_id, created_at FROM protected_numbers ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing protected numbers: %w", err)
	}
	defer rows.Close()

	var entries []domain.ProtectedNumber
	for rows.Next() {
		var e domain.ProtectedNumber
		if err := rows.Scan(&e.ID, &e.Phone, &e.UserID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning protected number row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PgProtectedNumberRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM protected_numbers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting protected numbers: %w", err)
	}
	return count, nil
}
