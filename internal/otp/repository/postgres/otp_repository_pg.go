package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vbs-0/bomber/internal/otp/domain"
	"github.com/vbs-0/bomber/internal/otp/repository"
	"github.com/vbs-0/bomber/internal/platform/database"
)

type PgOTPRepository struct {
	db     database.Querier
	logger *slog.Logger
}

func NewPgOTPRepository(db database.Querier, logger *slog.Logger) repository.OTPRepository {
	return &PgOTPRepository{db: db, logger: logger.With("component", "otp_repository_pg")}
}

func (r *PgOTPRepository) Create(ctx context.Context, otp *domain.OTP) error {
	query := `
		INSERT INTO otps (id, phone, code, expires_at, verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Exec(ctx, query, otp.ID, otp.Phone, otp.Code, otp.ExpiresAt, otp.Verified, otp.CreatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert otp", "error", err)
		return fmt.Errorf("inserting otp: %w", err)
	}
	return nil
}

func (r *PgOTPRepository) LatestByPhone(ctx context.Context, phone string) (*domain.OTP, error) {
	query := `
		SELECT id, phone, code, expires_at, verified, created_at
		FROM otps WHERE phone = $1
		ORDER BY created_at DESC LIMIT 1`
	var o domain.OTP
	err := r.db.QueryRow(ctx, query, phone).Scan(&o.ID, &o.Phone, &o.Code, &o.ExpiresAt, &o.Verified, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("fetching latest otp: %w", err)
	}
	return &o, nil
}

func (r *PgOTPRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE otps SET verified = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("marking otp verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
