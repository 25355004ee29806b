package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vbs-0/bomber/internal/credit/domain"
	"github.com/vbs-0/bomber/internal/credit/repository"
	"github.com/vbs-0/bomber/internal/platform/database"
)

type PgCreditRequestRepository struct {
	db     database.Querier
	logger *slog.Logger
}

func NewPgCreditRequestRepository(db database.Querier, logger *slog.Logger) repository.CreditRequestRepository {
	return &PgCreditRequestRepository{db: db, logger: logger.With("component", "credit_request_repository_pg")}
}

const requestColumns = `id, user_id, amount, reason, status, message_id, created_at, decided_at`

func (r *PgCreditRequestRepository) Create(ctx context.Context, req *domain.CreditRequest) error {
	query := `
		INSERT INTO credit_requests (id, user_id, amount, reason, status, message_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(ctx, query, req.ID, req.UserID, req.Amount, req.Reason, req.Status, req.MessageID, req.CreatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert credit request", "error", err, "user_id", req.UserID)
		return fmt.Errorf("inserting credit request: %w", err)
	}
	return nil
}

func (r *PgCreditRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CreditRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM credit_requests WHERE id = $1`
	var req domain.CreditRequest
	err := r.db.QueryRow(ctx, query, id).Scan(
		&req.ID, &req.UserID, &req.Amount, &req.Reason, &req.Status,
		&req.MessageID, &req.CreatedAt, &req.DecidedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("fetching credit request: %w", err)
	}
	return &req, nil
}

func (r *PgCreditRequestRepository) SetDecided(ctx context.Context, id uuid.UUID, status domain.RequestStatus, decidedAt time.Time) error {
	// Guarding on status keeps the pending -> approved/rejected transition
	// one-way even under concurrent admin clicks.
	query := `UPDATE credit_requests SET status = $2, decided_at = $3 WHERE id = $1 AND status = $4`
	tag, err := r.db.Exec(ctx, query, id, status, decidedAt, domain.RequestPending)
	if err != nil {
		return fmt.Errorf("updating credit request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PgCreditRequestRepository) ListPending(ctx context.Context) ([]domain.CreditRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM credit_requests WHERE status = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, domain.RequestPending)
	if err != nil {
		return nil, fmt.Errorf("listing pending credit requests: %w", err)
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (r *PgCreditRequestRepository) ListAll(ctx context.Context) ([]domain.CreditRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM credit_requests ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing credit requests: %w", err)
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (r *PgCreditRequestRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM credit_requests WHERE status = $1`
	if err := r.db.QueryRow(ctx, query, domain.RequestPending).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting pending credit requests: %w", err)
	}
	return count, nil
}

func scanRequests(rows pgx.Rows) ([]domain.CreditRequest, error) {
	var reqs []domain.CreditRequest
	for rows.Next() {
		var req domain.CreditRequest
		if err := rows.Scan(
			&req.ID, &req.UserID, &req.Amount, &req.Reason, &req.Status,
			&req.MessageID, &req.CreatedAt, &req.DecidedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning credit request row: %w", err)
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}
