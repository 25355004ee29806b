package postgres

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbs-0/bomber/internal/protection/domain"
)

func newRepoWithMock(t *testing.T) (domain.ProtectedNumberRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPgProtectedNumberRepository(mockPool, logger), mockPool
}

func TestIsProtected(t *testing.T) {
	repo, mockPool := newRepoWithMock(t)

	mockPool.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM protected_numbers WHERE phone = $1)")).
		WithArgs("5551234567").
		WillReturnRows(mockPool.NewRows([]string{"exists"}).AddRow(true))

	protected, err := repo.IsProtected(context.Background(), "5551234567")
	require.NoError(t, err)
	assert.True(t, protected)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestProtect_Duplicate(t *testing.T) {
	repo, mockPool := newRepoWithMock(t)

	entry := &domain.ProtectedNumber{
		ID:        uuid.New(),
		Phone:     "5551234567",
		CreatedAt: time.Now(),
	}
	mockPool.ExpectExec("INSERT INTO protected_numbers").
		WithArgs(entry.ID, entry.Phone, entry.UserID, entry.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Protect(context.Background(), entry)
	assert.ErrorIs(t, err, domain.ErrAlreadyProtected)
}

func TestUnprotect_NotProtected(t *testing.T) {
	repo, mockPool := newRepoWithMock(t)

	mockPool.ExpectExec(regexp.QuoteMeta("DELETE FROM protected_numbers WHERE phone = $1")).
		WithArgs("5551234567").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Unprotect(context.Background(), "5551234567")
	assert.ErrorIs(t, err, domain.ErrNotProtected)
}

func TestUnprotect_Success(t *testing.T) {
	repo, mockPool := newRepoWithMock(t)

	mockPool.ExpectExec(regexp.QuoteMeta("DELETE FROM protected_numbers WHERE phone = $1")).
		WithArgs("5551234567").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.Unprotect(context.Background(), "5551234567"))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestList(t *testing.T) {
	repo, mockPool := newRepoWithMock(t)

	now := time.Now()
	rows := mockPool.NewRows([]string{"id", "phone", "user_id", "created_at"}).
		AddRow(uuid.New(), "5551234567", uuid.NullUUID{UUID: uuid.New(), Valid: true}, now).
		AddRow(uuid.New(), "5559876543", uuid.NullUUID{}, now)

	mockPool.ExpectQuery("SELECT id, phone, user_id, created_at FROM protected_numbers").
		WillReturnRows(rows)

	entries, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].UserID.Valid)
	assert.False(t, entries[1].UserID.Valid)
}
