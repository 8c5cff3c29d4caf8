package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/coworking-desk-booking/internal/model"
)

func newMockRepo(t *testing.T) (*SessionRepo, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSessionRepo(db), mock, db
}

func TestHasOverlapTx(t *testing.T) {
	repo, mock, db := newMockRepo(t)
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	t.Run("conflict found", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT COUNT").
			WithArgs(uint64(1), uint64(2), end, start).
			WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

		tx, err := db.BeginTx(context.Background(), nil)
		require.NoError(t, err)
		defer tx.Rollback()

		got, err := repo.HasOverlapTx(context.Background(), tx, 1, 2, start, end, 0)
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("no conflict", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT COUNT").
			WithArgs(uint64(1), uint64(2), end, start).
			WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))

		tx, err := db.BeginTx(context.Background(), nil)
		require.NoError(t, err)
		defer tx.Rollback()

		got, err := repo.HasOverlapTx(context.Background(), tx, 1, 2, start, end, 0)
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("exclude id widens the query", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT COUNT").
			WithArgs(uint64(1), uint64(2), end, start, uint64(55)).
			WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))

		tx, err := db.BeginTx(context.Background(), nil)
		require.NoError(t, err)
		defer tx.Rollback()

		got, err := repo.HasOverlapTx(context.Background(), tx, 1, 2, start, end, 55)
		require.NoError(t, err)
		assert.False(t, got)
	})
}

func TestTransitionStatus(t *testing.T) {
	t.Run("updates existing session", func(t *testing.T) {
		repo, mock, _ := newMockRepo(t)
		mock.ExpectQuery("SELECT COUNT").
			WithArgs(uint64(9), uint64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
		mock.ExpectExec("UPDATE sessions SET status").
			WithArgs(model.SessionCancelled, uint64(9), uint64(1), model.SessionCancelled).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.TransitionStatus(context.Background(), 1, 9, model.SessionCancelled)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cancel is idempotent", func(t *testing.T) {
		repo, mock, _ := newMockRepo(t)
		mock.ExpectQuery("SELECT COUNT").
			WithArgs(uint64(9), uint64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
		// Already CANCELLED: the status guard matches zero rows, which
		// is still success for the caller.
		mock.ExpectExec("UPDATE sessions SET status").
			WithArgs(model.SessionCancelled, uint64(9), uint64(1), model.SessionCancelled).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.TransitionStatus(context.Background(), 1, 9, model.SessionCancelled)
		assert.NoError(t, err)
	})

	t.Run("unknown session", func(t *testing.T) {
		repo, mock, _ := newMockRepo(t)
		mock.ExpectQuery("SELECT COUNT").
			WithArgs(uint64(404), uint64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))

		err := repo.TransitionStatus(context.Background(), 1, 404, model.SessionCompleted)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestCreateItemsBulkTxEmpty(t *testing.T) {
	repo, mock, db := newMockRepo(t)
	mock.ExpectBegin()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()

	// No statement is expected for an empty batch.
	assert.NoError(t, repo.CreateItemsBulkTx(context.Background(), tx, nil))
}
