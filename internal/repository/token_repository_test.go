package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenRepo(t *testing.T) (*TokenRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTokenRepo(db), mock
}

func TestValidateRefresh(t *testing.T) {
	const hash = "a1b2c3"
	future := time.Now().UTC().Add(24 * time.Hour)
	past := time.Now().UTC().Add(-time.Hour)

	t.Run("live token resolves to its user", func(t *testing.T) {
		repo, mock := newTokenRepo(t)
		mock.ExpectQuery("FROM refresh_tokens").WithArgs(hash).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
				AddRow(7, future, nil))

		userID, err := repo.ValidateRefresh(context.Background(), hash)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), userID)
	})

	t.Run("revoked token looks never-issued", func(t *testing.T) {
		repo, mock := newTokenRepo(t)
		mock.ExpectQuery("FROM refresh_tokens").WithArgs(hash).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
				AddRow(7, future, time.Now().UTC()))

		_, err := repo.ValidateRefresh(context.Background(), hash)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("expired token looks never-issued", func(t *testing.T) {
		repo, mock := newTokenRepo(t)
		mock.ExpectQuery("FROM refresh_tokens").WithArgs(hash).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
				AddRow(7, past, nil))

		_, err := repo.ValidateRefresh(context.Background(), hash)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestRevokeAllForUser(t *testing.T) {
	repo, mock := newTokenRepo(t)
	mock.ExpectExec("UPDATE refresh_tokens").WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := repo.RevokeAllForUser(context.Background(), uint64(7))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
