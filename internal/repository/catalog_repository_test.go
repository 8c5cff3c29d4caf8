package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/coworking-desk-booking/internal/model"
)

func TestCatalogCreateDuplicateSKU(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := NewCatalogRepo(db)

	mock.ExpectExec("INSERT INTO catalog_entries").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'COFFEE' for key 'uq_catalog_sku'"})

	entry := &model.CatalogEntry{TenantID: 1, SKU: "coffee", Name: "Flat White", UnitPriceCents: 500}
	err = repo.Create(context.Background(), entry)
	assert.ErrorIs(t, err, ErrSKUExists)
}

func TestDeskCreateDuplicateName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := NewDeskRepo(db)

	mock.ExpectExec("INSERT INTO desks").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'Window Desk' for key 'uq_desk_name'"})

	err = repo.Create(context.Background(), &model.Desk{TenantID: 1, Name: "Window Desk", HourlyRateCents: 2000})
	assert.ErrorIs(t, err, ErrDeskNameExists)
}

func TestDuplicateDetectionIsTyped(t *testing.T) {
	// A different MySQL error number, or a non-MySQL error whose text
	// happens to contain "1062", must not be mistaken for a duplicate.
	assert.True(t, isDuplicateEntry(&mysql.MySQLError{Number: 1062}))
	assert.False(t, isDuplicateEntry(&mysql.MySQLError{Number: 1213}))
	assert.False(t, isDuplicateEntry(errors.New("row 1062 rejected")))
	assert.False(t, isDuplicateEntry(nil))
}
