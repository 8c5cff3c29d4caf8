package engine

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/coworking-desk-booking/internal/repository"
)

const (
	testTenant = uint64(42)
	testDesk   = uint64(7)
	hourItemID = uint64(10)
	coffeeID   = uint64(11)
)

var testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	eng := New(db,
		repository.NewDeskRepo(db),
		repository.NewCatalogRepo(db),
		repository.NewSessionRepo(db),
		NewClassifier("EXTRA-HOUR", "COFFEE"),
	).WithNow(func() time.Time { return testNow })
	return eng, mock
}

func deskRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "tenant_id", "name", "hourly_rate_cents", "is_active", "created_at", "updated_at"}).
		AddRow(testDesk, testTenant, "Window Desk", 2000, true, testNow, testNow)
}

func catalogRows(withHour, withCoffee bool) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "tenant_id", "sku", "name", "unit_price_cents", "is_active", "created_at", "updated_at"})
	if withHour {
		rows.AddRow(hourItemID, testTenant, "EXTRA-HOUR", "Desk Hour", 1500, true, testNow, testNow)
	}
	if withCoffee {
		rows.AddRow(coffeeID, testTenant, "COFFEE", "Flat White", 500, true, testNow, testNow)
	}
	return rows
}

// expectCreateTx queues the full lock/check/insert transaction for a
// session covering [start, end).  The select-back row echoes the
// window so the returned record matches what was stored.
func expectCreateTx(mock sqlmock.Sqlmock, status string, total uint32, start, end time.Time) {
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(deskRows())
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec("INSERT INTO sessions").
		WillReturnResult(sqlmock.NewResult(99, 1))
	mock.ExpectQuery("FROM sessions WHERE id").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "tenant_id", "desk_id", "reference", "status", "total_cents",
			"customer_name", "customer_phone", "starts_at", "ends_at", "created_at", "updated_at",
		}).AddRow(99, testTenant, testDesk, "ref-uuid", status, total, nil, nil, start, end, testNow, testNow))
	mock.ExpectExec("INSERT INTO session_items").
		WillReturnResult(sqlmock.NewResult(1, 3))
	mock.ExpectCommit()
}

// Two paid hours and three coffees: two coffees ride free on the
// promotion, one is charged at catalog price, and the hour line is
// priced from the desk's rate rather than the catalog's.
func TestCreateSessionPricing(t *testing.T) {
	eng, mock := newTestEngine(t)

	mock.ExpectQuery("FROM desks").WillReturnRows(deskRows())
	mock.ExpectQuery("FROM catalog_entries").WillReturnRows(catalogRows(true, true))
	expectCreateTx(mock, "PENDING", 4500, testNow, testNow.Add(2*time.Hour))

	res, err := eng.CreateSession(context.Background(), testTenant, testDesk,
		[]CartLine{{ItemID: hourItemID, Quantity: 2}, {ItemID: coffeeID, Quantity: 3}},
		"", Customer{Name: "Ada"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, res.Items, 3)

	hour := res.Items[0]
	assert.Equal(t, "EXTRA-HOUR", hour.SKU)
	assert.Equal(t, uint32(2), hour.Quantity)
	assert.Equal(t, uint32(2000), hour.UnitPriceCents, "hour line uses the desk rate")

	free := res.Items[1]
	assert.Equal(t, "COFFEE", free.SKU)
	assert.Equal(t, uint32(2), free.Quantity)
	assert.Equal(t, uint32(0), free.UnitPriceCents)

	paid := res.Items[2]
	assert.Equal(t, "COFFEE", paid.SKU)
	assert.Equal(t, uint32(1), paid.Quantity)
	assert.Equal(t, uint32(500), paid.UnitPriceCents)

	assert.Equal(t, uint32(2*2000+500), res.Session.TotalCents)
	assert.Equal(t, testNow, res.Session.StartsAt)
	assert.Equal(t, testNow.Add(2*time.Hour), res.Session.EndsAt, "window length comes from the hour quantity")
	assert.Equal(t, "PENDING", res.Session.Status, "immediate start is not a future booking")
}

func TestCreateSessionFutureBookingConfirmed(t *testing.T) {
	eng, mock := newTestEngine(t)

	mock.ExpectQuery("FROM desks").WillReturnRows(deskRows())
	mock.ExpectQuery("FROM catalog_entries").WillReturnRows(catalogRows(true, false))
	start := testNow.Add(3 * time.Hour)
	expectCreateTx(mock, "CONFIRMED", 4000, start, start.Add(2*time.Hour))
	res, err := eng.CreateSession(context.Background(), testTenant, testDesk,
		[]CartLine{{ItemID: hourItemID, Quantity: 2}},
		start.Format(time.RFC3339), Customer{})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, "CONFIRMED", res.Session.Status)
	assert.Equal(t, start, res.Session.StartsAt)
}

// A start a couple of minutes ago is inside the tolerance window and
// snaps to now instead of being rejected.
func TestCreateSessionStartSnapsToNow(t *testing.T) {
	eng, mock := newTestEngine(t)

	mock.ExpectQuery("FROM desks").WillReturnRows(deskRows())
	mock.ExpectQuery("FROM catalog_entries").WillReturnRows(catalogRows(true, false))
	expectCreateTx(mock, "PENDING", 2000, testNow, testNow.Add(time.Hour))

	res, err := eng.CreateSession(context.Background(), testTenant, testDesk,
		[]CartLine{{ItemID: hourItemID, Quantity: 1}},
		testNow.Add(-2*time.Minute).Format(time.RFC3339), Customer{})
	require.NoError(t, err)

	assert.Equal(t, testNow, res.Session.StartsAt)
	assert.Equal(t, "PENDING", res.Session.Status)
}

func TestCreateSessionStartTooFarInPast(t *testing.T) {
	eng, mock := newTestEngine(t)

	mock.ExpectQuery("FROM desks").WillReturnRows(deskRows())
	mock.ExpectQuery("FROM catalog_entries").WillReturnRows(catalogRows(true, false))

	_, err := eng.CreateSession(context.Background(), testTenant, testDesk,
		[]CartLine{{ItemID: hourItemID, Quantity: 1}},
		testNow.Add(-10*time.Minute).Format(time.RFC3339), Customer{})
	assert.ErrorIs(t, err, ErrStartInPast)
}

func TestCreateSessionInvalidStartFormat(t *testing.T) {
	eng, mock := newTestEngine(t)

	mock.ExpectQuery("FROM desks").WillReturnRows(deskRows())
	mock.ExpectQuery("FROM catalog_entries").WillReturnRows(catalogRows(true, false))

	_, err := eng.CreateSession(context.Background(), testTenant, testDesk,
		[]CartLine{{ItemID: hourItemID, Quantity: 1}},
		"tomorrow at nine", Customer{})
	assert.ErrorIs(t, err, ErrInvalidStartTime)
}

func TestCreateSessionSlotConflict(t *testing.T) {
	eng, mock := newTestEngine(t)

	mock.ExpectQuery("FROM desks").WillReturnRows(deskRows())
	mock.ExpectQuery("FROM catalog_entries").WillReturnRows(catalogRows(true, false))
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(deskRows())
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectRollback()

	_, err := eng.CreateSession(context.Background(), testTenant, testDesk,
		[]CartLine{{ItemID: hourItemID, Quantity: 1}}, "", Customer{})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A deadlock rolls the transaction back before anything durable is
// written, so the engine retries the whole sequence exactly once.
func TestCreateSessionRetriesOnDeadlock(t *testing.T) {
	eng, mock := newTestEngine(t)

	mock.ExpectQuery("FROM desks").WillReturnRows(deskRows())
	mock.ExpectQuery("FROM catalog_entries").WillReturnRows(catalogRows(true, false))

	// First attempt deadlocks at the conflict check.
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(deskRows())
	mock.ExpectQuery("SELECT COUNT").
		WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"})
	mock.ExpectRollback()

	// Second attempt succeeds.
	expectCreateTx(mock, "PENDING", 2000, testNow, testNow.Add(time.Hour))

	res, err := eng.CreateSession(context.Background(), testTenant, testDesk,
		[]CartLine{{ItemID: hourItemID, Quantity: 1}}, "", Customer{})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, uint64(99), res.Session.ID)
}

// Any other database failure surfaces as-is without a second attempt.
func TestCreateSessionDoesNotRetryUnknownErrors(t *testing.T) {
	eng, mock := newTestEngine(t)

	mock.ExpectQuery("FROM desks").WillReturnRows(deskRows())
	mock.ExpectQuery("FROM catalog_entries").WillReturnRows(catalogRows(true, false))
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(deskRows())
	mock.ExpectQuery("SELECT COUNT").
		WillReturnError(&mysql.MySQLError{Number: 2013, Message: "Lost connection to MySQL server during query"})
	mock.ExpectRollback()

	_, err := eng.CreateSession(context.Background(), testTenant, testDesk,
		[]CartLine{{ItemID: hourItemID, Quantity: 1}}, "", Customer{})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSessionEmptyCart(t *testing.T) {
	eng, _ := newTestEngine(t)

	_, err := eng.CreateSession(context.Background(), testTenant, testDesk, nil, "", Customer{})
	assert.ErrorIs(t, err, ErrEmptyCart)

	// Lines with non-positive quantities are dropped first, so a cart
	// of zeroes is empty too.
	_, err = eng.CreateSession(context.Background(), testTenant, testDesk,
		[]CartLine{{ItemID: hourItemID, Quantity: 0}, {ItemID: coffeeID, Quantity: -1}}, "", Customer{})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCreateSessionRejectsCoffeeOnlyCart(t *testing.T) {
	eng, mock := newTestEngine(t)

	mock.ExpectQuery("FROM desks").WillReturnRows(deskRows())
	mock.ExpectQuery("FROM catalog_entries").WillReturnRows(catalogRows(false, true))

	_, err := eng.CreateSession(context.Background(), testTenant, testDesk,
		[]CartLine{{ItemID: coffeeID, Quantity: 2}}, "", Customer{})
	assert.ErrorIs(t, err, ErrMissingHourUnit)
}

func TestCreateSessionUnknownItem(t *testing.T) {
	eng, mock := newTestEngine(t)

	mock.ExpectQuery("FROM desks").WillReturnRows(deskRows())
	// Resolution returns only the hour entry; id 999 stays unresolved.
	mock.ExpectQuery("FROM catalog_entries").WillReturnRows(catalogRows(true, false))

	_, err := eng.CreateSession(context.Background(), testTenant, testDesk,
		[]CartLine{{ItemID: hourItemID, Quantity: 1}, {ItemID: 999, Quantity: 1}}, "", Customer{})
	assert.ErrorIs(t, err, ErrInvalidItem)
}

func TestCreateSessionRejectsOversizedLineQuantity(t *testing.T) {
	eng, _ := newTestEngine(t)

	// The check-in route is public, so quantities are bounded before
	// any lookup or arithmetic.  A coffee quantity this large would
	// otherwise wrap the 32-bit total.
	_, err := eng.CreateSession(context.Background(), testTenant, testDesk,
		[]CartLine{{ItemID: hourItemID, Quantity: 1}, {ItemID: coffeeID, Quantity: 8589935}}, "", Customer{})
	assert.ErrorIs(t, err, ErrQuantityTooLarge)
}

func TestCreateSessionRejectsOversizedHourQuantity(t *testing.T) {
	eng, mock := newTestEngine(t)

	mock.ExpectQuery("FROM desks").WillReturnRows(deskRows())
	mock.ExpectQuery("FROM catalog_entries").WillReturnRows(catalogRows(true, false))

	// 25 paid hours passes the per-line cap but exceeds the session
	// window cap; without it the window could grow until the derived
	// end wraps past the start.
	_, err := eng.CreateSession(context.Background(), testTenant, testDesk,
		[]CartLine{{ItemID: hourItemID, Quantity: MaxSessionHours + 1}}, "", Customer{})
	assert.ErrorIs(t, err, ErrQuantityTooLarge)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSessionHourQuantitiesSumAcrossLines(t *testing.T) {
	eng, mock := newTestEngine(t)

	mock.ExpectQuery("FROM desks").WillReturnRows(deskRows())
	mock.ExpectQuery("FROM catalog_entries").WillReturnRows(catalogRows(true, false))

	// Duplicate hour lines are summed before the cap is applied, so
	// splitting the quantity across lines cannot evade it.
	_, err := eng.CreateSession(context.Background(), testTenant, testDesk,
		[]CartLine{{ItemID: hourItemID, Quantity: 20}, {ItemID: hourItemID, Quantity: 20}}, "", Customer{})
	assert.ErrorIs(t, err, ErrQuantityTooLarge)
}

func TestCreateSessionDeskNotFound(t *testing.T) {
	eng, mock := newTestEngine(t)

	mock.ExpectQuery("FROM desks").WillReturnRows(sqlmock.NewRows([]string{
		"id", "tenant_id", "name", "hourly_rate_cents", "is_active", "created_at", "updated_at"}))

	_, err := eng.CreateSession(context.Background(), testTenant, testDesk,
		[]CartLine{{ItemID: hourItemID, Quantity: 1}}, "", Customer{})
	assert.ErrorIs(t, err, repository.ErrDeskNotFound)
}

func TestResolveStart(t *testing.T) {
	now := testNow

	t.Run("empty means now", func(t *testing.T) {
		got, err := resolveStart("", now)
		require.NoError(t, err)
		assert.Equal(t, now, got)
	})
	t.Run("exactly at tolerance snaps", func(t *testing.T) {
		got, err := resolveStart(now.Add(StartTolerance).Format(time.RFC3339), now)
		require.NoError(t, err)
		assert.Equal(t, now, got)
	})
	t.Run("just beyond tolerance is kept", func(t *testing.T) {
		future := now.Add(StartTolerance + time.Second)
		got, err := resolveStart(future.Format(time.RFC3339), now)
		require.NoError(t, err)
		assert.Equal(t, future, got)
	})
	t.Run("just past the backward tolerance is rejected", func(t *testing.T) {
		_, err := resolveStart(now.Add(-StartTolerance-time.Second).Format(time.RFC3339), now)
		assert.ErrorIs(t, err, ErrStartInPast)
	})
}
