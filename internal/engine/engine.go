package engine

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/iliyamo/coworking-desk-booking/internal/model"
	"github.com/iliyamo/coworking-desk-booking/internal/repository"
)

// StartTolerance is the window around "now" within which a requested
// start is snapped to now.  It absorbs clock-skew-sized deltas so an
// "almost now" check-in is not misclassified as a future booking, and
// it is also the threshold beyond which a session counts as
// future-dated (CONFIRMED rather than PENDING).
const StartTolerance = 5 * time.Minute

// Caps on client-supplied quantities.  The check-in endpoint is
// public, so every number in the cart is untrusted; without these
// bounds a large quantity could wrap the 32-bit bill or push the
// derived end time past the start.
const (
	// MaxLineQuantity bounds a single cart line.
	MaxLineQuantity = 1000
	// MaxSessionHours bounds the summed paid-hour quantity and hence
	// the session window length.
	MaxSessionHours = 24
)

// CartLine is one requested line of a cart: a catalog entry id and a
// quantity.  Lines with non-positive quantities are dropped before
// validation.
type CartLine struct {
	ItemID   uint64 `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// Customer carries the optional walk-in contact details attached to a
// session.
type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Result is the outcome of a successful CreateSession call: the
// persisted session record, its priced line items and the desk it
// occupies.
type Result struct {
	Session repository.SessionRecord
	Items   []repository.SessionItemRecord
	Desk    *model.Desk
}

// Engine orchestrates desk lookup, catalog resolution, conflict
// checking, promotional allocation, pricing and persistence for
// session creation.  It is stateless and safe for concurrent use; the
// only shared state is the database, and the one race in the design
// (conflict check vs. insert) is closed by running both inside a
// transaction that locks the desk row.
type Engine struct {
	db       *sql.DB
	desks    *repository.DeskRepo
	catalog  *repository.CatalogRepo
	sessions *repository.SessionRepo
	classify Classifier

	// now is injectable for deterministic tests.
	now func() time.Time
}

// New constructs an Engine.  All repositories must be non-nil.
func New(db *sql.DB, desks *repository.DeskRepo, catalog *repository.CatalogRepo, sessions *repository.SessionRepo, classify Classifier) *Engine {
	if db == nil || desks == nil || catalog == nil || sessions == nil {
		panic("nil dependency passed to engine.New")
	}
	return &Engine{
		db:       db,
		desks:    desks,
		catalog:  catalog,
		sessions: sessions,
		classify: classify,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the engine's clock.  Intended for tests.
func (e *Engine) WithNow(now func() time.Time) *Engine {
	e.now = now
	return e
}

// CreateSession validates the cart, derives the occupancy window from
// the paid-hour quantity, checks the desk's schedule for conflicts,
// applies the one-free-coffee-per-paid-hour promotion, prices every
// line and persists the session atomically.
//
// startAt is an optional RFC3339 timestamp; empty means "now".  The
// returned errors are the package sentinels for client faults; any
// other error is a system fault.  A MySQL deadlock during the
// transaction is retried once: the failed transaction rolled back
// before any durable write, so the retry cannot duplicate a session.
func (e *Engine) CreateSession(ctx context.Context, tenantID, deskID uint64, lines []CartLine, startAt string, cust Customer) (*Result, error) {
	now := e.now().UTC().Truncate(time.Second)

	// 1. Cart validation: drop non-positive quantities first.
	cart := make([]CartLine, 0, len(lines))
	for _, l := range lines {
		if l.Quantity > MaxLineQuantity {
			return nil, ErrQuantityTooLarge
		}
		if l.Quantity > 0 && l.ItemID != 0 {
			cart = append(cart, l)
		}
	}
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}

	// Desk must exist for the tenant before anything else; the row is
	// locked again inside the transaction below.
	desk, err := e.desks.GetActiveByIDAndTenant(ctx, tenantID, deskID)
	if err != nil {
		return nil, err
	}

	// Resolve all referenced catalog entries.  A requested id absent
	// from the result map is a hard validation failure.
	ids := make([]uint64, 0, len(cart))
	seen := make(map[uint64]struct{}, len(cart))
	for _, l := range cart {
		if _, ok := seen[l.ItemID]; !ok {
			seen[l.ItemID] = struct{}{}
			ids = append(ids, l.ItemID)
		}
	}
	entries, err := e.catalog.ResolveActiveByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	for _, l := range cart {
		if _, ok := entries[l.ItemID]; !ok {
			return nil, ErrInvalidItem
		}
	}

	// 2. Unit classification.
	var (
		hoursQty    int
		coffeeQty   int
		hourEntry   *model.CatalogEntry
		coffeeEntry *model.CatalogEntry
		otherLines  []CartLine
	)
	for _, l := range cart {
		entry := entries[l.ItemID]
		switch {
		case e.classify.IsHourUnit(entry):
			hoursQty += l.Quantity
			if hourEntry == nil {
				hourEntry = entry
			}
		case e.classify.IsCoffee(entry):
			coffeeQty += l.Quantity
			if coffeeEntry == nil {
				coffeeEntry = entry
			}
		default:
			otherLines = append(otherLines, l)
		}
	}
	if hoursQty <= 0 {
		return nil, ErrMissingHourUnit
	}
	if hoursQty > MaxSessionHours {
		return nil, ErrQuantityTooLarge
	}

	// 3. Start-time resolution.
	start, err := resolveStart(startAt, now)
	if err != nil {
		return nil, err
	}

	// 4. Duration derivation: the only place the window length is
	// computed, always hoursQty whole hours.
	end := start.Add(time.Duration(hoursQty) * time.Hour)

	// 6–8. Promotional allocation and line pricing.  The paid-hour
	// line is priced from the desk's hourly rate; the catalog entry's
	// own price is not consulted for it.
	freeUnits, paidUnits := AllocateFreeUnits(hoursQty, coffeeQty)
	items := make([]repository.SessionItemRecord, 0, len(cart)+1)
	items = append(items, repository.SessionItemRecord{
		CatalogEntryID: hourEntry.ID,
		SKU:            hourEntry.SKU,
		Name:           hourEntry.Name,
		Quantity:       uint32(hoursQty),
		UnitPriceCents: desk.HourlyRateCents,
	})
	if freeUnits > 0 {
		items = append(items, repository.SessionItemRecord{
			CatalogEntryID: coffeeEntry.ID,
			SKU:            coffeeEntry.SKU,
			Name:           coffeeEntry.Name,
			Quantity:       uint32(freeUnits),
			UnitPriceCents: 0,
		})
	}
	if paidUnits > 0 {
		items = append(items, repository.SessionItemRecord{
			CatalogEntryID: coffeeEntry.ID,
			SKU:            coffeeEntry.SKU,
			Name:           coffeeEntry.Name,
			Quantity:       uint32(paidUnits),
			UnitPriceCents: coffeeEntry.UnitPriceCents,
		})
	}
	for _, l := range otherLines {
		entry := entries[l.ItemID]
		items = append(items, repository.SessionItemRecord{
			CatalogEntryID: entry.ID,
			SKU:            entry.SKU,
			Name:           entry.Name,
			Quantity:       uint32(l.Quantity),
			UnitPriceCents: entry.UnitPriceCents,
		})
	}
	// The bill is summed in 64 bits: quantities are capped above, but
	// unit prices are 32-bit and a wide sum keeps the stored uint32
	// total exact or rejected, never wrapped.
	var total64 uint64
	for _, it := range items {
		total64 += uint64(it.Quantity) * uint64(it.UnitPriceCents)
	}
	if total64 > math.MaxUint32 {
		return nil, ErrQuantityTooLarge
	}
	total := uint32(total64)

	// 9. Status classification: anything beyond the tolerance window
	// is a future booking.
	status := model.SessionPending
	if start.After(now.Add(StartTolerance)) {
		status = model.SessionConfirmed
	}

	rec := repository.SessionRecord{
		TenantID:   tenantID,
		DeskID:     deskID,
		Reference:  uuid.NewString(),
		Status:     status,
		TotalCents: total,
		StartsAt:   start,
		EndsAt:     end,
	}
	if name := strings.TrimSpace(cust.Name); name != "" {
		rec.CustomerName = &name
	}
	if phone := strings.TrimSpace(cust.Phone); phone != "" {
		rec.CustomerPhone = &phone
	}

	// 5 + 10. Conflict check and insert, atomically.  One transparent
	// retry on deadlock only: that failure mode rolls the transaction
	// back before any write is durable, so retrying cannot duplicate.
	// Ambiguous failures (e.g. a lost connection mid-commit) are
	// surfaced as-is.
	res, err := e.createInTx(ctx, tenantID, deskID, &rec, items)
	if isDeadlock(err) {
		res, err = e.createInTx(ctx, tenantID, deskID, &rec, items)
	}
	return res, err
}

// createInTx performs one attempt at the lock/check/insert sequence.
func (e *Engine) createInTx(ctx context.Context, tenantID, deskID uint64, rec *repository.SessionRecord, items []repository.SessionItemRecord) (*Result, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Serialize per desk: concurrent creators queue on this row lock,
	// so the overlap check below stays valid until commit.
	desk, err := e.desks.LockTx(ctx, tx, tenantID, deskID)
	if err != nil {
		return nil, err
	}
	conflict, err := e.sessions.HasOverlapTx(ctx, tx, tenantID, deskID, rec.StartsAt, rec.EndsAt, 0)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrSlotUnavailable
	}
	if err := e.sessions.CreateTx(ctx, tx, rec); err != nil {
		return nil, err
	}
	for i := range items {
		items[i].SessionID = rec.ID
	}
	if err := e.sessions.CreateItemsBulkTx(ctx, tx, items); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return &Result{Session: *rec, Items: items, Desk: desk}, nil
}

// resolveStart turns the optional requested start into the session's
// actual start.  Empty means now.  A parseable timestamp more than
// StartTolerance in the past is rejected; within the tolerance window
// of now (either side) it snaps to now; otherwise it is used verbatim.
func resolveStart(startAt string, now time.Time) (time.Time, error) {
	startAt = strings.TrimSpace(startAt)
	if startAt == "" {
		return now, nil
	}
	t, err := time.Parse(time.RFC3339, startAt)
	if err != nil {
		return time.Time{}, ErrInvalidStartTime
	}
	t = t.UTC().Truncate(time.Second)
	delta := t.Sub(now)
	if delta < -StartTolerance {
		return time.Time{}, ErrStartInPast
	}
	if delta <= StartTolerance {
		return now, nil
	}
	return t, nil
}

// isDeadlock reports whether the error is MySQL error 1213 (deadlock
// found when trying to get lock; transaction rolled back).
func isDeadlock(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1213
}
