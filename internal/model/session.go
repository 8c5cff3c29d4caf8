package model

import "time"

// Session status values.  PENDING and CONFIRMED are non-terminal: they
// occupy the desk's schedule and take part in conflict checks.
// COMPLETED and CANCELLED are terminal and never block new sessions.
const (
	SessionPending   = "PENDING"   // occupying now, unconfirmed
	SessionConfirmed = "CONFIRMED" // future-dated, reserved
	SessionCompleted = "COMPLETED" // concluded and settled
	SessionCancelled = "CANCELLED" // voided, excluded from conflicts
)

// NonTerminalStatuses lists the statuses that still hold the desk.
var NonTerminalStatuses = []string{SessionPending, SessionConfirmed}

// IsTerminalStatus reports whether a status frees the desk's schedule.
func IsTerminalStatus(s string) bool {
	return s == SessionCompleted || s == SessionCancelled
}

// Session is the reservation/billing record: a desk, a half-open time
// interval [StartsAt, EndsAt) and the priced line items purchased with
// it.  The interval's length is always derived from the paid-hour line
// quantity (one hour per unit), never set independently.  Sessions are
// created by the guest check-in flow or by staff as advance bookings,
// mutated only via status transitions, and soft-deleted at most.
//
// Fields:
//
//	ID            – primary key identifier.
//	TenantID      – tenant that owns the session.
//	DeskID        – desk occupied by the session.
//	Reference     – public UUID given to guests for receipt lookup.
//	Status        – lifecycle status (see constants above).
//	TotalCents    – sum of price × quantity over all lines.
//	CustomerName  – optional walk-in customer name.
//	CustomerPhone – optional phone for SMS notification.
//	StartsAt      – inclusive start of the occupancy window (UTC).
//	EndsAt        – exclusive end of the occupancy window (UTC).
//	IsDeleted     – soft-delete flag.
//	CreatedAt     – creation timestamp.
//	UpdatedAt     – last update timestamp.
type Session struct {
	ID            uint64    // sessions.id
	TenantID      uint64    // sessions.tenant_id
	DeskID        uint64    // sessions.desk_id
	Reference     string    // sessions.reference
	Status        string    // sessions.status
	TotalCents    uint32    // sessions.total_cents
	CustomerName  *string   // sessions.customer_name (nullable)
	CustomerPhone *string   // sessions.customer_phone (nullable)
	StartsAt      time.Time // sessions.starts_at
	EndsAt        time.Time // sessions.ends_at
	IsDeleted     bool      // sessions.is_deleted
	CreatedAt     time.Time // sessions.created_at
	UpdatedAt     time.Time // sessions.updated_at
}

// SessionItem is one priced line of a session.  SKU and Name are
// snapshots taken when the session was priced so that receipts stay
// correct across later catalog renames.  A zero UnitPriceCents marks
// the free tranche granted by the one-coffee-per-paid-hour promotion.
//
// Fields:
//
//	ID             – primary key identifier.
//	SessionID      – owning session.
//	CatalogEntryID – catalog entry the line was priced from.
//	SKU            – entry SKU at pricing time.
//	Name           – entry name at pricing time.
//	Quantity       – units charged on this line.
//	UnitPriceCents – price actually charged per unit (zero for free units).
//	CreatedAt      – creation timestamp.
type SessionItem struct {
	ID             uint64    // session_items.id
	SessionID      uint64    // session_items.session_id
	CatalogEntryID uint64    // session_items.catalog_entry_id
	SKU            string    // session_items.sku
	Name           string    // session_items.name
	Quantity       uint32    // session_items.quantity
	UnitPriceCents uint32    // session_items.unit_price_cents
	CreatedAt      time.Time // session_items.created_at
}
