package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// SessionRepo provides CRUD operations for sessions and their line
// items.  A session reserves one desk for a half-open interval
// [starts_at, ends_at) and groups the priced lines bought with it in
// the session_items table.  All timestamp fields are stored in UTC.
//
// The overlap check and the insert that depends on it are exposed as
// Tx variants so the engine can run both inside one transaction,
// together with a FOR UPDATE lock on the desk row (see DeskRepo.LockTx).
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo returns a new SessionRepo bound to the given database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *SessionRepo) DB() *sql.DB { return r.db }

// SessionRecord mirrors the schema of the sessions table.  It is used
// internally by the repository when constructing or scanning rows.
// Business logic should use the model.Session type instead.
type SessionRecord struct {
	ID            uint64
	TenantID      uint64
	DeskID        uint64
	Reference     string
	Status        string
	TotalCents    uint32
	CustomerName  *string
	CustomerPhone *string
	StartsAt      time.Time
	EndsAt        time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SessionItemRecord mirrors the session_items table.  Only fields
// needed for insertion are exposed.
type SessionItemRecord struct {
	SessionID      uint64
	CatalogEntryID uint64
	SKU            string
	Name           string
	Quantity       uint32
	UnitPriceCents uint32
}

// HasOverlapTx reports whether any non-deleted, non-terminal session
// on the same tenant+desk overlaps the candidate interval under
// half-open semantics: existing.starts_at < candidateEnd AND
// existing.ends_at > candidateStart.  A session ending exactly when
// another begins therefore does not conflict.  Pass excludeID = 0 for
// creation; a non-zero excludeID lets an update overlap with itself.
// The query runs inside the caller's transaction so the result stays
// valid until commit.
func (r *SessionRepo) HasOverlapTx(ctx context.Context, tx *sql.Tx, tenantID, deskID uint64, start, end time.Time, excludeID uint64) (bool, error) {
	q := `SELECT COUNT(*) FROM sessions
          WHERE tenant_id = ? AND desk_id = ? AND is_deleted = 0
            AND status IN ('PENDING','CONFIRMED')
            AND starts_at < ? AND ends_at > ?`
	args := []interface{}{tenantID, deskID, end, start}
	if excludeID != 0 {
		q += ` AND id <> ?`
		args = append(args, excludeID)
	}
	var n int
	if err := tx.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateTx inserts a new session within the scope of an existing
// transaction.  It populates the generated ID and DB-default fields
// on the provided record.  The caller must commit or rollback the
// transaction.
func (r *SessionRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *SessionRecord) error {
	const q = `INSERT INTO sessions (tenant_id, desk_id, reference, status, total_cents, customer_name, customer_phone, starts_at, ends_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		s.TenantID, s.DeskID, s.Reference, s.Status, s.TotalCents,
		s.CustomerName, s.CustomerPhone, s.StartsAt, s.EndsAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	const sel = `SELECT id, tenant_id, desk_id, reference, status, total_cents, customer_name, customer_phone, starts_at, ends_at, created_at, updated_at
                 FROM sessions WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, s.ID).Scan(
		&s.ID, &s.TenantID, &s.DeskID, &s.Reference, &s.Status, &s.TotalCents,
		&s.CustomerName, &s.CustomerPhone, &s.StartsAt, &s.EndsAt, &s.CreatedAt, &s.UpdatedAt,
	)
}

// CreateItemsBulkTx inserts the session's line items in a single
// statement.  The caller must supply the session ID in each record.
// Passing an empty slice has no effect and returns nil.
func (r *SessionRepo) CreateItemsBulkTx(ctx context.Context, tx *sql.Tx, items []SessionItemRecord) error {
	if len(items) == 0 {
		return nil
	}
	query := `INSERT INTO session_items (session_id, catalog_entry_id, sku, name, quantity, unit_price_cents) VALUES `
	args := make([]interface{}, 0, len(items)*6)
	for i, it := range items {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?)"
		args = append(args, it.SessionID, it.CatalogEntryID, it.SKU, it.Name, it.Quantity, it.UnitPriceCents)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// SessionItemDetail is one priced line as rendered to clients.
type SessionItemDetail struct {
	CatalogEntryID uint64 `json:"catalog_entry_id"`
	SKU            string `json:"sku"`
	Name           string `json:"name"`
	Quantity       uint32 `json:"quantity"`
	UnitPriceCents uint32 `json:"unit_price_cents"`
}

// SessionDetail encapsulates a session along with its desk name and
// line items.  It is returned by the read methods for display.
type SessionDetail struct {
	ID            uint64              `json:"id"`
	DeskID        uint64              `json:"desk_id"`
	DeskName      string              `json:"desk_name"`
	Reference     string              `json:"reference"`
	Status        string              `json:"status"`
	TotalCents    uint32              `json:"total_cents"`
	CustomerName  *string             `json:"customer_name,omitempty"`
	CustomerPhone *string             `json:"customer_phone,omitempty"`
	StartsAt      string              `json:"starts_at"`
	EndsAt        string              `json:"ends_at"`
	CreatedAt     string              `json:"created_at"`
	Items         []SessionItemDetail `json:"items"`
}

const sessionDetailSelect = `SELECT s.id, s.desk_id, d.name, s.reference, s.status, s.total_cents,
                                    s.customer_name, s.customer_phone, s.starts_at, s.ends_at, s.created_at
                             FROM sessions s
                             JOIN desks d ON d.id = s.desk_id`

func scanSessionDetail(rows interface{ Scan(...interface{}) error }) (*SessionDetail, error) {
	var (
		det        SessionDetail
		name       sql.NullString
		phone      sql.NullString
		start, end time.Time
		created    time.Time
	)
	if err := rows.Scan(&det.ID, &det.DeskID, &det.DeskName, &det.Reference, &det.Status, &det.TotalCents,
		&name, &phone, &start, &end, &created); err != nil {
		return nil, err
	}
	if name.Valid {
		n := name.String
		det.CustomerName = &n
	}
	if phone.Valid {
		p := phone.String
		det.CustomerPhone = &p
	}
	det.StartsAt = start.UTC().Format(time.RFC3339)
	det.EndsAt = end.UTC().Format(time.RFC3339)
	det.CreatedAt = created.UTC().Format(time.RFC3339)
	det.Items = []SessionItemDetail{}
	return &det, nil
}

// populateItems loads the line items for the given details in a
// single IN query and attaches them in insertion order.
func (r *SessionRepo) populateItems(ctx context.Context, details []*SessionDetail) error {
	if len(details) == 0 {
		return nil
	}
	index := make(map[uint64]*SessionDetail, len(details))
	ids := make([]interface{}, 0, len(details))
	placeholders := make([]string, 0, len(details))
	for _, d := range details {
		index[d.ID] = d
		ids = append(ids, d.ID)
		placeholders = append(placeholders, "?")
	}
	q := `SELECT session_id, catalog_entry_id, sku, name, quantity, unit_price_cents
          FROM session_items
          WHERE session_id IN (` + strings.Join(placeholders, ",") + `)
          ORDER BY session_id, id`
	rows, err := r.db.QueryContext(ctx, q, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var sid uint64
		var it SessionItemDetail
		if err := rows.Scan(&sid, &it.CatalogEntryID, &it.SKU, &it.Name, &it.Quantity, &it.UnitPriceCents); err != nil {
			return err
		}
		if d, ok := index[sid]; ok {
			d.Items = append(d.Items, it)
		}
	}
	return rows.Err()
}

// GetByIDAndTenant returns a single session with items for the tenant.
// When no matching session exists, sql.ErrNoRows is returned.
func (r *SessionRepo) GetByIDAndTenant(ctx context.Context, tenantID, sessionID uint64) (*SessionDetail, error) {
	const q = sessionDetailSelect + ` WHERE s.id = ? AND s.tenant_id = ? AND s.is_deleted = 0`
	det, err := scanSessionDetail(r.db.QueryRowContext(ctx, q, sessionID, tenantID))
	if err != nil {
		return nil, err
	}
	if err := r.populateItems(ctx, []*SessionDetail{det}); err != nil {
		return nil, err
	}
	return det, nil
}

// GetByReference returns a session with items looked up by its public
// UUID reference.  The reference is unguessable, so this lookup backs
// the unauthenticated receipt endpoint.
func (r *SessionRepo) GetByReference(ctx context.Context, reference string) (*SessionDetail, error) {
	const q = sessionDetailSelect + ` WHERE s.reference = ? AND s.is_deleted = 0`
	det, err := scanSessionDetail(r.db.QueryRowContext(ctx, q, reference))
	if err != nil {
		return nil, err
	}
	if err := r.populateItems(ctx, []*SessionDetail{det}); err != nil {
		return nil, err
	}
	return det, nil
}

// TenantNameByReference returns the display name of the coworking
// space that owns the referenced session.  Used as the header line on
// public receipts, where no tenant id is available.
func (r *SessionRepo) TenantNameByReference(ctx context.Context, reference string) (string, error) {
	const q = `SELECT t.name FROM sessions s
               JOIN tenants t ON t.id = s.tenant_id
               WHERE s.reference = ? AND s.is_deleted = 0`
	var name string
	err := r.db.QueryRowContext(ctx, q, reference).Scan(&name)
	return name, err
}

func (r *SessionRepo) queryDetails(ctx context.Context, q string, args ...interface{}) ([]*SessionDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]*SessionDetail, 0)
	for rows.Next() {
		det, err := scanSessionDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, det)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.populateItems(ctx, details); err != nil {
		return nil, err
	}
	return details, nil
}

// ListByTenant returns all non-deleted sessions of a tenant with
// items, newest first.
func (r *SessionRepo) ListByTenant(ctx context.Context, tenantID uint64) ([]*SessionDetail, error) {
	const q = sessionDetailSelect + `
        WHERE s.tenant_id = ? AND s.is_deleted = 0
        ORDER BY s.created_at DESC`
	return r.queryDetails(ctx, q, tenantID)
}

// ListUpcoming returns the tenant's non-terminal sessions that start
// in the future, ordered by start time ascending.  Reads are not
// transactionally linked to writes; slight staleness only affects
// display, never the conflict invariant.
func (r *SessionRepo) ListUpcoming(ctx context.Context, tenantID uint64) ([]*SessionDetail, error) {
	const q = sessionDetailSelect + `
        WHERE s.tenant_id = ? AND s.is_deleted = 0
          AND s.status IN ('PENDING','CONFIRMED')
          AND s.starts_at > UTC_TIMESTAMP()
        ORDER BY s.starts_at ASC`
	return r.queryDetails(ctx, q, tenantID)
}

// ListUpcomingByDesk returns the occupied windows of one desk that
// have not ended yet.  It backs the public availability endpoint, so
// only the windows and statuses are meaningful to callers.
func (r *SessionRepo) ListUpcomingByDesk(ctx context.Context, tenantID, deskID uint64) ([]*SessionDetail, error) {
	const q = sessionDetailSelect + `
        WHERE s.tenant_id = ? AND s.desk_id = ? AND s.is_deleted = 0
          AND s.status IN ('PENDING','CONFIRMED')
          AND s.ends_at > UTC_TIMESTAMP()
        ORDER BY s.starts_at ASC`
	return r.queryDetails(ctx, q, tenantID, deskID)
}

// TransitionStatus sets a session's status.  The status machine is
// deliberately permissive: any status may be set from any status by
// an authorized caller, and this method is the single place a future
// stricter machine would hook into.  Setting the status a session
// already has is not an error, which makes cancellation idempotent.
// Returns sql.ErrNoRows when the session does not exist for the
// tenant.
func (r *SessionRepo) TransitionStatus(ctx context.Context, tenantID, sessionID uint64, status string) error {
	const check = `SELECT COUNT(*) FROM sessions WHERE id = ? AND tenant_id = ? AND is_deleted = 0`
	var n int
	if err := r.db.QueryRowContext(ctx, check, sessionID, tenantID).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	const q = `UPDATE sessions SET status = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND tenant_id = ? AND is_deleted = 0 AND status <> ?`
	_, err := r.db.ExecContext(ctx, q, status, sessionID, tenantID, status)
	return err
}
