package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/coworking-desk-booking/internal/model"
)

// DeskRepo provides data access to the desks table.  Every query is
// tenant-scoped: a desk belonging to another tenant behaves exactly
// like a desk that does not exist.  Desks are soft-deleted by
// clearing is_active and are never removed, so historical sessions
// keep a valid desk reference.
type DeskRepo struct {
	db *sql.DB
}

// NewDeskRepo constructs a DeskRepo with the given DB handle.
func NewDeskRepo(db *sql.DB) *DeskRepo { return &DeskRepo{db: db} }

const deskColumns = `id, tenant_id, name, hourly_rate_cents, is_active, created_at, updated_at`

func scanDesk(row interface{ Scan(...interface{}) error }, d *model.Desk) error {
	return row.Scan(&d.ID, &d.TenantID, &d.Name, &d.HourlyRateCents, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
}

// Create inserts a new desk and assigns the generated ID back to the
// struct.  Default fields (is_active, timestamps) are read back from
// the inserted row.  A name collision within the tenant yields
// ErrDeskNameExists (unique index on tenant_id + name + is_active).
func (r *DeskRepo) Create(ctx context.Context, d *model.Desk) error {
	const q = `INSERT INTO desks (tenant_id, name, hourly_rate_cents) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, d.TenantID, d.Name, d.HourlyRateCents)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrDeskNameExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	const sel = `SELECT ` + deskColumns + ` FROM desks WHERE id = ?`
	return scanDesk(r.db.QueryRowContext(ctx, sel, d.ID), d)
}

// GetActiveByIDAndTenant returns an active desk owned by the tenant.
// Absent, inactive and foreign desks all yield ErrDeskNotFound.
func (r *DeskRepo) GetActiveByIDAndTenant(ctx context.Context, tenantID, deskID uint64) (*model.Desk, error) {
	const q = `SELECT ` + deskColumns + ` FROM desks WHERE id = ? AND tenant_id = ? AND is_active = 1`
	var d model.Desk
	if err := scanDesk(r.db.QueryRowContext(ctx, q, deskID, tenantID), &d); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrDeskNotFound
		}
		return nil, err
	}
	return &d, nil
}

// LockTx acquires a row lock on the desk inside the caller's
// transaction via SELECT ... FOR UPDATE.  Concurrent session creation
// for the same desk serialises on this lock, which closes the
// check-then-insert race in the conflict check.  Returns
// ErrDeskNotFound when the desk is absent, inactive or foreign.
func (r *DeskRepo) LockTx(ctx context.Context, tx *sql.Tx, tenantID, deskID uint64) (*model.Desk, error) {
	const q = `SELECT ` + deskColumns + ` FROM desks WHERE id = ? AND tenant_id = ? AND is_active = 1 FOR UPDATE`
	var d model.Desk
	if err := scanDesk(tx.QueryRowContext(ctx, q, deskID, tenantID), &d); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrDeskNotFound
		}
		return nil, err
	}
	return &d, nil
}

// ListByTenant returns all active desks of a tenant ordered by name.
func (r *DeskRepo) ListByTenant(ctx context.Context, tenantID uint64) ([]*model.Desk, error) {
	const q = `SELECT ` + deskColumns + ` FROM desks WHERE tenant_id = ? AND is_active = 1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	desks := make([]*model.Desk, 0)
	for rows.Next() {
		var d model.Desk
		if err := scanDesk(rows, &d); err != nil {
			return nil, err
		}
		desks = append(desks, &d)
	}
	return desks, rows.Err()
}

// Update renames a desk and/or changes its hourly rate.  The change
// only applies to desks owned by the tenant; otherwise sql.ErrNoRows
// is returned so handlers can answer 404.
func (r *DeskRepo) Update(ctx context.Context, d *model.Desk) error {
	const q = `UPDATE desks SET name = ?, hourly_rate_cents = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND tenant_id = ? AND is_active = 1`
	res, err := r.db.ExecContext(ctx, q, d.Name, d.HourlyRateCents, d.ID, d.TenantID)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrDeskNameExists
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Deactivate soft-deletes a desk.  It refuses with ErrConflict while
// the desk still carries non-terminal sessions, since those would
// otherwise occupy a desk nobody can see.
func (r *DeskRepo) Deactivate(ctx context.Context, tenantID, deskID uint64) error {
	const check = `SELECT COUNT(*) FROM sessions
                   WHERE desk_id = ? AND tenant_id = ? AND is_deleted = 0
                     AND status IN ('PENDING','CONFIRMED')`
	var n int
	if err := r.db.QueryRowContext(ctx, check, deskID, tenantID).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	const q = `UPDATE desks SET is_active = 0, updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND tenant_id = ? AND is_active = 1`
	res, err := r.db.ExecContext(ctx, q, deskID, tenantID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
