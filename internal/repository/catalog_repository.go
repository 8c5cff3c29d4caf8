package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/coworking-desk-booking/internal/model"
)

// CatalogRepo provides data access to the catalog_entries table.
// Lookups are tenant-scoped and only return active entries; an entry
// of another tenant or a soft-deleted one is simply absent from
// results, which the engine treats as a hard validation failure.
type CatalogRepo struct {
	db *sql.DB
}

// NewCatalogRepo constructs a CatalogRepo with the given DB handle.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

const catalogColumns = `id, tenant_id, sku, name, unit_price_cents, is_active, created_at, updated_at`

func scanEntry(row interface{ Scan(...interface{}) error }, e *model.CatalogEntry) error {
	return row.Scan(&e.ID, &e.TenantID, &e.SKU, &e.Name, &e.UnitPriceCents, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
}

// Create inserts a new catalog entry.  The SKU is upper-cased and
// trimmed before insert; a duplicate active SKU for the tenant yields
// ErrSKUExists (unique index on tenant_id + sku + is_active).
func (r *CatalogRepo) Create(ctx context.Context, e *model.CatalogEntry) error {
	e.SKU = strings.ToUpper(strings.TrimSpace(e.SKU))
	const q = `INSERT INTO catalog_entries (tenant_id, sku, name, unit_price_cents) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, e.TenantID, e.SKU, e.Name, e.UnitPriceCents)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrSKUExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	const sel = `SELECT ` + catalogColumns + ` FROM catalog_entries WHERE id = ?`
	return scanEntry(r.db.QueryRowContext(ctx, sel, e.ID), e)
}

// ResolveActiveByIDs resolves a set of entry ids to active,
// tenant-owned catalog entries.  Ids that do not resolve (unknown,
// soft-deleted, foreign tenant) are missing from the returned map;
// it is the caller's job to treat absence as invalid input.
func (r *CatalogRepo) ResolveActiveByIDs(ctx context.Context, tenantID uint64, ids []uint64) (map[uint64]*model.CatalogEntry, error) {
	out := make(map[uint64]*model.CatalogEntry, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, tenantID)
	for _, id := range ids {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	q := `SELECT ` + catalogColumns + ` FROM catalog_entries
          WHERE tenant_id = ? AND is_active = 1 AND id IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var e model.CatalogEntry
		if err := scanEntry(rows, &e); err != nil {
			return nil, err
		}
		out[e.ID] = &e
	}
	return out, rows.Err()
}

// ListByTenant returns all active entries of a tenant ordered by SKU.
func (r *CatalogRepo) ListByTenant(ctx context.Context, tenantID uint64) ([]*model.CatalogEntry, error) {
	const q = `SELECT ` + catalogColumns + ` FROM catalog_entries WHERE tenant_id = ? AND is_active = 1 ORDER BY sku`
	rows, err := r.db.QueryContext(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]*model.CatalogEntry, 0)
	for rows.Next() {
		var e model.CatalogEntry
		if err := scanEntry(rows, &e); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Update changes an entry's name and/or price.  SKUs are immutable
// once assigned: clients depend on them for classification, and the
// engine's name fallback exists precisely because renames happen.
func (r *CatalogRepo) Update(ctx context.Context, e *model.CatalogEntry) error {
	const q = `UPDATE catalog_entries SET name = ?, unit_price_cents = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND tenant_id = ? AND is_active = 1`
	res, err := r.db.ExecContext(ctx, q, e.Name, e.UnitPriceCents, e.ID, e.TenantID)
	if err != nil {
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

// Deactivate soft-deletes a catalog entry.
func (r *CatalogRepo) Deactivate(ctx context.Context, tenantID, entryID uint64) error {
	const q = `UPDATE catalog_entries SET is_active = 0, updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND tenant_id = ? AND is_active = 1`
	res, err := r.db.ExecContext(ctx, q, entryID, tenantID)
	if err != nil {
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
