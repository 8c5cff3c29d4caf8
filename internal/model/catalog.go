package model

import "time"

// CatalogEntry is a sellable unit inside a tenant's menu: the paid
// hour, a coffee, a tea, a pastry.  The SKU is the stable key used by
// the pricing engine to recognise the two privileged entries (the
// paid-hour unit and the promotional coffee); display names are
// mutable and only consulted as a legacy fallback.  Entries are
// soft-deleted via IsActive and never removed.
//
// Fields:
//
//	ID             – primary key identifier.
//	TenantID       – tenant that owns the entry.
//	SKU            – stable human-assigned code, unique per tenant while active.
//	Name           – display name shown on menus and receipts.
//	UnitPriceCents – price per unit in currency minor units.
//	IsActive       – soft-delete flag.
//	CreatedAt      – timestamp of creation.
//	UpdatedAt      – timestamp of last update.
type CatalogEntry struct {
	ID             uint64    // catalog_entries.id
	TenantID       uint64    // catalog_entries.tenant_id
	SKU            string    // catalog_entries.sku
	Name           string    // catalog_entries.name
	UnitPriceCents uint32    // catalog_entries.unit_price_cents
	IsActive       bool      // catalog_entries.is_active
	CreatedAt      time.Time // catalog_entries.created_at
	UpdatedAt      time.Time // catalog_entries.updated_at
}
