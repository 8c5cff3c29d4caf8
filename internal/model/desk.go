package model

import "time"

// Desk represents a physical, bookable workspace owned by a tenant.
// A desk carries the hourly rate that the pricing engine charges for
// the paid-hour line of a session.  Desks are never hard-deleted;
// deactivating one hides it from lookups while preserving history.
// This struct corresponds to a row in the `desks` table.
//
// Fields:
//
//	ID              – primary key identifier.
//	TenantID        – tenant that owns the desk.
//	Name            – display name, unique per tenant.
//	HourlyRateCents – price of one paid hour in currency minor units.
//	IsActive        – soft-delete flag; inactive desks are invisible.
//	CreatedAt       – timestamp when the desk was created.
//	UpdatedAt       – timestamp of last update.
type Desk struct {
	ID              uint64    // desks.id
	TenantID        uint64    // desks.tenant_id
	Name            string    // desks.name
	HourlyRateCents uint32    // desks.hourly_rate_cents
	IsActive        bool      // desks.is_active
	CreatedAt       time.Time // desks.created_at
	UpdatedAt       time.Time // desks.updated_at
}
