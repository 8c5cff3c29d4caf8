// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and the pricing engine to distinguish between different
// failure scenarios. For example, ErrForbidden indicates that the
// current user is not authorized to perform an operation on a resource
// owned by another tenant, while ErrConflict signals that an operation
// cannot proceed due to existing dependent records (e.g. deactivating a
// desk that still has upcoming sessions).
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as deactivating a
// desk that still has non-terminal sessions. Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrDeskNotFound is returned when a desk does not exist, is
// inactive, or belongs to a different tenant. The three cases are
// deliberately indistinguishable to the caller.
var ErrDeskNotFound = errors.New("desk not found")

// ErrCatalogEntryNotFound is returned when a catalog entry lookup
// by id misses for the calling tenant.
var ErrCatalogEntryNotFound = errors.New("catalog entry not found")

// ErrSKUExists is returned when creating a catalog entry whose SKU
// is already taken by an active entry of the same tenant.
var ErrSKUExists = errors.New("sku already exists")

// ErrDeskNameExists is returned when creating or renaming a desk to a
// name already held by an active desk of the same tenant.
var ErrDeskNameExists = errors.New("desk name already exists")

// isDuplicateEntry reports whether err is MySQL error 1062, a
// duplicate row for a unique key.
func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
