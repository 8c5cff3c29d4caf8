// Package engine implements the desk session scheduling and pricing
// core: it turns a cart of line items into a conflict-checked time
// reservation on a desk, applies the one-free-coffee-per-paid-hour
// promotion and classifies the resulting session's lifecycle status.
package engine

import "errors"

// Every sentinel below is a client-caused, non-retryable rejection.
// Handlers translate them to HTTP 4xx responses; none represents a
// system fault and no partial session is ever persisted when one is
// returned.

// ErrEmptyCart is returned when, after dropping non-positive
// quantities, no line items remain.
var ErrEmptyCart = errors.New("cart is empty")

// ErrInvalidItem is returned when a requested catalog entry id does
// not resolve for the tenant (unknown, soft-deleted, foreign).
var ErrInvalidItem = errors.New("invalid catalog item")

// ErrMissingHourUnit is returned when the cart contains no paid-hour
// units; a session cannot exist without at least one paid hour.
var ErrMissingHourUnit = errors.New("cart has no paid-hour unit")

// ErrQuantityTooLarge is returned when a line quantity, the summed
// paid-hour quantity or the resulting total exceeds the engine's
// caps.  The cart arrives from the unauthenticated check-in endpoint,
// so quantities are bounded before any arithmetic is done with them.
var ErrQuantityTooLarge = errors.New("item quantity exceeds the allowed maximum")

// ErrInvalidStartTime is returned when a requested start timestamp
// cannot be parsed as RFC3339.
var ErrInvalidStartTime = errors.New("invalid start time")

// ErrStartInPast is returned when the requested start lies more than
// five minutes before now.
var ErrStartInPast = errors.New("start time is in the past")

// ErrSlotUnavailable is returned when the derived interval overlaps
// an existing non-terminal session on the desk.
var ErrSlotUnavailable = errors.New("desk is not available for the requested slot")
