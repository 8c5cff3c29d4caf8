package engine

import (
	"strings"

	"github.com/iliyamo/coworking-desk-booking/internal/model"
)

// Fallback display names for catalog rows that predate stable SKU
// assignment.  Matching by SKU is primary; these literals are only
// consulted when the SKU does not match.
const (
	legacyHourName   = "extra hour"
	legacyCoffeeName = "coffee"
)

// Classifier recognises the two catalog entries the engine treats
// specially: the paid-hour unit, whose quantity determines the
// session's duration, and the promotional coffee eligible for free
// units.  SKUs are tenant-configurable; the normalized-name fallback
// keeps historical data working across renames.
type Classifier struct {
	HourSKU   string
	CoffeeSKU string
}

// NewClassifier normalises the configured SKUs once so per-entry
// checks are plain string compares.
func NewClassifier(hourSKU, coffeeSKU string) Classifier {
	return Classifier{
		HourSKU:   normalizeSKU(hourSKU),
		CoffeeSKU: normalizeSKU(coffeeSKU),
	}
}

// IsHourUnit reports whether the entry is the paid-hour unit.
func (cl Classifier) IsHourUnit(e *model.CatalogEntry) bool {
	if normalizeSKU(e.SKU) == cl.HourSKU && cl.HourSKU != "" {
		return true
	}
	return normalizeName(e.Name) == legacyHourName
}

// IsCoffee reports whether the entry is the promotional consumable.
func (cl Classifier) IsCoffee(e *model.CatalogEntry) bool {
	if normalizeSKU(e.SKU) == cl.CoffeeSKU && cl.CoffeeSKU != "" {
		return true
	}
	return normalizeName(e.Name) == legacyCoffeeName
}

func normalizeSKU(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
