package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/coworking-desk-booking/internal/model"
)

func entry(sku, name string) *model.CatalogEntry {
	return &model.CatalogEntry{SKU: sku, Name: name}
}

func TestClassifierBySKU(t *testing.T) {
	cl := NewClassifier("EXTRA-HOUR", "COFFEE")

	assert.True(t, cl.IsHourUnit(entry("EXTRA-HOUR", "Desk Hour")))
	assert.True(t, cl.IsCoffee(entry("COFFEE", "Flat White")))
	assert.False(t, cl.IsHourUnit(entry("COFFEE", "Flat White")))
	assert.False(t, cl.IsCoffee(entry("EXTRA-HOUR", "Desk Hour")))
	assert.False(t, cl.IsHourUnit(entry("CROISSANT", "Croissant")))
	assert.False(t, cl.IsCoffee(entry("CROISSANT", "Croissant")))
}

// SKU comparison ignores case and surrounding whitespace on both the
// configured value and the stored entry.
func TestClassifierSKUNormalization(t *testing.T) {
	cl := NewClassifier(" extra-hour ", "coffee")

	assert.True(t, cl.IsHourUnit(entry("Extra-Hour", "whatever")))
	assert.True(t, cl.IsCoffee(entry("  COFFEE  ", "whatever")))
}

// Entries that predate SKU assignment are still recognised through
// their display names.
func TestClassifierNameFallback(t *testing.T) {
	cl := NewClassifier("EXTRA-HOUR", "COFFEE")

	assert.True(t, cl.IsHourUnit(entry("LEGACY-1", "Extra Hour")))
	assert.True(t, cl.IsHourUnit(entry("", "  extra hour ")))
	assert.True(t, cl.IsCoffee(entry("LEGACY-2", "Coffee")))
	assert.False(t, cl.IsCoffee(entry("LEGACY-3", "Iced Coffee")), "fallback matches the exact name only")
}

// A rename away from the legacy names must not break classification as
// long as the SKU is in place; conversely a renamed entry with a
// foreign SKU stops matching.  Renames are the reason SKU matching is
// primary.
func TestClassifierSurvivesRename(t *testing.T) {
	cl := NewClassifier("EXTRA-HOUR", "COFFEE")

	assert.True(t, cl.IsHourUnit(entry("EXTRA-HOUR", "Hot Desk Hour (renamed)")))
	assert.True(t, cl.IsCoffee(entry("COFFEE", "House Espresso")))
	assert.False(t, cl.IsCoffee(entry("ESPRESSO-2", "House Espresso")))
}

// An empty configured SKU must never classify entries with empty SKUs
// as privileged.
func TestClassifierEmptyConfig(t *testing.T) {
	cl := NewClassifier("", "")

	assert.False(t, cl.IsHourUnit(entry("", "Pastry")))
	assert.False(t, cl.IsCoffee(entry("", "Pastry")))
	// Name fallback still applies.
	assert.True(t, cl.IsHourUnit(entry("", "extra hour")))
	assert.True(t, cl.IsCoffee(entry("", "coffee")))
}
