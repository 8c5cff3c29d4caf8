package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coworking-desk-booking/internal/model"
	"github.com/iliyamo/coworking-desk-booking/internal/repository"
)

// catalogResp is the wire shape of a catalog entry.
type catalogResp struct {
	ID             uint64 `json:"id"`
	SKU            string `json:"sku"`
	Name           string `json:"name"`
	UnitPriceCents uint32 `json:"unit_price_cents"`
	IsActive       bool   `json:"is_active"`
}

func toCatalogResp(e *model.CatalogEntry) catalogResp {
	return catalogResp{ID: e.ID, SKU: e.SKU, Name: e.Name, UnitPriceCents: e.UnitPriceCents, IsActive: e.IsActive}
}

// CreateCatalogEntry handles POST /v1/catalog.  SKUs are upper-cased
// and unique per tenant among active entries; the pricing engine keys
// off them, so a tenant wanting the promotion must carry entries with
// the configured paid-hour and coffee SKUs.
func (h *OwnerHandler) CreateCatalogEntry(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		SKU            string `json:"sku"`
		Name           string `json:"name"`
		UnitPriceCents uint32 `json:"unit_price_cents"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	sku := strings.TrimSpace(body.SKU)
	name := strings.TrimSpace(body.Name)
	if sku == "" || name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sku and name are required"})
	}
	entry := &model.CatalogEntry{
		TenantID:       tenantID,
		SKU:            sku,
		Name:           name,
		UnitPriceCents: body.UnitPriceCents,
	}
	if err := h.Catalog.Create(c.Request().Context(), entry); err != nil {
		if errors.Is(err, repository.ErrSKUExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "sku already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create catalog entry"})
	}
	return c.JSON(http.StatusCreated, toCatalogResp(entry))
}

// ListCatalog handles GET /v1/catalog.
func (h *OwnerHandler) ListCatalog(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	entries, err := h.Catalog.ListByTenant(c.Request().Context(), tenantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	items := make([]catalogResp, 0, len(entries))
	for _, e := range entries {
		items = append(items, toCatalogResp(e))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateCatalogEntry handles PUT/PATCH /v1/catalog/:id.  Name and price
// are updatable; the SKU is immutable once assigned so that session
// item snapshots and the engine's classification stay coherent.
// Price changes never rewrite existing session items.
func (h *OwnerHandler) UpdateCatalogEntry(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Name           *string `json:"name"`
		UnitPriceCents *uint32 `json:"unit_price_cents"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	entries, err := h.Catalog.ResolveActiveByIDs(c.Request().Context(), tenantID, []uint64{id})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	entry, ok := entries[id]
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "catalog entry not found"})
	}
	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name cannot be empty"})
		}
		entry.Name = name
	}
	if body.UnitPriceCents != nil {
		entry.UnitPriceCents = *body.UnitPriceCents
	}
	if err := h.Catalog.Update(c.Request().Context(), entry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "catalog entry not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toCatalogResp(entry))
}

// DeactivateCatalogEntry handles DELETE /v1/catalog/:id.  Entries are
// soft-deleted; past session items keep their snapshots regardless.
func (h *OwnerHandler) DeactivateCatalogEntry(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Catalog.Deactivate(c.Request().Context(), tenantID, id); err != nil {
		if errors.Is(err, repository.ErrCatalogEntryNotFound) || errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "catalog entry not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deactivate failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
