package handler

import (
	"database/sql" // sql is imported for sentinel errors like sql.ErrNoRows
	"errors"       // errors.Is comparisons against repository sentinels
	"fmt"          // building the check-in URL encoded in QR codes
	"net/http"     // http provides status code constants
	"strconv"      // strconv parses string identifiers to numeric types
	"strings"      // strings offers trimming utilities

	"github.com/labstack/echo/v4" // echo is the web framework used for handlers

	"github.com/iliyamo/coworking-desk-booking/internal/config"
	"github.com/iliyamo/coworking-desk-booking/internal/model"
	"github.com/iliyamo/coworking-desk-booking/internal/repository"
	"github.com/iliyamo/coworking-desk-booking/internal/utils"
)

// OwnerHandler bundles the repositories owners need to manage their
// space: desks and the consumable catalog.  All methods assume JWT
// authentication and OWNER role validation have already run.
type OwnerHandler struct {
	Cfg     config.Config
	Desks   *repository.DeskRepo
	Catalog *repository.CatalogRepo
}

// NewOwnerHandler constructs a new OwnerHandler and panics if any dependency is nil.
func NewOwnerHandler(cfg config.Config, desks *repository.DeskRepo, catalog *repository.CatalogRepo) *OwnerHandler {
	if desks == nil || catalog == nil {
		panic("nil repository passed to NewOwnerHandler")
	}
	return &OwnerHandler{Cfg: cfg, Desks: desks, Catalog: catalog}
}

// deskResp is the wire shape of a desk.
type deskResp struct {
	ID              uint64 `json:"id"`
	Name            string `json:"name"`
	HourlyRateCents uint32 `json:"hourly_rate_cents"`
	IsActive        bool   `json:"is_active"`
}

func toDeskResp(d *model.Desk) deskResp {
	return deskResp{ID: d.ID, Name: d.Name, HourlyRateCents: d.HourlyRateCents, IsActive: d.IsActive}
}

// CreateDesk handles POST /v1/desks.
func (h *OwnerHandler) CreateDesk(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Name            string `json:"name"`
		HourlyRateCents uint32 `json:"hourly_rate_cents"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if body.HourlyRateCents == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "hourly_rate_cents must be positive"})
	}
	desk := &model.Desk{
		TenantID:        tenantID,
		Name:            name,
		HourlyRateCents: body.HourlyRateCents,
	}
	if err := h.Desks.Create(c.Request().Context(), desk); err != nil {
		if errors.Is(err, repository.ErrDeskNameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "desk name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create desk"})
	}
	return c.JSON(http.StatusCreated, toDeskResp(desk))
}

// ListDesks handles GET /v1/desks and returns all active desks of the tenant.
func (h *OwnerHandler) ListDesks(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	desks, err := h.Desks.ListByTenant(c.Request().Context(), tenantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	items := make([]deskResp, 0, len(desks))
	for _, d := range desks {
		items = append(items, toDeskResp(d))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateDesk handles PUT/PATCH /v1/desks/:id.  Name and hourly rate are
// updatable; rate changes affect only sessions created afterwards, as
// existing sessions snapshot their prices at creation time.
func (h *OwnerHandler) UpdateDesk(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Name            *string `json:"name"`
		HourlyRateCents *uint32 `json:"hourly_rate_cents"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	desk, err := h.Desks.GetActiveByIDAndTenant(c.Request().Context(), tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrDeskNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "desk not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name cannot be empty"})
		}
		desk.Name = name
	}
	if body.HourlyRateCents != nil {
		if *body.HourlyRateCents == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "hourly_rate_cents must be positive"})
		}
		desk.HourlyRateCents = *body.HourlyRateCents
	}
	if err := h.Desks.Update(c.Request().Context(), desk); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "desk not found"})
		}
		if errors.Is(err, repository.ErrDeskNameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "desk name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toDeskResp(desk))
}

// DeactivateDesk handles DELETE /v1/desks/:id.  Desks with scheduled
// (non-terminal) sessions cannot be deactivated; the repository
// reports that case as ErrConflict.
func (h *OwnerHandler) DeactivateDesk(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Desks.Deactivate(c.Request().Context(), tenantID, id); err != nil {
		if errors.Is(err, repository.ErrDeskNotFound) || errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "desk not found"})
		}
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "desk has scheduled sessions"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deactivate failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// DeskQR handles GET /v1/desks/:id/qr.png.  It renders a PNG QR code
// containing the public check-in URL for the desk, suitable for
// printing and taping to the desk itself.  Guests scanning it land on
// the unauthenticated check-in endpoint.
func (h *OwnerHandler) DeskQR(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if _, err := h.Desks.GetActiveByIDAndTenant(c.Request().Context(), tenantID, id); err != nil {
		if errors.Is(err, repository.ErrDeskNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "desk not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	size := 256
	if s := c.QueryParam("size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 64 && n <= 1024 {
			size = n
		}
	}
	url := fmt.Sprintf("%s/v1/checkin/%d/%d", strings.TrimRight(h.Cfg.PublicBaseURL, "/"), tenantID, id)
	png, err := utils.DeskQRPNG(url, size)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "qr generation failed"})
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
