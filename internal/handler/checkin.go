package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coworking-desk-booking/internal/engine"
	"github.com/iliyamo/coworking-desk-booking/internal/repository"
)

// CheckinHandler serves the unauthenticated guest flow reached by
// scanning a desk's QR code.  Guests never hold accounts: the QR code
// carries the tenant and desk ids, and the session reference returned
// here is their only handle on the booking afterwards.
type CheckinHandler struct {
	Engine   *engine.Engine
	Desks    *repository.DeskRepo
	Sessions *repository.SessionRepo
}

// NewCheckinHandler constructs a CheckinHandler.  All dependencies must be non-nil.
func NewCheckinHandler(eng *engine.Engine, desks *repository.DeskRepo, sessions *repository.SessionRepo) *CheckinHandler {
	if eng == nil || desks == nil || sessions == nil {
		panic("nil dependency passed to NewCheckinHandler")
	}
	return &CheckinHandler{Engine: eng, Desks: desks, Sessions: sessions}
}

// pathIDs parses the :tenant_id and :desk_id route parameters.
func pathIDs(c echo.Context) (tenantID, deskID uint64, ok bool) {
	tenantID, err := strconv.ParseUint(c.Param("tenant_id"), 10, 64)
	if err != nil || tenantID == 0 {
		return 0, 0, false
	}
	deskID, err = strconv.ParseUint(c.Param("desk_id"), 10, 64)
	if err != nil || deskID == 0 {
		return 0, 0, false
	}
	return tenantID, deskID, true
}

// Checkin handles POST /v1/checkin/:tenant_id/:desk_id.  The desk is
// fixed by the scanned QR code and the session always starts now;
// any start_at in the body is ignored.  A wrong or stale QR code
// (unknown tenant/desk pair, deactivated desk) reads as not found.
func (h *CheckinHandler) Checkin(c echo.Context) error {
	tenantID, deskID, ok := pathIDs(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check-in link"})
	}
	var req createSessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	res, err := h.Engine.CreateSession(c.Request().Context(), tenantID, deskID, req.Items, "", req.Customer)
	if err != nil {
		return engineErrToHTTP(c, err)
	}
	notifyCreated(res, tenantID)
	return c.JSON(http.StatusCreated, toCreatedResp(res))
}

// busyWindow is one occupied slot on a desk's schedule, stripped of
// anything that could identify the guest holding it.
type busyWindow struct {
	StartsAt string `json:"starts_at"`
	EndsAt   string `json:"ends_at"`
	Status   string `json:"status"`
}

// Availability handles GET /v1/checkin/:tenant_id/:desk_id.  It lets a
// guest (or the check-in page) see the desk's upcoming busy windows
// before committing.  Customer details are deliberately omitted.
func (h *CheckinHandler) Availability(c echo.Context) error {
	tenantID, deskID, ok := pathIDs(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check-in link"})
	}
	ctx := c.Request().Context()
	desk, err := h.Desks.GetActiveByIDAndTenant(ctx, tenantID, deskID)
	if err != nil {
		if errors.Is(err, repository.ErrDeskNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "desk not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	sessions, err := h.Sessions.ListUpcomingByDesk(ctx, tenantID, deskID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load schedule"})
	}
	busy := make([]busyWindow, 0, len(sessions))
	for _, s := range sessions {
		busy = append(busy, busyWindow{StartsAt: s.StartsAt, EndsAt: s.EndsAt, Status: s.Status})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"desk": echo.Map{
			"id":                desk.ID,
			"name":              desk.Name,
			"hourly_rate_cents": desk.HourlyRateCents,
		},
		"busy": busy,
	})
}
