package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coworking-desk-booking/internal/engine"
	"github.com/iliyamo/coworking-desk-booking/internal/model"
	"github.com/iliyamo/coworking-desk-booking/internal/queue"
	"github.com/iliyamo/coworking-desk-booking/internal/repository"
	notifier "github.com/iliyamo/coworking-desk-booking/internal/service"
)

// SessionHandler exposes staff/owner session operations: advance
// bookings, listing, status transitions and the live coffee-credit
// view.  Creation is delegated entirely to the pricing engine; this
// layer only translates between HTTP and the engine's sentinels.
type SessionHandler struct {
	Engine   *engine.Engine
	Sessions *repository.SessionRepo
	Classify engine.Classifier
}

// NewSessionHandler constructs a SessionHandler.  All dependencies must be non-nil.
func NewSessionHandler(eng *engine.Engine, sessions *repository.SessionRepo, classify engine.Classifier) *SessionHandler {
	if eng == nil || sessions == nil {
		panic("nil dependency passed to NewSessionHandler")
	}
	return &SessionHandler{Engine: eng, Sessions: sessions, Classify: classify}
}

// createSessionReq is the request body shared by staff booking and
// guest check-in.  StartAt is ignored on the check-in route.
type createSessionReq struct {
	DeskID   uint64            `json:"desk_id"`
	Items    []engine.CartLine `json:"items"`
	StartAt  string            `json:"start_at"` // RFC3339, empty = now
	Customer engine.Customer   `json:"customer"`
}

// sessionCreatedResp is returned from both creation flows.
type sessionCreatedResp struct {
	ID         uint64            `json:"id"`
	Reference  string            `json:"reference"`
	DeskID     uint64            `json:"desk_id"`
	DeskName   string            `json:"desk_name"`
	Status     string            `json:"status"`
	TotalCents uint32            `json:"total_cents"`
	StartsAt   string            `json:"starts_at"`
	EndsAt     string            `json:"ends_at"`
	Items      []sessionItemResp `json:"items"`
}

type sessionItemResp struct {
	SKU            string `json:"sku"`
	Name           string `json:"name"`
	Quantity       uint32 `json:"quantity"`
	UnitPriceCents uint32 `json:"unit_price_cents"`
}

// toCreatedResp flattens an engine result for the wire.
func toCreatedResp(res *engine.Result) sessionCreatedResp {
	out := sessionCreatedResp{
		ID:         res.Session.ID,
		Reference:  res.Session.Reference,
		DeskID:     res.Session.DeskID,
		DeskName:   res.Desk.Name,
		Status:     res.Session.Status,
		TotalCents: res.Session.TotalCents,
		StartsAt:   res.Session.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:     res.Session.EndsAt.UTC().Format(time.RFC3339),
	}
	for _, it := range res.Items {
		out.Items = append(out.Items, sessionItemResp{
			SKU:            it.SKU,
			Name:           it.Name,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		})
	}
	return out
}

// engineErrToHTTP maps the engine's sentinel errors onto HTTP responses.
// Unknown errors fall through to a 500.
func engineErrToHTTP(c echo.Context, err error) error {
	switch {
	case errors.Is(err, engine.ErrEmptyCart):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cart is empty"})
	case errors.Is(err, engine.ErrInvalidItem):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cart references an unknown catalog item"})
	case errors.Is(err, engine.ErrMissingHourUnit):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cart must include at least one paid hour"})
	case errors.Is(err, engine.ErrQuantityTooLarge):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "item quantity exceeds the allowed maximum"})
	case errors.Is(err, engine.ErrInvalidStartTime):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_at must be RFC3339"})
	case errors.Is(err, engine.ErrStartInPast):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_at is in the past"})
	case errors.Is(err, engine.ErrSlotUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "desk is not available for the requested slot"})
	case errors.Is(err, repository.ErrDeskNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "desk not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create session"})
	}
}

// notifyCreated publishes the session-created event in the background.
// Publishing is best-effort: the session is already committed, and a
// broker outage must not fail the request.
func notifyCreated(res *engine.Result, tenantID uint64) {
	ev := queue.SessionCreatedEvent{
		SessionID:  res.Session.ID,
		TenantID:   tenantID,
		Reference:  res.Session.Reference,
		DeskID:     res.Session.DeskID,
		DeskName:   res.Desk.Name,
		Status:     res.Session.Status,
		StartsAt:   res.Session.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:     res.Session.EndsAt.UTC().Format(time.RFC3339),
		TotalCents: res.Session.TotalCents,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if res.Session.CustomerName != nil {
		ev.CustomerName = *res.Session.CustomerName
	}
	if res.Session.CustomerPhone != nil {
		ev.CustomerPhone = *res.Session.CustomerPhone
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = notifier.PublishSessionCreated(ctx, ev)
	}()
}

// CreateSession handles POST /v1/sessions: the staff booking flow.  An
// optional start_at turns the request into an advance booking; the
// engine decides PENDING vs CONFIRMED from how far in the future the
// start lies.
func (h *SessionHandler) CreateSession(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createSessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.DeskID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "desk_id is required"})
	}
	res, err := h.Engine.CreateSession(c.Request().Context(), tenantID, req.DeskID, req.Items, req.StartAt, req.Customer)
	if err != nil {
		return engineErrToHTTP(c, err)
	}
	notifyCreated(res, tenantID)
	return c.JSON(http.StatusCreated, toCreatedResp(res))
}

// ListSessions handles GET /v1/sessions.  With ?upcoming=true only
// future-starting, still-scheduled sessions are returned, soonest
// first; otherwise the full history, newest first.
func (h *SessionHandler) ListSessions(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	var (
		items []*repository.SessionDetail
		qerr  error
	)
	if strings.EqualFold(c.QueryParam("upcoming"), "true") {
		items, qerr = h.Sessions.ListUpcoming(ctx, tenantID)
	} else {
		items, qerr = h.Sessions.ListByTenant(ctx, tenantID)
	}
	if qerr != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load sessions"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetSession handles GET /v1/sessions/:id.
func (h *SessionHandler) GetSession(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	detail, err := h.Sessions.GetByIDAndTenant(c.Request().Context(), tenantID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch session"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": detail})
}

// UpdateSessionStatus handles PATCH /v1/sessions/:id/status.  Any of
// the four lifecycle statuses may be set; setting the current status
// again is a no-op success.
func (h *SessionHandler) UpdateSessionStatus(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	status := strings.ToUpper(strings.TrimSpace(body.Status))
	switch status {
	case model.SessionPending, model.SessionConfirmed, model.SessionCompleted, model.SessionCancelled:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	if err := h.Sessions.TransitionStatus(c.Request().Context(), tenantID, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "status update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": status})
}

// CancelSession handles DELETE /v1/sessions/:id.  Cancellation is a
// status transition to CANCELLED and therefore idempotent: cancelling
// an already-cancelled session succeeds without effect.
func (h *SessionHandler) CancelSession(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	if err := h.Sessions.TransitionStatus(c.Request().Context(), tenantID, id, model.SessionCancelled); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// CoffeeCredit handles GET /v1/sessions/:id/coffee-credit: the live
// elapsed-time view shown on dashboards.  The figure is advisory
// only: the bill was fixed at creation from the cart contents and
// this number never feeds back into it.
func (h *SessionHandler) CoffeeCredit(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	detail, err := h.Sessions.GetByIDAndTenant(c.Request().Context(), tenantID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch session"})
	}
	start, err := time.Parse(time.RFC3339, detail.StartsAt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "corrupt session timestamps"})
	}
	consumed := 0
	for _, it := range detail.Items {
		if h.Classify.IsCoffee(&model.CatalogEntry{SKU: it.SKU, Name: it.Name}) {
			consumed += int(it.Quantity)
		}
	}
	credit := engine.CoffeeCreditBalance(start, time.Now().UTC(), consumed)
	return c.JSON(http.StatusOK, echo.Map{
		"session_id":       id,
		"coffees_consumed": consumed,
		"credit":           credit,
	})
}
