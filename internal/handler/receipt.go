package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coworking-desk-booking/internal/repository"
	"github.com/iliyamo/coworking-desk-booking/internal/utils"
)

// ReceiptHandler serves public receipt lookups keyed by the session's
// UUID reference.  The reference is unguessable, which is the whole
// access control for these routes.
type ReceiptHandler struct {
	Sessions *repository.SessionRepo
}

func NewReceiptHandler(sessions *repository.SessionRepo) *ReceiptHandler {
	if sessions == nil {
		panic("nil repository passed to NewReceiptHandler")
	}
	return &ReceiptHandler{Sessions: sessions}
}

// GetReceipt handles GET /v1/receipts/:reference and returns the
// session with its priced line items as JSON.
func (h *ReceiptHandler) GetReceipt(c echo.Context) error {
	ref := strings.TrimSpace(c.Param("reference"))
	if ref == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reference is required"})
	}
	detail, err := h.Sessions.GetByReference(c.Request().Context(), ref)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "receipt not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch receipt"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": detail})
}

// GetReceiptPDF handles GET /v1/receipts/:reference/pdf and renders
// the same receipt as a downloadable PDF.
func (h *ReceiptHandler) GetReceiptPDF(c echo.Context) error {
	ref := strings.TrimSpace(c.Param("reference"))
	if ref == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reference is required"})
	}
	ctx := c.Request().Context()
	detail, err := h.Sessions.GetByReference(ctx, ref)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "receipt not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch receipt"})
	}
	spaceName, err := h.Sessions.TenantNameByReference(ctx, ref)
	if err != nil {
		spaceName = "" // header falls back to a generic title
	}
	pdf, filename, err := utils.SessionReceiptPDF(toReceipt(detail), spaceName)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "pdf generation failed"})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// toReceipt maps a stored session detail onto the renderer's input.
func toReceipt(det *repository.SessionDetail) *utils.Receipt {
	rec := &utils.Receipt{
		Reference:  det.Reference,
		DeskName:   det.DeskName,
		StartsAt:   det.StartsAt,
		EndsAt:     det.EndsAt,
		Status:     det.Status,
		TotalCents: det.TotalCents,
		Lines:      make([]utils.ReceiptLine, 0, len(det.Items)),
	}
	if det.CustomerName != nil {
		rec.GuestName = *det.CustomerName
	}
	for _, it := range det.Items {
		rec.Lines = append(rec.Lines, utils.ReceiptLine{
			Name:           it.Name,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		})
	}
	return rec
}
