package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coworking-desk-booking/internal/handler"
	"github.com/iliyamo/coworking-desk-booking/internal/middleware"
)

// RegisterOwner registers OWNER-scoped endpoints under /v1.
// All routes require a valid JWT and OWNER role.
func RegisterOwner(e *echo.Echo, o *handler.OwnerHandler, jwtSecret string) {
	// Attach middlewares at group construction time for clarity.
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OWNER"),
	)

	// ---- Desks ----
	g.POST("/desks", o.CreateDesk)
	g.GET("/desks", o.ListDesks)
	g.PUT("/desks/:id", o.UpdateDesk)
	g.PATCH("/desks/:id", o.UpdateDesk) // allow partial updates via PATCH as well
	g.DELETE("/desks/:id", o.DeactivateDesk)
	// Printable QR code carrying the desk's public check-in URL.
	g.GET("/desks/:id/qr.png", o.DeskQR)

	// ---- Catalog ----
	g.POST("/catalog", o.CreateCatalogEntry)
	g.GET("/catalog", o.ListCatalog)
	g.PUT("/catalog/:id", o.UpdateCatalogEntry)
	g.PATCH("/catalog/:id", o.UpdateCatalogEntry)
	g.DELETE("/catalog/:id", o.DeactivateCatalogEntry)
}
