package router

// This file registers the staff-facing session routes.  Both owners
// and staff may create and manage sessions; the guest-facing creation
// path lives on the public router instead.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coworking-desk-booking/internal/handler"
	"github.com/iliyamo/coworking-desk-booking/internal/middleware"
)

// RegisterSessions registers session management endpoints under /v1.
// All routes require a valid JWT and either the OWNER or STAFF role.
func RegisterSessions(e *echo.Echo, s *handler.SessionHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OWNER", "STAFF"),
	)

	// Create a session at the counter or as an advance booking.
	g.POST("/sessions", s.CreateSession)
	// Full history, or upcoming only with ?upcoming=true.
	g.GET("/sessions", s.ListSessions)
	g.GET("/sessions/:id", s.GetSession)
	// Lifecycle transitions; cancellation is idempotent.
	g.PATCH("/sessions/:id/status", s.UpdateSessionStatus)
	g.DELETE("/sessions/:id", s.CancelSession)
	// Live elapsed-hours coffee credit, advisory only.
	g.GET("/sessions/:id/coffee-credit", s.CoffeeCredit)
}
