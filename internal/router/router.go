package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // the Echo web framework handles routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/coworking-desk-booking/internal/config"
	"github.com/iliyamo/coworking-desk-booking/internal/handler"
	"github.com/iliyamo/coworking-desk-booking/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers and monitoring to verify the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware.  Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	// Registration creates the coworking space together with its OWNER.
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token and returns a new pair.
	g.POST("/refresh", a.Refresh)
	// Logout accepts a refresh_token in the body; no JWT required.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("OWNER", "STAFF"))
	auth.GET("/me", a.Me)
	// Logout-all needs a valid access token rather than a refresh
	// token, so it sits behind the JWT middleware.
	auth.POST("/auth/logout-all", a.LogoutAll)

	// Only owners may add staff accounts to their tenant.
	staff := e.Group(
		"/v1/staff",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OWNER"),
	)
	staff.POST("", a.CreateStaff)
}

// RegisterPublic registers the unauthenticated guest surface: QR
// check-in, desk availability and receipt lookup.  These routes carry
// the Redis token-bucket rate limiter because they are reachable
// without credentials, and availability responses are cached briefly
// to absorb page-load bursts.
func RegisterPublic(e *echo.Echo, ch *handler.CheckinHandler, rh *handler.ReceiptHandler, rdb *redis.Client) {
	rl := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// Guest check-in fixes the desk from the scanned QR code.
	e.POST("/v1/checkin/:tenant_id/:desk_id", ch.Checkin, rl)
	// Upcoming busy windows for the desk, sanitized of guest details.
	e.GET("/v1/checkin/:tenant_id/:desk_id", ch.Availability, rl, cache)

	// Receipt lookup is keyed by the unguessable session reference.
	e.GET("/v1/receipts/:reference", rh.GetReceipt, rl)
	e.GET("/v1/receipts/:reference/pdf", rh.GetReceiptPDF, rl)
}
