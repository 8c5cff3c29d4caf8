package handler // handler defines http handlers

import (
	"errors"  // errors provides sentinel values used by the context helpers
	"strconv" // strconv converts strings to numeric types

	"github.com/labstack/echo/v4" // echo defines request context types
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
	return contextUint(c, "user_id")
}

// getTenantID extracts the tenant_id placed in the context by the JWT
// middleware.  Every tenant-scoped handler resolves its tenant from
// here and never from the request body or URL.
func getTenantID(c echo.Context) (uint64, error) {
	return contextUint(c, "tenant_id")
}

// contextUint reads a context value set by middleware and coerces it to
// uint64.  JWT claims may round-trip as float64 or string depending on
// how the token was produced, so all shapes are accepted.
func contextUint(c echo.Context, key string) (uint64, error) {
	v := c.Get(key)
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid " + key + " in context")
}
