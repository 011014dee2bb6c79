package middleware

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// AdminKeyHeader carries the maintenance key for /admin routes.
const AdminKeyHeader = "X-Admin-Key"

// AdminGuard only lets requests through whose X-Admin-Key matches key.
// An empty key locks the admin routes entirely.
func AdminGuard(key string) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup: "header:" + AdminKeyHeader,
		Validator: func(got string, _ echo.Context) (bool, error) {
			if key == "" {
				return false, nil
			}
			return subtle.ConstantTimeCompare([]byte(got), []byte(key)) == 1, nil
		},
	})
}
