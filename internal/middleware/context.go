package middleware

import (
	"log"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/lotengo/internal/apperr"
)

// UserID returns the authenticated user id set by JWTMiddleware.
func UserID(c echo.Context) string {
	id, _ := c.Get("user_id").(string)
	return id
}

func Role(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}

// RespondError writes err as {"error": msg} with the status its code maps to.
// Unclassified errors are logged and reported as a generic 500.
func RespondError(c echo.Context, err error) error {
	status := apperr.HTTPStatus(err)
	if apperr.CodeOf(err) == "" {
		log.Printf("[server][ERROR] %s %s: %v", c.Request().Method, c.Path(), err)
	}
	return c.JSON(status, echo.Map{"error": apperr.Message(err)})
}
