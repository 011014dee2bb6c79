package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/lotengo/internal/middleware"
)

// Me returns the currently authenticated user's profile
func (h *Handler) Me(c echo.Context) error {
	u, err := h.svc.GetUser(middleware.UserID(c))
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}
