package user

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/lotengo/internal/db"
	"github.com/sudo-init-do/lotengo/internal/middleware"
)

// PATCH /user/profile
func (h *Handler) UpdateProfile(c echo.Context) error {
	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	u, err := h.svc.UpdateProfile(c.Request().Context(), middleware.UserID(c), req)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "profile updated successfully",
		"user":    u,
	})
}

// POST /user/addresses
func (h *Handler) AddFrequentAddress(c echo.Context) error {
	var loc db.Location
	if err := c.Bind(&loc); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	addresses, err := h.svc.SaveFrequentAddress(c.Request().Context(), middleware.UserID(c), loc)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"frequentAddresses": addresses})
}
