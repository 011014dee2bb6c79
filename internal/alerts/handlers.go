package alerts

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/lotengo/internal/apperr"
	"github.com/sudo-init-do/lotengo/internal/middleware"
)

type Handler struct {
	ledger *Ledger
}

func NewHandler(ledger *Ledger) *Handler {
	return &Handler{ledger: ledger}
}

// ListNotifications returns current user's notifications, newest first
func (h *Handler) ListNotifications(c echo.Context) error {
	userID := middleware.UserID(c)
	return c.JSON(http.StatusOK, echo.Map{
		"notifications": h.ledger.GetNotifications(userID),
		"unread":        h.ledger.GetUnreadCount(userID),
	})
}

func (h *Handler) UnreadCount(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"unread": h.ledger.GetUnreadCount(middleware.UserID(c))})
}

// MarkNotificationRead marks specific notification as read
func (h *Handler) MarkNotificationRead(c echo.Context) error {
	userID := middleware.UserID(c)
	nid := c.Param("id")
	if nid == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing notification id"})
	}

	owned := false
	for _, n := range h.ledger.GetNotifications(userID) {
		if n.ID == nid {
			owned = true
			break
		}
	}
	if !owned {
		return middleware.RespondError(c, apperr.NotFound("notification", nid))
	}

	n, err := h.ledger.MarkAsRead(c.Request().Context(), nid)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"notification": n})
}

func (h *Handler) MarkAllRead(c echo.Context) error {
	changed, err := h.ledger.MarkAllAsRead(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "ok", "updated": changed})
}
