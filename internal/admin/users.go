package admin

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/lotengo/internal/db"
)

// ListUsers returns every account without password hashes, newest first.
func (s *Service) ListUsers() []db.User {
	users := []db.User{}
	s.store.View(func(d *db.Database) {
		for _, u := range d.Users {
			users = append(users, u.Public())
		}
	})
	slices.SortStableFunc(users, func(a, b db.User) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return users
}

// GET /admin/users
func (h *Handler) ListUsers(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"users": h.svc.ListUsers()})
}
