package admin

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/lotengo/internal/db"
)

type Service struct {
	store *db.Store
}

func NewService(store *db.Store) *Service {
	return &Service{store: store}
}

// Stats is a point-in-time summary of the document.
type Stats struct {
	Tables              map[string]int           `json:"tables" yaml:"tables"`
	RequestsByStatus    map[db.RequestStatus]int `json:"requestsByStatus" yaml:"requestsByStatus"`
	OffersByStatus      map[db.OfferStatus]int   `json:"offersByStatus" yaml:"offersByStatus"`
	UsersByRole         map[db.Role]int          `json:"usersByRole" yaml:"usersByRole"`
	UnreadNotifications int                      `json:"unreadNotifications" yaml:"unreadNotifications"`
}

func (s *Service) Stats() Stats {
	st := Stats{
		RequestsByStatus: map[db.RequestStatus]int{},
		OffersByStatus:   map[db.OfferStatus]int{},
		UsersByRole:      map[db.Role]int{},
	}
	s.store.View(func(d *db.Database) {
		st.Tables = d.Counts()
		for _, r := range d.Requests {
			st.RequestsByStatus[r.Status]++
		}
		for _, o := range d.Offers {
			st.OffersByStatus[o.Status]++
		}
		for _, u := range d.Users {
			st.UsersByRole[u.Role]++
		}
		for _, n := range d.Notifications {
			if !n.Read {
				st.UnreadNotifications++
			}
		}
	})
	return st
}

// Reset drops every change and restores the seed dataset.
func (s *Service) Reset(ctx context.Context) {
	s.store.Reset(ctx)
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GET /admin/stats
func (h *Handler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Stats())
}

// POST /admin/reset
func (h *Handler) Reset(c echo.Context) error {
	h.svc.Reset(c.Request().Context())
	return c.JSON(http.StatusOK, echo.Map{"message": "store reset to seed data"})
}
