package user

import (
	"context"
	"strings"

	"github.com/sudo-init-do/lotengo/internal/apperr"
	"github.com/sudo-init-do/lotengo/internal/db"
)

type Service struct {
	store *db.Store
}

func NewService(store *db.Store) *Service {
	return &Service{store: store}
}

func (s *Service) GetPublicProfile(id string) (Profile, error) {
	var (
		p     Profile
		found bool
	)
	s.store.View(func(d *db.Database) {
		if u := d.FindUser(id); u != nil {
			p, found = profileOf(*u), true
		}
	})
	if !found {
		return Profile{}, apperr.NotFound("user", id)
	}
	return p, nil
}

func validLocation(loc db.Location) bool {
	return loc.Lat >= -90 && loc.Lat <= 90 && loc.Lng >= -180 && loc.Lng <= 180
}

func keep(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// UpdateProfile applies the non-empty fields of req to user id.
func (s *Service) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (db.User, error) {
	if req.Location != nil && !validLocation(*req.Location) {
		return db.User{}, apperr.InvalidInput("location out of range")
	}
	var updated db.User
	err := s.store.Update(ctx, func(d *db.Database) error {
		u := d.FindUser(id)
		if u == nil {
			return apperr.NotFound("user", id)
		}
		keep(&u.Name, req.Name)
		keep(&u.Phone, req.Phone)
		keep(&u.Department, req.Department)
		keep(&u.City, req.City)
		keep(&u.Address, req.Address)
		keep(&u.BusinessName, req.BusinessName)
		if req.Location != nil {
			loc := *req.Location
			u.Location = &loc
		}
		updated = u.Public()
		return nil
	})
	if err != nil {
		return db.User{}, err
	}
	return updated, nil
}

// SaveFrequentAddress remembers loc for user id and returns the resulting
// list, most recent first. A spot already in the list leaves it unchanged.
func (s *Service) SaveFrequentAddress(ctx context.Context, id string, loc db.Location) ([]db.Location, error) {
	if !validLocation(loc) {
		return nil, apperr.InvalidInput("location out of range")
	}
	var addresses []db.Location
	err := s.store.Update(ctx, func(d *db.Database) error {
		u := d.FindUser(id)
		if u == nil {
			return apperr.NotFound("user", id)
		}
		u.RememberAddress(loc)
		addresses = append([]db.Location{}, u.FrequentAddresses...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return addresses, nil
}
