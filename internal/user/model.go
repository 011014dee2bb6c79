package user

import (
	"time"

	"github.com/sudo-init-do/lotengo/internal/db"
)

// Profile is what other users see of an account.
type Profile struct {
	ID           string    `json:"id"`
	Role         db.Role   `json:"role"`
	Name         string    `json:"name"`
	BusinessName string    `json:"businessName,omitempty"`
	Department   string    `json:"department,omitempty"`
	City         string    `json:"city,omitempty"`
	RatingAvg    float64   `json:"ratingAvg"`
	RatingCount  int       `json:"ratingCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

func profileOf(u db.User) Profile {
	return Profile{
		ID:           u.ID,
		Role:         u.Role,
		Name:         u.Name,
		BusinessName: u.BusinessName,
		Department:   u.Department,
		City:         u.City,
		RatingAvg:    u.RatingAvg,
		RatingCount:  u.RatingCount,
		CreatedAt:    u.CreatedAt,
	}
}

// UpdateProfileRequest carries profile edits. Empty fields keep their
// current value.
type UpdateProfileRequest struct {
	Name         string       `json:"name"`
	Phone        string       `json:"phone"`
	Department   string       `json:"department"`
	City         string       `json:"city"`
	Address      string       `json:"address"`
	BusinessName string       `json:"businessName"`
	Location     *db.Location `json:"location"`
}
