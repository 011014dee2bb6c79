package marketplace

import (
	"context"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/sudo-init-do/lotengo/internal/apperr"
	"github.com/sudo-init-do/lotengo/internal/db"
)

// CreateRating records one party's rating of the other once an offer on the
// request has been accepted, and folds it into the target's average.
func (s *Service) CreateRating(ctx context.Context, in CreateRatingInput) (db.Rating, error) {
	if in.Stars < 1 || in.Stars > 5 {
		return db.Rating{}, apperr.InvalidInput("stars must be between 1 and 5")
	}
	if utf8.RuneCountInString(in.Comment) > 1000 {
		return db.Rating{}, apperr.InvalidInput("comment too long (max 1000 characters)")
	}

	var rating db.Rating
	err := s.store.Update(ctx, func(d *db.Database) error {
		req := d.FindRequest(in.RequestID)
		if req == nil {
			return apperr.NotFound("request", in.RequestID)
		}
		if hasRated(d, in.RequestID, in.FromUserID) {
			return apperr.DuplicateRating(in.RequestID, in.FromUserID)
		}
		if !partiesOf(d, req, in.FromUserID, in.ToUserID) {
			return apperr.Forbidden("not a party to this transaction")
		}
		target := d.FindUser(in.ToUserID)
		if target == nil {
			return apperr.NotFound("user", in.ToUserID)
		}

		rating = db.Rating{
			ID:         d.NextID(db.TableRatings),
			RequestID:  in.RequestID,
			FromUserID: in.FromUserID,
			ToUserID:   in.ToUserID,
			Stars:      in.Stars,
			Comment:    strings.TrimSpace(in.Comment),
			CreatedAt:  s.store.Now(),
		}
		d.Ratings = append(d.Ratings, rating)

		total := target.RatingAvg*float64(target.RatingCount) + float64(in.Stars)
		target.RatingCount++
		target.RatingAvg = math.Round(total/float64(target.RatingCount)*10) / 10
		return nil
	})
	if err != nil {
		return db.Rating{}, err
	}
	return rating, nil
}

// partiesOf reports whether from and to are the buyer and the accepted
// seller of req, in either direction.
func partiesOf(d *db.Database, req *db.Request, from, to string) bool {
	if req.AcceptedOfferID == "" {
		return false
	}
	offer := d.FindOffer(req.AcceptedOfferID)
	if offer == nil {
		return false
	}
	buyer, seller := req.BuyerID, offer.SellerID
	return (from == buyer && to == seller) || (from == seller && to == buyer)
}

func hasRated(d *db.Database, requestID, fromUserID string) bool {
	return slices.ContainsFunc(d.Ratings, func(r db.Rating) bool {
		return r.RequestID == requestID && r.FromUserID == fromUserID
	})
}

func (s *Service) HasUserRated(requestID, fromUserID string) bool {
	rated := false
	s.store.View(func(d *db.Database) {
		rated = hasRated(d, requestID, fromUserID)
	})
	return rated
}

// CanRate reports whether userID may still rate the counterpart on the
// request, and who that counterpart is.
func (s *Service) CanRate(requestID, userID string) (toUserID string, ok bool) {
	s.store.View(func(d *db.Database) {
		req := d.FindRequest(requestID)
		if req == nil || req.AcceptedOfferID == "" || hasRated(d, requestID, userID) {
			return
		}
		offer := d.FindOffer(req.AcceptedOfferID)
		if offer == nil {
			return
		}
		switch userID {
		case req.BuyerID:
			toUserID, ok = offer.SellerID, true
		case offer.SellerID:
			toUserID, ok = req.BuyerID, true
		}
	})
	return toUserID, ok
}

func (s *Service) GetRatingsByRequest(requestID string) []db.Rating {
	return s.filterRatings(func(r db.Rating) bool { return r.RequestID == requestID })
}

// GetRatingsForUser returns the ratings userID received, newest first.
func (s *Service) GetRatingsForUser(userID string) []db.Rating {
	out := s.filterRatings(func(r db.Rating) bool { return r.ToUserID == userID })
	slices.SortStableFunc(out, func(a, b db.Rating) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// GetRatingSummary returns the stored average and count for userID plus a
// per-star breakdown of the ratings on record.
func (s *Service) GetRatingSummary(userID string) (RatingSummary, error) {
	var (
		summary RatingSummary
		found   bool
	)
	s.store.View(func(d *db.Database) {
		u := d.FindUser(userID)
		if u == nil {
			return
		}
		found = true
		summary.UserID = u.ID
		summary.UserName = u.Name
		summary.TotalRatings = u.RatingCount
		summary.AverageRating = u.RatingAvg
		for _, r := range d.Ratings {
			if r.ToUserID != userID {
				continue
			}
			switch r.Stars {
			case 5:
				summary.RatingCounts.FiveStar++
			case 4:
				summary.RatingCounts.FourStar++
			case 3:
				summary.RatingCounts.ThreeStar++
			case 2:
				summary.RatingCounts.TwoStar++
			case 1:
				summary.RatingCounts.OneStar++
			}
		}
	})
	if !found {
		return RatingSummary{}, apperr.NotFound("user", userID)
	}
	return summary, nil
}

func (s *Service) filterRatings(keep func(db.Rating) bool) []db.Rating {
	out := []db.Rating{}
	s.store.View(func(d *db.Database) {
		for _, r := range d.Ratings {
			if keep(r) {
				out = append(out, r)
			}
		}
	})
	return out
}
