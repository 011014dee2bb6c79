package marketplace

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/sudo-init-do/lotengo/internal/apperr"
	"github.com/sudo-init-do/lotengo/internal/db"
)

// CreateOffer stores a SUBMITTED offer and notifies the request's buyer.
// A seller gets at most one offer per request.
func (s *Service) CreateOffer(ctx context.Context, in CreateOfferInput) (db.Offer, error) {
	var (
		offer db.Offer
		notes []db.Notification
	)
	err := s.store.Update(ctx, func(d *db.Database) error {
		req := d.FindRequest(in.RequestID)
		if req == nil {
			return apperr.NotFound("request", in.RequestID)
		}
		for _, o := range d.Offers {
			if o.RequestID == in.RequestID && o.SellerID == in.SellerID {
				return apperr.DuplicateOffer(in.RequestID, in.SellerID)
			}
		}
		seller := d.FindUser(in.SellerID)
		if seller == nil {
			return apperr.NotFound("user", in.SellerID)
		}
		if req.Status != db.RequestOpen {
			return apperr.IllegalTransition("request", req.ID, req.Status, "new offer")
		}
		if in.Price <= 0 {
			return apperr.InvalidInput("price must be greater than zero")
		}
		if in.EtaValue <= 0 {
			return apperr.InvalidInput("etaValue must be greater than zero")
		}
		if !in.EtaUnit.Valid() {
			return apperr.InvalidInput("etaUnit must be one of min, hours, days")
		}

		attachments := in.Attachments
		if attachments == nil {
			attachments = []string{}
		}
		offer = db.Offer{
			ID:          d.NextID(db.TableOffers),
			RequestID:   in.RequestID,
			SellerID:    in.SellerID,
			Price:       in.Price,
			EtaValue:    in.EtaValue,
			EtaUnit:     in.EtaUnit,
			Notes:       in.Notes,
			Attachments: attachments,
			Status:      db.OfferSubmitted,
			CreatedAt:   s.store.Now(),
		}
		d.Offers = append(d.Offers, offer)

		name := seller.Name
		if name == "" {
			name = "Vendedor"
		}
		notes = append(notes, s.ledger.Record(d, req.BuyerID, db.NotifyNewOffer,
			"Nueva oferta recibida",
			fmt.Sprintf("%s envió una oferta de %s", name, FormatPrice(in.Price)),
			map[string]string{"requestId": req.ID, "offerId": offer.ID},
		))
		return nil
	})
	if err != nil {
		return db.Offer{}, err
	}
	s.ledger.Dispatch(ctx, notes)
	return offer, nil
}

// GetOffersByRequest returns the request's offers, cheapest first. Equal
// prices keep insertion order.
func (s *Service) GetOffersByRequest(requestID string) []db.Offer {
	out := s.filterOffers(func(o db.Offer) bool { return o.RequestID == requestID })
	slices.SortStableFunc(out, func(a, b db.Offer) int {
		return cmp.Compare(a.Price, b.Price)
	})
	return out
}

// SortOffersByETA returns a copy of offers ordered by delivery time, fastest
// first. Offers with an unknown unit go last.
func SortOffersByETA(offers []db.Offer) []db.Offer {
	out := slices.Clone(offers)
	minutes := func(o db.Offer) int {
		if m := o.EtaUnit.Minutes(o.EtaValue); m >= 0 {
			return m
		}
		return math.MaxInt
	}
	slices.SortStableFunc(out, func(a, b db.Offer) int {
		return cmp.Compare(minutes(a), minutes(b))
	})
	return out
}

// GetOffersBySeller returns the seller's offers, newest first.
func (s *Service) GetOffersBySeller(sellerID string) []db.Offer {
	out := s.filterOffers(func(o db.Offer) bool { return o.SellerID == sellerID })
	slices.SortStableFunc(out, func(a, b db.Offer) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func (s *Service) GetOfferByID(id string) (db.Offer, error) {
	var (
		offer db.Offer
		found bool
	)
	s.store.View(func(d *db.Database) {
		if o := d.FindOffer(id); o != nil {
			offer, found = *o, true
		}
	})
	if !found {
		return db.Offer{}, apperr.NotFound("offer", id)
	}
	return offer, nil
}

func (s *Service) HasSellerOfferedOnRequest(sellerID, requestID string) bool {
	found := false
	s.store.View(func(d *db.Database) {
		found = slices.ContainsFunc(d.Offers, func(o db.Offer) bool {
			return o.SellerID == sellerID && o.RequestID == requestID
		})
	})
	return found
}

// SellerOfferedRequestIDs returns the set of request ids the seller has bid
// on, so listing screens can flag them without a lookup per request.
func (s *Service) SellerOfferedRequestIDs(sellerID string) map[string]struct{} {
	ids := make(map[string]struct{})
	s.store.View(func(d *db.Database) {
		for _, o := range d.Offers {
			if o.SellerID == sellerID {
				ids[o.RequestID] = struct{}{}
			}
		}
	})
	return ids
}

// WithdrawOffer lets the owning seller pull a SUBMITTED offer.
func (s *Service) WithdrawOffer(ctx context.Context, offerID, sellerID string) (db.Offer, error) {
	var offer db.Offer
	err := s.store.Update(ctx, func(d *db.Database) error {
		o := d.FindOffer(offerID)
		if o == nil || o.SellerID != sellerID {
			return apperr.NotFoundf("offer", offerID, "offer not found or not yours")
		}
		if o.Status != db.OfferSubmitted {
			return apperr.IllegalTransition("offer", offerID, o.Status, db.OfferWithdrawn)
		}
		o.Status = db.OfferWithdrawn
		offer = *o
		return nil
	})
	return offer, err
}

// RejectOffer declines a single SUBMITTED offer and tells its seller.
func (s *Service) RejectOffer(ctx context.Context, offerID string) (db.Offer, error) {
	var (
		offer db.Offer
		notes []db.Notification
	)
	err := s.store.Update(ctx, func(d *db.Database) error {
		o := d.FindOffer(offerID)
		if o == nil {
			return apperr.NotFound("offer", offerID)
		}
		if o.Status != db.OfferSubmitted {
			return apperr.IllegalTransition("offer", offerID, o.Status, db.OfferRejected)
		}
		o.Status = db.OfferRejected
		offer = *o

		title := ""
		if r := d.FindRequest(o.RequestID); r != nil {
			title = r.Title
		}
		notes = append(notes, s.ledger.Record(d, o.SellerID, db.NotifyOfferRejected,
			"Oferta rechazada",
			fmt.Sprintf("Tu oferta para %q fue rechazada", title),
			map[string]string{"requestId": o.RequestID, "offerId": o.ID},
		))
		return nil
	})
	if err != nil {
		return db.Offer{}, err
	}
	s.ledger.Dispatch(ctx, notes)
	return offer, nil
}

func (s *Service) filterOffers(keep func(db.Offer) bool) []db.Offer {
	out := []db.Offer{}
	s.store.View(func(d *db.Database) {
		for _, o := range d.Offers {
			if keep(o) {
				out = append(out, o)
			}
		}
	})
	return out
}
