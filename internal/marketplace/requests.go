package marketplace

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sudo-init-do/lotengo/internal/apperr"
	"github.com/sudo-init-do/lotengo/internal/db"
)

// requestTransitions lists the statuses each request status may move to.
// Anything missing is illegal, including staying in the same status.
var requestTransitions = map[db.RequestStatus][]db.RequestStatus{
	db.RequestOpen:        {db.RequestNegotiating, db.RequestCancelled},
	db.RequestNegotiating: {db.RequestClosed},
	db.RequestClosed:      {db.RequestAccepted},
}

// CanTransition reports whether a request may move from one status to another.
func CanTransition(from, to db.RequestStatus) bool {
	return slices.Contains(requestTransitions[from], to)
}

// CreateRequest stores a new OPEN request and notifies every seller.
func (s *Service) CreateRequest(ctx context.Context, in CreateRequestInput) (db.Request, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return db.Request{}, apperr.InvalidInput("title is required")
	}
	if in.Location == nil {
		return db.Request{}, apperr.InvalidInput("location is required")
	}
	if in.Quantity != nil && *in.Quantity <= 0 {
		return db.Request{}, apperr.InvalidInput("quantity must be positive")
	}

	var (
		req   db.Request
		notes []db.Notification
	)
	err := s.store.Update(ctx, func(d *db.Database) error {
		if d.FindUser(in.BuyerID) == nil {
			return apperr.NotFound("user", in.BuyerID)
		}
		req = db.Request{
			ID:          d.NextID(db.TableRequests),
			BuyerID:     in.BuyerID,
			Title:       title,
			Description: in.Description,
			Quantity:    in.Quantity,
			Unit:        in.Unit,
			Notes:       in.Notes,
			Category:    in.Category,
			Location:    *in.Location,
			Status:      db.RequestOpen,
			CreatedAt:   s.store.Now(),
		}
		d.Requests = append(d.Requests, req)

		// Broadcast to every seller. This grows with the seller count.
		for _, u := range d.Users {
			if u.Role != db.RoleSeller {
				continue
			}
			notes = append(notes, s.ledger.Record(d, u.ID, db.NotifyNewRequest,
				"Nueva solicitud",
				fmt.Sprintf("%q - Nuevo pedido disponible", req.Title),
				map[string]string{"requestId": req.ID},
			))
		}
		return nil
	})
	if err != nil {
		return db.Request{}, err
	}
	s.ledger.Dispatch(ctx, notes)
	return req, nil
}

func (s *Service) GetRequestByID(id string) (db.Request, error) {
	var (
		req   db.Request
		found bool
	)
	s.store.View(func(d *db.Database) {
		if r := d.FindRequest(id); r != nil {
			req, found = *r, true
		}
	})
	if !found {
		return db.Request{}, apperr.NotFound("request", id)
	}
	return req, nil
}

// GetRequestsByBuyer returns the buyer's requests, newest first.
func (s *Service) GetRequestsByBuyer(buyerID string) []db.Request {
	return s.filterRequests(func(r db.Request) bool { return r.BuyerID == buyerID })
}

// GetOpenRequests returns every OPEN request, newest first.
func (s *Service) GetOpenRequests() []db.Request {
	return s.filterRequests(func(r db.Request) bool { return r.Status == db.RequestOpen })
}

// GetAllRequests returns every request, newest first.
func (s *Service) GetAllRequests() []db.Request {
	return s.filterRequests(func(db.Request) bool { return true })
}

func (s *Service) filterRequests(keep func(db.Request) bool) []db.Request {
	out := []db.Request{}
	s.store.View(func(d *db.Database) {
		for _, r := range d.Requests {
			if keep(r) {
				out = append(out, r)
			}
		}
	})
	slices.SortStableFunc(out, func(a, b db.Request) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// UpdateRequestStatus moves a request along its lifecycle. acceptedOfferID
// is optional and must name an accepted offer; once set on a request it
// cannot change.
func (s *Service) UpdateRequestStatus(ctx context.Context, id string, status db.RequestStatus, acceptedOfferID string) (db.Request, error) {
	var (
		req   db.Request
		notes []db.Notification
	)
	err := s.store.Update(ctx, func(d *db.Database) error {
		r := d.FindRequest(id)
		if r == nil {
			return apperr.NotFound("request", id)
		}
		// NEGOTIATING is only entered through AcceptOffer.
		if !CanTransition(r.Status, status) || status == db.RequestNegotiating {
			return apperr.IllegalTransition("request", id, r.Status, status)
		}
		if acceptedOfferID != "" {
			if r.AcceptedOfferID != "" && r.AcceptedOfferID != acceptedOfferID {
				return apperr.InvalidInput("request %s already has accepted offer %s", id, r.AcceptedOfferID)
			}
			o := d.FindOffer(acceptedOfferID)
			if o == nil || o.RequestID != id {
				return apperr.NotFoundf("offer", acceptedOfferID, "offer not found on this request")
			}
			if o.Status != db.OfferAccepted {
				return apperr.InvalidInput("offer %s has not been accepted", o.ID)
			}
			r.AcceptedOfferID = acceptedOfferID
		}
		r.Status = status

		if o := d.FindOffer(r.AcceptedOfferID); o != nil {
			payload := map[string]string{"requestId": r.ID, "offerId": o.ID}
			switch status {
			case db.RequestClosed:
				notes = append(notes, s.ledger.Record(d, o.SellerID, db.NotifyRequestClosed,
					"Solicitud cerrada", fmt.Sprintf("%q fue marcada como entregada", r.Title), payload))
			case db.RequestAccepted:
				notes = append(notes, s.ledger.Record(d, o.SellerID, db.NotifyRequestAccepted,
					"Entrega confirmada", fmt.Sprintf("El comprador confirmó la entrega de %q", r.Title), payload))
			}
		}
		req = *r
		return nil
	})
	if err != nil {
		return db.Request{}, err
	}
	s.ledger.Dispatch(ctx, notes)
	return req, nil
}
