package marketplace

import (
	"context"
	"fmt"

	"github.com/sudo-init-do/lotengo/internal/apperr"
	"github.com/sudo-init-do/lotengo/internal/db"
)

// AcceptedMessage opens every chat created by an acceptance.
const AcceptedMessage = "Oferta aceptada! Ya pueden coordinar la entrega."

// AcceptOffer accepts one offer on an OPEN request. In one commit it rejects
// every other offer on the request, moves the request to NEGOTIATING, opens the
// buyer/seller chat with a system message and notifies the seller.
func (s *Service) AcceptOffer(ctx context.Context, offerID string) (Acceptance, error) {
	var (
		out   Acceptance
		notes []db.Notification
	)
	err := s.store.Update(ctx, func(d *db.Database) error {
		offer := d.FindOffer(offerID)
		if offer == nil {
			return apperr.NotFound("offer", offerID)
		}
		req := d.FindRequest(offer.RequestID)
		if req == nil {
			return apperr.NotFound("request", offer.RequestID)
		}
		if req.Status != db.RequestOpen {
			return apperr.IllegalTransition("request", req.ID, req.Status, db.RequestNegotiating)
		}
		if offer.Status != db.OfferSubmitted {
			return apperr.IllegalTransition("offer", offer.ID, offer.Status, db.OfferAccepted)
		}

		now := s.store.Now()
		offer.Status = db.OfferAccepted
		for i := range d.Offers {
			o := &d.Offers[i]
			if o.RequestID == req.ID && o.ID != offer.ID {
				o.Status = db.OfferRejected
			}
		}
		req.Status = db.RequestNegotiating
		req.AcceptedOfferID = offer.ID

		chat := db.Chat{
			ID:        d.NextID(db.TableChats),
			RequestID: req.ID,
			BuyerID:   req.BuyerID,
			SellerID:  offer.SellerID,
			CreatedAt: now,
		}
		d.Chats = append(d.Chats, chat)

		msg := db.Message{
			ID:        d.NextID(db.TableMessages),
			ChatID:    chat.ID,
			SenderID:  db.SystemSender,
			Type:      db.MessageText,
			Text:      AcceptedMessage,
			CreatedAt: now,
		}
		d.Messages = append(d.Messages, msg)

		notes = append(notes, s.ledger.Record(d, offer.SellerID, db.NotifyOfferAccepted,
			"Tu oferta fue aceptada!",
			fmt.Sprintf("Tu oferta para %q fue aceptada", req.Title),
			map[string]string{"requestId": req.ID, "offerId": offer.ID, "chatId": chat.ID},
		))

		out = Acceptance{Offer: *offer, Request: *req, Chat: chat, SystemMessage: msg}
		return nil
	})
	if err != nil {
		return Acceptance{}, err
	}
	s.ledger.Dispatch(ctx, notes)
	return out, nil
}
