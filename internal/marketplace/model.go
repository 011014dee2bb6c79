package marketplace

import (
	"github.com/sudo-init-do/lotengo/internal/alerts"
	"github.com/sudo-init-do/lotengo/internal/db"
)

// Service runs the request/offer lifecycle, acceptance, ratings and the
// seller catalog against one document store.
type Service struct {
	store  *db.Store
	ledger *alerts.Ledger
}

func NewService(store *db.Store, ledger *alerts.Ledger) *Service {
	return &Service{store: store, ledger: ledger}
}

// CreateRequestInput is what a buyer posts.
type CreateRequestInput struct {
	BuyerID     string       `json:"buyerId"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Quantity    *float64     `json:"quantity"`
	Unit        string       `json:"unit"`
	Notes       string       `json:"notes"`
	Category    string       `json:"category"`
	Location    *db.Location `json:"location"`
}

// CreateOfferInput is a seller's bid on a request.
type CreateOfferInput struct {
	RequestID   string     `json:"requestId"`
	SellerID    string     `json:"sellerId"`
	Price       float64    `json:"price"`
	EtaValue    int        `json:"etaValue"`
	EtaUnit     db.EtaUnit `json:"etaUnit"`
	Notes       string     `json:"notes"`
	Attachments []string   `json:"attachments"`
}

// Acceptance is everything AcceptOffer commits together.
type Acceptance struct {
	Offer         db.Offer   `json:"offer"`
	Request       db.Request `json:"request"`
	Chat          db.Chat    `json:"chat"`
	SystemMessage db.Message `json:"systemMessage"`
}

// ProductInput creates or patches a catalog product. On update, nil and
// empty fields keep their current value.
type ProductInput struct {
	Name       string     `json:"name"`
	Category   string     `json:"category"`
	PriceBase  *float64   `json:"priceBase"`
	EtaValue   *int       `json:"etaValue"`
	EtaUnit    db.EtaUnit `json:"etaUnit"`
	Notes      string     `json:"notes"`
	Conditions string     `json:"conditions"`
	Images     []string   `json:"images"`
}
