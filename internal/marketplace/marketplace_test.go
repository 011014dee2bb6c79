package marketplace_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sudo-init-do/lotengo/internal/alerts"
	"github.com/sudo-init-do/lotengo/internal/db"
	"github.com/sudo-init-do/lotengo/internal/marketplace"
	"github.com/sudo-init-do/lotengo/internal/testutil"
)

type fixture struct {
	svc    *marketplace.Service
	store  *db.Store
	ledger *alerts.Ledger
	clock  *testutil.Clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, _, clock := testutil.NewStore(t)
	ledger := alerts.NewLedger(store, nil)
	return &fixture{
		svc:    marketplace.NewService(store, ledger),
		store:  store,
		ledger: ledger,
		clock:  clock,
	}
}

var medellin = &db.Location{Lat: 6.2442, Lng: -75.5812, Address: "Parque Berrío"}

func (f *fixture) request(t *testing.T, buyerID, title string) db.Request {
	t.Helper()
	req, err := f.svc.CreateRequest(context.Background(), marketplace.CreateRequestInput{
		BuyerID:  buyerID,
		Title:    title,
		Location: medellin,
	})
	require.NoError(t, err)
	return req
}

func (f *fixture) offer(t *testing.T, requestID, sellerID string, price float64) db.Offer {
	t.Helper()
	o, err := f.svc.CreateOffer(context.Background(), marketplace.CreateOfferInput{
		RequestID: requestID,
		SellerID:  sellerID,
		Price:     price,
		EtaValue:  2,
		EtaUnit:   db.EtaDays,
	})
	require.NoError(t, err)
	return o
}

// accepted runs a request through to an accepted offer from sellerID.
func (f *fixture) accepted(t *testing.T, buyerID, sellerID string) (db.Request, db.Offer) {
	t.Helper()
	req := f.request(t, buyerID, "Arena lavada")
	o := f.offer(t, req.ID, sellerID, 50000)
	_, err := f.svc.AcceptOffer(context.Background(), o.ID)
	require.NoError(t, err)
	return req, o
}

func countType(notes []db.Notification, typ db.NotificationType) int {
	n := 0
	for _, note := range notes {
		if note.Type == typ {
			n++
		}
	}
	return n
}
