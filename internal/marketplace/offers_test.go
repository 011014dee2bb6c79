package marketplace_test

import (
	"context"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudo-init-do/lotengo/internal/apperr"
	"github.com/sudo-init-do/lotengo/internal/db"
	"github.com/sudo-init-do/lotengo/internal/marketplace"
	"github.com/sudo-init-do/lotengo/internal/testutil"
)

var sellers = []string{testutil.SellerLuis, testutil.SellerMarta, testutil.SellerJorge}

func TestCreateOfferNotifiesBuyer(t *testing.T) {
	f := newFixture(t)
	req := f.request(t, testutil.BuyerAna, "Bicicleta usada")

	o := f.offer(t, req.ID, testutil.SellerLuis, 100000)

	assert.Equal(t, "o1", o.ID)
	assert.Equal(t, db.OfferSubmitted, o.Status)
	assert.NotNil(t, o.Attachments)

	notes := f.ledger.GetNotifications(testutil.BuyerAna)
	require.Len(t, notes, 1)
	assert.Equal(t, db.NotifyNewOffer, notes[0].Type)
	assert.Equal(t, o.ID, notes[0].Payload["offerId"])
	assert.Contains(t, notes[0].Body, "Luis Herrera")
}

func TestDuplicateOfferAlwaysFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var requests []db.Request
	for _, title := range []string{"Arena", "Grava", "Cal"} {
		requests = append(requests, f.request(t, testutil.BuyerAna, title))
	}

	for _, r := range requests {
		for _, s := range sellers {
			f.offer(t, r.ID, s, 1000)
			for attempt := 0; attempt < 2; attempt++ {
				_, err := f.svc.CreateOffer(ctx, marketplace.CreateOfferInput{
					RequestID: r.ID, SellerID: s, Price: 999, EtaValue: 1, EtaUnit: db.EtaHours,
				})
				assert.ErrorIs(t, err, apperr.ErrDuplicateOffer)
			}
		}
	}
	assert.Len(t, f.store.Get().Offers, len(requests)*len(sellers))
}

func TestCreateOfferCheckOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.request(t, testutil.BuyerAna, "Puerta")
	f.offer(t, req.ID, testutil.SellerLuis, 500)
	valid := marketplace.CreateOfferInput{RequestID: req.ID, SellerID: testutil.SellerMarta, Price: 10, EtaValue: 1, EtaUnit: db.EtaMinutes}

	tests := []struct {
		name   string
		mutate func(in *marketplace.CreateOfferInput)
		want   error
	}{
		{"unknown request", func(in *marketplace.CreateOfferInput) { in.RequestID = "r404"; in.Price = -1 }, apperr.ErrNotFound},
		{"duplicate before validation", func(in *marketplace.CreateOfferInput) { in.SellerID = testutil.SellerLuis; in.Price = -1 }, apperr.ErrDuplicateOffer},
		{"unknown seller", func(in *marketplace.CreateOfferInput) { in.SellerID = "u404" }, apperr.ErrNotFound},
		{"zero price", func(in *marketplace.CreateOfferInput) { in.Price = 0 }, apperr.ErrInvalidInput},
		{"zero eta", func(in *marketplace.CreateOfferInput) { in.EtaValue = 0 }, apperr.ErrInvalidInput},
		{"bad unit", func(in *marketplace.CreateOfferInput) { in.EtaUnit = "weeks" }, apperr.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := f.svc.CreateOffer(ctx, in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateOfferRequiresOpenRequest(t *testing.T) {
	f := newFixture(t)
	req := f.request(t, testutil.BuyerAna, "Puerta")
	_, err := f.svc.UpdateRequestStatus(context.Background(), req.ID, db.RequestCancelled, "")
	require.NoError(t, err)

	_, err = f.svc.CreateOffer(context.Background(), marketplace.CreateOfferInput{
		RequestID: req.ID, SellerID: testutil.SellerLuis, Price: 10, EtaValue: 1, EtaUnit: db.EtaDays,
	})

	assert.ErrorIs(t, err, apperr.ErrIllegalTransition)
}

func TestGetOffersByRequestSortedByPrice(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 5; round++ {
		f := newFixture(t)
		req := f.request(t, testutil.BuyerAna, "Cerámica")

		// register extra sellers so each round has enough bidders
		var bidders []string
		require.NoError(t, f.store.Update(context.Background(), func(d *db.Database) error {
			for i := 0; i < 8; i++ {
				id := d.NextID(db.TableUsers)
				d.Users = append(d.Users, db.User{ID: id, Role: db.RoleSeller, Name: id})
				bidders = append(bidders, id)
			}
			return nil
		}))
		for _, s := range bidders {
			f.offer(t, req.ID, s, float64(rng.Intn(5)*1000+1000))
		}

		got := f.svc.GetOffersByRequest(req.ID)
		require.Len(t, got, len(bidders))
		assert.True(t, slices.IsSortedFunc(got, func(a, b db.Offer) int {
			switch {
			case a.Price < b.Price:
				return -1
			case a.Price > b.Price:
				return 1
			}
			return 0
		}), "round %d not sorted: %+v", round, got)
	}
}

func TestSortOffersByETA(t *testing.T) {
	offers := []db.Offer{
		{ID: "o1", EtaValue: 1, EtaUnit: db.EtaDays},
		{ID: "o2", EtaValue: 90, EtaUnit: db.EtaMinutes},
		{ID: "o3", EtaValue: 1, EtaUnit: "fortnight"},
		{ID: "o4", EtaValue: 2, EtaUnit: db.EtaHours},
		{ID: "o5", EtaValue: 120, EtaUnit: db.EtaMinutes},
	}

	got := marketplace.SortOffersByETA(offers)

	ids := make([]string, len(got))
	for i, o := range got {
		ids[i] = o.ID
	}
	assert.Equal(t, []string{"o2", "o4", "o5", "o1", "o3"}, ids)
	assert.Equal(t, "o1", offers[0].ID, "input is not reordered")
}

func TestOfferReads(t *testing.T) {
	f := newFixture(t)
	r1 := f.request(t, testutil.BuyerAna, "uno")
	r2 := f.request(t, testutil.BuyerCarlos, "dos")
	f.request(t, testutil.BuyerCarlos, "tres")
	o1 := f.offer(t, r1.ID, testutil.SellerLuis, 10)
	o2 := f.offer(t, r2.ID, testutil.SellerLuis, 20)

	mine := f.svc.GetOffersBySeller(testutil.SellerLuis)
	require.Len(t, mine, 2)
	assert.Equal(t, o2.ID, mine[0].ID)

	got, err := f.svc.GetOfferByID(o1.ID)
	require.NoError(t, err)
	assert.Equal(t, r1.ID, got.RequestID)
	_, err = f.svc.GetOfferByID("o404")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.True(t, f.svc.HasSellerOfferedOnRequest(testutil.SellerLuis, r1.ID))
	assert.False(t, f.svc.HasSellerOfferedOnRequest(testutil.SellerMarta, r1.ID))

	ids := f.svc.SellerOfferedRequestIDs(testutil.SellerLuis)
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, r1.ID)
	assert.Contains(t, ids, r2.ID)
}

func TestWithdrawOffer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.request(t, testutil.BuyerAna, "Pintura")
	o := f.offer(t, req.ID, testutil.SellerLuis, 10)

	_, err := f.svc.WithdrawOffer(ctx, o.ID, testutil.SellerMarta)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "offer not found or not yours", apperr.Message(err))

	got, err := f.svc.WithdrawOffer(ctx, o.ID, testutil.SellerLuis)
	require.NoError(t, err)
	assert.Equal(t, db.OfferWithdrawn, got.Status)

	_, err = f.svc.WithdrawOffer(ctx, o.ID, testutil.SellerLuis)
	assert.ErrorIs(t, err, apperr.ErrIllegalTransition)

	// a withdrawn offer still counts against the one-offer rule
	_, err = f.svc.CreateOffer(ctx, marketplace.CreateOfferInput{
		RequestID: req.ID, SellerID: testutil.SellerLuis, Price: 5, EtaValue: 1, EtaUnit: db.EtaDays,
	})
	assert.ErrorIs(t, err, apperr.ErrDuplicateOffer)
}

func TestRejectOffer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.request(t, testutil.BuyerAna, "Pintura")
	o := f.offer(t, req.ID, testutil.SellerLuis, 10)

	got, err := f.svc.RejectOffer(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, db.OfferRejected, got.Status)
	notes := f.ledger.GetNotifications(testutil.SellerLuis)
	assert.Equal(t, db.NotifyOfferRejected, notes[0].Type)

	_, err = f.svc.RejectOffer(ctx, o.ID)
	assert.ErrorIs(t, err, apperr.ErrIllegalTransition)
	_, err = f.svc.RejectOffer(ctx, "o404")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestFormatPrice(t *testing.T) {
	got := marketplace.FormatPrice(1500000)
	assert.True(t, len(got) > len("1500000"), "expected grouping separators in %q", got)
	assert.Equal(t, byte('$'), got[0])
}
