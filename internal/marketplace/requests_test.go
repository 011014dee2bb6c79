package marketplace_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudo-init-do/lotengo/internal/apperr"
	"github.com/sudo-init-do/lotengo/internal/db"
	"github.com/sudo-init-do/lotengo/internal/marketplace"
	"github.com/sudo-init-do/lotengo/internal/testutil"
)

func TestCreateRequestBroadcastsToSellers(t *testing.T) {
	f := newFixture(t)

	req := f.request(t, testutil.BuyerAna, "Bicicleta usada")

	assert.Equal(t, "r1", req.ID)
	assert.Equal(t, db.RequestOpen, req.Status)
	assert.Equal(t, *medellin, req.Location)

	notes := f.store.Get().Notifications
	require.Len(t, notes, 3)
	for _, n := range notes {
		assert.Equal(t, db.NotifyNewRequest, n.Type)
		assert.Equal(t, req.ID, n.Payload["requestId"])
		assert.Equal(t, db.RoleSeller, f.store.Get().FindUser(n.UserID).Role)
	}
	assert.Zero(t, f.ledger.GetUnreadCount(testutil.BuyerCarlos))
}

func TestCreateRequestValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateRequest(ctx, marketplace.CreateRequestInput{BuyerID: testutil.BuyerAna, Title: "  ", Location: medellin})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = f.svc.CreateRequest(ctx, marketplace.CreateRequestInput{BuyerID: testutil.BuyerAna, Title: "Ladrillos"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = f.svc.CreateRequest(ctx, marketplace.CreateRequestInput{BuyerID: "u404", Title: "Ladrillos", Location: medellin})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.Empty(t, f.store.Get().Requests)
	assert.Empty(t, f.store.Get().Notifications)
}

func TestRequestReadsNewestFirst(t *testing.T) {
	f := newFixture(t)
	r1 := f.request(t, testutil.BuyerAna, "uno")
	r2 := f.request(t, testutil.BuyerCarlos, "dos")
	r3 := f.request(t, testutil.BuyerAna, "tres")
	_, err := f.svc.UpdateRequestStatus(context.Background(), r3.ID, db.RequestCancelled, "")
	require.NoError(t, err)

	mine := f.svc.GetRequestsByBuyer(testutil.BuyerAna)
	require.Len(t, mine, 2)
	assert.Equal(t, []string{r3.ID, r1.ID}, []string{mine[0].ID, mine[1].ID})

	open := f.svc.GetOpenRequests()
	require.Len(t, open, 2)
	assert.Equal(t, r2.ID, open[0].ID)

	all := f.svc.GetAllRequests()
	require.Len(t, all, 3)
	assert.Equal(t, r3.ID, all[0].ID)

	_, err = f.svc.GetRequestByID("r404")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestTransitionTable(t *testing.T) {
	statuses := []db.RequestStatus{
		db.RequestOpen, db.RequestNegotiating, db.RequestClosed, db.RequestAccepted, db.RequestCancelled,
	}
	legal := map[[2]db.RequestStatus]bool{
		{db.RequestOpen, db.RequestNegotiating}:   true,
		{db.RequestOpen, db.RequestCancelled}:     true,
		{db.RequestNegotiating, db.RequestClosed}: true,
		{db.RequestClosed, db.RequestAccepted}:    true,
	}
	for _, from := range statuses {
		for _, to := range statuses {
			t.Run(fmt.Sprintf("%s_to_%s", from, to), func(t *testing.T) {
				assert.Equal(t, legal[[2]db.RequestStatus{from, to}], marketplace.CanTransition(from, to))
			})
		}
	}
}

func TestUpdateRequestStatusRejectsIllegalMoves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.request(t, testutil.BuyerAna, "Tejas")

	_, err := f.svc.UpdateRequestStatus(ctx, req.ID, db.RequestClosed, "")
	assert.ErrorIs(t, err, apperr.ErrIllegalTransition)

	_, err = f.svc.UpdateRequestStatus(ctx, req.ID, db.RequestOpen, "")
	assert.ErrorIs(t, err, apperr.ErrIllegalTransition)

	_, err = f.svc.UpdateRequestStatus(ctx, "r404", db.RequestCancelled, "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	got, err := f.svc.UpdateRequestStatus(ctx, req.ID, db.RequestCancelled, "")
	require.NoError(t, err)
	assert.Equal(t, db.RequestCancelled, got.Status)

	// cancelled is terminal
	_, err = f.svc.UpdateRequestStatus(ctx, req.ID, db.RequestNegotiating, "")
	assert.ErrorIs(t, err, apperr.ErrIllegalTransition)
}

func TestUpdateRequestStatusFullLifecycleNotifiesSeller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req, offer := f.accepted(t, testutil.BuyerAna, testutil.SellerLuis)

	closed, err := f.svc.UpdateRequestStatus(ctx, req.ID, db.RequestClosed, "")
	require.NoError(t, err)
	assert.Equal(t, db.RequestClosed, closed.Status)
	assert.Equal(t, offer.ID, closed.AcceptedOfferID)

	_, err = f.svc.UpdateRequestStatus(ctx, req.ID, db.RequestAccepted, offer.ID)
	require.NoError(t, err)

	notes := f.ledger.GetNotifications(testutil.SellerLuis)
	assert.Equal(t, 1, countType(notes, db.NotifyRequestClosed))
	assert.Equal(t, 1, countType(notes, db.NotifyRequestAccepted))
	assert.Equal(t, db.NotifyRequestAccepted, notes[0].Type)
}

func TestUpdateRequestStatusAcceptedOfferIsWriteOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.request(t, testutil.BuyerAna, "Pintura")
	winner := f.offer(t, req.ID, testutil.SellerLuis, 10)
	loser := f.offer(t, req.ID, testutil.SellerMarta, 20)
	_, err := f.svc.AcceptOffer(ctx, winner.ID)
	require.NoError(t, err)

	_, err = f.svc.UpdateRequestStatus(ctx, req.ID, db.RequestClosed, loser.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	got, _ := f.svc.GetRequestByID(req.ID)
	assert.Equal(t, db.RequestNegotiating, got.Status)
	assert.Equal(t, winner.ID, got.AcceptedOfferID)

	// same value again is fine
	_, err = f.svc.UpdateRequestStatus(ctx, req.ID, db.RequestClosed, winner.ID)
	require.NoError(t, err)
}

func TestUpdateRequestStatusCannotStartNegotiation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.request(t, testutil.BuyerAna, "Pintura")
	o := f.offer(t, req.ID, testutil.SellerLuis, 10)

	_, err := f.svc.UpdateRequestStatus(ctx, req.ID, db.RequestNegotiating, o.ID)
	assert.ErrorIs(t, err, apperr.ErrIllegalTransition)
	_, err = f.svc.UpdateRequestStatus(ctx, req.ID, db.RequestNegotiating, "")
	assert.ErrorIs(t, err, apperr.ErrIllegalTransition)
	_, err = f.svc.UpdateRequestStatus(ctx, req.ID, db.RequestCancelled, o.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	d := f.store.Get()
	assert.Equal(t, db.RequestOpen, d.FindRequest(req.ID).Status)
	assert.Empty(t, d.FindRequest(req.ID).AcceptedOfferID)
	assert.Equal(t, db.OfferSubmitted, d.FindOffer(o.ID).Status)

	acc, err := f.svc.AcceptOffer(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, db.RequestNegotiating, acc.Request.Status)
	assert.Len(t, chatsFor(f.store.Get(), req.ID), 1)
}

func TestUpdateRequestStatusUnknownOffer(t *testing.T) {
	f := newFixture(t)
	req, _ := f.accepted(t, testutil.BuyerAna, testutil.SellerLuis)
	other := f.request(t, testutil.BuyerCarlos, "Cemento")
	o := f.offer(t, other.ID, testutil.SellerMarta, 10)

	_, err := f.svc.UpdateRequestStatus(context.Background(), req.ID, db.RequestClosed, o.ID)

	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
