package marketplace_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudo-init-do/lotengo/internal/apperr"
	"github.com/sudo-init-do/lotengo/internal/marketplace"
	"github.com/sudo-init-do/lotengo/internal/testutil"
)

func rate(f *fixture, requestID, from, to string, stars int) error {
	_, err := f.svc.CreateRating(context.Background(), marketplace.CreateRatingInput{
		RequestID: requestID, FromUserID: from, ToUserID: to, Stars: stars,
	})
	return err
}

func TestRatingAverages(t *testing.T) {
	t.Run("5,5,5", func(t *testing.T) {
		f := newFixture(t)
		for _, buyer := range []string{testutil.BuyerAna, testutil.BuyerCarlos, testutil.BuyerAna} {
			req, _ := f.accepted(t, buyer, testutil.SellerJorge)
			require.NoError(t, rate(f, req.ID, buyer, testutil.SellerJorge, 5))
		}
		u := f.store.Get().FindUser(testutil.SellerJorge)
		assert.Equal(t, 5.0, u.RatingAvg)
		assert.Equal(t, 3, u.RatingCount)
	})

	t.Run("1,5", func(t *testing.T) {
		f := newFixture(t)
		r1, _ := f.accepted(t, testutil.BuyerCarlos, testutil.SellerLuis)
		r2, _ := f.accepted(t, testutil.BuyerCarlos, testutil.SellerMarta)
		require.NoError(t, rate(f, r1.ID, testutil.SellerLuis, testutil.BuyerCarlos, 1))
		require.NoError(t, rate(f, r2.ID, testutil.SellerMarta, testutil.BuyerCarlos, 5))

		u := f.store.Get().FindUser(testutil.BuyerCarlos)
		assert.Equal(t, 3.0, u.RatingAvg)
		assert.Equal(t, 2, u.RatingCount)
	})

	t.Run("rounds to one decimal", func(t *testing.T) {
		f := newFixture(t)
		// seed: 4.8 over 5 ratings; (24+4)/6 = 4.666..
		req, _ := f.accepted(t, testutil.BuyerAna, testutil.SellerLuis)
		require.NoError(t, rate(f, req.ID, testutil.BuyerAna, testutil.SellerLuis, 4))
		assert.Equal(t, 4.7, f.store.Get().FindUser(testutil.SellerLuis).RatingAvg)
	})
}

func TestDuplicateRatingDoesNotCount(t *testing.T) {
	f := newFixture(t)
	req, _ := f.accepted(t, testutil.BuyerCarlos, testutil.SellerJorge)
	require.NoError(t, rate(f, req.ID, testutil.BuyerCarlos, testutil.SellerJorge, 4))

	for i := 0; i < 3; i++ {
		err := rate(f, req.ID, testutil.BuyerCarlos, testutil.SellerJorge, 1)
		assert.ErrorIs(t, err, apperr.ErrDuplicateRating)
	}

	u := f.store.Get().FindUser(testutil.SellerJorge)
	assert.Equal(t, 1, u.RatingCount)
	assert.Equal(t, 4.0, u.RatingAvg)
	assert.True(t, f.svc.HasUserRated(req.ID, testutil.BuyerCarlos))

	// the seller still gets their own rating of the buyer
	require.NoError(t, rate(f, req.ID, testutil.SellerJorge, testutil.BuyerCarlos, 5))
	assert.Len(t, f.svc.GetRatingsByRequest(req.ID), 2)
}

func TestRatingGate(t *testing.T) {
	f := newFixture(t)
	req, _ := f.accepted(t, testutil.BuyerAna, testutil.SellerLuis)
	pending := f.request(t, testutil.BuyerAna, "Sin aceptar")

	tests := []struct {
		name      string
		requestID string
		from, to  string
		stars     int
		want      error
	}{
		{"stars too low", req.ID, testutil.BuyerAna, testutil.SellerLuis, 0, apperr.ErrInvalidInput},
		{"stars too high", req.ID, testutil.BuyerAna, testutil.SellerLuis, 6, apperr.ErrInvalidInput},
		{"unknown request", "r404", testutil.BuyerAna, testutil.SellerLuis, 3, apperr.ErrNotFound},
		{"no accepted offer", pending.ID, testutil.BuyerAna, testutil.SellerLuis, 3, apperr.ErrForbidden},
		{"outsider rater", req.ID, testutil.BuyerCarlos, testutil.SellerLuis, 3, apperr.ErrForbidden},
		{"wrong target", req.ID, testutil.BuyerAna, testutil.SellerMarta, 3, apperr.ErrForbidden},
		{"self rating", req.ID, testutil.BuyerAna, testutil.BuyerAna, 3, apperr.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rate(f, tt.requestID, tt.from, tt.to, tt.stars)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.store.Get().Ratings)
	assert.Equal(t, 5, f.store.Get().FindUser(testutil.SellerLuis).RatingCount)
}

func TestRatingCommentLengthCountsCharacters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req, _ := f.accepted(t, testutil.BuyerAna, testutil.SellerLuis)

	_, err := f.svc.CreateRating(ctx, marketplace.CreateRatingInput{
		RequestID: req.ID, FromUserID: testutil.BuyerAna, ToUserID: testutil.SellerLuis,
		Stars: 4, Comment: strings.Repeat("ñ", 1001),
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	r, err := f.svc.CreateRating(ctx, marketplace.CreateRatingInput{
		RequestID: req.ID, FromUserID: testutil.BuyerAna, ToUserID: testutil.SellerLuis,
		Stars: 4, Comment: strings.Repeat("á", 1000),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, r.Stars)
}

func TestCanRate(t *testing.T) {
	f := newFixture(t)
	req, _ := f.accepted(t, testutil.BuyerAna, testutil.SellerLuis)

	to, ok := f.svc.CanRate(req.ID, testutil.BuyerAna)
	assert.True(t, ok)
	assert.Equal(t, testutil.SellerLuis, to)

	to, ok = f.svc.CanRate(req.ID, testutil.SellerLuis)
	assert.True(t, ok)
	assert.Equal(t, testutil.BuyerAna, to)

	_, ok = f.svc.CanRate(req.ID, testutil.SellerMarta)
	assert.False(t, ok)

	require.NoError(t, rate(f, req.ID, testutil.BuyerAna, testutil.SellerLuis, 5))
	_, ok = f.svc.CanRate(req.ID, testutil.BuyerAna)
	assert.False(t, ok)
}

func TestRatingSummary(t *testing.T) {
	f := newFixture(t)
	r1, _ := f.accepted(t, testutil.BuyerAna, testutil.SellerJorge)
	r2, _ := f.accepted(t, testutil.BuyerCarlos, testutil.SellerJorge)
	require.NoError(t, rate(f, r1.ID, testutil.BuyerAna, testutil.SellerJorge, 5))
	require.NoError(t, rate(f, r2.ID, testutil.BuyerCarlos, testutil.SellerJorge, 2))

	summary, err := f.svc.GetRatingSummary(testutil.SellerJorge)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalRatings)
	assert.Equal(t, 3.5, summary.AverageRating)
	assert.Equal(t, 1, summary.RatingCounts.FiveStar)
	assert.Equal(t, 1, summary.RatingCounts.TwoStar)

	received := f.svc.GetRatingsForUser(testutil.SellerJorge)
	require.Len(t, received, 2)
	assert.Equal(t, 2, received[0].Stars)

	_, err = f.svc.GetRatingSummary("u404")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
