// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sudo-init-do/lotengo/internal/db"
)

// Epoch is the first instant a Clock returns.
var Epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// Clock returns strictly increasing times, one second apart, so
// newest-first orderings are deterministic.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock() *Clock {
	return &Clock{now: Epoch}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(time.Second)
	return t
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// NewStore returns a seeded store backed by memory blobs.
func NewStore(t testing.TB) (*db.Store, *db.MemoryBlobs, *Clock) {
	t.Helper()
	blobs := db.NewMemoryBlobs()
	clock := NewClock()
	store := db.NewStore(blobs, db.WithClock(clock.Now))
	return store, blobs, clock
}

// Seed user ids.
const (
	BuyerAna     = "u1"
	BuyerCarlos  = "u2"
	SellerLuis   = "u3"
	SellerMarta  = "u4"
	SellerJorge  = "u5"
	SeedPassword = "123456"
)

// FailingBlobs fails every call with Err.
type FailingBlobs struct {
	Err error
}

func (f FailingBlobs) Get(context.Context, string) ([]byte, error) { return nil, f.Err }

func (f FailingBlobs) Set(context.Context, string, []byte) error { return f.Err }

func (f FailingBlobs) Delete(context.Context, string) error { return f.Err }
