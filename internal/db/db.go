package db

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sudo-init-do/lotengo/internal/apperr"
)

// DefaultKey is the blob key the document is saved under.
const DefaultKey = "@lotengo_db"

// Store owns the single in-memory Database snapshot and its durable blob.
type Store struct {
	mu    sync.RWMutex
	blobs BlobStore
	key   string
	clock func() time.Time
	data  *Database
}

type Option func(*Store)

// WithKey overrides the blob key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithClock overrides the time source used for createdAt stamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// NewStore returns a store holding a fresh copy of the seed. Call Load to
// restore the persisted document.
func NewStore(blobs BlobStore, opts ...Option) *Store {
	s := &Store{
		blobs: blobs,
		key:   DefaultKey,
		clock: time.Now,
		data:  Seed(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Blobs exposes the backend so other records (the session) can share it.
func (s *Store) Blobs() BlobStore { return s.blobs }

func (s *Store) Now() time.Time { return s.clock().UTC() }

// Get returns the live snapshot. Callers that mutate it must Save afterwards
// and must not share the store across goroutines.
func (s *Store) Get() *Database {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// View runs fn under the read lock.
func (s *Store) View(fn func(d *Database)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

// Update runs fn against a working copy of the snapshot. If fn returns nil
// the copy replaces the snapshot and is persisted; otherwise nothing changes.
func (s *Store) Update(ctx context.Context, fn func(d *Database) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.Clone()
	if err := fn(work); err != nil {
		return err
	}
	s.data = work
	s.saveLocked(ctx)
	return nil
}

// Load restores the snapshot from the blob. An absent, unreadable or corrupt
// blob falls back to the seed, which is written back immediately. It reports
// whether the seed was used.
func (s *Store) Load(ctx context.Context) (seeded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.blobs.Get(ctx, s.key)
	switch {
	case errors.Is(err, ErrBlobNotFound):
		log.Printf("[store] no snapshot under %s, bootstrapping from seed", s.key)
		return s.reseedLocked(ctx)
	case err != nil:
		log.Printf("[store][WARN] read %s failed, falling back to seed: %v", s.key, err)
		return s.reseedLocked(ctx)
	case len(raw) == 0:
		return s.reseedLocked(ctx)
	}

	var d Database
	if err := json.Unmarshal(raw, &d); err != nil {
		log.Printf("[store][WARN] snapshot %s is corrupt, falling back to seed: %v", s.key, err)
		return s.reseedLocked(ctx)
	}
	d.normalize()

	migrated := ensureSeedFields(&d, Seed())
	migrated += ensureHashedPasswords(&d)
	s.data = &d
	if migrated > 0 {
		log.Printf("[store] migrated %d field(s) on load", migrated)
		s.saveLocked(ctx)
	}
	return false
}

func (s *Store) reseedLocked(ctx context.Context) bool {
	s.data = Seed()
	s.saveLocked(ctx)
	return true
}

// Save writes the snapshot. Failures are logged and swallowed so a broken
// backend never blocks a user flow.
func (s *Store) Save(ctx context.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) {
	if err := s.writeLocked(ctx); err != nil {
		log.Printf("[store][WARN] save %s failed: %v", s.key, err)
	}
}

// Flush is Save that reports the failure.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.writeLocked(ctx); err != nil {
		return apperr.Persistence(err)
	}
	return nil
}

func (s *Store) writeLocked(ctx context.Context) error {
	raw, err := json.Marshal(s.data)
	if err != nil {
		return err
	}
	return s.blobs.Set(ctx, s.key, raw)
}

// Reset replaces the snapshot with a fresh copy of the seed and saves it.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reseedLocked(ctx)
	log.Printf("[store] reset to seed")
}

// ensureSeedFields copies optional user fields that were added to the seed
// after a snapshot was first persisted. Only fields missing on the persisted
// row are filled; rows are matched by id.
func ensureSeedFields(d *Database, seed *Database) int {
	filled := 0
	for _, su := range seed.Users {
		u := d.FindUser(su.ID)
		if u == nil {
			continue
		}
		if u.Location == nil && su.Location != nil {
			loc := *su.Location
			u.Location = &loc
			filled++
		}
		if u.Department == "" && su.Department != "" {
			u.Department = su.Department
			filled++
		}
		if u.City == "" && su.City != "" {
			u.City = su.City
			filled++
		}
		if u.Address == "" && su.Address != "" {
			u.Address = su.Address
			filled++
		}
		if u.BusinessName == "" && su.BusinessName != "" {
			u.BusinessName = su.BusinessName
			filled++
		}
	}
	return filled
}

// ensureHashedPasswords hashes passwords stored in plaintext by older snapshots.
func ensureHashedPasswords(d *Database) int {
	hashed := 0
	for i := range d.Users {
		u := &d.Users[i]
		if u.Password == "" || IsPasswordHash(u.Password) {
			continue
		}
		h, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("[store][WARN] hash legacy password for %s: %v", u.ID, err)
			continue
		}
		u.Password = string(h)
		hashed++
	}
	return hashed
}

// IsPasswordHash reports whether s looks like a bcrypt hash.
func IsPasswordHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}
