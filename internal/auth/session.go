package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sudo-init-do/lotengo/internal/db"
)

// SessionKey is the blob key of the signed-in user record.
const SessionKey = "@lotengo_auth"

// Sessions caches the signed-in user next to the document blob.
type Sessions struct {
	store *db.Store
	blobs db.BlobStore
}

func NewSessions(store *db.Store) *Sessions {
	return &Sessions{store: store, blobs: store.Blobs()}
}

func (s *Sessions) Save(ctx context.Context, u db.User) error {
	raw, err := json.Marshal(u.Public())
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.blobs.Set(ctx, SessionKey, raw)
}

// Load returns the signed-in user. The canonical row from the store wins
// over the cached copy, which is only used when the row no longer exists.
func (s *Sessions) Load(ctx context.Context) (db.User, bool, error) {
	raw, err := s.blobs.Get(ctx, SessionKey)
	if errors.Is(err, db.ErrBlobNotFound) {
		return db.User{}, false, nil
	}
	if err != nil {
		return db.User{}, false, err
	}
	var cached db.User
	if err := json.Unmarshal(raw, &cached); err != nil {
		return db.User{}, false, fmt.Errorf("decode session: %w", err)
	}

	user := cached
	s.store.View(func(d *db.Database) {
		if u := d.FindUser(cached.ID); u != nil {
			user = u.Public()
		}
	})
	return user, true, nil
}

func (s *Sessions) Clear(ctx context.Context) error {
	err := s.blobs.Delete(ctx, SessionKey)
	if errors.Is(err, db.ErrBlobNotFound) {
		return nil
	}
	return err
}
