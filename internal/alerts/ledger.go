package alerts

import (
	"context"
	"log"
	"maps"
	"sort"

	"github.com/sudo-init-do/lotengo/internal/apperr"
	"github.com/sudo-init-do/lotengo/internal/db"
)

// Ledger owns the notifications table. Producers call Record inside their
// own Store.Update and Dispatch the collected records once it commits.
type Ledger struct {
	store  *db.Store
	outbox Outbox
}

// NewLedger returns a ledger. A nil outbox drops records after logging them.
func NewLedger(store *db.Store, outbox Outbox) *Ledger {
	if outbox == nil {
		outbox = LogOutbox{}
	}
	return &Ledger{store: store, outbox: outbox}
}

// Record appends an unread notification for userID to d and returns it.
func (l *Ledger) Record(d *db.Database, userID string, typ db.NotificationType, title, body string, payload map[string]string) db.Notification {
	n := db.Notification{
		ID:        d.NextID(db.TableNotifications),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Body:      body,
		Payload:   payload,
		CreatedAt: l.store.Now(),
		Read:      false,
	}
	if n.Payload == nil {
		n.Payload = map[string]string{}
	}
	d.Notifications = append(d.Notifications, n)
	return n
}

// Dispatch hands committed records to the outbox. Failures are logged; the
// record itself is already durable.
func (l *Ledger) Dispatch(ctx context.Context, notes []db.Notification) {
	for _, n := range notes {
		if err := l.outbox.Enqueue(ctx, n); err != nil {
			log.Printf("[notify][ERROR] enqueue %s for user=%s failed: %v", n.ID, n.UserID, err)
		}
	}
}

// GetNotifications returns userID's notifications, newest first.
func (l *Ledger) GetNotifications(userID string) []db.Notification {
	out := []db.Notification{}
	l.store.View(func(d *db.Database) {
		for _, n := range d.Notifications {
			if n.UserID == userID {
				out = append(out, n)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (l *Ledger) GetUnreadCount(userID string) int {
	count := 0
	l.store.View(func(d *db.Database) {
		for _, n := range d.Notifications {
			if n.UserID == userID && !n.Read {
				count++
			}
		}
	})
	return count
}

// MarkAsRead flips one notification to read. Marking twice is a no-op.
func (l *Ledger) MarkAsRead(ctx context.Context, id string) (db.Notification, error) {
	var out db.Notification
	err := l.store.Update(ctx, func(d *db.Database) error {
		n := d.FindNotification(id)
		if n == nil {
			return apperr.NotFound("notification", id)
		}
		n.Read = true
		out = *n
		out.Payload = maps.Clone(n.Payload)
		return nil
	})
	return out, err
}

// MarkAllAsRead marks every unread notification of userID and returns how
// many changed.
func (l *Ledger) MarkAllAsRead(ctx context.Context, userID string) (int, error) {
	changed := 0
	err := l.store.Update(ctx, func(d *db.Database) error {
		for i := range d.Notifications {
			n := &d.Notifications[i]
			if n.UserID == userID && !n.Read {
				n.Read = true
				changed++
			}
		}
		return nil
	})
	return changed, err
}
