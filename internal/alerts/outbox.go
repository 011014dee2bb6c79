package alerts

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"

	"github.com/sudo-init-do/lotengo/internal/db"
)

// Outbox receives notification records after they are committed. Delivery
// (push, email) happens downstream of it.
type Outbox interface {
	Enqueue(ctx context.Context, n db.Notification) error
}

// LogOutbox only logs. Used when no queue is configured.
type LogOutbox struct{}

func (LogOutbox) Enqueue(_ context.Context, n db.Notification) error {
	log.Printf("[notify] %s -> user=%s id=%s", n.Type, n.UserID, n.ID)
	return nil
}

// NewNotificationTask builds the asynq task for n.
func NewNotificationTask(n db.Notification) (*asynq.Task, error) {
	payload := NotificationCreatedPayload{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Type:           string(n.Type),
		Title:          n.Title,
		Body:           n.Body,
		Payload:        n.Payload,
		CreatedAt:      n.CreatedAt,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationCreated, b, asynq.Queue(QueueNotifications), asynq.MaxRetry(5)), nil
}

// QueueOutbox enqueues every record as an asynq task on Redis.
type QueueOutbox struct {
	client *asynq.Client
}

func NewQueueOutbox(redisAddr string) *QueueOutbox {
	return &QueueOutbox{client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})}
}

func (q *QueueOutbox) Enqueue(ctx context.Context, n db.Notification) error {
	task, err := NewNotificationTask(n)
	if err != nil {
		return err
	}
	_, err = q.client.EnqueueContext(ctx, task)
	return err
}

func (q *QueueOutbox) Close() error {
	return q.client.Close()
}
