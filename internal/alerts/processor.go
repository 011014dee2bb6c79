package alerts

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

// Worker consumes notification tasks. Delivery itself is an external
// concern, so the default handler only logs what would be sent.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewWorker builds a worker against redisAddr. Handle overrides the per-task
// handler; nil keeps the logging one.
func NewWorker(redisAddr string, handle func(context.Context, NotificationCreatedPayload) error) *Worker {
	if handle == nil {
		handle = logDelivery
	}
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskNotificationCreated, func(ctx context.Context, t *asynq.Task) error {
		return HandleNotificationCreated(ctx, t, handle)
	})

	server := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueNotifications: 10,
		},
	})
	return &Worker{server: server, mux: mux}
}

// Start runs the worker in the background.
func (w *Worker) Start() {
	go func() {
		if err := w.server.Run(w.mux); err != nil {
			log.Printf("Asynq server stopped: %v", err)
		}
	}()
	log.Printf("[notify] worker started")
}

func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

// HandleNotificationCreated decodes t and passes it to handle.
func HandleNotificationCreated(ctx context.Context, t *asynq.Task, handle func(context.Context, NotificationCreatedPayload) error) error {
	var p NotificationCreatedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := handle(ctx, p); err != nil {
		log.Printf("[notify][ERROR] %s delivery failed: %v", p.Type, err)
		return err
	}
	return nil
}

func logDelivery(_ context.Context, p NotificationCreatedPayload) error {
	log.Printf("[notify] %s delivered -> user=%s id=%s title=%q", p.Type, p.UserID, p.NotificationID, p.Title)
	return nil
}
