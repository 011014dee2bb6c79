package alerts

import "time"

// Task type constants
const (
	TaskNotificationCreated = "notification:created"
)

// QueueNotifications is the asynq queue notification tasks are put on.
const QueueNotifications = "notifications"

// NotificationCreatedPayload is the task body handed to the delivery worker.
type NotificationCreatedPayload struct {
	NotificationID string            `json:"notification_id"`
	UserID         string            `json:"user_id"`
	Type           string            `json:"type"`
	Title          string            `json:"title"`
	Body           string            `json:"body"`
	Payload        map[string]string `json:"payload,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}
