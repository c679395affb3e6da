// Package queue moves notification requests over RabbitMQ: the publisher
// used by the outbox relay and the consumer run by the notification worker.
package queue

// NotificationRequestedEvent asks the worker to deliver one outbox row.  The
// row itself stays the source of truth; Kind and Recipient are carried for
// logging only.
type NotificationRequestedEvent struct {
	NotificationID string `json:"notification_id"`
	Kind           string `json:"kind"`
	Recipient      string `json:"recipient"`
	Attempt        int    `json:"attempt"`
	RequestedAt    string `json:"requested_at"`
}
