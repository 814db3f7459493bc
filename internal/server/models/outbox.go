package models

import "time"

// OutboxStatus is the delivery state of a queued SMS notification.
type OutboxStatus string

const (
	OutboxPending OutboxStatus = "pending"
	OutboxSent    OutboxStatus = "sent"
	OutboxFailed  OutboxStatus = "failed"
)

// OutboxEntry is a queued SMS notification. Entries are written in the same
// transaction as the message they announce and delivered by the dispatcher.
type OutboxEntry struct {
	ID         string
	MessageID  string
	ToPhone    string
	Body       string
	Status     OutboxStatus
	Attempts   int
	CreatedAt  time.Time
	SentAt     *time.Time
	DeliveryID *string
	LastError  *string
}
