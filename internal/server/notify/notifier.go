// Package notify delivers the SMS alerts queued for created messages. The
// external provider sits behind the narrow Notifier contract; the Dispatcher
// drains the notification outbox in the background.
package notify

import "context"

// Notifier sends one SMS and returns the provider's delivery id.
type Notifier interface {
	Send(ctx context.Context, toPhone string, text string) (string, error)
}
