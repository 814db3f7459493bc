// Package access holds the pure authorization rules for messages. The route
// layer fetches the message, then consults these functions with the
// authenticated identity before acting.
package access

import "github.com/dmitrijs2005/messagely/internal/server/models"

// CanView reports whether identity may view the message. Only the sender and
// the recipient may.
func CanView(identity string, m *models.MessageDetail) bool {
	return identity == m.From.Username || identity == m.To.Username
}

// CanMarkRead reports whether identity may mark the message as read. Only the
// recipient may; the sender can view but never mark their own message read.
func CanMarkRead(identity string, m *models.MessageDetail) bool {
	return identity == m.To.Username
}
