package models

import "time"

// Message is the persisted message row. ReadAt is nil until the recipient
// marks the message as read; once set it never changes.
type Message struct {
	ID           string
	FromUsername string
	ToUsername   string
	Body         string
	SentAt       time.Time
	ReadAt       *time.Time
}

// MessageDetail is a message joined with the full identity of both parties.
type MessageDetail struct {
	ID     string
	From   Person
	To     Person
	Body   string
	SentAt time.Time
	ReadAt *time.Time
}

// ConversationMessage is a message enriched with the counterpart's identity,
// as returned by the per-user sent/received listings.
type ConversationMessage struct {
	ID          string
	Counterpart Person
	Body        string
	SentAt      time.Time
	ReadAt      *time.Time
}

// ReadReceipt is the result of marking a message read.
type ReadReceipt struct {
	ID     string
	ReadAt time.Time
}
