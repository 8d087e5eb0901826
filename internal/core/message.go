package core

import "time"

// Message is the domain model for a chat message inside a room.
type Message struct {
	SenderID   string
	SenderName string
	Text       string
	SentAt     time.Time
}
