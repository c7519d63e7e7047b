package domain

import "time"

// Message is a persisted chat message. ID and CreatedAt are assigned by the
// store at persistence time and are never client-supplied.
type Message struct {
	ID         int64
	Room       string
	SenderID   string
	SenderName string
	Body       string
	CreatedAt  time.Time
}

func NewMessage(id int64, room, senderID, senderName, body string, createdAt time.Time) Message {
	return Message{
		ID:         id,
		Room:       room,
		SenderID:   senderID,
		SenderName: senderName,
		Body:       body,
		CreatedAt:  createdAt,
	}
}
