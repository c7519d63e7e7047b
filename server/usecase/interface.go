package usecase

import (
	"github.com/Shauryasoni262/BusinessOps-Suite-sub001/server/domain"
)

// MessageStore is the durable, ordered message log backing chat rooms.
// Append assigns the message ID and timestamp; Recent returns the most
// recent limit messages for a room, oldest-first.
type MessageStore interface {
	Append(room, senderID, senderName, body string) (domain.Message, error)
	Recent(room string, limit int) ([]domain.Message, error)
}

// ProjectGateway is the subscription side of the project broadcast gateway,
// consumed by the chat session loop for join_project/leave_project events.
type ProjectGateway interface {
	Subscribe(sessionID, projectID string) error
	Unsubscribe(sessionID, projectID string)
}
