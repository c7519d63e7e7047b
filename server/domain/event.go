package domain

import (
	"fmt"
	"time"
)

// Outbound event names as they appear on the wire.
const (
	EventMessageHistory = "message_history"
	EventUserJoined     = "user_joined"
	EventReceiveMessage = "receive_message"
	EventUserLeft       = "user_left"
	EventError          = "error"
	EventProjectUpdate  = "project:update"
)

// Project room event kinds further parameterized by an action
// (created/updated/deleted), e.g. "task:created".
const (
	KindTask      = "task"
	KindMilestone = "milestone"
	KindMember    = "member"
	KindFile      = "file"
)

// ProjectEventName builds the wire name for a project room notification.
func ProjectEventName(kind, action string) string {
	return kind + ":" + action
}

// Event is one outbound notification delivered to a session.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// MessagePayload is the wire form of a persisted message.
type MessagePayload struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Room      string    `json:"room"`
}

// HistoryPayload is delivered privately to a joining session.
type HistoryPayload struct {
	Room     string           `json:"room"`
	Messages []MessagePayload `json:"messages"`
}

// PresencePayload announces a join or leave to the rest of a room.
type PresencePayload struct {
	Message   string    `json:"message"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func toMessagePayload(m Message) MessagePayload {
	return MessagePayload{
		ID:        m.ID,
		UserID:    m.SenderID,
		Username:  m.SenderName,
		Message:   m.Body,
		Timestamp: m.CreatedAt,
		Room:      m.Room,
	}
}

func NewHistoryEvent(room string, messages []Message) Event {
	payload := HistoryPayload{
		Room:     room,
		Messages: make([]MessagePayload, 0, len(messages)),
	}
	for _, m := range messages {
		payload.Messages = append(payload.Messages, toMessagePayload(m))
	}
	return Event{Name: EventMessageHistory, Data: payload}
}

func NewUserJoinedEvent(username string) Event {
	return Event{
		Name: EventUserJoined,
		Data: PresencePayload{
			Message:   fmt.Sprintf("%s joined the room", username),
			Username:  username,
			Timestamp: time.Now(),
		},
	}
}

func NewUserLeftEvent(username string) Event {
	return Event{
		Name: EventUserLeft,
		Data: PresencePayload{
			Message:   fmt.Sprintf("%s left the room", username),
			Username:  username,
			Timestamp: time.Now(),
		},
	}
}

func NewReceiveMessageEvent(m Message) Event {
	return Event{Name: EventReceiveMessage, Data: toMessagePayload(m)}
}

func NewErrorEvent(message string) Event {
	return Event{Name: EventError, Data: ErrorPayload{Message: message}}
}

func NewProjectEvent(name string, payload any) Event {
	return Event{Name: name, Data: payload}
}

func (e Event) IsError() bool {
	return e.Name == EventError
}

func (e Event) String() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Data)
}
