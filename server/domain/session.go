package domain

import (
	"time"
)

const placeholderPrefix = "User_"

// Session is one connected client's live state for the duration of one
// connection. Fields are mutated only through the Registry, under its lock.
type Session struct {
	ID          string
	Name        string
	CurrentRoom string
	JoinedAt    time.Time
}

func NewSession(id string) Session {
	return Session{
		ID:       id,
		JoinedAt: time.Now(),
	}
}

// PlaceholderName derives the deterministic fallback display name for a
// session that never supplied one.
func PlaceholderName(sessionID string) string {
	if len(sessionID) > 6 {
		sessionID = sessionID[:6]
	}
	return placeholderPrefix + sessionID
}

// ResolveName picks the effective display name for a join. The first join
// decides: a name already set on the session sticks for the connection's
// lifetime, otherwise the client-supplied value is taken, otherwise the
// deterministic placeholder.
func (s Session) ResolveName(requested string) string {
	if s.Name != "" {
		return s.Name
	}
	if requested != "" {
		return requested
	}
	return PlaceholderName(s.ID)
}

func (s Session) IsValid() bool {
	return s.ID != ""
}

func (s Session) String() string {
	room := s.CurrentRoom
	if room == "" {
		room = "-"
	}
	return s.Name + "@" + room
}
