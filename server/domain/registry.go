package domain

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/lo"
)

// Registry is the in-memory mapping from rooms to connected sessions. It is
// the only shared mutable state touched by concurrent session handlers, so
// every mutation and every broadcast snapshot goes through its lock.
//
// Chat rooms are singular: joining one evicts the session from its previous
// room. Project rooms are additive. Rooms exist exactly as long as they have
// members; history lives in the message store, not here. State is process
// local and rebuilt by clients re-joining after a restart.
type Registry struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	rooms     map[string]map[string]struct{} // chat room -> member session IDs
	projects  map[string]map[string]struct{} // project room -> member session IDs
	outbound  map[string]chan<- Event
	delivered atomic.Int64
	started   time.Time
}

// Stats is a point-in-time operational snapshot of the registry.
type Stats struct {
	ActiveRooms    int
	ActiveSessions int
	Delivered      int64
	Uptime         string
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		rooms:    make(map[string]map[string]struct{}),
		projects: make(map[string]map[string]struct{}),
		outbound: make(map[string]chan<- Event),
		started:  time.Now(),
	}
}

// Connect registers a new session and the channel its events are delivered on.
func (r *Registry) Connect(session Session, out chan<- Event) error {
	if !session.IsValid() {
		return fmt.Errorf("invalid session: %q", session.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ID]; exists {
		return fmt.Errorf("session already connected: %s", session.ID)
	}
	s := session
	r.sessions[session.ID] = &s
	r.outbound[session.ID] = out
	return nil
}

// Disconnect releases every membership held by the session and forgets it.
// It never fails; disconnect cleanup is unconditional.
func (r *Registry) Disconnect(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[sessionID]
	if !exists {
		return
	}
	if session.CurrentRoom != "" {
		r.removeFromRoom(r.rooms, session.CurrentRoom, sessionID)
	}
	for projectID := range r.projects {
		r.removeFromRoom(r.projects, projectID, sessionID)
	}
	delete(r.sessions, sessionID)
	delete(r.outbound, sessionID)
}

// Session returns a copy of the session's current state.
func (r *Registry) Session(sessionID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[sessionID]
	if !exists {
		return Session{}, false
	}
	return *session, true
}

// ResolveName fixes the session's display name on first use and returns the
// effective name. Later calls ignore the requested value; the first one
// sticks for the connection's lifetime.
func (r *Registry) ResolveName(sessionID, requested string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[sessionID]
	if !exists {
		return "", fmt.Errorf("session not found: %s", sessionID)
	}
	if session.Name == "" {
		session.Name = session.ResolveName(requested)
	}
	return session.Name, nil
}

// JoinChat makes room the session's current chat room, evicting it from a
// previous room if it had one. Re-joining the same room is a no-op.
func (r *Registry) JoinChat(sessionID, room string) error {
	if room == "" {
		return fmt.Errorf("empty room")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[sessionID]
	if !exists {
		return fmt.Errorf("session not found: %s", sessionID)
	}
	if session.CurrentRoom == room {
		return nil
	}
	if session.CurrentRoom != "" {
		r.removeFromRoom(r.rooms, session.CurrentRoom, sessionID)
	}
	members, ok := r.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		r.rooms[room] = members
	}
	members[sessionID] = struct{}{}
	session.CurrentRoom = room
	return nil
}

// LeaveChat removes the membership; no-op if the session is not in room.
func (r *Registry) LeaveChat(sessionID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[sessionID]
	if !exists || session.CurrentRoom != room {
		return
	}
	r.removeFromRoom(r.rooms, room, sessionID)
	session.CurrentRoom = ""
}

// RoomOf returns the session's current chat room, if any.
func (r *Registry) RoomOf(sessionID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[sessionID]
	if !exists || session.CurrentRoom == "" {
		return "", false
	}
	return session.CurrentRoom, true
}

// MembersOf returns a snapshot of the chat room's member session IDs.
func (r *Registry) MembersOf(room string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.rooms[room])
}

// JoinProject subscribes the session to a project room. Unlike chat rooms,
// project memberships are additive.
func (r *Registry) JoinProject(sessionID, projectID string) error {
	if projectID == "" {
		return fmt.Errorf("empty project id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[sessionID]; !exists {
		return fmt.Errorf("session not found: %s", sessionID)
	}
	members, ok := r.projects[projectID]
	if !ok {
		members = make(map[string]struct{})
		r.projects[projectID] = members
	}
	members[sessionID] = struct{}{}
	return nil
}

// LeaveProject removes the subscription; no-op if absent.
func (r *Registry) LeaveProject(sessionID, projectID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeFromRoom(r.projects, projectID, sessionID)
}

// ProjectMembersOf returns a snapshot of the project room's member IDs.
func (r *Registry) ProjectMembersOf(projectID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.projects[projectID])
}

// SendTo delivers one event to one session. Delivery is non-blocking: a
// session whose outbound buffer is full misses that one event rather than
// stalling the caller.
func (r *Registry) SendTo(sessionID string, event Event) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.deliver(sessionID, event)
}

// BroadcastChat fans the event out to every member of the chat room except
// the excluded session ID (empty string excludes nobody). The member set is a
// consistent snapshot: no member receives the event twice, and a concurrent
// join or leave means that member may or may not receive this one event.
func (r *Registry) BroadcastChat(room string, event Event, except string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for sessionID := range r.rooms[room] {
		if sessionID == except {
			continue
		}
		if r.deliver(sessionID, event) {
			delivered++
		}
	}
	return delivered
}

// BroadcastProject fans the event out to every subscriber of the project
// room. Zero subscribers is a silent no-op.
func (r *Registry) BroadcastProject(projectID string, event Event) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for sessionID := range r.projects[projectID] {
		if r.deliver(sessionID, event) {
			delivered++
		}
	}
	return delivered
}

// GetStats reports a snapshot of registry activity.
func (r *Registry) GetStats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return Stats{
		ActiveRooms:    len(r.rooms),
		ActiveSessions: len(r.sessions),
		Delivered:      r.delivered.Load(),
		Uptime:         time.Since(r.started).String(),
	}
}

// deliver requires r.mu held (read or write).
func (r *Registry) deliver(sessionID string, event Event) bool {
	out, exists := r.outbound[sessionID]
	if !exists {
		return false
	}
	select {
	case out <- event:
		r.delivered.Add(1)
		return true
	default:
		return false
	}
}

// removeFromRoom requires r.mu held for writing. Empty member sets are
// dropped so room existence stays "has at least one member".
func (r *Registry) removeFromRoom(index map[string]map[string]struct{}, room, sessionID string) {
	members, ok := index[room]
	if !ok {
		return
	}
	delete(members, sessionID)
	if len(members) == 0 {
		delete(index, room)
	}
}
