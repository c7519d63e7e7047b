package usecase

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Shauryasoni262/BusinessOps-Suite-sub001/server/domain"
)

// Client-facing error notices. The gateway never retries on behalf of a
// client; re-issuing the request is the client's call.
const (
	noticeNoRoom       = "no room specified and no current room"
	noticeEmptyMessage = "message body is empty"
	noticeUnknownRoom  = "room has no members"
	noticeHistoryFail  = "failed to load message history"
	noticeSendFail     = "failed to send message"
	noticeInternal     = "internal error"
)

// ChatUsecase drives each session through its lifecycle:
// connect -> (no room) -> in room -> disconnect. One goroutine per session
// runs HandleSession, so a session's own events are handled strictly in
// order; only the registry and the store see concurrent callers.
type ChatUsecase struct {
	store     MessageStore
	registry  *domain.Registry
	projects  ProjectGateway
	limit     int
	log       *slog.Logger
	roomLocks sync.Map // room -> *sync.Mutex, serializes persist+broadcast
}

func NewChatUsecase(store MessageStore, registry *domain.Registry, projects ProjectGateway, historyLimit int, log *slog.Logger) *ChatUsecase {
	if historyLimit <= 0 {
		historyLimit = domain.DefaultHistoryLimit
	}
	return &ChatUsecase{
		store:    store,
		registry: registry,
		projects: projects,
		limit:    historyLimit,
		log:      log,
	}
}

// HandleSession owns one connected session from admission to disconnect.
// Requests are consumed until the channel closes; the transport closes it
// when the socket drops. Cleanup is unconditional: whatever ends the loop,
// the session leaves the registry and other members hear user_left.
func (u *ChatUsecase) HandleSession(requests <-chan domain.Request, events chan<- domain.Event, sessionID string) error {
	session := domain.NewSession(sessionID)
	if err := u.registry.Connect(session, events); err != nil {
		return fmt.Errorf("failed to admit session: %w", err)
	}
	defer u.handleDisconnect(sessionID)

	for request := range requests {
		if !request.IsValid() {
			u.registry.SendTo(sessionID, domain.NewErrorEvent("invalid "+request.Type.String()+" payload"))
			continue
		}
		switch request.Type {
		case domain.RequestJoinRoom:
			u.handleJoin(sessionID, request)
		case domain.RequestSendMessage:
			u.handleSend(sessionID, request)
		case domain.RequestJoinProject:
			if err := u.projects.Subscribe(sessionID, request.ProjectID); err != nil {
				u.log.Warn("project subscribe failed", "session", sessionID, "project", request.ProjectID, "error", err)
				u.registry.SendTo(sessionID, domain.NewErrorEvent(noticeInternal))
			}
		case domain.RequestLeaveProject:
			u.projects.Unsubscribe(sessionID, request.ProjectID)
		default:
			u.registry.SendTo(sessionID, domain.NewErrorEvent("unknown event"))
		}
	}
	return nil
}

// handleJoin registers membership, replays recent history to the joiner only,
// and announces the join to the rest of the room. History is best-effort: a
// fetch failure is reported to the joiner but the join still completes.
func (u *ChatUsecase) handleJoin(sessionID string, request domain.Request) {
	name, err := u.registry.ResolveName(sessionID, request.Username)
	if err != nil {
		u.log.Warn("join rejected", "session", sessionID, "error", err)
		u.registry.SendTo(sessionID, domain.NewErrorEvent(noticeInternal))
		return
	}
	if err := u.registry.JoinChat(sessionID, request.Room); err != nil {
		u.log.Warn("join rejected", "session", sessionID, "room", request.Room, "error", err)
		u.registry.SendTo(sessionID, domain.NewErrorEvent(noticeInternal))
		return
	}

	messages, err := u.store.Recent(request.Room, u.limit)
	if err != nil {
		u.log.Error("history fetch failed", "room", request.Room, "error", err)
		u.registry.SendTo(sessionID, domain.NewErrorEvent(noticeHistoryFail))
	} else {
		u.registry.SendTo(sessionID, domain.NewHistoryEvent(request.Room, messages))
	}

	u.registry.BroadcastChat(request.Room, domain.NewUserJoinedEvent(name), sessionID)
	u.log.Info("session joined room", "session", sessionID, "room", request.Room, "name", name)
}

// handleSend persists first, then broadcasts to the full room including the
// sender. A message is never broadcast without being durably recorded; if the
// append fails only the sender hears about it.
func (u *ChatUsecase) handleSend(sessionID string, request domain.Request) {
	room := request.Room
	if room == "" {
		current, ok := u.registry.RoomOf(sessionID)
		if !ok {
			u.registry.SendTo(sessionID, domain.NewErrorEvent(noticeNoRoom))
			return
		}
		room = current
	}
	body := strings.TrimSpace(request.Message)
	if body == "" {
		u.registry.SendTo(sessionID, domain.NewErrorEvent(noticeEmptyMessage))
		return
	}
	if len(u.registry.MembersOf(room)) == 0 {
		u.registry.SendTo(sessionID, domain.NewErrorEvent(noticeUnknownRoom))
		return
	}

	session, _ := u.registry.Session(sessionID)
	name := session.Name
	if name == "" {
		name = domain.PlaceholderName(sessionID)
	}

	// The per-room lock makes broadcast order equal persistence order for
	// concurrent senders; the store remains the source of truth for order.
	lock := u.roomLock(room)
	lock.Lock()
	defer lock.Unlock()

	message, err := u.store.Append(room, sessionID, name, body)
	if err != nil {
		u.log.Error("message append failed", "room", room, "session", sessionID, "error", err)
		u.registry.SendTo(sessionID, domain.NewErrorEvent(noticeSendFail))
		return
	}
	u.registry.BroadcastChat(room, domain.NewReceiveMessageEvent(message), "")
}

// handleDisconnect announces the departure to the rest of the room, then
// releases all state. No failure path suppresses the cleanup.
func (u *ChatUsecase) handleDisconnect(sessionID string) {
	session, exists := u.registry.Session(sessionID)
	if !exists {
		return
	}
	if session.CurrentRoom != "" {
		name := session.Name
		if name == "" {
			name = domain.PlaceholderName(sessionID)
		}
		u.registry.BroadcastChat(session.CurrentRoom, domain.NewUserLeftEvent(name), sessionID)
	}
	u.registry.Disconnect(sessionID)
	u.log.Info("session disconnected", "session", sessionID)
}

func (u *ChatUsecase) roomLock(room string) *sync.Mutex {
	lock, _ := u.roomLocks.LoadOrStore(room, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// Stats exposes registry activity for operational logging.
func (u *ChatUsecase) Stats() domain.Stats {
	return u.registry.GetStats()
}
