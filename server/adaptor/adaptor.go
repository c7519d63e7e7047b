package adaptor

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"

	"github.com/Shauryasoni262/BusinessOps-Suite-sub001/server/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 64 * 1024

	requestBuffer = 32
	eventBuffer   = 256
)

// AuthFunc admits or rejects a connection before a session is created.
// Identity and token verification happen upstream in the suite's HTTP
// middleware; a nil AuthFunc admits everyone.
type AuthFunc func(r *http.Request) error

// Adaptor upgrades HTTP requests to websocket sessions and bridges each
// connection to the usecase through a pair of channels: decoded inbound
// frames flow in, outbound events flow back and are written by a dedicated
// write pump.
type Adaptor struct {
	uc       Usecase
	auth     AuthFunc
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewAdaptor(uc Usecase, auth AuthFunc, log *slog.Logger) *Adaptor {
	return &Adaptor{
		uc:   uc,
		auth: auth,
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// ServeWS is the gateway's single websocket endpoint. All four inbound
// events (join_room, send_message, join_project, leave_project) arrive on
// the same connection.
func (a *Adaptor) ServeWS(w http.ResponseWriter, r *http.Request) {
	if a.auth != nil {
		if err := a.auth(r); err != nil {
			a.log.Warn("connection rejected", "remote", r.RemoteAddr, "error", err)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	sessionID := ulid.Make().String()
	requests := make(chan domain.Request, requestBuffer)
	events := make(chan domain.Event, eventBuffer)

	go func() {
		defer close(events)
		if err := a.uc.HandleSession(requests, events, sessionID); err != nil {
			a.log.Error("session ended with error", "session", sessionID, "error", err)
		}
	}()
	go a.writePump(conn, events, sessionID)

	a.log.Info("session connected", "session", sessionID, "remote", r.RemoteAddr)
	a.readPump(conn, requests, sessionID)
}

// readPump decodes inbound frames into requests until the socket drops, then
// closes the request channel, which drives the usecase's disconnect path.
func (a *Adaptor) readPump(conn *websocket.Conn, requests chan<- domain.Request, sessionID string) {
	defer func() {
		close(requests)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				a.log.Warn("session read error", "session", sessionID, "error", err)
			} else {
				a.log.Debug("session closed", "session", sessionID)
			}
			return
		}

		request, err := decodeRequest(raw)
		if err != nil {
			a.log.Debug("dropping malformed frame", "session", sessionID, "error", err)
			continue
		}
		requests <- request
	}
}

// writePump serializes all writes for the connection: outbound events and
// keepalive pings. It exits when the event channel is closed after session
// cleanup.
func (a *Adaptor) writePump(conn *websocket.Conn, events <-chan domain.Event, sessionID string) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case event, ok := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			data, err := encodeEvent(event)
			if err != nil {
				a.log.Error("failed to encode event", "session", sessionID, "event", event.Name, "error", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				a.log.Debug("session write failed", "session", sessionID, "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
