package adaptor

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/Shauryasoni262/BusinessOps-Suite-sub001/server/domain"
	"github.com/Shauryasoni262/BusinessOps-Suite-sub001/server/repository"
	"github.com/Shauryasoni262/BusinessOps-Suite-sub001/server/usecase"
)

func newTestServer(t *testing.T, auth AuthFunc) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store, err := repository.NewRepository(db)
	require.NoError(t, err)

	registry := domain.NewRegistry()
	projects := usecase.NewProjectUsecase(registry, log)
	chat := usecase.NewChatUsecase(store, registry, projects, domain.DefaultHistoryLimit, log)
	ws := NewAdaptor(chat, auth, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", ws.ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func writeFrame(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

func readEvent(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &frame))
	return frame.Event, frame.Data
}

func TestGatewayEndToEnd(t *testing.T) {
	server := newTestServer(t, nil)

	// A joins an empty room and receives empty history, no join echo.
	connA := dial(t, server)
	writeFrame(t, connA, `{"event":"join_room","data":{"room":"general","username":"alice"}}`)
	event, data := readEvent(t, connA)
	require.Equal(t, "message_history", event)
	var history struct {
		Room     string            `json:"room"`
		Messages []json.RawMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(data, &history))
	require.Equal(t, "general", history.Room)
	require.Empty(t, history.Messages)

	// B joins with a bare room token; A hears user_joined.
	connB := dial(t, server)
	writeFrame(t, connB, `{"event":"join_room","data":"general"}`)
	event, _ = readEvent(t, connB)
	require.Equal(t, "message_history", event)

	event, data = readEvent(t, connA)
	require.Equal(t, "user_joined", event)
	var joined struct {
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(data, &joined))
	require.True(t, strings.HasPrefix(joined.Username, "User_"), "got %q", joined.Username)

	// A sends; both A and B receive the persisted message.
	writeFrame(t, connA, `{"event":"send_message","data":{"message":"hi"}}`)
	for _, conn := range []*websocket.Conn{connA, connB} {
		event, data = readEvent(t, conn)
		require.Equal(t, "receive_message", event)
		var msg struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
			Message  string `json:"message"`
			Room     string `json:"room"`
		}
		require.NoError(t, json.Unmarshal(data, &msg))
		require.Equal(t, "hi", msg.Message)
		require.Equal(t, "alice", msg.Username)
		require.Equal(t, "general", msg.Room)
		require.NotZero(t, msg.ID)
	}

	// B drops; A hears user_left.
	require.NoError(t, connB.Close())
	event, _ = readEvent(t, connA)
	require.Equal(t, "user_left", event)
}

func TestGatewayEmptyMessageError(t *testing.T) {
	server := newTestServer(t, nil)

	conn := dial(t, server)
	writeFrame(t, conn, `{"event":"join_room","data":"general"}`)
	event, _ := readEvent(t, conn)
	require.Equal(t, "message_history", event)

	writeFrame(t, conn, `{"event":"send_message","data":{"message":""}}`)
	event, _ = readEvent(t, conn)
	require.Equal(t, "error", event)
}

func TestGatewayRejoinReplaysHistory(t *testing.T) {
	server := newTestServer(t, nil)

	conn := dial(t, server)
	writeFrame(t, conn, `{"event":"join_room","data":"general"}`)
	event, _ := readEvent(t, conn)
	require.Equal(t, "message_history", event)
	writeFrame(t, conn, `{"event":"send_message","data":{"message":"m1"}}`)
	event, _ = readEvent(t, conn)
	require.Equal(t, "receive_message", event)

	// a fresh connection joining the same room sees the stored message
	conn2 := dial(t, server)
	writeFrame(t, conn2, `{"event":"join_room","data":"general"}`)
	event, data := readEvent(t, conn2)
	require.Equal(t, "message_history", event)
	var history struct {
		Messages []struct {
			Message string `json:"message"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(data, &history))
	require.Len(t, history.Messages, 1)
	require.Equal(t, "m1", history.Messages[0].Message)
}

func TestGatewayAuthRejection(t *testing.T) {
	server := newTestServer(t, func(r *http.Request) error {
		if r.Header.Get("X-Identity") == "" {
			return errors.New("missing identity")
		}
		return nil
	})

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	header := http.Header{}
	header.Set("X-Identity", "user-1")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	conn.Close()
}
