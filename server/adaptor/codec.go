package adaptor

import (
	"encoding/json"
	"fmt"

	"github.com/Shauryasoni262/BusinessOps-Suite-sub001/server/domain"
)

// Inbound event names as they appear on the wire.
const (
	eventJoinRoom     = "join_room"
	eventSendMessage  = "send_message"
	eventJoinProject  = "join_project"
	eventLeaveProject = "leave_project"
)

// envelope is the wire frame for inbound traffic: {"event": ..., "data": ...}.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type joinRoomData struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}

type sendMessageData struct {
	Room    string `json:"room"`
	Message string `json:"message"`
}

type projectData struct {
	ProjectID string `json:"projectId"`
}

// decodeRequest turns one raw websocket frame into a domain request.
// join_room accepts either a bare room token or a {room, username} object;
// project events accept a bare project id or a {projectId} object.
func decodeRequest(raw []byte) (domain.Request, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return domain.Request{}, fmt.Errorf("malformed frame: %w", err)
	}

	switch env.Event {
	case eventJoinRoom:
		var data joinRoomData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			var room string
			if err := json.Unmarshal(env.Data, &room); err != nil {
				return domain.Request{}, fmt.Errorf("malformed join_room payload: %w", err)
			}
			return domain.NewJoinRoomRequest(room, ""), nil
		}
		return domain.NewJoinRoomRequest(data.Room, data.Username), nil

	case eventSendMessage:
		var data sendMessageData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return domain.Request{}, fmt.Errorf("malformed send_message payload: %w", err)
		}
		return domain.NewSendMessageRequest(data.Room, data.Message), nil

	case eventJoinProject, eventLeaveProject:
		projectID, err := decodeProjectID(env.Data)
		if err != nil {
			return domain.Request{}, fmt.Errorf("malformed %s payload: %w", env.Event, err)
		}
		if env.Event == eventJoinProject {
			return domain.NewJoinProjectRequest(projectID), nil
		}
		return domain.NewLeaveProjectRequest(projectID), nil

	default:
		return domain.Request{}, fmt.Errorf("unknown event %q", env.Event)
	}
}

func decodeProjectID(data json.RawMessage) (string, error) {
	var projectID string
	if err := json.Unmarshal(data, &projectID); err == nil {
		return projectID, nil
	}
	var obj projectData
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", err
	}
	return obj.ProjectID, nil
}

func encodeEvent(event domain.Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s event: %w", event.Name, err)
	}
	return data, nil
}
