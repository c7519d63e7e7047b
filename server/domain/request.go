package domain

type RequestType int

const (
	RequestJoinRoom RequestType = iota
	RequestSendMessage
	RequestJoinProject
	RequestLeaveProject
)

func (t RequestType) String() string {
	switch t {
	case RequestJoinRoom:
		return "join_room"
	case RequestSendMessage:
		return "send_message"
	case RequestJoinProject:
		return "join_project"
	case RequestLeaveProject:
		return "leave_project"
	default:
		return "unknown"
	}
}

// Request is one inbound session event, already decoded from the transport.
type Request struct {
	Type      RequestType
	Room      string
	Username  string
	Message   string
	ProjectID string
}

func NewJoinRoomRequest(room, username string) Request {
	return Request{
		Type:     RequestJoinRoom,
		Room:     room,
		Username: username,
	}
}

// NewSendMessageRequest carries an empty Room when the client wants the
// session's current room.
func NewSendMessageRequest(room, message string) Request {
	return Request{
		Type:    RequestSendMessage,
		Room:    room,
		Message: message,
	}
}

func NewJoinProjectRequest(projectID string) Request {
	return Request{
		Type:      RequestJoinProject,
		ProjectID: projectID,
	}
}

func NewLeaveProjectRequest(projectID string) Request {
	return Request{
		Type:      RequestLeaveProject,
		ProjectID: projectID,
	}
}

// IsValid checks structural validity only. A send with an empty message is
// structurally fine; the gateway answers it with an error notice instead of
// dropping it at the transport.
func (r Request) IsValid() bool {
	switch r.Type {
	case RequestJoinRoom:
		return r.Room != ""
	case RequestSendMessage:
		return true
	case RequestJoinProject, RequestLeaveProject:
		return r.ProjectID != ""
	default:
		return false
	}
}

func (r Request) String() string {
	switch r.Type {
	case RequestJoinRoom:
		return r.Type.String() + ": " + r.Username + " -> " + r.Room
	case RequestSendMessage:
		return r.Type.String() + ": " + r.Message
	case RequestJoinProject, RequestLeaveProject:
		return r.Type.String() + ": " + r.ProjectID
	default:
		return r.Type.String()
	}
}
