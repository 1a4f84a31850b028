package signaling

import (
	"encoding/json"
	"time"
)

// Client -> server actions.
const (
	ActionJoinRoom     = "join-room"
	ActionLeaveRoom    = "leave-room"
	ActionScreenShare  = "screen-share"
	ActionCamera       = "camera"
	ActionOffer        = "offer"
	ActionAnswer       = "answer"
	ActionIceCandidate = "ice-candidate"
	ActionChat         = "chat"
)

// Server -> client events.
const (
	EventParticipantsSnapshot = "ParticipantsSnapshot"
	EventParticipantJoined    = "ParticipantJoined"
	EventParticipantLeft      = "ParticipantLeft"
	EventScreenShareUpdated   = "ScreenShareUpdated"
	EventCameraStateUpdated   = "CameraStateUpdated"
	EventReceiveOffer         = "ReceiveOffer"
	EventReceiveAnswer        = "ReceiveAnswer"
	EventReceiveIceCandidate  = "ReceiveIceCandidate"
	EventReceiveChatMessage   = "ReceiveChatMessage"
	EventError                = "Error"
)

type clientFrame struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type serverFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type joinPayload struct {
	RoomCode string `json:"roomCode"`
}

type screenSharePayload struct {
	Active bool   `json:"active"`
	Label  string `json:"label"`
}

type cameraPayload struct {
	Enabled bool `json:"enabled"`
}

type relayPayload struct {
	Target  string          `json:"target"`
	Payload json.RawMessage `json:"payload"`
}

type chatPayload struct {
	Message string `json:"message"`
}

type participantJoined struct {
	MeetingID    string `json:"meetingId"`
	UserID       string `json:"userId"`
	ConnectionID string `json:"connectionId"`
	UserName     string `json:"userName"`
	CameraOn     bool   `json:"cameraOn"`
}

type participantLeft struct {
	MeetingID    string `json:"meetingId"`
	UserID       string `json:"userId"`
	ConnectionID string `json:"connectionId"`
}

type screenShareUpdated struct {
	ConnectionID string `json:"connectionId"`
	UserID       string `json:"userId"`
	Active       bool   `json:"active"`
	Label        string `json:"label"`
}

type cameraStateUpdated struct {
	ConnectionID string `json:"connectionId"`
	UserID       string `json:"userId"`
	Enabled      bool   `json:"enabled"`
}

type relayedPayload struct {
	From    string          `json:"from"`
	Payload json.RawMessage `json:"payload"`
}

type relayedCandidate struct {
	From      string          `json:"from"`
	Candidate json.RawMessage `json:"candidate"`
}

type chatMessage struct {
	Message  string    `json:"message"`
	UserID   string    `json:"userId"`
	UserName string    `json:"userName"`
	SentAt   time.Time `json:"sentAt"`
}

type errorEvent struct {
	Code string `json:"code"`
}
