package signaling

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"classlive/internal/domain"
	"classlive/internal/metrics"
)

// Hub is the presence-and-signaling surface for live meeting rooms. It owns
// the room broadcast groups; participant state lives in the injected Registry.
// The hub never inspects negotiation payloads, it only routes them.
type Hub struct {
	registry *Registry
	meetings MeetingStore
	guard    MembershipGuard
	users    UserDirectory
	log      *zap.Logger

	mu    sync.RWMutex
	conns map[string]*Client            // every open connection
	rooms map[string]map[string]*Client // room code -> joined connections
}

func NewHub(registry *Registry, meetings MeetingStore, guard MembershipGuard, users UserDirectory, logger *zap.Logger) *Hub {
	return &Hub{
		registry: registry,
		meetings: meetings,
		guard:    guard,
		users:    users,
		log:      logger,
		conns:    make(map[string]*Client),
		rooms:    make(map[string]map[string]*Client),
	}
}

// ServeConn runs a websocket connection until it closes. The caller is
// expected to have authenticated userID already.
func (h *Hub) ServeConn(ctx context.Context, conn *websocket.Conn, userID, userName string) {
	client := newClient(conn, userID, userName, h.log)
	h.connect(client)
	go client.writePump()
	client.readPump(ctx, h)
}

func (h *Hub) connect(c *Client) {
	h.mu.Lock()
	h.conns[c.id] = c
	h.mu.Unlock()
	metrics.SignalingConnections.Inc()
	h.log.Info("signaling connection opened",
		zap.String("connection_id", c.id),
		zap.String("user_id", c.userID),
	)
}

// Disconnect runs the same teardown as an explicit leave before dropping the
// connection, so the room sees exactly one ParticipantLeft either way.
func (h *Hub) Disconnect(c *Client) {
	h.leave(c)

	h.mu.Lock()
	_, open := h.conns[c.id]
	delete(h.conns, c.id)
	h.mu.Unlock()
	if !open {
		return
	}

	c.close()
	metrics.SignalingConnections.Dec()
	h.log.Info("signaling connection closed", zap.String("connection_id", c.id))
}

// Dispatch routes one inbound frame. Malformed frames are dropped; join
// failures are reported back to the caller as a short error code.
func (h *Hub) Dispatch(ctx context.Context, c *Client, raw []byte) {
	var frame clientFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.log.Debug("malformed frame", zap.Error(err))
		return
	}

	switch frame.Action {
	case ActionJoinRoom:
		var p joinPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return
		}
		if err := h.JoinRoom(ctx, c, p.RoomCode); err != nil {
			c.enqueue(serverFrame{Event: EventError, Data: errorEvent{Code: domain.JoinErrorCode(err)}})
		}
	case ActionLeaveRoom:
		h.leave(c)
	case ActionScreenShare:
		var p screenSharePayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return
		}
		h.UpdateScreenShare(c, p.Active, p.Label)
	case ActionCamera:
		var p cameraPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return
		}
		h.UpdateCameraState(c, p.Enabled)
	case ActionOffer, ActionAnswer, ActionIceCandidate:
		var p relayPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return
		}
		h.relay(c, frame.Action, p)
	case ActionChat:
		var p chatPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return
		}
		h.SendChatMessage(ctx, c, p.Message)
	default:
		c.log.Debug("unknown action", zap.String("action", frame.Action))
	}
}

// JoinRoom validates the code, the active meeting and the caller's enrollment
// before any state is touched; a failed join leaves no trace. The joiner
// receives the room snapshot before it appears in anyone else's broadcast.
func (h *Hub) JoinRoom(ctx context.Context, c *Client, roomCode string) error {
	code := strings.ToLower(strings.TrimSpace(roomCode))
	if code == "" {
		return domain.ErrRoomInvalid
	}

	meeting, err := h.meetings.ActiveByCode(ctx, code)
	if err != nil {
		return err
	}
	allowed, err := h.guard.CanJoin(ctx, c.userID, meeting.ClassroomID)
	if err != nil {
		return err
	}
	if !allowed {
		return domain.ErrNotEnrolled
	}

	// A connection is in at most one room. Moving rooms tears the old
	// membership down first, so the old room sees a ParticipantLeft before the
	// new room sees the join.
	h.leave(c)

	h.registry.Put(ConnectionState{
		ConnectionID: c.id,
		RoomCode:     code,
		MeetingID:    meeting.ID,
		UserID:       c.userID,
		UserName:     c.userName,
		CameraOn:     true,
	})
	metrics.SignalingParticipants.Inc()

	c.enqueue(serverFrame{Event: EventParticipantsSnapshot, Data: h.registry.SnapshotByRoom(code)})

	h.mu.Lock()
	if _, open := h.conns[c.id]; !open {
		h.mu.Unlock()
		// The transport disconnected while this frame was in flight. Undo the
		// insert; otherwise nothing would ever tear this membership down.
		if _, ok := h.registry.Remove(c.id); ok {
			metrics.SignalingParticipants.Dec()
		}
		return nil
	}
	if h.rooms[code] == nil {
		h.rooms[code] = make(map[string]*Client)
	}
	h.rooms[code][c.id] = c
	h.mu.Unlock()

	h.broadcast(code, serverFrame{Event: EventParticipantJoined, Data: participantJoined{
		MeetingID:    meeting.ID,
		UserID:       c.userID,
		ConnectionID: c.id,
		UserName:     c.userName,
		CameraOn:     true,
	}}, c.id)

	h.log.Info("participant joined",
		zap.String("connection_id", c.id),
		zap.String("user_id", c.userID),
		zap.String("room", code),
	)
	return nil
}

// leave is shared by the leave-room action and transport disconnect.
// Idempotent: a caller with no state is a no-op.
func (h *Hub) leave(c *Client) {
	state, ok := h.registry.Remove(c.id)
	if !ok {
		return
	}
	metrics.SignalingParticipants.Dec()

	h.mu.Lock()
	if room := h.rooms[state.RoomCode]; room != nil {
		delete(room, c.id)
		if len(room) == 0 {
			delete(h.rooms, state.RoomCode)
		}
	}
	h.mu.Unlock()

	h.broadcast(state.RoomCode, serverFrame{Event: EventParticipantLeft, Data: participantLeft{
		MeetingID:    state.MeetingID,
		UserID:       state.UserID,
		ConnectionID: state.ConnectionID,
	}}, c.id)

	h.log.Info("participant left",
		zap.String("connection_id", c.id),
		zap.String("room", state.RoomCode),
	)
}

func (h *Hub) UpdateScreenShare(c *Client, active bool, label string) {
	state, ok := h.registry.Get(c.id)
	if !ok {
		return
	}
	h.broadcast(state.RoomCode, serverFrame{Event: EventScreenShareUpdated, Data: screenShareUpdated{
		ConnectionID: c.id,
		UserID:       state.UserID,
		Active:       active,
		Label:        label,
	}}, "")
}

func (h *Hub) UpdateCameraState(c *Client, enabled bool) {
	state, ok := h.registry.SetCamera(c.id, enabled)
	if !ok {
		return
	}
	h.broadcast(state.RoomCode, serverFrame{Event: EventCameraStateUpdated, Data: cameraStateUpdated{
		ConnectionID: c.id,
		UserID:       state.UserID,
		Enabled:      enabled,
	}}, "")
}

// relay forwards a negotiation payload to exactly one target connection. The
// payload is opaque. Unknown targets are dropped silently; callers only learn
// ids from snapshots and join broadcasts of rooms they are members of.
func (h *Hub) relay(c *Client, action string, p relayPayload) {
	h.mu.RLock()
	target := h.conns[p.Target]
	h.mu.RUnlock()
	if target == nil {
		return
	}

	switch action {
	case ActionOffer:
		target.enqueue(serverFrame{Event: EventReceiveOffer, Data: relayedPayload{From: c.id, Payload: p.Payload}})
	case ActionAnswer:
		target.enqueue(serverFrame{Event: EventReceiveAnswer, Data: relayedPayload{From: c.id, Payload: p.Payload}})
	case ActionIceCandidate:
		target.enqueue(serverFrame{Event: EventReceiveIceCandidate, Data: relayedCandidate{From: c.id, Candidate: p.Payload}})
	}
}

func (h *Hub) SendChatMessage(ctx context.Context, c *Client, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	state, ok := h.registry.Get(c.id)
	if !ok {
		return
	}

	name, err := h.users.DisplayName(ctx, state.UserID)
	if err != nil || name == "" {
		name = state.UserName
	}

	h.broadcast(state.RoomCode, serverFrame{Event: EventReceiveChatMessage, Data: chatMessage{
		Message:  text,
		UserID:   state.UserID,
		UserName: name,
		SentAt:   time.Now().UTC(),
	}}, "")
}

// broadcast fans a frame out to every joined connection in the room, minus
// the excluded id. The client set is copied under the read lock; enqueue never
// blocks, so a slow participant cannot stall the room.
func (h *Hub) broadcast(roomCode string, frame serverFrame, exceptID string) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[roomCode]))
	for id, client := range h.rooms[roomCode] {
		if id == exceptID {
			continue
		}
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		client.enqueue(frame)
	}
}
