package e2e

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"classlive/internal/config"
	httpserver "classlive/internal/http"
	"classlive/internal/http/controller"
	"classlive/internal/model"
	"classlive/internal/service/notify"
	"classlive/internal/signaling"
	"classlive/internal/sse"
	"classlive/internal/store/memory"
)

type wsFrame struct {
	Event string          `json:"event,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func newMeetingServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		HTTPAddr:     ":0",
		SSEHeartbeat: 5 * time.Second,
		WorkerKey:    "secret",
	}
	logger := zap.NewNop()
	repo := memory.New(logger)
	hub := sse.NewHub()
	svc := notify.NewService(repo, hub, logger)
	dispatcher := notify.NewDispatcher(&noopPublisher{}, logger)

	dir := memory.NewClassroomDirectory()
	dir.AddMeeting(model.Meeting{ID: "m1", ClassroomID: "c1", Code: "math-101", Active: true})
	dir.Enroll("c1", "u1")
	dir.Enroll("c1", "u2")
	dir.SetDisplayName("u1", "Alice")
	dir.SetDisplayName("u2", "Bob")
	signal := signaling.NewHub(signaling.NewRegistry(), dir, dir, dir, logger)

	handler := controller.NewHandler(cfg, svc, dispatcher, hub, signal, logger)
	router := httpserver.NewRouter(cfg, handler, logger)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func dialMeeting(t *testing.T, server *httptest.Server, userID, userName string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/meetings?user_id=" + userID + "&user_name=" + userName
	conn, resp, err := websocket.DefaultDialer.DialContext(context.Background(), url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) wsFrame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var frame wsFrame
	require.NoError(t, json.Unmarshal(raw, &frame))
	return frame
}

func sendAction(t *testing.T, conn *websocket.Conn, action string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	require.NoError(t, err)
	frame, err := json.Marshal(map[string]any{"action": action, "data": json.RawMessage(payload)})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))
}

func TestMeetingJoinAndRelay(t *testing.T) {
	ginTestMode()
	server := newMeetingServer(t)

	alice := dialMeeting(t, server, "u1", "Alice")
	sendAction(t, alice, "join-room", map[string]string{"roomCode": "math-101"})

	snapshot := readFrame(t, alice)
	require.Equal(t, "ParticipantsSnapshot", snapshot.Event)
	var aliceView []map[string]any
	require.NoError(t, json.Unmarshal(snapshot.Data, &aliceView))
	require.Len(t, aliceView, 1)
	aliceConnID, _ := aliceView[0]["connectionId"].(string)
	require.NotEmpty(t, aliceConnID)

	bob := dialMeeting(t, server, "u2", "Bob")
	sendAction(t, bob, "join-room", map[string]string{"roomCode": "math-101"})

	snapshot = readFrame(t, bob)
	require.Equal(t, "ParticipantsSnapshot", snapshot.Event)
	var bobView []map[string]any
	require.NoError(t, json.Unmarshal(snapshot.Data, &bobView))
	require.Len(t, bobView, 2)

	joined := readFrame(t, alice)
	require.Equal(t, "ParticipantJoined", joined.Event)
	var joinedData map[string]any
	require.NoError(t, json.Unmarshal(joined.Data, &joinedData))
	require.Equal(t, "u2", joinedData["userId"])

	// Bob sends Alice an offer addressed by connection id.
	sendAction(t, bob, "offer", map[string]any{
		"target":  aliceConnID,
		"payload": map[string]string{"sdp": "v=0"},
	})
	offer := readFrame(t, alice)
	require.Equal(t, "ReceiveOffer", offer.Event)
	var offerData map[string]any
	require.NoError(t, json.Unmarshal(offer.Data, &offerData))
	require.NotEmpty(t, offerData["from"])

	sendAction(t, bob, "chat", map[string]string{"message": "hello"})
	chat := readFrame(t, alice)
	require.Equal(t, "ReceiveChatMessage", chat.Event)
	var chatData map[string]any
	require.NoError(t, json.Unmarshal(chat.Data, &chatData))
	require.Equal(t, "Bob", chatData["userName"])
	// Bob hears his own chat too.
	require.Equal(t, "ReceiveChatMessage", readFrame(t, bob).Event)

	require.NoError(t, bob.Close())
	left := readFrame(t, alice)
	require.Equal(t, "ParticipantLeft", left.Event)
	var leftData map[string]any
	require.NoError(t, json.Unmarshal(left.Data, &leftData))
	require.Equal(t, "u2", leftData["userId"])
}

func TestMeetingJoinRejected(t *testing.T) {
	ginTestMode()
	server := newMeetingServer(t)

	conn := dialMeeting(t, server, "outsider", "Eve")
	sendAction(t, conn, "join-room", map[string]string{"roomCode": "math-101"})

	frame := readFrame(t, conn)
	require.Equal(t, "Error", frame.Event)
	var errData map[string]any
	require.NoError(t, json.Unmarshal(frame.Data, &errData))
	require.Equal(t, "NotEnrolled", errData["code"])
}
