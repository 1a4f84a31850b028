package signaling

import "sync"

// ConnectionState is the participant state owned by the registry. Values are
// stored by copy; mutation goes through Put or SetCamera so concurrent readers
// never observe a half-written entry.
type ConnectionState struct {
	ConnectionID string `json:"connectionId"`
	RoomCode     string `json:"-"`
	MeetingID    string `json:"meetingId"`
	UserID       string `json:"userId"`
	UserName     string `json:"userName"`
	CameraOn     bool   `json:"cameraOn"`
}

// Registry maps connection ids to participant state. Per-connection entries
// live in a sync.Map; the room index has its own lock, so a room snapshot
// never blocks joins or leaves of unrelated connections.
type Registry struct {
	states sync.Map // connection id -> ConnectionState

	mu    sync.RWMutex
	rooms map[string]map[string]struct{} // room code -> connection id set
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]map[string]struct{})}
}

func (r *Registry) Put(state ConnectionState) {
	r.states.Store(state.ConnectionID, state)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rooms[state.RoomCode] == nil {
		r.rooms[state.RoomCode] = make(map[string]struct{})
	}
	r.rooms[state.RoomCode][state.ConnectionID] = struct{}{}
}

func (r *Registry) Get(connectionID string) (ConnectionState, bool) {
	v, ok := r.states.Load(connectionID)
	if !ok {
		return ConnectionState{}, false
	}
	return v.(ConnectionState), true
}

// Remove deletes the entry and returns it. Removing an absent id is a normal
// no-op, not an error.
func (r *Registry) Remove(connectionID string) (ConnectionState, bool) {
	v, ok := r.states.LoadAndDelete(connectionID)
	if !ok {
		return ConnectionState{}, false
	}
	state := v.(ConnectionState)

	r.mu.Lock()
	defer r.mu.Unlock()
	if ids := r.rooms[state.RoomCode]; ids != nil {
		delete(ids, connectionID)
		if len(ids) == 0 {
			delete(r.rooms, state.RoomCode)
		}
	}
	return state, true
}

// SetCamera replaces the stored state with the camera flag updated. No-op when
// the connection has no state.
func (r *Registry) SetCamera(connectionID string, enabled bool) (ConnectionState, bool) {
	v, ok := r.states.Load(connectionID)
	if !ok {
		return ConnectionState{}, false
	}
	state := v.(ConnectionState)
	state.CameraOn = enabled
	r.states.Store(connectionID, state)
	return state, true
}

// SnapshotByRoom returns a point-in-time copy of every participant state in
// the room. The id set is copied under the room lock; states are then read
// individually, so snapshots are consistent per entry rather than globally.
func (r *Registry) SnapshotByRoom(roomCode string) []ConnectionState {
	r.mu.RLock()
	ids := make([]string, 0, len(r.rooms[roomCode]))
	for id := range r.rooms[roomCode] {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	snapshot := make([]ConnectionState, 0, len(ids))
	for _, id := range ids {
		if state, ok := r.Get(id); ok {
			snapshot = append(snapshot, state)
		}
	}
	return snapshot
}
