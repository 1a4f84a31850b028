package memory

import (
	"context"
	"sync"

	"classlive/internal/domain"
	"classlive/internal/model"
)

// ClassroomDirectory is an in-memory view of meetings, enrollments and user
// display names. The real data is owned by classroom CRUD outside this core;
// this implementation backs the signaling interfaces in tests and in
// single-process deployments.
type ClassroomDirectory struct {
	mu          sync.RWMutex
	meetings    map[string]model.Meeting       // keyed by room code
	enrollments map[string]map[string]struct{} // classroom id -> user id set
	names       map[string]string              // user id -> display name
}

func NewClassroomDirectory() *ClassroomDirectory {
	return &ClassroomDirectory{
		meetings:    make(map[string]model.Meeting),
		enrollments: make(map[string]map[string]struct{}),
		names:       make(map[string]string),
	}
}

func (d *ClassroomDirectory) AddMeeting(meeting model.Meeting) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.meetings[meeting.Code] = meeting
}

func (d *ClassroomDirectory) Enroll(classroomID, userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.enrollments[classroomID] == nil {
		d.enrollments[classroomID] = make(map[string]struct{})
	}
	d.enrollments[classroomID][userID] = struct{}{}
}

func (d *ClassroomDirectory) SetDisplayName(userID, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names[userID] = name
}

func (d *ClassroomDirectory) ActiveByCode(_ context.Context, code string) (model.Meeting, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	meeting, ok := d.meetings[code]
	if !ok || !meeting.Active {
		return model.Meeting{}, domain.ErrRoomNotFound
	}
	return meeting, nil
}

func (d *ClassroomDirectory) CanJoin(_ context.Context, userID, classroomID string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.enrollments[classroomID][userID]
	return ok, nil
}

func (d *ClassroomDirectory) DisplayName(_ context.Context, userID string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.names[userID], nil
}
