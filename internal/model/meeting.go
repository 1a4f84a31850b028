package model

import "time"

// Meeting is a live session owned by a classroom. Meetings are created and
// ended by CRUD controllers outside this core; the signaling hub only reads
// them through a MeetingStore.
type Meeting struct {
	ID          string    `json:"id"`
	ClassroomID string    `json:"classroomId"`
	Code        string    `json:"code"`
	Active      bool      `json:"active"`
	StartedAt   time.Time `json:"startedAt"`
}
