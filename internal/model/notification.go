package model

import "time"

// Notification is one persisted per-recipient record. A single envelope fans
// out into one Notification per recipient.
type Notification struct {
	ID           int64      `json:"id"`
	UserID       string     `json:"userId"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	Type         string     `json:"type"`
	ClassroomID  *string    `json:"classroomId,omitempty"`
	AssignmentID *string    `json:"assignmentId,omitempty"`
	Metadata     *string    `json:"metadata,omitempty"`
	IsRead       bool       `json:"isRead"`
	CreatedAt    time.Time  `json:"createdAt"`
	ReadAt       *time.Time `json:"readAt,omitempty"`
}

// Envelope is the queue wire payload. It exists only between publish and
// acknowledged consumption.
type Envelope struct {
	UserIDs      []string `json:"userIds"`
	Title        string   `json:"title"`
	Message      string   `json:"message"`
	Type         string   `json:"type"`
	ClassroomID  *string  `json:"classroomId"`
	AssignmentID *string  `json:"assignmentId"`
	Metadata     *string  `json:"metadata"`
}

// PushNotification is what a connected client receives on its private channel:
// the persisted record plus optional display hints extracted from metadata.
type PushNotification struct {
	Notification
	ActorName   string `json:"actorName,omitempty"`
	ActorAvatar string `json:"actorAvatar,omitempty"`
}
