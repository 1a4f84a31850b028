package domain

import "errors"

const (
	NotificationTypeAssignment   = "assignment"
	NotificationTypeSubmission   = "submission"
	NotificationTypeGrade        = "grade"
	NotificationTypeAnnouncement = "announcement"
	NotificationTypeMeeting      = "meeting"
	NotificationTypeSystem       = "system"
)

var (
	ErrInvalidNotificationType = errors.New("invalid notification type")
	ErrEnvelopeInvalid         = errors.New("envelope missing required fields")
)

func IsValidNotificationType(value string) bool {
	switch value {
	case NotificationTypeAssignment,
		NotificationTypeSubmission,
		NotificationTypeGrade,
		NotificationTypeAnnouncement,
		NotificationTypeMeeting,
		NotificationTypeSystem:
		return true
	default:
		return false
	}
}
