package domain

import "errors"

// Join failures are client errors: they are reported to the caller as a short
// code and never retried automatically.
var (
	ErrRoomInvalid  = errors.New("room code is empty")
	ErrRoomNotFound = errors.New("no active meeting for room code")
	ErrNotEnrolled  = errors.New("user is not enrolled in the classroom")
)

// JoinErrorCode maps a join failure to the code surfaced to the caller's
// client. Unknown errors fall back to an internal code.
func JoinErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrRoomInvalid):
		return "RoomInvalid"
	case errors.Is(err, ErrRoomNotFound):
		return "RoomNotFound"
	case errors.Is(err, ErrNotEnrolled):
		return "NotEnrolled"
	default:
		return "Internal"
	}
}
