package signaling

import (
	"context"

	"classlive/internal/model"
)

// External collaborators of the hub. Classroom CRUD owns the data behind all
// three; the hub only reads through these interfaces.

type MeetingStore interface {
	// ActiveByCode resolves a normalized room code to the active meeting using
	// it, or domain.ErrRoomNotFound.
	ActiveByCode(ctx context.Context, code string) (model.Meeting, error)
}

type MembershipGuard interface {
	CanJoin(ctx context.Context, userID, classroomID string) (bool, error)
}

type UserDirectory interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}
