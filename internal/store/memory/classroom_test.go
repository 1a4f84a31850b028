package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"classlive/internal/domain"
	"classlive/internal/model"
)

func TestClassroomDirectory(t *testing.T) {
	dir := NewClassroomDirectory()
	ctx := context.Background()

	dir.AddMeeting(model.Meeting{ID: "m1", ClassroomID: "c1", Code: "math-101", Active: true})
	dir.AddMeeting(model.Meeting{ID: "m2", ClassroomID: "c1", Code: "ended", Active: false})
	dir.Enroll("c1", "u1")
	dir.SetDisplayName("u1", "Alice")

	meeting, err := dir.ActiveByCode(ctx, "math-101")
	require.NoError(t, err)
	require.Equal(t, "m1", meeting.ID)

	_, err = dir.ActiveByCode(ctx, "ended")
	require.ErrorIs(t, err, domain.ErrRoomNotFound)
	_, err = dir.ActiveByCode(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrRoomNotFound)

	ok, err := dir.CanJoin(ctx, "u1", "c1")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = dir.CanJoin(ctx, "u2", "c1")
	require.NoError(t, err)
	require.False(t, ok)

	name, err := dir.DisplayName(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "Alice", name)
}
