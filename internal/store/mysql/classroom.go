package mysql

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"classlive/internal/domain"
	"classlive/internal/model"
)

// ClassroomDirectory reads meetings, enrollments and display names owned by
// the classroom CRUD tables.
type ClassroomDirectory struct {
	db  *sql.DB
	log *zap.Logger
}

func NewClassroomDirectory(db *sql.DB, logger *zap.Logger) *ClassroomDirectory {
	return &ClassroomDirectory{db: db, log: logger}
}

func (d *ClassroomDirectory) ActiveByCode(ctx context.Context, code string) (model.Meeting, error) {
	var meeting model.Meeting
	err := d.db.QueryRowContext(ctx,
		"SELECT id, classroom_id, code, active, started_at FROM meetings WHERE code = ? AND active = TRUE",
		code,
	).Scan(&meeting.ID, &meeting.ClassroomID, &meeting.Code, &meeting.Active, &meeting.StartedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Meeting{}, domain.ErrRoomNotFound
	}
	if err != nil {
		d.log.Error("sql meeting lookup failed", zap.String("code", code), zap.Error(err))
		return model.Meeting{}, err
	}
	return meeting, nil
}

func (d *ClassroomDirectory) CanJoin(ctx context.Context, userID, classroomID string) (bool, error) {
	var enrolled bool
	err := d.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM enrollments WHERE classroom_id = ? AND user_id = ?)",
		classroomID, userID,
	).Scan(&enrolled)
	if err != nil {
		d.log.Error("sql enrollment lookup failed",
			zap.String("classroom_id", classroomID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return false, err
	}
	return enrolled, nil
}

// DisplayName returns "" for unknown users; callers fall back to the name the
// connection was opened with.
func (d *ClassroomDirectory) DisplayName(ctx context.Context, userID string) (string, error) {
	var name string
	err := d.db.QueryRowContext(ctx, "SELECT display_name FROM users WHERE id = ?", userID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		d.log.Error("sql display name lookup failed", zap.String("user_id", userID), zap.Error(err))
		return "", err
	}
	return name, nil
}
