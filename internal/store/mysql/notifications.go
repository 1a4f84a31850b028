package mysql

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"classlive/internal/model"
)

const createColumns = "(user_id, title, message, type, classroom_id, assignment_id, metadata, is_read, created_at)"

func (s *Store) CreateNotifications(ctx context.Context, notifications []model.Notification) ([]model.Notification, error) {
	if len(notifications) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString("INSERT INTO notifications " + createColumns + " VALUES ")
	for i := range notifications {
		n := &notifications[i]
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, n.UserID, n.Title, n.Message, n.Type, n.ClassroomID, n.AssignmentID, n.Metadata, n.IsRead, n.CreatedAt)
	}

	result, err := s.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		s.log.Error("sql create notifications failed",
			zap.Int("count", len(notifications)),
			zap.Error(err),
		)
		return nil, err
	}

	// MySQL reports the id of the first row of a multi-row insert; the rest
	// follow consecutively with the default auto_increment step.
	firstID, err := result.LastInsertId()
	if err != nil {
		s.log.Error("sql last insert id failed", zap.Error(err))
		return nil, err
	}
	for i := range notifications {
		notifications[i].ID = firstID + int64(i)
	}
	return notifications, nil
}

func (s *Store) ListNotifications(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, message, type, classroom_id, assignment_id, metadata, is_read, created_at, read_at
		 FROM notifications WHERE user_id = ? ORDER BY id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		s.log.Error("sql list notifications failed", zap.String("user_id", userID), zap.Int("limit", limit), zap.Error(err))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var result []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.ClassroomID, &n.AssignmentID, &n.Metadata, &n.IsRead, &n.CreatedAt, &n.ReadAt); err != nil {
			s.log.Error("sql scan notification failed", zap.Error(err))
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (s *Store) MarkNotificationsRead(ctx context.Context, userID string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?, ", len(ids)-1) + "?"
	args := []any{time.Now().UTC(), userID}
	for _, id := range ids {
		args = append(args, id)
	}

	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = TRUE, read_at = ? WHERE user_id = ? AND is_read = FALSE AND id IN ("+placeholders+")",
		args...,
	)
	if err != nil {
		s.log.Error("sql mark read failed", zap.String("user_id", userID), zap.Int("count", len(ids)), zap.Error(err))
	}
	return err
}
