package memory

import (
	"context"
	"time"

	"classlive/internal/model"
)

func (s *Store) CreateNotifications(_ context.Context, notifications []model.Notification) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := make([]model.Notification, 0, len(notifications))
	for _, notification := range notifications {
		notification.ID = s.nextID
		s.nextID++
		if notification.CreatedAt.IsZero() {
			notification.CreatedAt = time.Now().UTC()
		}
		s.records = append(s.records, notification)
		created = append(created, notification)
	}
	return created, nil
}

func (s *Store) ListNotifications(_ context.Context, userID string, limit int) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []model.Notification
	for i := len(s.records) - 1; i >= 0; i-- {
		record := s.records[i]
		if record.UserID != userID {
			continue
		}
		result = append(result, record)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (s *Store) MarkNotificationsRead(_ context.Context, userID string, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	now := time.Now().UTC()
	for i := range s.records {
		record := &s.records[i]
		if record.UserID != userID || record.IsRead {
			continue
		}
		if _, ok := wanted[record.ID]; ok {
			record.IsRead = true
			record.ReadAt = &now
		}
	}
	return nil
}
