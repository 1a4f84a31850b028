package notify

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"classlive/internal/domain"
	"classlive/internal/metrics"
	"classlive/internal/model"
	"classlive/internal/repository"
	"classlive/internal/sse"
)

// actorHint is the optional display payload carried opaquely in envelope
// metadata.
type actorHint struct {
	ActorName   string `json:"actorName"`
	ActorAvatar string `json:"actorAvatar"`
}

type Service struct {
	store repository.NotificationRepository
	hub   *sse.Hub
	log   *zap.Logger
}

func NewService(store repository.NotificationRepository, hub *sse.Hub, logger *zap.Logger) *Service {
	return &Service{store: store, hub: hub, log: logger}
}

// Deliver fans one envelope out: one persisted record per recipient, then one
// push per created record. Persistence happens before the first push; pushes
// are independent of each other, so a crash mid-way leaves some recipients to
// pick the record up on their next poll.
func (s *Service) Deliver(ctx context.Context, envelope model.Envelope) ([]model.Notification, error) {
	if envelope.Title == "" || envelope.Message == "" || envelope.Type == "" || len(envelope.UserIDs) == 0 {
		return nil, domain.ErrEnvelopeInvalid
	}
	if !domain.IsValidNotificationType(envelope.Type) {
		return nil, domain.ErrInvalidNotificationType
	}

	var hint actorHint
	if envelope.Metadata != nil {
		// Metadata stays opaque apart from the display hint.
		_ = json.Unmarshal([]byte(*envelope.Metadata), &hint)
	}

	now := time.Now().UTC()
	records := make([]model.Notification, 0, len(envelope.UserIDs))
	for _, userID := range dedupe(envelope.UserIDs) {
		records = append(records, model.Notification{
			UserID:       userID,
			Title:        envelope.Title,
			Message:      envelope.Message,
			Type:         envelope.Type,
			ClassroomID:  envelope.ClassroomID,
			AssignmentID: envelope.AssignmentID,
			Metadata:     envelope.Metadata,
			CreatedAt:    now,
		})
	}

	created, err := s.store.CreateNotifications(ctx, records)
	if err != nil {
		s.log.Error("store create notifications failed",
			zap.String("type", envelope.Type),
			zap.Int("recipients", len(records)),
			zap.Error(err),
		)
		return nil, err
	}
	metrics.NotificationsDelivered.Add(float64(len(created)))

	for _, record := range created {
		s.hub.Push(model.PushNotification{
			Notification: record,
			ActorName:    hint.ActorName,
			ActorAvatar:  hint.ActorAvatar,
		})
		metrics.NotificationsPushed.Inc()
	}
	return created, nil
}

func (s *Service) ListHistory(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	history, err := s.store.ListNotifications(ctx, userID, limit)
	if err != nil {
		s.log.Error("store list notifications failed", zap.String("user_id", userID), zap.Int("limit", limit), zap.Error(err))
		return nil, err
	}
	return history, nil
}

func (s *Service) MarkRead(ctx context.Context, userID string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.store.MarkNotificationsRead(ctx, userID, ids); err != nil {
		s.log.Error("store mark read failed", zap.String("user_id", userID), zap.Int64s("ids", ids), zap.Error(err))
		return err
	}
	return nil
}
