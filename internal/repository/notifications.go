package repository

import (
	"context"

	"classlive/internal/model"
)

type NotificationRepository interface {
	// CreateNotifications persists one batch of records and returns them with
	// ids and timestamps assigned.
	CreateNotifications(ctx context.Context, notifications []model.Notification) ([]model.Notification, error)
	ListNotifications(ctx context.Context, userID string, limit int) ([]model.Notification, error)
	MarkNotificationsRead(ctx context.Context, userID string, ids []int64) error
}
