package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"classlive/internal/config"
	"classlive/internal/domain"
	httpserver "classlive/internal/http"
	"classlive/internal/http/controller"
	"classlive/internal/http/dto"
	"classlive/internal/http/resp"
	"classlive/internal/model"
	"classlive/internal/queue"
	"classlive/internal/repository"
	"classlive/internal/service/notify"
	"classlive/internal/signaling"
	"classlive/internal/sse"
	"classlive/internal/store/memory"
)

type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) Publish(ctx context.Context, payload []byte) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func setupRouter(t *testing.T, repo repository.NotificationRepository, publisher queue.Publisher) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		HistoryLimit: 10,
		WorkerKey:    "secret",
	}
	logger := zap.NewNop()
	hub := sse.NewHub()
	svc := notify.NewService(repo, hub, logger)
	dispatcher := notify.NewDispatcher(publisher, logger)
	dir := memory.NewClassroomDirectory()
	signal := signaling.NewHub(signaling.NewRegistry(), dir, dir, dir, logger)
	handler := controller.NewHandler(cfg, svc, dispatcher, hub, signal, logger)
	return httpserver.NewRouter(cfg, handler, logger)
}

func performJSONRequest(t *testing.T, router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestDeliverNotificationController(t *testing.T) {
	workerHeaders := map[string]string{"X-Worker-Key": "secret"}

	t.Run("missing worker key", func(t *testing.T) {
		router := setupRouter(t, memory.New(zap.NewNop()), &publisherMock{})

		rec := performJSONRequest(t, router, http.MethodPost, "/internal/notifications/deliver", map[string]any{}, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = performJSONRequest(t, router, http.MethodPost, "/internal/notifications/deliver", map[string]any{}, map[string]string{"X-Worker-Key": "wrong"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid envelope", func(t *testing.T) {
		router := setupRouter(t, memory.New(zap.NewNop()), &publisherMock{})

		rec := performJSONRequest(t, router, http.MethodPost, "/internal/notifications/deliver", map[string]any{
			"userIds": []string{"u1"},
		}, workerHeaders)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var respBody dto.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &respBody))
		require.Equal(t, resp.CodeBadRequest, respBody.Code)
	})

	t.Run("success", func(t *testing.T) {
		repo := memory.New(zap.NewNop())
		router := setupRouter(t, repo, &publisherMock{})

		rec := performJSONRequest(t, router, http.MethodPost, "/internal/notifications/deliver", map[string]any{
			"userIds": []string{"u1", "u2"},
			"title":   "Đã có bài tập mới",
			"message": "Hạn nộp thứ sáu",
			"type":    domain.NotificationTypeAssignment,
		}, workerHeaders)
		require.Equal(t, http.StatusOK, rec.Code)

		records, err := repo.ListNotifications(context.Background(), "u1", 10)
		require.NoError(t, err)
		require.Len(t, records, 1)
		require.False(t, records[0].IsRead)
		require.False(t, records[0].CreatedAt.IsZero())
	})
}

func TestDispatchNotificationController(t *testing.T) {
	t.Run("invalid type", func(t *testing.T) {
		pub := &publisherMock{}
		router := setupRouter(t, memory.New(zap.NewNop()), pub)

		rec := performJSONRequest(t, router, http.MethodPost, "/api/notifications/dispatch", map[string]any{
			"userIds": []string{"u1"},
			"title":   "t",
			"message": "m",
			"type":    "bogus",
		}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("queued", func(t *testing.T) {
		pub := &publisherMock{}
		pub.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()
		router := setupRouter(t, memory.New(zap.NewNop()), pub)

		rec := performJSONRequest(t, router, http.MethodPost, "/api/notifications/dispatch", map[string]any{
			"userIds": []string{"u1", "u1", "u2"},
			"title":   "t",
			"message": "m",
			"type":    domain.NotificationTypeAnnouncement,
		}, nil)
		require.Equal(t, http.StatusAccepted, rec.Code)
		pub.AssertExpectations(t)

		var sent model.Envelope
		payload := pub.Calls[0].Arguments.Get(1).([]byte)
		require.NoError(t, json.Unmarshal(payload, &sent))
		require.Equal(t, []string{"u1", "u2"}, sent.UserIDs)
	})

	t.Run("empty recipients accepted without publish", func(t *testing.T) {
		pub := &publisherMock{}
		router := setupRouter(t, memory.New(zap.NewNop()), pub)

		rec := performJSONRequest(t, router, http.MethodPost, "/api/notifications/dispatch", map[string]any{
			"userIds": []string{},
			"title":   "t",
			"message": "m",
			"type":    domain.NotificationTypeAnnouncement,
		}, nil)
		require.Equal(t, http.StatusAccepted, rec.Code)
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

func TestListNotificationsController(t *testing.T) {
	repo := memory.New(zap.NewNop())
	_, err := repo.CreateNotifications(context.Background(), []model.Notification{
		{UserID: "u1", Title: "first", Message: "m", Type: domain.NotificationTypeSystem},
		{UserID: "u1", Title: "second", Message: "m", Type: domain.NotificationTypeSystem},
		{UserID: "u2", Title: "other", Message: "m", Type: domain.NotificationTypeSystem},
	})
	require.NoError(t, err)
	router := setupRouter(t, repo, &publisherMock{})

	t.Run("user required", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("newest first for the caller only", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
		req.Header.Set("X-User-ID", "u1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var got []model.Notification
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 2)
		require.Equal(t, "second", got[0].Title)
		require.Equal(t, "first", got[1].Title)
	})
}

func TestMarkReadController(t *testing.T) {
	repo := memory.New(zap.NewNop())
	created, err := repo.CreateNotifications(context.Background(), []model.Notification{
		{UserID: "u1", Title: "t", Message: "m", Type: domain.NotificationTypeSystem},
	})
	require.NoError(t, err)
	router := setupRouter(t, repo, &publisherMock{})

	rec := performJSONRequest(t, router, http.MethodPost, "/api/notifications/mark-read", dto.MarkReadRequest{
		IDs: []int64{created[0].ID},
	}, map[string]string{"X-User-ID": "u1"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	records, err := repo.ListNotifications(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.True(t, records[0].IsRead)
	require.NotNil(t, records[0].ReadAt)
}
