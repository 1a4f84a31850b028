package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"classlive/internal/domain"
	"classlive/internal/model"
	"classlive/internal/sse"
)

type repoMock struct {
	mock.Mock
}

func (m *repoMock) CreateNotifications(ctx context.Context, notifications []model.Notification) ([]model.Notification, error) {
	args := m.Called(ctx, notifications)
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *repoMock) ListNotifications(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *repoMock) MarkNotificationsRead(ctx context.Context, userID string, ids []int64) error {
	args := m.Called(ctx, userID, ids)
	return args.Error(0)
}

func validEnvelope(userIDs ...string) model.Envelope {
	return model.Envelope{
		UserIDs: userIDs,
		Title:   "Đã có bài tập mới",
		Message: "Bài tập 1 đã được giao",
		Type:    domain.NotificationTypeAssignment,
	}
}

func TestServiceDeliver(t *testing.T) {
	t.Run("invalid envelope", func(t *testing.T) {
		repo := &repoMock{}
		svc := NewService(repo, sse.NewHub(), zap.NewNop())

		_, err := svc.Deliver(context.Background(), model.Envelope{Title: "t", Message: "m", Type: domain.NotificationTypeSystem})
		require.ErrorIs(t, err, domain.ErrEnvelopeInvalid)

		_, err = svc.Deliver(context.Background(), model.Envelope{UserIDs: []string{"u1"}, Message: "m", Type: domain.NotificationTypeSystem})
		require.ErrorIs(t, err, domain.ErrEnvelopeInvalid)

		_, err = svc.Deliver(context.Background(), model.Envelope{UserIDs: []string{"u1"}, Title: "t", Message: "m", Type: "bogus"})
		require.ErrorIs(t, err, domain.ErrInvalidNotificationType)

		repo.AssertNotCalled(t, "CreateNotifications", mock.Anything, mock.Anything)
	})

	t.Run("one record per recipient, duplicates collapsed", func(t *testing.T) {
		repo := &repoMock{}
		repo.On("CreateNotifications", mock.Anything, mock.MatchedBy(func(records []model.Notification) bool {
			return len(records) == 2 && records[0].UserID == "a" && records[1].UserID == "b"
		})).Return([]model.Notification{
			{ID: 1, UserID: "a", Type: domain.NotificationTypeAssignment},
			{ID: 2, UserID: "b", Type: domain.NotificationTypeAssignment},
		}, nil).Once()
		svc := NewService(repo, sse.NewHub(), zap.NewNop())

		created, err := svc.Deliver(context.Background(), validEnvelope("a", "b", "a"))
		require.NoError(t, err)
		require.Len(t, created, 2)
		repo.AssertExpectations(t)
	})

	t.Run("store error", func(t *testing.T) {
		storeErr := errors.New("store failed")
		repo := &repoMock{}
		repo.On("CreateNotifications", mock.Anything, mock.Anything).Return([]model.Notification(nil), storeErr).Once()
		svc := NewService(repo, sse.NewHub(), zap.NewNop())

		_, err := svc.Deliver(context.Background(), validEnvelope("u1"))
		require.ErrorIs(t, err, storeErr)
		repo.AssertExpectations(t)
	})

	t.Run("pushes each record to its recipient channel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		hub := sse.NewHub()
		go hub.Run(ctx)

		clientA := &sse.Client{UserID: "a", Ch: make(chan model.PushNotification, 1)}
		clientB := &sse.Client{UserID: "b", Ch: make(chan model.PushNotification, 1)}
		hub.Register(clientA)
		hub.Register(clientB)
		defer hub.Unregister(clientA)
		defer hub.Unregister(clientB)

		metadata := `{"actorName":"Cô Lan","actorAvatar":"https://cdn.example/lan.png"}`
		repo := &repoMock{}
		repo.On("CreateNotifications", mock.Anything, mock.Anything).Return([]model.Notification{
			{ID: 10, UserID: "a", Title: "Đã có bài tập mới", Type: domain.NotificationTypeAssignment, CreatedAt: time.Now().UTC()},
			{ID: 11, UserID: "b", Title: "Đã có bài tập mới", Type: domain.NotificationTypeAssignment, CreatedAt: time.Now().UTC()},
		}, nil).Once()
		svc := NewService(repo, hub, zap.NewNop())

		env := validEnvelope("a", "b")
		env.Metadata = &metadata
		_, err := svc.Deliver(context.Background(), env)
		require.NoError(t, err)

		for client, wantID := range map[*sse.Client]int64{clientA: 10, clientB: 11} {
			select {
			case got := <-client.Ch:
				require.Equal(t, wantID, got.ID)
				require.Equal(t, client.UserID, got.UserID)
				require.False(t, got.IsRead)
				require.Equal(t, "Cô Lan", got.ActorName)
				require.Equal(t, "https://cdn.example/lan.png", got.ActorAvatar)
			case <-time.After(200 * time.Millisecond):
				t.Fatalf("expected push for %s", client.UserID)
			}
			// Exactly one push per recipient.
			require.Empty(t, client.Ch)
		}
		repo.AssertExpectations(t)
	})
}

func TestServiceListHistory(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		expected := []model.Notification{{ID: 1, UserID: "u1", Type: domain.NotificationTypeAnnouncement}}
		repo := &repoMock{}
		repo.On("ListNotifications", mock.Anything, "u1", 10).Return(expected, nil).Once()
		svc := NewService(repo, sse.NewHub(), zap.NewNop())

		got, err := svc.ListHistory(context.Background(), "u1", 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, expected[0].ID, got[0].ID)
		repo.AssertExpectations(t)
	})

	t.Run("store error", func(t *testing.T) {
		storeErr := errors.New("list failed")
		repo := &repoMock{}
		repo.On("ListNotifications", mock.Anything, "u1", 10).Return([]model.Notification(nil), storeErr).Once()
		svc := NewService(repo, sse.NewHub(), zap.NewNop())

		_, err := svc.ListHistory(context.Background(), "u1", 10)
		require.ErrorIs(t, err, storeErr)
		repo.AssertExpectations(t)
	})
}

func TestServiceMarkRead(t *testing.T) {
	repo := &repoMock{}
	repo.On("MarkNotificationsRead", mock.Anything, "u1", []int64{1, 2}).Return(nil).Once()
	svc := NewService(repo, sse.NewHub(), zap.NewNop())

	require.NoError(t, svc.MarkRead(context.Background(), "u1", []int64{1, 2}))
	require.NoError(t, svc.MarkRead(context.Background(), "u1", nil))
	repo.AssertExpectations(t)
}
