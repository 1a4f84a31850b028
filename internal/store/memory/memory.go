package memory

import (
	"sync"

	"go.uber.org/zap"

	"classlive/internal/model"
)

// Store is the in-memory notification repository, selected when no MySQL DSN
// is configured.
type Store struct {
	mu      sync.Mutex
	nextID  int64
	records []model.Notification
	log     *zap.Logger
}

func New(logger *zap.Logger) *Store {
	return &Store{nextID: 1, log: logger}
}
