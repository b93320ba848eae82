package session

import (
	"context"
	"time"

	"trivai/internal/models"
	"trivai/pkg/util"
)

// MemoryStore holds sessions in a bounded LRU; idle sessions expire after the TTL.
type MemoryStore struct {
	cache *util.LRUCache[int64, models.Session]
}

// NewMemoryStore creates a MemoryStore holding at most capacity chats.
func NewMemoryStore(capacity int, ttl time.Duration) (*MemoryStore, error) {
	cache, err := util.NewLRU[int64, models.Session](util.CacheConfig{Capacity: capacity, TTL: ttl})
	if err != nil {
		return nil, err
	}
	return &MemoryStore{cache: cache}, nil
}

// Get returns a copy of the stored session, so callers never share state.
func (m *MemoryStore) Get(_ context.Context, chatID int64) (*models.Session, error) {
	if s, ok := m.cache.Get(chatID); ok {
		return &s, nil
	}
	return models.NewSession(chatID), nil
}

func (m *MemoryStore) Save(_ context.Context, s *models.Session) error {
	m.cache.Put(s.ChatID, *s)
	return nil
}
