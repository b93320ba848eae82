package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trivai/internal/models"
)

// MemoryFactStore keeps facts in process memory. It backs local runs and tests.
type MemoryFactStore struct {
	mu      sync.RWMutex
	order   []string
	byTitle map[string]models.TriviaFact
	intn    func(n int) int
}

// NewMemoryFactStore creates an empty store. intn picks the sampled index.
func NewMemoryFactStore(intn func(n int) int) *MemoryFactStore {
	return &MemoryFactStore{byTitle: map[string]models.TriviaFact{}, intn: intn}
}

func (s *MemoryFactStore) SampleRandom(context.Context) (*models.TriviaFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.order) == 0 {
		return nil, ErrEmpty
	}
	return stored(s.byTitle[s.order[s.intn(len(s.order))]]), nil
}

func (s *MemoryFactStore) FindByTitle(_ context.Context, title string) (*models.TriviaFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fact, ok := s.byTitle[title]
	if !ok {
		return nil, fmt.Errorf("%q: %w", title, models.ErrNotFound)
	}
	return stored(fact), nil
}

func (s *MemoryFactStore) InsertIfAbsent(_ context.Context, fact *models.TriviaFact) (InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byTitle[fact.ArticleTitle]; ok {
		return AlreadyPresent, nil
	}
	rec := *fact
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.byTitle[rec.ArticleTitle] = rec
	s.order = append(s.order, rec.ArticleTitle)
	return Inserted, nil
}

func (s *MemoryFactStore) Count(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.order)), nil
}
