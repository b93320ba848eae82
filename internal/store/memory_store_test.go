package store

import (
	"sync"
	"testing"

	"trivai/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstIndex(int) int { return 0 }

func TestMemoryStoreInsertIfAbsentIsIdempotent(t *testing.T) {
	s := NewMemoryFactStore(firstIndex)
	fact := &models.TriviaFact{ArticleTitle: "Berlin", Text: "Berlin became the capital of Prussia in 1701.", Origin: models.OriginLive, Score: 100}

	res, err := s.InsertIfAbsent(t.Context(), fact)
	require.NoError(t, err)
	assert.Equal(t, Inserted, res)

	res, err = s.InsertIfAbsent(t.Context(), &models.TriviaFact{ArticleTitle: "Berlin", Text: "different text"})
	require.NoError(t, err)
	assert.Equal(t, AlreadyPresent, res)

	n, err := s.Count(t.Context())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := s.FindByTitle(t.Context(), "Berlin")
	require.NoError(t, err)
	assert.Equal(t, fact.Text, got.Text)
	assert.Equal(t, models.OriginFallback, got.Origin)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestMemoryStoreConcurrentInsert(t *testing.T) {
	s := NewMemoryFactStore(firstIndex)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.InsertIfAbsent(t.Context(), &models.TriviaFact{ArticleTitle: "Paris"})
			assert.NoError(t, err)
			if res == Inserted {
				mu.Lock()
				inserted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, inserted)
}

func TestMemoryStoreEmpty(t *testing.T) {
	s := NewMemoryFactStore(firstIndex)

	_, err := s.SampleRandom(t.Context())
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = s.FindByTitle(t.Context(), "Nowhere")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMemoryStoreSample(t *testing.T) {
	s := NewMemoryFactStore(func(n int) int { return n - 1 })
	for _, title := range []string{"A", "B", "C"} {
		_, err := s.InsertIfAbsent(t.Context(), &models.TriviaFact{ArticleTitle: title})
		require.NoError(t, err)
	}
	got, err := s.SampleRandom(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "C", got.ArticleTitle)
}
