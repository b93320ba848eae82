// Package store persists liked trivia facts, the fallback for random requests.
package store

import (
	"context"
	"errors"

	"trivai/internal/models"
)

// ErrEmpty is returned by SampleRandom when no fact has been stored yet.
var ErrEmpty = errors.New("fact store is empty")

// InsertResult tells whether InsertIfAbsent wrote a new record.
type InsertResult int

const (
	Inserted InsertResult = iota
	AlreadyPresent
)

func (r InsertResult) String() string {
	if r == Inserted {
		return "inserted"
	}
	return "already_present"
}

// FactStore is the persistence contract for liked facts. Facts are keyed by article title.
type FactStore interface {
	SampleRandom(ctx context.Context) (*models.TriviaFact, error)
	FindByTitle(ctx context.Context, title string) (*models.TriviaFact, error)
	InsertIfAbsent(ctx context.Context, fact *models.TriviaFact) (InsertResult, error)
	Count(ctx context.Context) (int64, error)
}

// stored returns a copy of fact marked as coming from the store.
func stored(fact models.TriviaFact) *models.TriviaFact {
	fact.Origin = models.OriginFallback
	fact.Score = 0
	return &fact
}
