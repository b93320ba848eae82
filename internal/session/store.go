// Package session keeps the per-chat conversation state.
package session

import (
	"context"

	"trivai/internal/models"
)

// Store loads and saves sessions. Get creates an idle session on first contact.
type Store interface {
	Get(ctx context.Context, chatID int64) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
}
