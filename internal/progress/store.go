package progress

import (
	"context"
	"time"

	"github.com/conorfennell/studydeck/internal/domain"
)

//go:generate mockgen -source=store.go -destination=../mocks/progress/mock_store.go -package=mock_progress

// ContentStore serves point-in-time deck snapshots.
type ContentStore interface {
	GetDeckWithCards(ctx context.Context, deckID string) (*domain.Deck, error)
}

// ProgressStore persists progress records. Writes are upserts on the
// record's identity.
type ProgressStore interface {
	MarkSeen(ctx context.Context, key domain.ProgressKey, at time.Time) error
	MarkReviewed(ctx context.Context, key domain.ProgressKey, at time.Time) error
	ListProgress(ctx context.Context, userID, deckID string) ([]domain.ProgressRecord, error)
}
