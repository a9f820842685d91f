package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/conorfennell/studydeck/internal/domain"
	"github.com/conorfennell/studydeck/internal/session"
)

// Tracker reads and writes one deck's progress for a learner.
type Tracker struct {
	content  ContentStore
	progress ProgressStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewTracker creates a Tracker over the given stores.
func NewTracker(content ContentStore, progress ProgressStore, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		content:  content,
		progress: progress,
		logger:   logger,
		now:      time.Now,
	}
}

// MarkSeen records that the item was presented in a study session.
func (t *Tracker) MarkSeen(ctx context.Context, userID, deckID, reviewCardID string, contentType domain.ContentType, flashcardID string) error {
	return t.mark(ctx, "mark seen", t.progress.MarkSeen, domain.ProgressKey{
		UserID:       userID,
		DeckID:       deckID,
		ReviewCardID: reviewCardID,
		FlashcardID:  flashcardID,
		ContentType:  contentType,
	})
}

// MarkReviewed records that the item was presented in a review session.
func (t *Tracker) MarkReviewed(ctx context.Context, userID, deckID, reviewCardID string, contentType domain.ContentType, flashcardID string) error {
	return t.mark(ctx, "mark reviewed", t.progress.MarkReviewed, domain.ProgressKey{
		UserID:       userID,
		DeckID:       deckID,
		ReviewCardID: reviewCardID,
		FlashcardID:  flashcardID,
		ContentType:  contentType,
	})
}

func (t *Tracker) mark(
	ctx context.Context,
	op string,
	write func(context.Context, domain.ProgressKey, time.Time) error,
	key domain.ProgressKey,
) error {
	if key.UserID == "" {
		return ErrNotAuthenticated
	}
	if err := key.Validate(); err != nil {
		return fmt.Errorf("invalid progress key: %w", err)
	}
	if err := write(ctx, key, t.now()); err != nil {
		t.logger.Warn("progress write failed",
			zap.String("op", op),
			zap.String("deck_id", key.DeckID),
			zap.String("review_card_id", key.ReviewCardID),
			zap.String("flashcard_id", key.FlashcardID),
			zap.Error(err),
		)
		return &PersistenceError{Op: op, Err: err}
	}
	return nil
}

// GetProgressRecords lists the learner's records for deckID.
func (t *Tracker) GetProgressRecords(ctx context.Context, userID, deckID string) ([]domain.ProgressRecord, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	records, err := t.progress.ListProgress(ctx, userID, deckID)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	return records, nil
}

// load fetches the deck snapshot and the learner's records concurrently.
func (t *Tracker) load(ctx context.Context, userID, deckID string) (*domain.Deck, []domain.ProgressRecord, error) {
	if userID == "" {
		return nil, nil, ErrNotAuthenticated
	}

	var (
		deck    *domain.Deck
		records []domain.ProgressRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		deck, err = t.content.GetDeckWithCards(gctx, deckID)
		if err != nil {
			return fmt.Errorf("failed to get deck %s: %w", deckID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		records, err = t.progress.ListProgress(gctx, userID, deckID)
		if err != nil {
			return &PersistenceError{Op: "list", Err: err}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return deck, records, nil
}

// GetDeckWithCards returns the full, unfiltered snapshot used by study sessions.
func (t *Tracker) GetDeckWithCards(ctx context.Context, deckID string) (*domain.Deck, error) {
	deck, err := t.content.GetDeckWithCards(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get deck %s: %w", deckID, err)
	}
	return deck, nil
}

// GetUnseenContent returns the deck narrowed to what the learner has not seen.
func (t *Tracker) GetUnseenContent(ctx context.Context, userID, deckID string) (*domain.Deck, error) {
	deck, records, err := t.load(ctx, userID, deckID)
	if err != nil {
		return nil, err
	}
	return UnseenView(deck, records), nil
}

// GetSeenContent returns the deck narrowed to what the learner has seen.
// It fails with session.ErrNoEligibleContent when nothing can be reviewed.
func (t *Tracker) GetSeenContent(ctx context.Context, userID, deckID string) (*domain.Deck, error) {
	deck, records, err := t.load(ctx, userID, deckID)
	if err != nil {
		return nil, err
	}
	return SeenView(deck, records)
}

// GetProgressSummary counts seen and reviewed content in the deck.
func (t *Tracker) GetProgressSummary(ctx context.Context, userID, deckID string) (domain.ProgressSummary, error) {
	deck, records, err := t.load(ctx, userID, deckID)
	if err != nil {
		return domain.ProgressSummary{}, err
	}
	return Summarize(deck, records), nil
}

// CanEnterReviewMode reports whether the seen view has any content.
func (t *Tracker) CanEnterReviewMode(ctx context.Context, userID, deckID string) (bool, error) {
	_, err := t.GetSeenContent(ctx, userID, deckID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, session.ErrNoEligibleContent):
		return false, nil
	}
	return false, err
}

// Recorder returns the session.Recorder for mode: study sessions mark
// items seen, review sessions mark them reviewed.
func (t *Tracker) Recorder(userID, deckID string, mode session.Mode) session.Recorder {
	return &recorder{tracker: t, userID: userID, deckID: deckID, mode: mode}
}

type recorder struct {
	tracker *Tracker
	userID  string
	deckID  string
	mode    session.Mode
}

func (r *recorder) Record(ctx context.Context, ev session.Event) error {
	mark := r.tracker.MarkSeen
	if r.mode == session.ModeReview {
		mark = r.tracker.MarkReviewed
	}
	return mark(ctx, r.userID, r.deckID, ev.ReviewCardID, ev.ContentType(), ev.FlashcardID)
}
