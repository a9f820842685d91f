package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/conorfennell/studydeck/internal/domain"
	mock_progress "github.com/conorfennell/studydeck/internal/mocks/progress"
	"github.com/conorfennell/studydeck/internal/session"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestTracker(t *testing.T) (*Tracker, *mock_progress.MockContentStore, *mock_progress.MockProgressStore) {
	ctrl := gomock.NewController(t)
	content := mock_progress.NewMockContentStore(ctrl)
	store := mock_progress.NewMockProgressStore(ctrl)
	tracker := NewTracker(content, store, nil)
	tracker.now = func() time.Time { return fixedNow }
	return tracker, content, store
}

func TestTracker_MarkSeen(t *testing.T) {
	ctx := context.Background()

	t.Run("writes the flashcard record", func(t *testing.T) {
		tracker, _, store := newTestTracker(t)
		store.EXPECT().MarkSeen(ctx, domain.ProgressKey{
			UserID: "u1", DeckID: "d1", ReviewCardID: "rc1", FlashcardID: "fc1", ContentType: domain.ContentFlashcard,
		}, fixedNow).Return(nil)

		require.NoError(t, tracker.MarkSeen(ctx, "u1", "d1", "rc1", domain.ContentFlashcard, "fc1"))
	})

	t.Run("requires a user", func(t *testing.T) {
		tracker, _, _ := newTestTracker(t)
		err := tracker.MarkSeen(ctx, "", "d1", "rc1", domain.ContentReviewCard, "")
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("rejects a flashcard id on a review card record", func(t *testing.T) {
		tracker, _, _ := newTestTracker(t)
		err := tracker.MarkSeen(ctx, "u1", "d1", "rc1", domain.ContentReviewCard, "fc1")
		assert.ErrorIs(t, err, domain.ErrUnexpectedFlashcard)
	})

	t.Run("wraps store failures", func(t *testing.T) {
		tracker, _, store := newTestTracker(t)
		storeErr := errors.New("connection refused")
		store.EXPECT().MarkSeen(ctx, gomock.Any(), fixedNow).Return(storeErr)

		err := tracker.MarkSeen(ctx, "u1", "d1", "rc1", domain.ContentReviewCard, "")

		var perr *PersistenceError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "mark seen", perr.Op)
		assert.ErrorIs(t, err, storeErr)
	})
}

func TestTracker_Recorder(t *testing.T) {
	ctx := context.Background()
	revealed := session.Event{Kind: session.EventFlashcardRevealed, ReviewCardID: "rc1", FlashcardID: "fc1"}
	read := session.Event{Kind: session.EventReviewCardRead, ReviewCardID: "rc1"}

	t.Run("study marks seen", func(t *testing.T) {
		tracker, _, store := newTestTracker(t)
		store.EXPECT().MarkSeen(ctx, domain.ProgressKey{
			UserID: "u1", DeckID: "d1", ReviewCardID: "rc1", FlashcardID: "fc1", ContentType: domain.ContentFlashcard,
		}, fixedNow).Return(nil)
		store.EXPECT().MarkSeen(ctx, domain.ProgressKey{
			UserID: "u1", DeckID: "d1", ReviewCardID: "rc1", ContentType: domain.ContentReviewCard,
		}, fixedNow).Return(nil)

		rec := tracker.Recorder("u1", "d1", session.ModeStudy)
		require.NoError(t, rec.Record(ctx, revealed))
		require.NoError(t, rec.Record(ctx, read))
	})

	t.Run("review marks reviewed", func(t *testing.T) {
		tracker, _, store := newTestTracker(t)
		store.EXPECT().MarkReviewed(ctx, domain.ProgressKey{
			UserID: "u1", DeckID: "d1", ReviewCardID: "rc1", FlashcardID: "fc1", ContentType: domain.ContentFlashcard,
		}, fixedNow).Return(nil)

		rec := tracker.Recorder("u1", "d1", session.ModeReview)
		require.NoError(t, rec.Record(ctx, revealed))
	})

	t.Run("anonymous recorder reports not authenticated", func(t *testing.T) {
		tracker, _, _ := newTestTracker(t)
		rec := tracker.Recorder("", "d1", session.ModeStudy)
		assert.ErrorIs(t, rec.Record(ctx, read), ErrNotAuthenticated)
	})
}

func TestTracker_GetSeenContent(t *testing.T) {
	ctx := context.Background()

	t.Run("filters to seen content", func(t *testing.T) {
		tracker, content, store := newTestTracker(t)
		content.EXPECT().GetDeckWithCards(gomock.Any(), "deck").Return(testDeck(), nil)
		store.EXPECT().ListProgress(gomock.Any(), "u1", "deck").Return([]domain.ProgressRecord{
			seenReviewCard("rc2"), seenFlashcard("rc2", "fc3"),
		}, nil)

		deck, err := tracker.GetSeenContent(ctx, "u1", "deck")
		require.NoError(t, err)
		assert.Equal(t, map[string][]string{"rc2": {"fc3"}}, ids(deck))
	})

	t.Run("content store failure", func(t *testing.T) {
		tracker, content, store := newTestTracker(t)
		contentErr := errors.New("deck not found")
		content.EXPECT().GetDeckWithCards(gomock.Any(), "deck").Return(nil, contentErr)
		store.EXPECT().ListProgress(gomock.Any(), "u1", "deck").Return(nil, nil).AnyTimes()

		_, err := tracker.GetSeenContent(ctx, "u1", "deck")
		assert.ErrorIs(t, err, contentErr)
	})

	t.Run("progress store failure", func(t *testing.T) {
		tracker, content, store := newTestTracker(t)
		content.EXPECT().GetDeckWithCards(gomock.Any(), "deck").Return(testDeck(), nil).AnyTimes()
		store.EXPECT().ListProgress(gomock.Any(), "u1", "deck").Return(nil, errors.New("timeout"))

		_, err := tracker.GetSeenContent(ctx, "u1", "deck")
		var perr *PersistenceError
		assert.ErrorAs(t, err, &perr)
	})

	t.Run("requires a user", func(t *testing.T) {
		tracker, _, _ := newTestTracker(t)
		_, err := tracker.GetSeenContent(ctx, "", "deck")
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})
}

func TestTracker_CanEnterReviewMode(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		records []domain.ProgressRecord
		want    bool
	}{
		{name: "no progress", records: nil, want: false},
		{name: "seen card without seen flashcards", records: []domain.ProgressRecord{seenReviewCard("rc1")}, want: false},
		{name: "seen card and flashcard", records: []domain.ProgressRecord{seenReviewCard("rc1"), seenFlashcard("rc1", "fc1")}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker, content, store := newTestTracker(t)
			content.EXPECT().GetDeckWithCards(gomock.Any(), "deck").Return(testDeck(), nil)
			store.EXPECT().ListProgress(gomock.Any(), "u1", "deck").Return(tt.records, nil)

			got, err := tracker.CanEnterReviewMode(ctx, "u1", "deck")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTracker_GetUnseenContentAndSummary(t *testing.T) {
	ctx := context.Background()
	tracker, content, store := newTestTracker(t)
	records := []domain.ProgressRecord{seenReviewCard("rc3")}

	content.EXPECT().GetDeckWithCards(gomock.Any(), "deck").DoAndReturn(
		func(context.Context, string) (*domain.Deck, error) { return testDeck(), nil },
	).Times(2)
	store.EXPECT().ListProgress(gomock.Any(), "u1", "deck").Return(records, nil).Times(2)

	unseen, err := tracker.GetUnseenContent(ctx, "u1", "deck")
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"rc1": {"fc1", "fc2"}, "rc2": {"fc3"}}, ids(unseen))

	summary, err := tracker.GetProgressSummary(ctx, "u1", "deck")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.SeenReviewCards)
	assert.Equal(t, 6, summary.TotalContent)
}
