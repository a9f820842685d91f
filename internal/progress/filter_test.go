package progress

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/studydeck/internal/domain"
	"github.com/conorfennell/studydeck/internal/session"
)

var seenAt = sql.NullTime{Time: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Valid: true}

func testDeck() *domain.Deck {
	return &domain.Deck{
		ID: "deck",
		ReviewCards: []domain.ReviewCard{
			{ID: "rc1", Flashcards: []domain.Flashcard{{ID: "fc1"}, {ID: "fc2"}}},
			{ID: "rc2", Flashcards: []domain.Flashcard{{ID: "fc3"}}},
			{ID: "rc3"},
		},
	}
}

func seenReviewCard(id string) domain.ProgressRecord {
	return domain.ProgressRecord{ReviewCardID: id, ContentType: domain.ContentReviewCard, SeenAt: seenAt}
}

func seenFlashcard(rcID, id string) domain.ProgressRecord {
	return domain.ProgressRecord{ReviewCardID: rcID, FlashcardID: id, ContentType: domain.ContentFlashcard, SeenAt: seenAt}
}

func ids(deck *domain.Deck) map[string][]string {
	out := make(map[string][]string)
	for _, rc := range deck.ReviewCards {
		out[rc.ID] = []string{}
		for _, fc := range rc.Flashcards {
			out[rc.ID] = append(out[rc.ID], fc.ID)
		}
	}
	return out
}

func TestUnseenView(t *testing.T) {
	tests := []struct {
		name    string
		records []domain.ProgressRecord
		want    map[string][]string
	}{
		{
			name:    "nothing seen keeps everything",
			records: nil,
			want:    map[string][]string{"rc1": {"fc1", "fc2"}, "rc2": {"fc3"}, "rc3": {}},
		},
		{
			name: "seen card with an unseen flashcard stays",
			records: []domain.ProgressRecord{
				seenReviewCard("rc1"), seenFlashcard("rc1", "fc1"),
			},
			want: map[string][]string{"rc1": {"fc2"}, "rc2": {"fc3"}, "rc3": {}},
		},
		{
			name: "fully seen cards drop out",
			records: []domain.ProgressRecord{
				seenReviewCard("rc2"), seenFlashcard("rc2", "fc3"), seenReviewCard("rc3"),
			},
			want: map[string][]string{"rc1": {"fc1", "fc2"}},
		},
		{
			name: "unseen card with all flashcards seen stays without flashcards",
			records: []domain.ProgressRecord{
				seenFlashcard("rc2", "fc3"),
			},
			want: map[string][]string{"rc1": {"fc1", "fc2"}, "rc2": {}, "rc3": {}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deck := testDeck()
			got := UnseenView(deck, tt.records)
			assert.Equal(t, tt.want, ids(got))
			assert.Equal(t, testDeck(), deck, "input snapshot must not change")
		})
	}
}

func TestSeenView(t *testing.T) {
	tests := []struct {
		name    string
		records []domain.ProgressRecord
		want    map[string][]string
		wantErr error
	}{
		{
			name:    "nothing seen",
			records: nil,
			want:    map[string][]string{},
			wantErr: session.ErrNoEligibleContent,
		},
		{
			name: "seen card and flashcard",
			records: []domain.ProgressRecord{
				seenReviewCard("rc1"), seenFlashcard("rc1", "fc2"),
			},
			want: map[string][]string{"rc1": {"fc2"}},
		},
		{
			name: "seen card without seen flashcards is excluded",
			records: []domain.ProgressRecord{
				seenReviewCard("rc1"), seenReviewCard("rc3"), seenFlashcard("rc2", "fc3"),
			},
			want:    map[string][]string{},
			wantErr: session.ErrNoEligibleContent,
		},
		{
			name: "records without a seen timestamp do not count",
			records: []domain.ProgressRecord{
				{ReviewCardID: "rc1", ContentType: domain.ContentReviewCard},
				seenFlashcard("rc1", "fc1"),
			},
			want:    map[string][]string{},
			wantErr: session.ErrNoEligibleContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SeenView(testDeck(), tt.records)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSeenView_ReviewedDoesNotFilter(t *testing.T) {
	reviewed := seenFlashcard("rc1", "fc1")
	reviewed.LastReviewedAt = seenAt

	got, err := SeenView(testDeck(), []domain.ProgressRecord{seenReviewCard("rc1"), reviewed})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"rc1": {"fc1"}}, ids(got))
}

func TestSummarize(t *testing.T) {
	reviewedCard := seenReviewCard("rc1")
	reviewedCard.LastReviewedAt = seenAt
	reviewedFlashcard := seenFlashcard("rc1", "fc1")
	reviewedFlashcard.LastReviewedAt = seenAt

	got := Summarize(testDeck(), []domain.ProgressRecord{
		reviewedCard,
		reviewedFlashcard,
		seenFlashcard("rc1", "fc2"),
		seenReviewCard("gone"),
	})

	assert.Equal(t, domain.ProgressSummary{
		TotalReviewCards:    3,
		TotalFlashcards:     3,
		SeenReviewCards:     1,
		SeenFlashcards:      2,
		ReviewedReviewCards: 1,
		ReviewedFlashcards:  1,
		TotalContent:        6,
		SeenContent:         3,
		ReviewedContent:     2,
	}, got)
}
