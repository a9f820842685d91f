// Package progress derives seen / unseen views of a deck from a learner's
// progress records and writes new progress on their behalf.
package progress

import (
	"github.com/conorfennell/studydeck/internal/domain"
	"github.com/conorfennell/studydeck/internal/session"
)

// SeenSet is the set of content a learner has been presented.
type SeenSet struct {
	ReviewCards map[string]bool
	Flashcards  map[string]bool
}

// NewSeenSet collects the ids of every record with a seen timestamp.
// Reviewed timestamps do not affect the set.
func NewSeenSet(records []domain.ProgressRecord) SeenSet {
	set := SeenSet{
		ReviewCards: make(map[string]bool),
		Flashcards:  make(map[string]bool),
	}
	for _, r := range records {
		if !r.SeenAt.Valid {
			continue
		}
		switch r.ContentType {
		case domain.ContentReviewCard:
			set.ReviewCards[r.ReviewCardID] = true
		case domain.ContentFlashcard:
			set.Flashcards[r.FlashcardID] = true
		}
	}
	return set
}

// UnseenView keeps review cards that are unseen themselves or still have an
// unseen flashcard, with their flashcards narrowed to the unseen ones.
func UnseenView(deck *domain.Deck, records []domain.ProgressRecord) *domain.Deck {
	seen := NewSeenSet(records)
	return filterDeck(deck, func(rc domain.ReviewCard, flashcards []domain.Flashcard) bool {
		return !seen.ReviewCards[rc.ID] || len(flashcards) > 0
	}, func(fc domain.Flashcard) bool {
		return !seen.Flashcards[fc.ID]
	})
}

// SeenView keeps review cards that were seen and have at least one seen
// flashcard, with their flashcards narrowed to the seen ones. It fails with
// session.ErrNoEligibleContent when nothing qualifies.
func SeenView(deck *domain.Deck, records []domain.ProgressRecord) (*domain.Deck, error) {
	seen := NewSeenSet(records)
	view := filterDeck(deck, func(rc domain.ReviewCard, flashcards []domain.Flashcard) bool {
		return seen.ReviewCards[rc.ID] && len(flashcards) > 0
	}, func(fc domain.Flashcard) bool {
		return seen.Flashcards[fc.ID]
	})
	if len(view.ReviewCards) == 0 {
		return view, session.ErrNoEligibleContent
	}
	return view, nil
}

// filterDeck returns a copy of deck; the input snapshot is never modified.
func filterDeck(
	deck *domain.Deck,
	keepCard func(domain.ReviewCard, []domain.Flashcard) bool,
	keepFlashcard func(domain.Flashcard) bool,
) *domain.Deck {
	out := *deck
	out.ReviewCards = nil
	for _, rc := range deck.ReviewCards {
		var flashcards []domain.Flashcard
		for _, fc := range rc.Flashcards {
			if keepFlashcard(fc) {
				flashcards = append(flashcards, fc)
			}
		}
		if !keepCard(rc, flashcards) {
			continue
		}
		rc.Flashcards = flashcards
		out.ReviewCards = append(out.ReviewCards, rc)
	}
	return &out
}

// Summarize counts the deck's content against the learner's records.
// Records pointing at content no longer in the deck are ignored.
func Summarize(deck *domain.Deck, records []domain.ProgressRecord) domain.ProgressSummary {
	reviewCards := make(map[string]bool, len(deck.ReviewCards))
	flashcards := make(map[string]bool)
	for _, rc := range deck.ReviewCards {
		reviewCards[rc.ID] = true
		for _, fc := range rc.Flashcards {
			flashcards[fc.ID] = true
		}
	}

	sum := domain.ProgressSummary{
		TotalReviewCards: len(reviewCards),
		TotalFlashcards:  len(flashcards),
	}
	for _, r := range records {
		switch r.ContentType {
		case domain.ContentReviewCard:
			if !reviewCards[r.ReviewCardID] {
				continue
			}
			if r.SeenAt.Valid {
				sum.SeenReviewCards++
			}
			if r.LastReviewedAt.Valid {
				sum.ReviewedReviewCards++
			}
		case domain.ContentFlashcard:
			if !flashcards[r.FlashcardID] {
				continue
			}
			if r.SeenAt.Valid {
				sum.SeenFlashcards++
			}
			if r.LastReviewedAt.Valid {
				sum.ReviewedFlashcards++
			}
		}
	}
	sum.TotalContent = sum.TotalReviewCards + sum.TotalFlashcards
	sum.SeenContent = sum.SeenReviewCards + sum.SeenFlashcards
	sum.ReviewedContent = sum.ReviewedReviewCards + sum.ReviewedFlashcards
	return sum
}
