package session

import "github.com/conorfennell/studydeck/internal/domain"

// Percentage reports how far s is through deck, in [0, 100].
//
// Each review card is worth one unit. Within the current card, credit is
// proportional to the steps already passed out of StepCount(n), so the value
// moves on every reveal and advance and never goes backwards.
func Percentage(deck *domain.Deck, s State) float64 {
	if deck == nil || len(deck.ReviewCards) == 0 {
		return 0
	}
	if s.Phase == PhaseCompleted {
		return 100
	}
	rc, ok := reviewCardAt(deck, s.ReviewCardIndex)
	if !ok {
		return 0
	}

	n := len(rc.Flashcards)
	partial := float64(stepIndex(s, n)) / float64(StepCount(n))
	return 100 * (float64(s.ReviewCardIndex) + partial) / float64(len(deck.ReviewCards))
}

// stepIndex is the zero-based position of s within its review card's steps:
// fc0-front, fc0-back, review card, fc1-front, fc1-back, ...
func stepIndex(s State, n int) int {
	if n == 0 {
		return 0
	}
	switch s.Phase {
	case PhaseFlashcardFront:
		if s.ShowingFirstFlashcard {
			return 0
		}
		return 2*s.FlashcardIndex + 1
	case PhaseFlashcardBack:
		if s.ShowingFirstFlashcard {
			return 1
		}
		return 2*s.FlashcardIndex + 2
	case PhaseReviewCard:
		return 2
	}
	return 0
}
