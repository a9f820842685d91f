package session_test

import (
	"fmt"

	"github.com/conorfennell/studydeck/internal/domain"
)

// newDeck builds a deck whose i-th review card has counts[i] flashcards.
// Review cards are named A, B, C ...; flashcards A.fc0, A.fc1 ...
func newDeck(counts ...int) *domain.Deck {
	deck := &domain.Deck{ID: "deck-1", Name: "Test deck"}
	for i, n := range counts {
		rcID := string(rune('A' + i))
		rc := domain.ReviewCard{
			ID:      rcID,
			DeckID:  deck.ID,
			Content: rcID + " content",
		}
		for j := 0; j < n; j++ {
			fcID := fmt.Sprintf("%s.fc%d", rcID, j)
			rc.Flashcards = append(rc.Flashcards, domain.Flashcard{
				ID:           fcID,
				ReviewCardID: rcID,
				FrontContent: fcID + " front",
				BackContent:  fcID + " back",
			})
		}
		deck.ReviewCards = append(deck.ReviewCards, rc)
	}
	return deck
}
