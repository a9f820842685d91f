// Package fingerprint derives stable IDs for imported decks and cards from
// their content, so re-syncing an unchanged file keeps progress attached.
package fingerprint

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"

	"github.com/conorfennell/studydeck/internal/domain"
)

// Normalize cleans each part and joins them. It trims whitespace,
// lowercases, and normalizes line endings.
func Normalize(parts ...string) string {
	normalized := make([]string, len(parts))
	for i, part := range parts {
		p := strings.ToLower(part)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		normalized[i] = strings.TrimSpace(p)
	}
	// Joined with a newline so "question" and "answer" cannot collide with
	// "questionanswer".
	return strings.Join(normalized, "\n")
}

// Hash normalizes parts and returns their SHA-256 hash as a hex string.
func Hash(parts ...string) string {
	hashBytes := sha256.Sum256([]byte(Normalize(parts...)))
	return fmt.Sprintf("%x", hashBytes)
}

// DeckID identifies a deck by the source it came from and its location
// within that source.
func DeckID(sourceID int64, location string) string {
	return Hash("deck", strconv.FormatInt(sourceID, 10), location)
}

// Assign sets IDs on every review card and flashcard of deck. Review cards
// hash their content under the deck, flashcards hash both sides under their
// review card. Identical siblings get an occurrence suffix.
func Assign(deck *domain.Deck) {
	seenCards := make(map[string]int)
	for i := range deck.ReviewCards {
		rc := &deck.ReviewCards[i]
		rc.DeckID = deck.ID
		rc.ID = unique(seenCards, Hash(deck.ID, rc.Content, rc.ImageURL))

		seenFlashcards := make(map[string]int)
		for j := range rc.Flashcards {
			fc := &rc.Flashcards[j]
			fc.ReviewCardID = rc.ID
			fc.ID = unique(seenFlashcards, Hash(rc.ID, fc.FrontContent, fc.FrontImageURL, fc.BackContent, fc.BackImageURL))
		}
	}
}

func unique(seen map[string]int, id string) string {
	n := seen[id]
	seen[id] = n + 1
	if n == 0 {
		return id
	}
	return Hash(id, strconv.Itoa(n))
}
