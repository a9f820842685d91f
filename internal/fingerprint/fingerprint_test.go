package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/conorfennell/studydeck/internal/domain"
)

func TestNormalize(t *testing.T) {
	expected := "what is htmx?\na library for ajax.\nweb development"
	assert.Equal(t, expected, Normalize("  What is HTMX? \r\n", "A library for AJAX.", "Web Development"))
}

func TestHash(t *testing.T) {
	t.Run("generates correct hash", func(t *testing.T) {
		// Hash for "q\na\nc"
		assert.Equal(t, "eb2456c1ee4f36305069dd0f63a30e92d5443129f5e8fd9a5ec490fbc4d4d8a2", Hash("Q", "A", "C"))
	})

	t.Run("normalization produces same hash", func(t *testing.T) {
		assert.Equal(t, Hash("  what is go? ", "A programming language."), Hash("What Is Go?", "A programming language."))
	})

	t.Run("part boundaries matter", func(t *testing.T) {
		assert.NotEqual(t, Hash("ab", "c"), Hash("a", "bc"))
	})
}

func TestDeckID(t *testing.T) {
	// Hash for "deck\n1\nverbs.md"
	assert.Equal(t, "a0e3f7b0f17c63eee83dc5476ed613c6e2fb74936d1c2704b6f7678b09788d0b", DeckID(1, "verbs.md"))
	assert.NotEqual(t, DeckID(1, "verbs.md"), DeckID(2, "verbs.md"))
}

func newDeck() *domain.Deck {
	return &domain.Deck{
		ID: "deck",
		ReviewCards: []domain.ReviewCard{
			{Content: "ser", Flashcards: []domain.Flashcard{
				{FrontContent: "yo", BackContent: "soy"},
				{FrontContent: "yo", BackContent: "soy"},
			}},
			{Content: "ser"},
			{Content: "estar"},
		},
	}
}

func TestAssign(t *testing.T) {
	deck := newDeck()
	Assign(deck)

	ids := map[string]bool{}
	for _, rc := range deck.ReviewCards {
		assert.Equal(t, "deck", rc.DeckID)
		assert.Len(t, rc.ID, 64)
		ids[rc.ID] = true
		for _, fc := range rc.Flashcards {
			assert.Equal(t, rc.ID, fc.ReviewCardID)
			ids[fc.ID] = true
		}
	}
	assert.Len(t, ids, 5, "duplicate siblings get distinct ids")

	again := newDeck()
	Assign(again)
	assert.Equal(t, deck.ReviewCards[0].ID, again.ReviewCards[0].ID)
	assert.Equal(t, deck.ReviewCards[0].Flashcards[1].ID, again.ReviewCards[0].Flashcards[1].ID)
}

func TestAssign_EditChangesOnlyTheEditedCard(t *testing.T) {
	before := newDeck()
	Assign(before)

	after := newDeck()
	after.ReviewCards[2].Content = "estar (edited)"
	Assign(after)

	assert.Equal(t, before.ReviewCards[0].ID, after.ReviewCards[0].ID)
	assert.Equal(t, before.ReviewCards[1].ID, after.ReviewCards[1].ID)
	assert.NotEqual(t, before.ReviewCards[2].ID, after.ReviewCards[2].ID)
}
