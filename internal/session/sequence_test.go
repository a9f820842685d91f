package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/studydeck/internal/domain"
	"github.com/conorfennell/studydeck/internal/session"
)

func TestPlan_Length(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
	}{
		{name: "single card without flashcards", counts: []int{0}},
		{name: "single card with one flashcard", counts: []int{1}},
		{name: "mixed", counts: []int{2, 0}},
		{name: "many", counts: []int{3, 1, 0, 5, 0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := 0
			for _, n := range tt.counts {
				if n == 0 {
					want++
				} else {
					want += n + 1
				}
			}
			assert.Len(t, session.Plan(newDeck(tt.counts...)), want)
		})
	}
}

func TestPlan_Order(t *testing.T) {
	got := session.Plan(newDeck(3, 0))
	assert.Equal(t, []session.Entry{
		{Kind: session.EntryFlashcard, ReviewCardIndex: 0, FlashcardIndex: 0},
		{Kind: session.EntryReviewCard, ReviewCardIndex: 0},
		{Kind: session.EntryFlashcard, ReviewCardIndex: 0, FlashcardIndex: 1},
		{Kind: session.EntryFlashcard, ReviewCardIndex: 0, FlashcardIndex: 2},
		{Kind: session.EntryReviewCard, ReviewCardIndex: 1},
	}, got)
}

func TestSequence_MatchesPlan(t *testing.T) {
	for _, counts := range [][]int{{2, 0}, {0, 0}, {1, 4, 0, 2}} {
		deck := newDeck(counts...)

		var want []session.Item
		for _, e := range session.Plan(deck) {
			rc := deck.ReviewCards[e.ReviewCardIndex]
			if e.Kind == session.EntryReviewCard {
				want = append(want, session.Item{
					Kind:         session.ItemReviewCard,
					ReviewCardID: rc.ID,
					Content:      rc.Content,
				})
				continue
			}
			fc := rc.Flashcards[e.FlashcardIndex]
			want = append(want,
				session.Item{Kind: session.ItemFlashcardFront, ReviewCardID: rc.ID, FlashcardID: fc.ID, Content: fc.FrontContent},
				session.Item{Kind: session.ItemFlashcardBack, ReviewCardID: rc.ID, FlashcardID: fc.ID, Content: fc.BackContent},
			)
		}

		assert.Equal(t, want, session.Sequence(deck), "deck %v", counts)
	}
}

func TestSequence_Scenario(t *testing.T) {
	items := session.Sequence(newDeck(2, 0))

	var got []string
	for _, item := range items {
		switch item.Kind {
		case session.ItemReviewCard:
			got = append(got, item.ReviewCardID+".review")
		default:
			got = append(got, item.FlashcardID+"-"+string(item.Kind))
		}
	}
	assert.Equal(t, []string{
		"A.fc0-flashcard-front",
		"A.fc0-flashcard-back",
		"A.review",
		"A.fc1-flashcard-front",
		"A.fc1-flashcard-back",
		"B.review",
	}, got)
}

func TestSequence_EmptyDeck(t *testing.T) {
	assert.Empty(t, session.Sequence(&domain.Deck{}))
	assert.Empty(t, session.Sequence(nil))
}

func TestCurrentItem_CarriesImages(t *testing.T) {
	deck := newDeck(1)
	deck.ReviewCards[0].ImageURL = "rc.png"
	deck.ReviewCards[0].Flashcards[0].FrontImageURL = "front.png"
	deck.ReviewCards[0].Flashcards[0].BackImageURL = "back.png"

	s := session.Initial(deck)
	assert.Equal(t, "front.png", session.CurrentItem(deck, s).ImageURL)

	s, _ = session.Transition(deck, s, session.ActionReveal)
	assert.Equal(t, "back.png", session.CurrentItem(deck, s).ImageURL)

	s, _ = session.Transition(deck, s, session.ActionAdvance)
	item := session.CurrentItem(deck, s)
	require.Equal(t, session.ItemReviewCard, item.Kind)
	assert.Equal(t, "rc.png", item.ImageURL)
}
