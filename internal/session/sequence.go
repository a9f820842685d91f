package session

import "github.com/conorfennell/studydeck/internal/domain"

// ItemKind discriminates what the presentation layer should render.
type ItemKind string

const (
	ItemFlashcardFront ItemKind = "flashcard-front"
	ItemFlashcardBack  ItemKind = "flashcard-back"
	ItemReviewCard     ItemKind = "review-card"
	ItemNone           ItemKind = "none"
)

// Item is one presentable step. It carries ids and opaque content only.
type Item struct {
	Kind         ItemKind `json:"kind"`
	ReviewCardID string   `json:"review_card_id,omitempty"`
	FlashcardID  string   `json:"flashcard_id,omitempty"`
	Content      string   `json:"content,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
}

// CurrentItem returns what s points at in deck.
func CurrentItem(deck *domain.Deck, s State) Item {
	if s.Phase == PhaseCompleted {
		return Item{Kind: ItemNone}
	}
	rc, ok := reviewCardAt(deck, s.ReviewCardIndex)
	if !ok {
		return Item{Kind: ItemNone}
	}

	switch s.Phase {
	case PhaseReviewCard:
		return Item{
			Kind:         ItemReviewCard,
			ReviewCardID: rc.ID,
			Content:      rc.Content,
			ImageURL:     rc.ImageURL,
		}
	case PhaseFlashcardFront, PhaseFlashcardBack:
		if s.FlashcardIndex >= len(rc.Flashcards) {
			return Item{Kind: ItemNone}
		}
		fc := rc.Flashcards[s.FlashcardIndex]
		if s.Phase == PhaseFlashcardFront {
			return Item{
				Kind:         ItemFlashcardFront,
				ReviewCardID: rc.ID,
				FlashcardID:  fc.ID,
				Content:      fc.FrontContent,
				ImageURL:     fc.FrontImageURL,
			}
		}
		return Item{
			Kind:         ItemFlashcardBack,
			ReviewCardID: rc.ID,
			FlashcardID:  fc.ID,
			Content:      fc.BackContent,
			ImageURL:     fc.BackImageURL,
		}
	}
	return Item{Kind: ItemNone}
}

// Sequence flattens deck into the ordered items a full walk presents,
// revealing every flashcard. It drives the same transitions as a session.
func Sequence(deck *domain.Deck) []Item {
	if deck == nil || len(deck.ReviewCards) == 0 {
		return nil
	}

	var items []Item
	s := Initial(deck)
	for s.Phase != PhaseCompleted {
		items = append(items, CurrentItem(deck, s))
		action := ActionAdvance
		if s.Phase == PhaseFlashcardFront {
			action = ActionReveal
		}
		s, _ = Transition(deck, s, action)
	}
	return items
}

// entryKind discriminates the entries of a plan.
type entryKind string

const (
	entryFlashcard  entryKind = "flashcard"
	entryReviewCard entryKind = "review-card"
)

// entry is one unit of the presentation order: a flashcard (front then
// back) or a review card's content.
type entry struct {
	Kind            entryKind
	ReviewCardIndex int
	FlashcardIndex  int
}

// plan returns the presentation order for deck: per review card, its first
// flashcard, the card itself, then its remaining flashcards. Sequence must
// agree with it.
func plan(deck *domain.Deck) []entry {
	if deck == nil {
		return nil
	}
	var entries []entry
	for i, rc := range deck.ReviewCards {
		if len(rc.Flashcards) > 0 {
			entries = append(entries, entry{Kind: entryFlashcard, ReviewCardIndex: i})
		}
		entries = append(entries, entry{Kind: entryReviewCard, ReviewCardIndex: i})
		for j := 1; j < len(rc.Flashcards); j++ {
			entries = append(entries, entry{Kind: entryFlashcard, ReviewCardIndex: i, FlashcardIndex: j})
		}
	}
	return entries
}

// StepCount is the number of presentable steps for a review card with n
// flashcards: front and back of each flashcard plus the card itself.
func StepCount(n int) int {
	return 2*n + 1
}
