// Package session sequences a deck's review cards and flashcards into a
// study or review walk.
//
// Each review card with flashcards is presented as
//
//	flashcard[0] -> review card -> flashcard[1] ... flashcard[N-1]
//
// where every flashcard shows its front, then its back. The first
// flashcard asks what the learner already knows before the teaching
// content; the rest reinforce it afterwards. A review card without
// flashcards is presented on its own.
package session

import (
	"errors"

	"github.com/conorfennell/studydeck/internal/domain"
)

var (
	// ErrEmptyDeck is returned when a study session starts on a deck without review cards.
	ErrEmptyDeck = errors.New("deck has no content to study")
	// ErrNoEligibleContent is returned when a review session has no seen content to walk.
	ErrNoEligibleContent = errors.New("no content available for review, complete a study session first")
)

// Phase is the position of the walk within the current review card.
type Phase string

const (
	PhaseFlashcardFront Phase = "flashcard-front"
	PhaseFlashcardBack  Phase = "flashcard-back"
	PhaseReviewCard     Phase = "review-card"
	PhaseCompleted      Phase = "completed"
)

// Action is a learner input.
type Action int

const (
	ActionReveal Action = iota
	ActionAdvance
	ActionRestart
)

func (a Action) String() string {
	switch a {
	case ActionReveal:
		return "reveal"
	case ActionAdvance:
		return "advance"
	case ActionRestart:
		return "restart"
	}
	return "unknown"
}

// State is the ephemeral position of a session. It is a value: transitions
// return a new State and never modify the deck.
type State struct {
	ReviewCardIndex int   `json:"review_card_index"`
	FlashcardIndex  int   `json:"flashcard_index"`
	Phase           Phase `json:"phase"`
	// ShowingFirstFlashcard is true until the first flashcard of the
	// current review card has been answered.
	ShowingFirstFlashcard bool `json:"showing_first_flashcard"`
	// CardComplete is set only on the state produced by moving on to the
	// next review card, so the presentation layer can show a notice.
	CardComplete bool `json:"card_complete"`
}

// EventKind identifies a progress side effect of a transition.
type EventKind int

const (
	// EventFlashcardRevealed fires when a flashcard's back is shown.
	EventFlashcardRevealed EventKind = iota
	// EventReviewCardRead fires when the learner advances past a review card.
	EventReviewCardRead
)

// Event is a progress side effect emitted by a transition.
type Event struct {
	Kind         EventKind
	ReviewCardID string
	FlashcardID  string
}

// ContentType maps the event to the progress record it touches.
func (e Event) ContentType() domain.ContentType {
	if e.Kind == EventFlashcardRevealed {
		return domain.ContentFlashcard
	}
	return domain.ContentReviewCard
}

// Initial returns the starting state for deck.
func Initial(deck *domain.Deck) State {
	return cardStart(deck, 0)
}

func cardStart(deck *domain.Deck, index int) State {
	s := State{
		ReviewCardIndex:       index,
		Phase:                 PhaseFlashcardFront,
		ShowingFirstFlashcard: true,
	}
	if index < len(deck.ReviewCards) && len(deck.ReviewCards[index].Flashcards) == 0 {
		s.Phase = PhaseReviewCard
	}
	return s
}

// Transition applies action to s and returns the next state together with
// the progress events the move produced. Actions that are not valid in the
// current phase return s unchanged and no events.
func Transition(deck *domain.Deck, s State, action Action) (State, []Event) {
	switch action {
	case ActionRestart:
		return Initial(deck), nil
	case ActionReveal:
		return reveal(deck, s)
	case ActionAdvance:
		return advance(deck, s)
	}
	return s, nil
}

func reveal(deck *domain.Deck, s State) (State, []Event) {
	if s.Phase != PhaseFlashcardFront {
		return s, nil
	}
	rc, ok := reviewCardAt(deck, s.ReviewCardIndex)
	if !ok || s.FlashcardIndex >= len(rc.Flashcards) {
		return s, nil
	}

	next := s
	next.Phase = PhaseFlashcardBack
	next.CardComplete = false
	return next, []Event{{
		Kind:         EventFlashcardRevealed,
		ReviewCardID: rc.ID,
		FlashcardID:  rc.Flashcards[s.FlashcardIndex].ID,
	}}
}

func advance(deck *domain.Deck, s State) (State, []Event) {
	rc, ok := reviewCardAt(deck, s.ReviewCardIndex)
	if !ok {
		return s, nil
	}

	next := s
	next.CardComplete = false

	switch s.Phase {
	case PhaseFlashcardBack:
		if s.ShowingFirstFlashcard {
			next.Phase = PhaseReviewCard
			next.ShowingFirstFlashcard = false
			return next, nil
		}
		if s.FlashcardIndex+1 < len(rc.Flashcards) {
			next.FlashcardIndex = s.FlashcardIndex + 1
			next.Phase = PhaseFlashcardFront
			return next, nil
		}
		return nextReviewCard(deck, s), nil

	case PhaseReviewCard:
		events := []Event{{Kind: EventReviewCardRead, ReviewCardID: rc.ID}}
		if len(rc.Flashcards) > 1 {
			next.FlashcardIndex = 1
			next.Phase = PhaseFlashcardFront
			next.ShowingFirstFlashcard = false
			return next, events
		}
		return nextReviewCard(deck, s), events
	}

	return s, nil
}

func nextReviewCard(deck *domain.Deck, s State) State {
	if s.ReviewCardIndex+1 < len(deck.ReviewCards) {
		next := cardStart(deck, s.ReviewCardIndex+1)
		next.CardComplete = true
		return next
	}
	done := s
	done.Phase = PhaseCompleted
	done.CardComplete = false
	return done
}

func reviewCardAt(deck *domain.Deck, index int) (domain.ReviewCard, bool) {
	if deck == nil || index < 0 || index >= len(deck.ReviewCards) {
		return domain.ReviewCard{}, false
	}
	return deck.ReviewCards[index], true
}
