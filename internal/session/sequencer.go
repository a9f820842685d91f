package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/conorfennell/studydeck/internal/domain"
)

// Mode selects which progress attribute a session writes.
type Mode string

const (
	// ModeStudy walks a deck and marks items seen.
	ModeStudy Mode = "study"
	// ModeReview walks previously seen content and marks items reviewed.
	ModeReview Mode = "review"
)

// ParseMode converts s into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeStudy, ModeReview:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown session mode %q", s)
}

//go:generate mockgen -source=sequencer.go -destination=../mocks/session/mock_recorder.go -package=mock_session Recorder

// Recorder persists the progress events a session emits.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, Event) error { return nil }

// Sequencer walks one deck snapshot for one learner. The deck is never
// modified; edits made elsewhere are picked up only by starting a new
// Sequencer.
type Sequencer struct {
	mu       sync.Mutex
	deck     *domain.Deck
	mode     Mode
	recorder Recorder
	state    State
}

// Start builds a session over deck. Study sessions fail with ErrEmptyDeck and
// review sessions with ErrNoEligibleContent when the deck has no review cards.
func Start(deck *domain.Deck, mode Mode, recorder Recorder) (*Sequencer, error) {
	if deck == nil || len(deck.ReviewCards) == 0 {
		if mode == ModeReview {
			return nil, ErrNoEligibleContent
		}
		return nil, ErrEmptyDeck
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Sequencer{
		deck:     deck,
		mode:     mode,
		recorder: recorder,
		state:    Initial(deck),
	}, nil
}

// Reveal flips the current flashcard to its back.
func (s *Sequencer) Reveal(ctx context.Context) (State, error) {
	return s.apply(ctx, ActionReveal)
}

// Advance moves past the current flashcard back or review card.
func (s *Sequencer) Advance(ctx context.Context) (State, error) {
	return s.apply(ctx, ActionAdvance)
}

// Restart resets the walk to its initial state without re-fetching content.
func (s *Sequencer) Restart() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Initial(s.deck)
	return s.state
}

// apply commits the transition first and then records its events. A
// recording failure is returned with the already committed state.
func (s *Sequencer) apply(ctx context.Context, action Action) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, events := Transition(s.deck, s.state, action)
	s.state = next

	for _, ev := range events {
		if err := s.recorder.Record(ctx, ev); err != nil {
			return next, fmt.Errorf("failed to record %s progress: %w", s.mode, err)
		}
	}
	return next, nil
}

// State returns the current state.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentItem returns what the presentation layer should render.
func (s *Sequencer) CurrentItem() Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CurrentItem(s.deck, s.state)
}

// ProgressPercentage returns the completion percentage of the walk.
func (s *Sequencer) ProgressPercentage() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Percentage(s.deck, s.state)
}

// Snapshot is the state of a session together with what it presents at
// that state.
type Snapshot struct {
	State      State
	Item       Item
	Percentage float64
}

// Snapshot reads state, item and percentage under one lock so they always
// describe the same step.
func (s *Sequencer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:      s.state,
		Item:       CurrentItem(s.deck, s.state),
		Percentage: Percentage(s.deck, s.state),
	}
}

// Completed reports whether the walk reached its terminal state.
func (s *Sequencer) Completed() bool {
	return s.State().Phase == PhaseCompleted
}

// Mode returns the session mode.
func (s *Sequencer) Mode() Mode { return s.mode }

// Deck returns the snapshot the session walks.
func (s *Sequencer) Deck() *domain.Deck { return s.deck }
