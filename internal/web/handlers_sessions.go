package web

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/conorfennell/studydeck/internal/domain"
	"github.com/conorfennell/studydeck/internal/progress"
	"github.com/conorfennell/studydeck/internal/session"
)

const persistenceWarning = "Your progress could not be saved. You can keep going."

// startSession builds a sequencer over the content the mode allows and
// makes it the user's active session for the deck.
func (s *Server) startSession(ctx context.Context, userID, deckID string, mode session.Mode, unseenOnly bool) (*session.Sequencer, error) {
	if _, err := s.ownedDeck(ctx, userID, deckID); err != nil {
		return nil, err
	}

	var (
		deck *domain.Deck
		err  error
	)
	switch {
	case mode == session.ModeReview:
		deck, err = s.tracker.GetSeenContent(ctx, userID, deckID)
	case unseenOnly:
		deck, err = s.tracker.GetUnseenContent(ctx, userID, deckID)
	default:
		deck, err = s.tracker.GetDeckWithCards(ctx, deckID)
	}
	if err != nil {
		return nil, err
	}

	seq, err := session.Start(deck, mode, s.tracker.Recorder(userID, deckID, mode))
	if err != nil {
		return nil, err
	}
	s.sessions.Put(userID, seq)
	s.logger.Info("session started",
		zap.String("user_id", userID),
		zap.String("deck_id", deckID),
		zap.String("mode", string(mode)),
		zap.Int("review_cards", len(deck.ReviewCards)),
	)
	return seq, nil
}

// activeSession returns the user's session for the deck and mode.
func (s *Server) activeSession(userID, deckID, rawMode string) (*session.Sequencer, error) {
	mode, err := session.ParseMode(rawMode)
	if err != nil {
		return nil, badRequest{err.Error()}
	}
	seq, ok := s.sessions.Get(userID, deckID, mode)
	if !ok {
		return nil, errNoSession
	}
	return seq, nil
}

// applyAction runs one learner action. A failed progress write does not
// undo the move; it is reported as a warning alongside the new state.
func (s *Server) applyAction(ctx context.Context, seq *session.Sequencer, action string) (warning string, err error) {
	switch action {
	case "reveal":
		_, err = seq.Reveal(ctx)
	case "advance":
		_, err = seq.Advance(ctx)
	case "restart":
		seq.Restart()
	default:
		return "", errUnknownAction
	}

	var perr *progress.PersistenceError
	if errors.As(err, &perr) {
		s.logger.Warn("session progress not saved",
			zap.String("deck_id", seq.Deck().ID),
			zap.String("action", action),
			zap.Error(err),
		)
		return persistenceWarning, nil
	}
	return "", err
}

func parseStartMode(r *http.Request, raw string) (session.Mode, bool, error) {
	mode, err := session.ParseMode(raw)
	if err != nil {
		return "", false, badRequest{err.Error()}
	}
	unseen := r.URL.Query().Get("unseen") == "1" || r.FormValue("unseen") == "1"
	return mode, unseen, nil
}

// handleStartSession begins a study or review session and renders its first step.
func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request, userID string) {
	mode, unseen, err := parseStartMode(r, r.PathValue("mode"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	seq, err := s.startSession(r.Context(), userID, r.PathValue("id"), mode, unseen)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "session", s.sessionView(seq, ""))
}

// handleGetSession re-renders the current step of an active session.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, userID string) {
	seq, err := s.activeSession(userID, r.PathValue("deckID"), r.PathValue("mode"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "session", s.sessionView(seq, ""))
}

// handleSessionAction applies reveal, advance or restart and renders the result.
func (s *Server) handleSessionAction(w http.ResponseWriter, r *http.Request, userID string) {
	seq, err := s.activeSession(userID, r.PathValue("deckID"), r.PathValue("mode"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	warning, err := s.applyAction(r.Context(), seq, r.PathValue("action"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "session", s.sessionView(seq, warning))
}
