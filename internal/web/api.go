package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/conorfennell/studydeck/internal/domain"
)

type createDeckRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type feedbackRequest struct {
	Feedback domain.Feedback `json:"feedback"`
}

type progressResponse struct {
	DeckID    string                  `json:"deck_id"`
	Summary   domain.ProgressSummary  `json:"summary"`
	CanReview bool                    `json:"can_review"`
	Records   []domain.ProgressRecord `json:"records"`
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest{"invalid request body: " + err.Error()}
	}
	return nil
}

func (s *Server) apiListDecks(w http.ResponseWriter, r *http.Request, userID string) {
	decks, err := s.store.ListDecks(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if decks == nil {
		decks = []domain.Deck{}
	}
	writeJSON(w, http.StatusOK, decks)
}

func (s *Server) apiCreateDeck(w http.ResponseWriter, r *http.Request, userID string) {
	var req createDeckRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	deck := &domain.Deck{
		OwnerID:     userID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	}
	if deck.Name == "" {
		s.fail(w, r, badRequest{"name is required"})
		return
	}
	if err := s.store.CreateDeck(r.Context(), deck); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, deck)
}

func (s *Server) apiGetDeck(w http.ResponseWriter, r *http.Request, userID string) {
	view, err := s.deckView(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) apiGetProgress(w http.ResponseWriter, r *http.Request, userID string) {
	deckID := r.PathValue("id")
	if _, err := s.ownedDeck(r.Context(), userID, deckID); err != nil {
		s.fail(w, r, err)
		return
	}
	summary, err := s.tracker.GetProgressSummary(r.Context(), userID, deckID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	records, err := s.tracker.GetProgressRecords(r.Context(), userID, deckID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	canReview, err := s.tracker.CanEnterReviewMode(r.Context(), userID, deckID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if records == nil {
		records = []domain.ProgressRecord{}
	}
	writeJSON(w, http.StatusOK, progressResponse{
		DeckID:    deckID,
		Summary:   summary,
		CanReview: canReview,
		Records:   records,
	})
}

func (s *Server) apiStartSession(w http.ResponseWriter, r *http.Request, userID string) {
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
	writeJSON(w, http.StatusCreated, s.sessionView(seq, ""))
}

func (s *Server) apiGetSession(w http.ResponseWriter, r *http.Request, userID string) {
	seq, err := s.activeSession(userID, r.PathValue("deckID"), r.PathValue("mode"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sessionView(seq, ""))
}

func (s *Server) apiSessionAction(w http.ResponseWriter, r *http.Request, userID string) {
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
	writeJSON(w, http.StatusOK, s.sessionView(seq, warning))
}

func (s *Server) apiFeedback(w http.ResponseWriter, r *http.Request, userID string) {
	var req feedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	id := r.PathValue("id")
	if err := s.setFeedback(r.Context(), userID, id, req.Feedback); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"flashcard_id": id,
		"feedback":     req.Feedback,
	})
}
