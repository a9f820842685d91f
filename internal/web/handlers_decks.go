package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/conorfennell/studydeck/internal/domain"
)

// ownedDeck loads a deck and hides it from everyone but its owner.
func (s *Server) ownedDeck(ctx context.Context, userID, deckID string) (*domain.Deck, error) {
	deck, err := s.store.GetDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if deck.OwnerID != userID {
		return nil, errForbidden
	}
	return deck, nil
}

// deckView gathers a deck's content and the learner's progress on it.
func (s *Server) deckView(ctx context.Context, userID, deckID string) (*DeckView, error) {
	if _, err := s.ownedDeck(ctx, userID, deckID); err != nil {
		return nil, err
	}
	deck, err := s.tracker.GetDeckWithCards(ctx, deckID)
	if err != nil {
		return nil, err
	}
	summary, err := s.tracker.GetProgressSummary(ctx, userID, deckID)
	if err != nil {
		return nil, err
	}
	canReview, err := s.tracker.CanEnterReviewMode(ctx, userID, deckID)
	if err != nil {
		return nil, err
	}
	return &DeckView{
		Deck:          deck,
		Summary:       summary,
		CanReview:     canReview,
		ReviewCards:   len(deck.ReviewCards),
		Flashcards:    deck.FlashcardCount(),
		LastUpdatedAt: deck.UpdatedAt,
	}, nil
}

// handleListDecks renders the learner's decks.
func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request, userID string) {
	decks, err := s.store.ListDecks(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "deck_list", map[string]interface{}{"Decks": decks})
}

// handleCreateDeck adds an empty deck and re-renders the deck list.
func (s *Server) handleCreateDeck(w http.ResponseWriter, r *http.Request, userID string) {
	deck := &domain.Deck{
		OwnerID:     userID,
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
	}
	if deck.Name == "" {
		s.fail(w, r, badRequest{"Deck name cannot be empty"})
		return
	}
	if err := s.store.CreateDeck(r.Context(), deck); err != nil {
		s.fail(w, r, err)
		return
	}
	s.handleListDecks(w, r, userID)
}

// handleGetDeck renders the deck page with study and review entry points.
func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request, userID string) {
	view, err := s.deckView(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "deck", view)
}

// handleDeleteDeck deletes a deck, ends its sessions and re-renders the deck list.
func (s *Server) handleDeleteDeck(w http.ResponseWriter, r *http.Request, userID string) {
	id := r.PathValue("id")
	if _, err := s.ownedDeck(r.Context(), userID, id); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.DeleteDeck(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.sessions.DropDeck(id)
	s.handleListDecks(w, r, userID)
}

// handleCreateReviewCard appends a review card and re-renders the deck page.
func (s *Server) handleCreateReviewCard(w http.ResponseWriter, r *http.Request, userID string) {
	deckID := r.PathValue("id")
	if _, err := s.ownedDeck(r.Context(), userID, deckID); err != nil {
		s.fail(w, r, err)
		return
	}
	rc := &domain.ReviewCard{
		DeckID:   deckID,
		Content:  strings.TrimSpace(r.PostFormValue("content")),
		ImageURL: strings.TrimSpace(r.PostFormValue("image_url")),
	}
	if rc.Content == "" && rc.ImageURL == "" {
		s.fail(w, r, badRequest{"Review card needs content or an image"})
		return
	}
	if err := s.store.CreateReviewCard(r.Context(), rc); err != nil {
		s.fail(w, r, err)
		return
	}
	s.handleGetDeck(w, r, userID)
}

// handleCreateFlashcard appends a flashcard to a review card and re-renders the deck page.
func (s *Server) handleCreateFlashcard(w http.ResponseWriter, r *http.Request, userID string) {
	rcID := r.PathValue("id")
	owner, deckID, err := s.store.ReviewCardOwner(r.Context(), rcID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if owner != userID {
		s.fail(w, r, errForbidden)
		return
	}
	fc := &domain.Flashcard{
		ReviewCardID:  rcID,
		FrontContent:  strings.TrimSpace(r.PostFormValue("front")),
		FrontImageURL: strings.TrimSpace(r.PostFormValue("front_image_url")),
		BackContent:   strings.TrimSpace(r.PostFormValue("back")),
		BackImageURL:  strings.TrimSpace(r.PostFormValue("back_image_url")),
	}
	if fc.FrontContent == "" && fc.FrontImageURL == "" {
		s.fail(w, r, badRequest{"Flashcard front cannot be empty"})
		return
	}
	if err := s.store.CreateFlashcard(r.Context(), fc); err != nil {
		s.fail(w, r, err)
		return
	}

	view, err := s.deckView(r.Context(), userID, deckID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "deck", view)
}

// setFeedback checks ownership and stores a flashcard's difficulty tag.
func (s *Server) setFeedback(ctx context.Context, userID, flashcardID string, feedback domain.Feedback) error {
	if !feedback.Valid() {
		return badRequest{"Feedback must be Easy, Medium, Hard or empty"}
	}
	owner, _, err := s.store.FlashcardOwner(ctx, flashcardID)
	if err != nil {
		return err
	}
	if owner != userID {
		return errForbidden
	}
	return s.store.UpdateFlashcardFeedback(ctx, flashcardID, feedback)
}

// handleFeedback stores feedback and renders the feedback buttons.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request, userID string) {
	id := r.PathValue("id")
	feedback := domain.Feedback(r.FormValue("feedback"))
	if err := s.setFeedback(r.Context(), userID, id, feedback); err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "feedback", map[string]interface{}{
		"FlashcardID": id,
		"Feedback":    feedback,
	})
}
