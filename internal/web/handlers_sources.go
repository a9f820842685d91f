package web

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/conorfennell/studydeck/internal/domain"
)

// userSources lists the sources owned by userID.
func (s *Server) userSources(ctx context.Context, userID string) ([]domain.Source, error) {
	all, err := s.store.GetAllSources(ctx)
	if err != nil {
		return nil, err
	}
	owned := make([]domain.Source, 0, len(all))
	for _, src := range all {
		if src.OwnerID == userID {
			owned = append(owned, src)
		}
	}
	return owned, nil
}

func (s *Server) renderSourceList(w http.ResponseWriter, r *http.Request, userID string) {
	sources, err := s.userSources(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "source_list", map[string]interface{}{"Sources": sources})
}

// handleGetSources renders the main sources management page.
func (s *Server) handleGetSources(w http.ResponseWriter, r *http.Request, userID string) {
	sources, err := s.userSources(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "sources", map[string]interface{}{"Sources": sources})
}

// handlePostSource adds a new source and re-renders the source list.
func (s *Server) handlePostSource(w http.ResponseWriter, r *http.Request, userID string) {
	path := strings.TrimSpace(r.PostFormValue("path"))
	if path == "" {
		s.fail(w, r, badRequest{"Path cannot be empty"})
		return
	}
	sourceType := domain.DetectSourceType(path)
	id, err := s.store.InsertSource(r.Context(), path, sourceType, userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("source added", zap.Int64("id", id), zap.String("path", path), zap.String("type", string(sourceType)))
	s.renderSourceList(w, r, userID)
}

// handleDeleteSource deletes a source with its decks and re-renders the source list.
func (s *Server) handleDeleteSource(w http.ResponseWriter, r *http.Request, userID string) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.fail(w, r, badRequest{"Invalid source ID"})
		return
	}
	src, err := s.store.GetSource(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if src.OwnerID != userID {
		s.fail(w, r, errForbidden)
		return
	}
	if err := s.store.DeleteSource(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.renderSourceList(w, r, userID)
}

// handlePostSync syncs the user's sources in the foreground and re-renders the list.
func (s *Server) handlePostSync(w http.ResponseWriter, r *http.Request, userID string) {
	sources, err := s.userSources(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var decks, failed int
	for _, src := range sources {
		res, err := s.syncer.SyncSource(r.Context(), src)
		if err != nil {
			s.logger.Error("manual sync failed", zap.Int64("source_id", src.ID), zap.Error(err))
			failed++
			continue
		}
		if len(res.Errors) > 0 {
			failed++
		}
		decks += res.Decks
	}

	// Render both the success message and the updated list
	s.render(w, r, http.StatusOK, "sync_success", map[string]interface{}{
		"Sources": len(sources),
		"Decks":   decks,
		"Failed":  failed,
	})
	if err := s.templates.ExecuteTemplate(w, "source_list", map[string]interface{}{"Sources": sources}); err != nil {
		s.logger.Error("failed to render template", zap.String("template", "source_list"), zap.Error(err))
	}
}
