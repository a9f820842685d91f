package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/conorfennell/studydeck/internal/progress"
	"github.com/conorfennell/studydeck/internal/session"
	"github.com/conorfennell/studydeck/internal/storage"
)

var (
	errForbidden     = errors.New("not your deck")
	errNoSession     = errors.New("no active session")
	errUnknownAction = errors.New("unknown session action")
)

// badRequest marks client input errors.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var br badRequest
	switch {
	case errors.Is(err, progress.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, errForbidden), errors.Is(err, errNoSession):
		return http.StatusNotFound
	case errors.Is(err, session.ErrEmptyDeck), errors.Is(err, session.ErrNoEligibleContent):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errUnknownAction), errors.As(err, &br):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func userMessage(err error, status int) string {
	switch {
	case errors.Is(err, session.ErrEmptyDeck):
		return "This deck has nothing to study yet."
	case errors.Is(err, session.ErrNoEligibleContent):
		return "Study some cards before starting a review."
	case errors.Is(err, errForbidden):
		return "Not found"
	case status == http.StatusInternalServerError:
		return "Internal Server Error"
	}
	return err.Error()
}

// fail writes err as JSON for API requests and as an HTML fragment otherwise.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	}
	msg := userMessage(err, status)

	if isAPI(r) {
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}
	s.render(w, r, status, "error", map[string]interface{}{"Message": msg})
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
