package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/conorfennell/studydeck/internal/domain"
	"github.com/conorfennell/studydeck/internal/progress"
	decksync "github.com/conorfennell/studydeck/internal/sync"
)

//go:embed all:static
var staticFiles embed.FS

//go:embed all:templates
var templateFiles embed.FS

// UserHeader carries the authenticated user ID set by the fronting proxy.
const UserHeader = "X-User-ID"

// Store is the content store the presentation layer reads and edits.
type Store interface {
	ListDecks(ctx context.Context, ownerID string) ([]domain.Deck, error)
	GetDeck(ctx context.Context, id string) (*domain.Deck, error)
	CreateDeck(ctx context.Context, deck *domain.Deck) error
	DeleteDeck(ctx context.Context, id string) error
	CreateReviewCard(ctx context.Context, rc *domain.ReviewCard) error
	CreateFlashcard(ctx context.Context, fc *domain.Flashcard) error
	UpdateFlashcardFeedback(ctx context.Context, id string, feedback domain.Feedback) error
	ReviewCardOwner(ctx context.Context, reviewCardID string) (ownerID, deckID string, err error)
	FlashcardOwner(ctx context.Context, flashcardID string) (ownerID, deckID string, err error)

	InsertSource(ctx context.Context, path string, sourceType domain.SourceType, ownerID string) (int64, error)
	GetSource(ctx context.Context, id int64) (*domain.Source, error)
	GetAllSources(ctx context.Context) ([]domain.Source, error)
	DeleteSource(ctx context.Context, sourceID int64) error
}

// SourceSyncer reconciles one deck source.
type SourceSyncer interface {
	SyncSource(ctx context.Context, source domain.Source) (decksync.Result, error)
}

// Options tunes the presentation layer.
type Options struct {
	// NotificationDelay is how long the "card complete" notice stays up.
	NotificationDelay time.Duration
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	store     Store
	tracker   *progress.Tracker
	syncer    SourceSyncer
	sessions  *Registry
	router    *http.ServeMux
	templates *template.Template
	markdown  goldmark.Markdown
	logger    *zap.Logger
	opts      Options
}

// NewServer creates and configures a new server.
func NewServer(store Store, tracker *progress.Tracker, syncer SourceSyncer, logger *zap.Logger, opts Options) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		store:    store,
		tracker:  tracker,
		syncer:   syncer,
		sessions: NewRegistry(),
		router:   http.NewServeMux(),
		markdown: newMarkdown(),
		logger:   logger,
		opts:     opts,
	}

	tpl, err := template.New("").Funcs(template.FuncMap{
		"markdown": s.renderMarkdown,
		"percent":  func(f float64) string { return fmt.Sprintf("%.0f", f) },
		"dict":     dict,
		"feedbackOptions": func() []domain.Feedback {
			return []domain.Feedback{domain.FeedbackEasy, domain.FeedbackMedium, domain.FeedbackHard}
		},
	}).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	s.templates = tpl

	if err := s.routes(); err != nil {
		return nil, err
	}
	return s, nil
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() error {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to create sub-filesystem for static assets: %w", err)
	}
	s.router.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	s.router.HandleFunc("GET /{$}", s.handleIndex)

	// HTMX-based routes
	s.router.Handle("GET /decks", s.authed(s.handleListDecks))
	s.router.Handle("POST /decks", s.authed(s.handleCreateDeck))
	s.router.Handle("GET /decks/{id}", s.authed(s.handleGetDeck))
	s.router.Handle("DELETE /decks/{id}", s.authed(s.handleDeleteDeck))
	s.router.Handle("POST /decks/{id}/review-cards", s.authed(s.handleCreateReviewCard))
	s.router.Handle("POST /review-cards/{id}/flashcards", s.authed(s.handleCreateFlashcard))
	s.router.Handle("POST /decks/{id}/{mode}", s.authed(s.handleStartSession))
	s.router.Handle("GET /sessions/{deckID}/{mode}", s.authed(s.handleGetSession))
	s.router.Handle("POST /sessions/{deckID}/{mode}/{action}", s.authed(s.handleSessionAction))
	s.router.Handle("PUT /flashcards/{id}/feedback", s.authed(s.handleFeedback))

	// Source management routes
	s.router.Handle("GET /sources", s.authed(s.handleGetSources))
	s.router.Handle("POST /sources", s.authed(s.handlePostSource))
	s.router.Handle("DELETE /sources/{id}", s.authed(s.handleDeleteSource))
	s.router.Handle("POST /sync", s.authed(s.handlePostSync))

	// JSON API
	s.router.Handle("GET /api/decks", s.authed(s.apiListDecks))
	s.router.Handle("POST /api/decks", s.authed(s.apiCreateDeck))
	s.router.Handle("GET /api/decks/{id}", s.authed(s.apiGetDeck))
	s.router.Handle("GET /api/decks/{id}/progress", s.authed(s.apiGetProgress))
	s.router.Handle("POST /api/decks/{id}/sessions/{mode}", s.authed(s.apiStartSession))
	s.router.Handle("GET /api/sessions/{deckID}/{mode}", s.authed(s.apiGetSession))
	s.router.Handle("POST /api/sessions/{deckID}/{mode}/{action}", s.authed(s.apiSessionAction))
	s.router.Handle("PUT /api/flashcards/{id}/feedback", s.authed(s.apiFeedback))
	return nil
}

// authed rejects requests without a user ID and hands the ID to next.
func (s *Server) authed(next func(w http.ResponseWriter, r *http.Request, userID string)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserHeader)
		if userID == "" {
			s.fail(w, r, progress.ErrNotAuthenticated)
			return
		}
		next(w, r, userID)
	})
}

// handleIndex renders the application shell.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "index", nil)
}

// dict builds a map from alternating keys and values for nested templates.
func dict(pairs ...interface{}) (map[string]interface{}, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict needs an even number of arguments")
	}
	m := make(map[string]interface{}, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

// render executes a named template, logging failures once headers are sent.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("failed to render template", zap.String("template", name), zap.String("path", r.URL.Path), zap.Error(err))
	}
}
