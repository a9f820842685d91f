package web

import (
	"bytes"
	"html/template"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/conorfennell/studydeck/internal/domain"
	"github.com/conorfennell/studydeck/internal/session"
)

// newMarkdown renders card content. Raw HTML in content is not passed
// through, so the output is safe to embed.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
	)
}

func (s *Server) renderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// SessionView is what a client needs to render the current step of a session.
type SessionView struct {
	DeckID           string        `json:"deck_id"`
	DeckName         string        `json:"deck_name"`
	Mode             session.Mode  `json:"mode"`
	Item             session.Item  `json:"item"`
	State            session.State `json:"state"`
	Progress         float64       `json:"progress"`
	Completed        bool          `json:"completed"`
	Position         int           `json:"position"`
	TotalReviewCards int           `json:"total_review_cards"`
	NoticeMillis     int64         `json:"notice_ms,omitempty"`
	Warning          string        `json:"warning,omitempty"`
}

func (s *Server) sessionView(seq *session.Sequencer, warning string) SessionView {
	deck := seq.Deck()
	snap := seq.Snapshot()
	state := snap.State
	v := SessionView{
		DeckID:           deck.ID,
		DeckName:         deck.Name,
		Mode:             seq.Mode(),
		Item:             snap.Item,
		State:            state,
		Progress:         snap.Percentage,
		Completed:        state.Phase == session.PhaseCompleted,
		Position:         state.ReviewCardIndex + 1,
		TotalReviewCards: len(deck.ReviewCards),
		Warning:          warning,
	}
	if v.Completed {
		v.Position = v.TotalReviewCards
	}
	if state.CardComplete {
		v.NoticeMillis = s.opts.NotificationDelay.Milliseconds()
	}
	return v
}

// DeckView backs the deck page.
type DeckView struct {
	Deck          *domain.Deck           `json:"deck"`
	Summary       domain.ProgressSummary `json:"summary"`
	CanReview     bool                   `json:"can_review"`
	ReviewCards   int                    `json:"review_cards"`
	Flashcards    int                    `json:"flashcards"`
	LastUpdatedAt time.Time              `json:"last_updated_at"`
}
