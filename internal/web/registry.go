package web

import (
	"sync"

	"github.com/conorfennell/studydeck/internal/session"
)

type sessionKey struct {
	userID string
	deckID string
	mode   session.Mode
}

// Registry keeps one active session per user, deck and mode.
type Registry struct {
	mu       sync.Mutex
	sessions map[sessionKey]*session.Sequencer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[sessionKey]*session.Sequencer)}
}

// Get returns the active session, if any.
func (r *Registry) Get(userID, deckID string, mode session.Mode) (*session.Sequencer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seq, ok := r.sessions[sessionKey{userID, deckID, mode}]
	return seq, ok
}

// Put replaces the active session for the sequencer's deck and mode.
func (r *Registry) Put(userID string, seq *session.Sequencer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionKey{userID, seq.Deck().ID, seq.Mode()}] = seq
}

// DropDeck ends every session on a deck, for every user.
func (r *Registry) DropDeck(deckID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.sessions {
		if k.deckID == deckID {
			delete(r.sessions, k)
		}
	}
}

// Len returns the number of active sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
