package web

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/studydeck/internal/domain"
	"github.com/conorfennell/studydeck/internal/session"
)

func startSeq(t *testing.T, deckID string, mode session.Mode) *session.Sequencer {
	t.Helper()
	deck := &domain.Deck{ID: deckID, ReviewCards: []domain.ReviewCard{{ID: "rc"}}}
	seq, err := session.Start(deck, mode, nil)
	require.NoError(t, err)
	return seq
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	study := startSeq(t, "d1", session.ModeStudy)
	r.Put("u1", study)
	r.Put("u1", startSeq(t, "d1", session.ModeReview))
	r.Put("u2", startSeq(t, "d1", session.ModeStudy))
	r.Put("u1", startSeq(t, "d2", session.ModeStudy))
	assert.Equal(t, 4, r.Len())

	got, ok := r.Get("u1", "d1", session.ModeStudy)
	require.True(t, ok)
	assert.Same(t, study, got)

	_, ok = r.Get("u3", "d1", session.ModeStudy)
	assert.False(t, ok)

	// a new session replaces the old one for the same key
	replacement := startSeq(t, "d1", session.ModeStudy)
	r.Put("u1", replacement)
	got, _ = r.Get("u1", "d1", session.ModeStudy)
	assert.Same(t, replacement, got)
	assert.Equal(t, 4, r.Len())

	r.DropDeck("d1")
	assert.Equal(t, 1, r.Len())
	_, ok = r.Get("u1", "d2", session.ModeStudy)
	assert.True(t, ok)
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Put("u", startSeq(t, "d", session.ModeStudy))
			r.Get("u", "d", session.ModeStudy)
			if i%5 == 0 {
				r.DropDeck("d")
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, r.Len(), 1)
}
