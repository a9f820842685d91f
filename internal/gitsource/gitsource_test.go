package gitsource

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPath(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{url: "https://github.com/user/decks.git", want: filepath.Join("repos", "github.com", "user", "decks")},
		{url: "http://example.com/team/cards", want: filepath.Join("repos", "example.com", "team", "cards")},
		{url: "git@github.com:user/decks.git", want: filepath.Join("repos", "github.com", "user", "decks")},
		{url: "not a url", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := LocalPath("repos", tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{err: errors.New("connection reset by peer"), want: true},
		{err: fmt.Errorf("failed to clone: %w", transport.ErrRepositoryNotFound), want: false},
		{err: transport.ErrAuthenticationRequired, want: false},
		{err: context.Canceled, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(tt.err))
		})
	}
}

func TestSync_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher(3, nil)
	err := f.Sync(ctx, "https://example.invalid/decks.git", filepath.Join(t.TempDir(), "decks"))
	assert.True(t, errors.Is(err, context.Canceled))
}
