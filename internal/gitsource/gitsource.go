// Package gitsource keeps local clones of git deck sources up to date.
package gitsource

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"go.uber.org/zap"
)

// Fetcher clones or pulls repositories, retrying transient failures.
type Fetcher struct {
	attempts uint
	delay    time.Duration
	logger   *zap.Logger
}

// NewFetcher returns a Fetcher that tries each clone or pull up to attempts times.
func NewFetcher(attempts uint, logger *zap.Logger) *Fetcher {
	if attempts == 0 {
		attempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{attempts: attempts, delay: time.Second, logger: logger}
}

// Sync clones a git repository if it doesn't exist at the given path,
// or pulls the latest changes if it does.
func (f *Fetcher) Sync(ctx context.Context, repoURL, localPath string) error {
	return retry.Do(
		func() error {
			err := f.syncOnce(ctx, repoURL, localPath)
			if err != nil && !isRetryable(err) {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(f.attempts),
		retry.Delay(f.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			f.logger.Warn("retrying git sync", zap.String("url", repoURL), zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
}

func (f *Fetcher) syncOnce(ctx context.Context, repoURL, localPath string) error {
	_, err := os.Stat(localPath)
	if os.IsNotExist(err) {
		f.logger.Info("cloning repository", zap.String("url", repoURL), zap.String("path", localPath))
		_, err := git.PlainCloneContext(ctx, localPath, false, &git.CloneOptions{URL: repoURL})
		if err != nil {
			return fmt.Errorf("failed to clone repo %s: %w", repoURL, err)
		}
		return nil
	} else if err != nil {
		return fmt.Errorf("error checking path %s: %w", localPath, err)
	}

	f.logger.Info("pulling repository", zap.String("path", localPath))
	repo, err := git.PlainOpen(localPath)
	if err != nil {
		return fmt.Errorf("failed to open existing repo at %s: %w", localPath, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree for repo at %s: %w", localPath, err)
	}

	err = worktree.PullContext(ctx, &git.PullOptions{RemoteName: "origin"})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to pull changes for repo at %s: %w", localPath, err)
	}
	return nil
}

// isRetryable reports whether another attempt could succeed.
func isRetryable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, transport.ErrRepositoryNotFound),
		errors.Is(err, transport.ErrEmptyRemoteRepository),
		errors.Is(err, transport.ErrAuthenticationRequired),
		errors.Is(err, transport.ErrAuthorizationFailed),
		errors.Is(err, transport.ErrInvalidAuthMethod),
		errors.Is(err, git.ErrRepositoryNotExists),
		errors.Is(err, git.ErrNonFastForwardUpdate):
		return false
	}
	return true
}

// LocalPath maps a remote URL to a directory under baseDir, e.g.
// https://github.com/a/b.git -> baseDir/github.com/a/b.
func LocalPath(baseDir, repoURL string) (string, error) {
	parsedURL, err := url.Parse(repoURL)
	if err != nil || (parsedURL.Scheme != "https" && parsedURL.Scheme != "http") {
		if strings.Contains(repoURL, "@") {
			parts := strings.Split(repoURL, ":")
			if len(parts) == 2 {
				hostAndUser := strings.Split(parts[0], "@")
				if len(hostAndUser) == 2 {
					host := hostAndUser[1]
					repoPath := strings.TrimSuffix(parts[1], ".git")
					return filepath.Join(baseDir, host, repoPath), nil
				}
			}
		}
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}

	sanitizedPath := strings.TrimSuffix(parsedURL.Path, ".git")
	return filepath.Join(baseDir, parsedURL.Host, sanitizedPath), nil
}
