// Package sync reconciles deck sources into the content store.
package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/conorfennell/studydeck/internal/domain"
	"github.com/conorfennell/studydeck/internal/fingerprint"
	"github.com/conorfennell/studydeck/internal/gitsource"
	"github.com/conorfennell/studydeck/internal/parser"
)

// Store is the part of the content store sync writes to.
type Store interface {
	GetAllSources(ctx context.Context) ([]domain.Source, error)
	ListDecksBySource(ctx context.Context, sourceID int64) ([]domain.Deck, error)
	UpsertDeckSnapshot(ctx context.Context, deck *domain.Deck) error
	DeleteDeck(ctx context.Context, id string) error
	UpdateSourceLastScanned(ctx context.Context, sourceID int64) error
}

// Fetcher brings a git source's working copy up to date.
type Fetcher interface {
	Sync(ctx context.Context, repoURL, localPath string) error
}

// Result summarises one source reconcile.
type Result struct {
	SourceID    int64
	Decks       int
	ReviewCards int
	Flashcards  int
	Removed     int
	Errors      []error
}

// Syncer walks sources, parses their deck files and stores the decks.
type Syncer struct {
	store    Store
	fetcher  Fetcher
	reposDir string
	logger   *zap.Logger
}

// NewSyncer builds a Syncer. Git sources are cloned under reposDir.
func NewSyncer(store Store, fetcher Fetcher, reposDir string, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{store: store, fetcher: fetcher, reposDir: reposDir, logger: logger}
}

// RunAll iterates over all sources and reconciles them. A failing source
// does not stop the others; its error is reported in its Result.
func (s *Syncer) RunAll(ctx context.Context) ([]Result, error) {
	s.logger.Info("starting sync process for all sources")
	sources, err := s.store.GetAllSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get sources: %w", err)
	}
	if len(sources) == 0 {
		s.logger.Info("no sources configured")
		return nil, nil
	}

	results := make([]Result, 0, len(sources))
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := s.SyncSource(ctx, source)
		if err != nil {
			s.logger.Error("failed to sync source", zap.Int64("source_id", source.ID), zap.String("path", source.Path), zap.Error(err))
			res.Errors = append(res.Errors, err)
		}
		results = append(results, res)
	}
	s.logger.Info("sync process complete", zap.Int("sources", len(sources)))
	return results, nil
}

// SyncSource fetches a source when it is a git remote, then reconciles its
// deck files into the store.
func (s *Syncer) SyncSource(ctx context.Context, source domain.Source) (Result, error) {
	s.logger.Info("syncing source", zap.Int64("id", source.ID), zap.String("type", string(source.Type)), zap.String("path", source.Path))

	root := source.Path
	if source.Type == domain.SourceGit {
		if s.fetcher == nil {
			return Result{SourceID: source.ID}, errors.New("no git fetcher configured")
		}
		if err := os.MkdirAll(s.reposDir, os.ModePerm); err != nil {
			return Result{SourceID: source.ID}, fmt.Errorf("failed to create repos directory: %w", err)
		}
		localPath, err := gitsource.LocalPath(s.reposDir, source.Path)
		if err != nil {
			return Result{SourceID: source.ID}, err
		}
		if err := s.fetcher.Sync(ctx, source.Path, localPath); err != nil {
			return Result{SourceID: source.ID}, fmt.Errorf("failed to sync git repo %s: %w", source.Path, err)
		}
		root = localPath
	}
	return s.reconcile(ctx, source, root)
}

func (s *Syncer) reconcile(ctx context.Context, source domain.Source, root string) (Result, error) {
	res := Result{SourceID: source.ID}
	found := make(map[string]bool)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsDeckFile(path) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		decks, err := LoadFile(path)
		if err != nil {
			res.Errors = append(res.Errors, err)
			return nil
		}
		for _, deck := range decks {
			location := filepath.ToSlash(rel)
			if strings.EqualFold(filepath.Ext(path), ".xlsx") {
				location += "#" + deck.Name
			}
			deck.ID = fingerprint.DeckID(source.ID, location)
			deck.OwnerID = source.OwnerID
			deck.SourceID.Int64, deck.SourceID.Valid = source.ID, true
			fingerprint.Assign(deck)

			if err := s.store.UpsertDeckSnapshot(ctx, deck); err != nil {
				res.Errors = append(res.Errors, err)
				continue
			}
			found[deck.ID] = true
			res.Decks++
			res.ReviewCards += len(deck.ReviewCards)
			res.Flashcards += deck.FlashcardCount()
		}
		return nil
	})
	if walkErr != nil {
		return res, fmt.Errorf("error walking directory %s: %w", root, walkErr)
	}

	if len(res.Errors) > 0 {
		// A file that failed to parse still owns its decks.
		s.logger.Warn("skipping orphan removal after errors", zap.Int64("source_id", source.ID), zap.Int("errors", len(res.Errors)))
	} else {
		existing, err := s.store.ListDecksBySource(ctx, source.ID)
		if err != nil {
			return res, fmt.Errorf("failed to get decks for source %d: %w", source.ID, err)
		}
		for _, deck := range existing {
			if found[deck.ID] {
				continue
			}
			s.logger.Info("orphaned deck, deleting", zap.String("deck_id", deck.ID), zap.String("name", deck.Name))
			if err := s.store.DeleteDeck(ctx, deck.ID); err != nil {
				s.logger.Warn("failed to delete orphaned deck", zap.String("deck_id", deck.ID), zap.Error(err))
				continue
			}
			res.Removed++
		}
	}

	if err := s.store.UpdateSourceLastScanned(ctx, source.ID); err != nil {
		s.logger.Warn("failed to update last scanned for source", zap.Int64("source_id", source.ID), zap.Error(err))
	}

	s.logger.Info("reconciliation complete",
		zap.String("path", root),
		zap.Int("decks", res.Decks),
		zap.Int("review_cards", res.ReviewCards),
		zap.Int("flashcards", res.Flashcards),
		zap.Int("orphaned_deleted", res.Removed),
		zap.Int("errors", len(res.Errors)),
	)
	return res, nil
}

// Import stores the decks of a single file for ownerID, outside any source.
func (s *Syncer) Import(ctx context.Context, path, ownerID string) ([]*domain.Deck, error) {
	decks, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	for _, deck := range decks {
		deck.ID = fingerprint.DeckID(0, ownerID+":"+filepath.ToSlash(abs)+"#"+deck.Name)
		deck.OwnerID = ownerID
		fingerprint.Assign(deck)
		if err := s.store.UpsertDeckSnapshot(ctx, deck); err != nil {
			return nil, err
		}
	}
	return decks, nil
}

// IsDeckFile reports whether path has a deck file extension.
func IsDeckFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".xlsx":
		return true
	}
	return false
}

// LoadFile parses and validates the decks in a markdown or xlsx file.
func LoadFile(path string) ([]*domain.Deck, error) {
	var decks []*domain.Deck
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md":
		deck, err := parser.ParseFile(path)
		if err != nil {
			return nil, err
		}
		if len(deck.ReviewCards) > 0 {
			decks = append(decks, deck)
		}
	case ".xlsx":
		var err error
		if decks, err = parser.ParseWorkbookFile(path); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported deck file %s", path)
	}

	for _, deck := range decks {
		if err := parser.Validate(deck); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return decks, nil
}
