package sync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/conorfennell/studydeck/internal/domain"
	"github.com/conorfennell/studydeck/internal/storage"
)

const verbsDeck = `# Verbs
## ser
to be
Q: yo
A: soy
---
Q: tú
A: eres
## ir
to go
`

func newStore(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(storage.DriverSQLite, ":memory:", storage.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeXLSX(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "Nouns"))
	require.NoError(t, f.SetSheetRow("Nouns", "A1", &[]interface{}{"casa: house", "la ___", "casa"}))
	require.NoError(t, f.SaveAs(path))
}

func addSource(t *testing.T, db *storage.DB, path string, typ domain.SourceType) domain.Source {
	t.Helper()
	ctx := context.Background()
	id, err := db.InsertSource(ctx, path, typ, "user-1")
	require.NoError(t, err)
	s, err := db.GetSource(ctx, id)
	require.NoError(t, err)
	return *s
}

func TestSyncSource_Local(t *testing.T) {
	ctx := context.Background()
	db := newStore(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "spanish", "verbs.md"), verbsDeck)
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")
	writeXLSX(t, filepath.Join(dir, "nouns.xlsx"))

	source := addSource(t, db, dir, domain.SourceLocal)
	s := NewSyncer(db, nil, t.TempDir(), nil)

	res, err := s.SyncSource(ctx, source)
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 2, res.Decks)
	assert.Equal(t, 3, res.ReviewCards)
	assert.Equal(t, 3, res.Flashcards)

	decks, err := db.ListDecks(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, decks, 2)

	got, err := db.GetSource(ctx, source.ID)
	require.NoError(t, err)
	assert.True(t, got.LastScanned.Valid)

	// Progress survives a re-sync of unchanged content.
	verbs, err := db.ListDecksBySource(ctx, source.ID)
	require.NoError(t, err)
	var verbsID string
	for _, d := range verbs {
		if d.Name == "Verbs" {
			verbsID = d.ID
		}
	}
	require.NotEmpty(t, verbsID)
	full, err := db.GetDeckWithCards(ctx, verbsID)
	require.NoError(t, err)
	firstCard := full.ReviewCards[0].ID

	res, err = s.SyncSource(ctx, source)
	require.NoError(t, err)
	assert.Zero(t, res.Removed)
	full, err = db.GetDeckWithCards(ctx, verbsID)
	require.NoError(t, err)
	assert.Equal(t, firstCard, full.ReviewCards[0].ID)

	// Removing a file removes its deck.
	require.NoError(t, os.Remove(filepath.Join(dir, "nouns.xlsx")))
	res, err = s.SyncSource(ctx, source)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Removed)

	decks, err = db.ListDecks(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, decks, 1)
	assert.Equal(t, "Verbs", decks[0].Name)
}

func TestSyncSource_ParseErrorKeepsDecks(t *testing.T) {
	ctx := context.Background()
	db := newStore(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "verbs.md"), verbsDeck)

	source := addSource(t, db, dir, domain.SourceLocal)
	s := NewSyncer(db, nil, t.TempDir(), nil)
	_, err := s.SyncSource(ctx, source)
	require.NoError(t, err)

	writeFile(t, filepath.Join(dir, "verbs.md"), "# Verbs\nQ: orphan\nA: answer\n")
	res, err := s.SyncSource(ctx, source)
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Zero(t, res.Removed)

	decks, err := db.ListDecksBySource(ctx, source.ID)
	require.NoError(t, err)
	assert.Len(t, decks, 1)
}

type fakeFetcher struct {
	files map[string]string
	err   error
	calls []string
}

func (f *fakeFetcher) Sync(_ context.Context, repoURL, localPath string) error {
	f.calls = append(f.calls, repoURL)
	if f.err != nil {
		return f.err
	}
	for name, content := range f.files {
		path := filepath.Join(localPath, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func TestRunAll_GitSources(t *testing.T) {
	ctx := context.Background()
	db := newStore(t)
	fetcher := &fakeFetcher{files: map[string]string{"decks/verbs.md": verbsDeck}}
	addSource(t, db, "https://github.com/user/decks.git", domain.SourceGit)

	s := NewSyncer(db, fetcher, t.TempDir(), nil)
	results, err := s.RunAll(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Errors)
	assert.Equal(t, 1, results[0].Decks)
	assert.Equal(t, []string{"https://github.com/user/decks.git"}, fetcher.calls)
}

func TestRunAll_FailingSourceDoesNotStopOthers(t *testing.T) {
	ctx := context.Background()
	db := newStore(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "verbs.md"), verbsDeck)

	fetcher := &fakeFetcher{err: errors.New("network down")}
	addSource(t, db, "git@github.com:user/decks.git", domain.SourceGit)
	addSource(t, db, dir, domain.SourceLocal)

	s := NewSyncer(db, fetcher, t.TempDir(), nil)
	results, err := s.RunAll(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Len(t, results[0].Errors, 1)
	assert.Empty(t, results[1].Errors)
	assert.Equal(t, 1, results[1].Decks)
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	db := newStore(t)
	path := filepath.Join(t.TempDir(), "verbs.md")
	writeFile(t, path, verbsDeck)

	s := NewSyncer(db, nil, "", nil)
	decks, err := s.Import(ctx, path, "user-2")
	require.NoError(t, err)
	require.Len(t, decks, 1)

	again, err := s.Import(ctx, path, "user-2")
	require.NoError(t, err)
	assert.Equal(t, decks[0].ID, again[0].ID, "re-import updates the same deck")

	stored, err := db.GetDeckWithCards(ctx, decks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "user-2", stored.OwnerID)
	assert.False(t, stored.SourceID.Valid)
	assert.Equal(t, 2, stored.FlashcardCount())
}

func TestLoadFile_Unsupported(t *testing.T) {
	_, err := LoadFile("deck.pdf")
	assert.Error(t, err)
	assert.False(t, IsDeckFile("deck.pdf"))
	assert.True(t, IsDeckFile("Deck.MD"))
}
