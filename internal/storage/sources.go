package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/conorfennell/studydeck/internal/domain"
)

const sourceColumns = `id, path, type, owner_id, last_scanned`

// InsertSource inserts a new source into the database and returns its ID.
func (db *DB) InsertSource(ctx context.Context, path string, sourceType domain.SourceType, ownerID string) (int64, error) {
	var id int64
	err := db.conn.GetContext(ctx, &id, db.conn.Rebind(`
		INSERT INTO sources (path, type, owner_id)
		VALUES (?, ?, ?)
		RETURNING id
	`), path, sourceType, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert source %s: %w", path, err)
	}
	return id, nil
}

// FindSourceByPath retrieves a source by its path. It returns nil when the
// path is not registered.
func (db *DB) FindSourceByPath(ctx context.Context, path string) (*domain.Source, error) {
	var s domain.Source
	err := db.conn.GetContext(ctx, &s, db.conn.Rebind(`SELECT `+sourceColumns+` FROM sources WHERE path = ?`), path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Source not found
		}
		return nil, fmt.Errorf("failed to find source by path %s: %w", path, err)
	}
	return &s, nil
}

// GetSource retrieves a source by ID.
func (db *DB) GetSource(ctx context.Context, id int64) (*domain.Source, error) {
	var s domain.Source
	err := db.conn.GetContext(ctx, &s, db.conn.Rebind(`SELECT `+sourceColumns+` FROM sources WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("source %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get source %d: %w", id, err)
	}
	return &s, nil
}

// GetAllSources retrieves all stored sources.
func (db *DB) GetAllSources(ctx context.Context) ([]domain.Source, error) {
	var sources []domain.Source
	if err := db.conn.SelectContext(ctx, &sources, `SELECT `+sourceColumns+` FROM sources ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to get all sources: %w", err)
	}
	return sources, nil
}

// UpdateSourceLastScanned stamps a source with the current time.
func (db *DB) UpdateSourceLastScanned(ctx context.Context, sourceID int64) error {
	_, err := db.conn.ExecContext(ctx, db.conn.Rebind(`
		UPDATE sources
		SET last_scanned = ?
		WHERE id = ?
	`), db.timestamp(), sourceID)
	if err != nil {
		return fmt.Errorf("failed to update last scanned for source ID %d: %w", sourceID, err)
	}
	return nil
}

// DeleteSource removes a source and every deck imported from it.
func (db *DB) DeleteSource(ctx context.Context, sourceID int64) error {
	return db.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM decks WHERE source_id = ?`), sourceID); err != nil {
			return fmt.Errorf("failed to delete decks of source ID %d: %w", sourceID, err)
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM sources WHERE id = ?`), sourceID)
		if err != nil {
			return fmt.Errorf("failed to delete source ID %d: %w", sourceID, err)
		}
		return expectAffected(res, "source", fmt.Sprint(sourceID))
	})
}
