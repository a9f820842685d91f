package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/conorfennell/studydeck/internal/domain"
)

const progressColumns = `user_id, deck_id, review_card_id, flashcard_id, content_type, seen_at, last_reviewed_at, created_at, updated_at`

// MarkSeen records that a user was shown an item. The first seen_at wins so
// re-studying a deck does not move it.
func (db *DB) MarkSeen(ctx context.Context, key domain.ProgressKey, at time.Time) error {
	if err := key.Validate(); err != nil {
		return err
	}
	at = at.UTC().Truncate(time.Microsecond)
	_, err := db.conn.ExecContext(ctx, db.conn.Rebind(`
		INSERT INTO user_study_progress (`+progressColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, NULL, ?, ?)
		ON CONFLICT (user_id, deck_id, review_card_id, flashcard_id, content_type) DO UPDATE SET
			seen_at = COALESCE(user_study_progress.seen_at, excluded.seen_at),
			updated_at = excluded.updated_at
	`), key.UserID, key.DeckID, key.ReviewCardID, key.FlashcardID, key.ContentType, at, at, at)
	if err != nil {
		return fmt.Errorf("failed to mark %s seen for user %s: %w", key.ContentType, key.UserID, err)
	}
	return nil
}

// MarkReviewed records a review of an item. A record created here is also
// marked seen, since reviewing presents the item.
func (db *DB) MarkReviewed(ctx context.Context, key domain.ProgressKey, at time.Time) error {
	if err := key.Validate(); err != nil {
		return err
	}
	at = at.UTC().Truncate(time.Microsecond)
	_, err := db.conn.ExecContext(ctx, db.conn.Rebind(`
		INSERT INTO user_study_progress (`+progressColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, deck_id, review_card_id, flashcard_id, content_type) DO UPDATE SET
			seen_at = COALESCE(user_study_progress.seen_at, excluded.seen_at),
			last_reviewed_at = excluded.last_reviewed_at,
			updated_at = excluded.updated_at
	`), key.UserID, key.DeckID, key.ReviewCardID, key.FlashcardID, key.ContentType, at, at, at, at)
	if err != nil {
		return fmt.Errorf("failed to mark %s reviewed for user %s: %w", key.ContentType, key.UserID, err)
	}
	return nil
}

// ListProgress returns every progress record a user has in a deck.
func (db *DB) ListProgress(ctx context.Context, userID, deckID string) ([]domain.ProgressRecord, error) {
	var records []domain.ProgressRecord
	err := db.conn.SelectContext(ctx, &records, db.conn.Rebind(`
		SELECT `+progressColumns+`
		FROM user_study_progress
		WHERE user_id = ? AND deck_id = ?
		ORDER BY review_card_id, content_type DESC, flashcard_id
	`), userID, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress of user %s in deck %s: %w", userID, deckID, err)
	}
	return records, nil
}
