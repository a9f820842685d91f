package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/conorfennell/studydeck/internal/domain"
)

const (
	reviewCardColumns = `id, deck_id, position, content, image_url, created_at, updated_at`
	flashcardColumns  = `id, review_card_id, position, front_content, front_image_url, back_content, back_image_url, feedback, created_at, updated_at`
)

// CreateReviewCard appends a review card to the end of its deck.
func (db *DB) CreateReviewCard(ctx context.Context, rc *domain.ReviewCard) error {
	if rc.ID == "" {
		rc.ID = uuid.NewString()
	}
	now := db.timestamp()
	rc.CreatedAt, rc.UpdatedAt = now, now

	return db.withTx(ctx, func(tx *sqlx.Tx) error {
		pos, err := db.nextPosition(ctx, tx, "review_cards", "deck_id", rc.DeckID)
		if err != nil {
			return err
		}
		rc.Position = pos

		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO review_cards (`+reviewCardColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`), rc.ID, rc.DeckID, rc.Position, rc.Content, rc.ImageURL, rc.CreatedAt, rc.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert review card into deck %s: %w", rc.DeckID, err)
		}
		return db.touchDeck(ctx, tx, rc.DeckID)
	})
}

// ListReviewCards returns a deck's review cards, without flashcards, in creation order.
func (db *DB) ListReviewCards(ctx context.Context, deckID string) ([]domain.ReviewCard, error) {
	var cards []domain.ReviewCard
	err := db.conn.SelectContext(ctx, &cards, db.conn.Rebind(`
		SELECT `+reviewCardColumns+`
		FROM review_cards WHERE deck_id = ?
		ORDER BY position, created_at, id
	`), deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to list review cards for deck %s: %w", deckID, err)
	}
	return cards, nil
}

// UpdateReviewCard replaces a review card's content and image.
func (db *DB) UpdateReviewCard(ctx context.Context, rc *domain.ReviewCard) error {
	rc.UpdatedAt = db.timestamp()
	res, err := db.conn.ExecContext(ctx, db.conn.Rebind(`
		UPDATE review_cards
		SET content = ?, image_url = ?, updated_at = ?
		WHERE id = ?
	`), rc.Content, rc.ImageURL, rc.UpdatedAt, rc.ID)
	if err != nil {
		return fmt.Errorf("failed to update review card %s: %w", rc.ID, err)
	}
	return expectAffected(res, "review card", rc.ID)
}

// DeleteReviewCard removes a review card and its flashcards.
func (db *DB) DeleteReviewCard(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, db.conn.Rebind(`DELETE FROM review_cards WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete review card %s: %w", id, err)
	}
	return expectAffected(res, "review card", id)
}

// CreateFlashcard appends a flashcard to the end of its review card.
func (db *DB) CreateFlashcard(ctx context.Context, fc *domain.Flashcard) error {
	if fc.ID == "" {
		fc.ID = uuid.NewString()
	}
	if !fc.Feedback.Valid() {
		return fmt.Errorf("invalid feedback %q for flashcard %s", fc.Feedback, fc.ID)
	}
	now := db.timestamp()
	fc.CreatedAt, fc.UpdatedAt = now, now

	return db.withTx(ctx, func(tx *sqlx.Tx) error {
		pos, err := db.nextPosition(ctx, tx, "flashcards", "review_card_id", fc.ReviewCardID)
		if err != nil {
			return err
		}
		fc.Position = pos

		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO flashcards (`+flashcardColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`), fc.ID, fc.ReviewCardID, fc.Position, fc.FrontContent, fc.FrontImageURL, fc.BackContent, fc.BackImageURL,
			fc.Feedback, fc.CreatedAt, fc.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert flashcard into review card %s: %w", fc.ReviewCardID, err)
		}
		return nil
	})
}

// ListFlashcards returns a review card's flashcards in creation order.
func (db *DB) ListFlashcards(ctx context.Context, reviewCardID string) ([]domain.Flashcard, error) {
	var cards []domain.Flashcard
	err := db.conn.SelectContext(ctx, &cards, db.conn.Rebind(`
		SELECT `+flashcardColumns+`
		FROM flashcards WHERE review_card_id = ?
		ORDER BY position, created_at, id
	`), reviewCardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list flashcards for review card %s: %w", reviewCardID, err)
	}
	return cards, nil
}

// UpdateFlashcard replaces both sides of a flashcard.
func (db *DB) UpdateFlashcard(ctx context.Context, fc *domain.Flashcard) error {
	fc.UpdatedAt = db.timestamp()
	res, err := db.conn.ExecContext(ctx, db.conn.Rebind(`
		UPDATE flashcards
		SET front_content = ?, front_image_url = ?, back_content = ?, back_image_url = ?, updated_at = ?
		WHERE id = ?
	`), fc.FrontContent, fc.FrontImageURL, fc.BackContent, fc.BackImageURL, fc.UpdatedAt, fc.ID)
	if err != nil {
		return fmt.Errorf("failed to update flashcard %s: %w", fc.ID, err)
	}
	return expectAffected(res, "flashcard", fc.ID)
}

// UpdateFlashcardFeedback stores the learner's difficulty tag on a flashcard.
func (db *DB) UpdateFlashcardFeedback(ctx context.Context, id string, feedback domain.Feedback) error {
	if !feedback.Valid() {
		return fmt.Errorf("invalid feedback %q for flashcard %s", feedback, id)
	}
	res, err := db.conn.ExecContext(ctx, db.conn.Rebind(`
		UPDATE flashcards SET feedback = ?, updated_at = ? WHERE id = ?
	`), feedback, db.timestamp(), id)
	if err != nil {
		return fmt.Errorf("failed to update feedback for flashcard %s: %w", id, err)
	}
	return expectAffected(res, "flashcard", id)
}

// DeleteFlashcard removes a flashcard.
func (db *DB) DeleteFlashcard(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, db.conn.Rebind(`DELETE FROM flashcards WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete flashcard %s: %w", id, err)
	}
	return expectAffected(res, "flashcard", id)
}

func (db *DB) touchDeck(ctx context.Context, q queryer, deckID string) error {
	_, err := q.ExecContext(ctx, q.Rebind(`UPDATE decks SET updated_at = ? WHERE id = ?`), db.timestamp(), deckID)
	if err != nil {
		return fmt.Errorf("failed to touch deck %s: %w", deckID, err)
	}
	return nil
}

// parentTables maps a child table to the table its parent rows live in.
var parentTables = map[string]string{
	"review_cards": "decks",
	"flashcards":   "review_cards",
}

// nextPosition returns the position after the last child of parentID in
// table. It must run inside the transaction that inserts the child. On
// postgres the parent row is locked first so concurrent appends to the same
// parent queue up; sqlite serializes writers on its single connection.
func (db *DB) nextPosition(ctx context.Context, q queryer, table, parentColumn, parentID string) (int, error) {
	if db.driver == DriverPostgres {
		var id string
		err := q.GetContext(ctx, &id, q.Rebind(`SELECT id FROM `+parentTables[table]+` WHERE id = ? FOR UPDATE`), parentID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("failed to lock %s %s: %w", parentTables[table], parentID, err)
		}
	}

	var pos int
	err := q.GetContext(ctx, &pos, q.Rebind(
		`SELECT COALESCE(MAX(position) + 1, 0) FROM `+table+` WHERE `+parentColumn+` = ?`,
	), parentID)
	if err != nil {
		return 0, fmt.Errorf("failed to get next position in %s for %s: %w", table, parentID, err)
	}
	return pos, nil
}

// ReviewCardOwner returns the owner and deck of a review card.
func (db *DB) ReviewCardOwner(ctx context.Context, reviewCardID string) (ownerID, deckID string, err error) {
	var row struct {
		OwnerID string `db:"owner_id"`
		DeckID  string `db:"deck_id"`
	}
	err = db.conn.GetContext(ctx, &row, db.conn.Rebind(`
		SELECT d.owner_id, d.id AS deck_id
		FROM review_cards r
		JOIN decks d ON d.id = r.deck_id
		WHERE r.id = ?
	`), reviewCardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", fmt.Errorf("review card %s: %w", reviewCardID, ErrNotFound)
		}
		return "", "", fmt.Errorf("failed to get owner of review card %s: %w", reviewCardID, err)
	}
	return row.OwnerID, row.DeckID, nil
}

// FlashcardOwner returns the owner and deck of a flashcard.
func (db *DB) FlashcardOwner(ctx context.Context, flashcardID string) (ownerID, deckID string, err error) {
	var row struct {
		OwnerID string `db:"owner_id"`
		DeckID  string `db:"deck_id"`
	}
	err = db.conn.GetContext(ctx, &row, db.conn.Rebind(`
		SELECT d.owner_id, d.id AS deck_id
		FROM flashcards f
		JOIN review_cards r ON r.id = f.review_card_id
		JOIN decks d ON d.id = r.deck_id
		WHERE f.id = ?
	`), flashcardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", fmt.Errorf("flashcard %s: %w", flashcardID, ErrNotFound)
		}
		return "", "", fmt.Errorf("failed to get owner of flashcard %s: %w", flashcardID, err)
	}
	return row.OwnerID, row.DeckID, nil
}
