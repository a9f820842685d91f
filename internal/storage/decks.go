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

const deckColumns = `id, owner_id, name, description, source_id, created_at, updated_at`

// CreateDeck inserts deck, assigning an ID when it has none.
func (db *DB) CreateDeck(ctx context.Context, deck *domain.Deck) error {
	if deck.ID == "" {
		deck.ID = uuid.NewString()
	}
	now := db.timestamp()
	deck.CreatedAt, deck.UpdatedAt = now, now

	_, err := db.conn.ExecContext(ctx, db.conn.Rebind(`
		INSERT INTO decks (`+deckColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), deck.ID, deck.OwnerID, deck.Name, deck.Description, deck.SourceID, deck.CreatedAt, deck.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert deck %s: %w", deck.ID, err)
	}
	return nil
}

// GetDeck retrieves a deck without its cards.
func (db *DB) GetDeck(ctx context.Context, id string) (*domain.Deck, error) {
	return getDeck(ctx, db.conn, id)
}

func getDeck(ctx context.Context, q queryer, id string) (*domain.Deck, error) {
	var d domain.Deck
	err := q.GetContext(ctx, &d, q.Rebind(`SELECT `+deckColumns+` FROM decks WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("deck %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get deck %s: %w", id, err)
	}
	return &d, nil
}

// ListDecks returns the decks owned by ownerID, most recently updated first.
func (db *DB) ListDecks(ctx context.Context, ownerID string) ([]domain.Deck, error) {
	var decks []domain.Deck
	err := db.conn.SelectContext(ctx, &decks, db.conn.Rebind(`
		SELECT `+deckColumns+`
		FROM decks WHERE owner_id = ?
		ORDER BY updated_at DESC, id
	`), ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks for %s: %w", ownerID, err)
	}
	return decks, nil
}

// ListDecksBySource returns the decks imported from a source.
func (db *DB) ListDecksBySource(ctx context.Context, sourceID int64) ([]domain.Deck, error) {
	var decks []domain.Deck
	err := db.conn.SelectContext(ctx, &decks, db.conn.Rebind(`
		SELECT `+deckColumns+`
		FROM decks WHERE source_id = ?
		ORDER BY id
	`), sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks for source ID %d: %w", sourceID, err)
	}
	return decks, nil
}

// UpdateDeck changes a deck's name and description.
func (db *DB) UpdateDeck(ctx context.Context, deck *domain.Deck) error {
	deck.UpdatedAt = db.timestamp()
	res, err := db.conn.ExecContext(ctx, db.conn.Rebind(`
		UPDATE decks
		SET name = ?, description = ?, updated_at = ?
		WHERE id = ?
	`), deck.Name, deck.Description, deck.UpdatedAt, deck.ID)
	if err != nil {
		return fmt.Errorf("failed to update deck %s: %w", deck.ID, err)
	}
	return expectAffected(res, "deck", deck.ID)
}

// DeleteDeck removes a deck together with its cards and progress.
func (db *DB) DeleteDeck(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, db.conn.Rebind(`DELETE FROM decks WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete deck %s: %w", id, err)
	}
	return expectAffected(res, "deck", id)
}

// GetDeckWithCards loads a point-in-time snapshot of a deck with its review
// cards and flashcards in creation order.
func (db *DB) GetDeckWithCards(ctx context.Context, deckID string) (*domain.Deck, error) {
	var deck *domain.Deck
	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		d, err := getDeck(ctx, tx, deckID)
		if err != nil {
			return err
		}

		var cards []domain.ReviewCard
		if err := tx.SelectContext(ctx, &cards, tx.Rebind(`
			SELECT `+reviewCardColumns+`
			FROM review_cards WHERE deck_id = ?
			ORDER BY position, created_at, id
		`), deckID); err != nil {
			return fmt.Errorf("failed to get review cards for deck %s: %w", deckID, err)
		}

		var flashcards []domain.Flashcard
		if err := tx.SelectContext(ctx, &flashcards, tx.Rebind(`
			SELECT f.id, f.review_card_id, f.position, f.front_content, f.front_image_url,
			       f.back_content, f.back_image_url, f.feedback, f.created_at, f.updated_at
			FROM flashcards f
			JOIN review_cards r ON r.id = f.review_card_id
			WHERE r.deck_id = ?
			ORDER BY f.position, f.created_at, f.id
		`), deckID); err != nil {
			return fmt.Errorf("failed to get flashcards for deck %s: %w", deckID, err)
		}

		byCard := make(map[string][]domain.Flashcard, len(cards))
		for _, fc := range flashcards {
			byCard[fc.ReviewCardID] = append(byCard[fc.ReviewCardID], fc)
		}
		for i := range cards {
			cards[i].Flashcards = byCard[cards[i].ID]
		}
		d.ReviewCards = cards
		deck = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deck, nil
}

// UpsertDeckSnapshot writes deck and its cards as they appear in a source
// file. Review cards and flashcards are matched by ID; those missing from
// the snapshot are removed. Learner feedback on surviving flashcards is kept.
func (db *DB) UpsertDeckSnapshot(ctx context.Context, deck *domain.Deck) error {
	now := db.timestamp()
	return db.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO decks (`+deckColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				owner_id = excluded.owner_id,
				name = excluded.name,
				description = excluded.description,
				source_id = excluded.source_id,
				updated_at = excluded.updated_at
		`), deck.ID, deck.OwnerID, deck.Name, deck.Description, deck.SourceID, now, now); err != nil {
			return fmt.Errorf("failed to upsert deck %s: %w", deck.ID, err)
		}

		cardIDs := make([]string, 0, len(deck.ReviewCards))
		for i, rc := range deck.ReviewCards {
			cardIDs = append(cardIDs, rc.ID)
			if _, err := tx.ExecContext(ctx, tx.Rebind(`
				INSERT INTO review_cards (`+reviewCardColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (id) DO UPDATE SET
					deck_id = excluded.deck_id,
					position = excluded.position,
					content = excluded.content,
					image_url = excluded.image_url,
					updated_at = excluded.updated_at
			`), rc.ID, deck.ID, i, rc.Content, rc.ImageURL, now, now); err != nil {
				return fmt.Errorf("failed to upsert review card %s: %w", rc.ID, err)
			}

			fcIDs := make([]string, 0, len(rc.Flashcards))
			for j, fc := range rc.Flashcards {
				fcIDs = append(fcIDs, fc.ID)
				if _, err := tx.ExecContext(ctx, tx.Rebind(`
					INSERT INTO flashcards (`+flashcardColumns+`)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
					ON CONFLICT (id) DO UPDATE SET
						review_card_id = excluded.review_card_id,
						position = excluded.position,
						front_content = excluded.front_content,
						front_image_url = excluded.front_image_url,
						back_content = excluded.back_content,
						back_image_url = excluded.back_image_url,
						updated_at = excluded.updated_at
				`), fc.ID, rc.ID, j, fc.FrontContent, fc.FrontImageURL, fc.BackContent, fc.BackImageURL,
					domain.FeedbackNone, now, now); err != nil {
					return fmt.Errorf("failed to upsert flashcard %s: %w", fc.ID, err)
				}
			}
			if err := deleteMissing(ctx, tx, "flashcards", "review_card_id", rc.ID, fcIDs); err != nil {
				return err
			}
		}
		return deleteMissing(ctx, tx, "review_cards", "deck_id", deck.ID, cardIDs)
	})
}

// deleteMissing removes rows of table under parent whose id is not in keep.
func deleteMissing(ctx context.Context, tx *sqlx.Tx, table, parentColumn, parentID string, keep []string) error {
	query := `DELETE FROM ` + table + ` WHERE ` + parentColumn + ` = ?`
	args := []interface{}{parentID}
	if len(keep) > 0 {
		var err error
		query, args, err = sqlx.In(query+` AND id NOT IN (?)`, parentID, keep)
		if err != nil {
			return fmt.Errorf("failed to build delete for %s: %w", table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to delete stale %s of %s: %w", table, parentID, err)
	}
	return nil
}

func expectAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for %s %s: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
