package domain

import (
	"database/sql"
	"errors"
	"time"
)

// ContentType distinguishes progress on a review card from progress on a flashcard.
type ContentType string

const (
	ContentReviewCard ContentType = "review_card"
	ContentFlashcard  ContentType = "flashcard"
)

var (
	ErrUnknownContentType   = errors.New("unknown content type")
	ErrMissingFlashcardID   = errors.New("flashcard progress requires a flashcard id")
	ErrUnexpectedFlashcard  = errors.New("review card progress must not carry a flashcard id")
	ErrMissingProgressOwner = errors.New("progress requires user, deck and review card ids")
)

// ProgressKey is the composite identity of a progress record.
// FlashcardID is empty for review card records.
type ProgressKey struct {
	UserID       string
	DeckID       string
	ReviewCardID string
	FlashcardID  string
	ContentType  ContentType
}

// Validate enforces that only flashcard records carry a flashcard id.
func (k ProgressKey) Validate() error {
	if k.UserID == "" || k.DeckID == "" || k.ReviewCardID == "" {
		return ErrMissingProgressOwner
	}
	switch k.ContentType {
	case ContentFlashcard:
		if k.FlashcardID == "" {
			return ErrMissingFlashcardID
		}
	case ContentReviewCard:
		if k.FlashcardID != "" {
			return ErrUnexpectedFlashcard
		}
	default:
		return ErrUnknownContentType
	}
	return nil
}

// ProgressRecord holds the seen / reviewed timestamps of one content item for one user.
type ProgressRecord struct {
	UserID         string       `db:"user_id" json:"user_id"`
	DeckID         string       `db:"deck_id" json:"deck_id"`
	ReviewCardID   string       `db:"review_card_id" json:"review_card_id"`
	FlashcardID    string       `db:"flashcard_id" json:"flashcard_id,omitempty"`
	ContentType    ContentType  `db:"content_type" json:"content_type"`
	SeenAt         sql.NullTime `db:"seen_at" json:"-"`
	LastReviewedAt sql.NullTime `db:"last_reviewed_at" json:"-"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updated_at"`
}

// Key returns the record's identity tuple.
func (r ProgressRecord) Key() ProgressKey {
	return ProgressKey{
		UserID:       r.UserID,
		DeckID:       r.DeckID,
		ReviewCardID: r.ReviewCardID,
		FlashcardID:  r.FlashcardID,
		ContentType:  r.ContentType,
	}
}

// ProgressSummary counts what a user has seen and reviewed in a deck.
type ProgressSummary struct {
	TotalReviewCards    int `json:"total_review_cards"`
	TotalFlashcards     int `json:"total_flashcards"`
	SeenReviewCards     int `json:"seen_review_cards"`
	SeenFlashcards      int `json:"seen_flashcards"`
	ReviewedReviewCards int `json:"reviewed_review_cards"`
	ReviewedFlashcards  int `json:"reviewed_flashcards"`
	TotalContent        int `json:"total_content"`
	SeenContent         int `json:"seen_content"`
	ReviewedContent     int `json:"reviewed_content"`
}
