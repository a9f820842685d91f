package domain

import (
	"database/sql"
	"time"
)

// Feedback is the optional difficulty tag a learner leaves on a flashcard.
type Feedback string

const (
	FeedbackNone   Feedback = ""
	FeedbackEasy   Feedback = "Easy"
	FeedbackMedium Feedback = "Medium"
	FeedbackHard   Feedback = "Hard"
)

// Valid reports whether f is one of the known feedback tags.
func (f Feedback) Valid() bool {
	switch f {
	case FeedbackNone, FeedbackEasy, FeedbackMedium, FeedbackHard:
		return true
	}
	return false
}

// Deck is the top-level container of learning content.
// ReviewCards are kept in creation order.
type Deck struct {
	ID          string        `db:"id" json:"id"`
	OwnerID     string        `db:"owner_id" json:"owner_id"`
	Name        string        `db:"name" json:"name" validate:"required,max=200"`
	Description string        `db:"description" json:"description"`
	SourceID    sql.NullInt64 `db:"source_id" json:"-"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`

	ReviewCards []ReviewCard `db:"-" json:"review_cards" validate:"dive"`
}

// ReviewCard is a block of teaching content within a deck.
// Content is an opaque document; nothing outside the presentation layer inspects it.
type ReviewCard struct {
	ID        string    `db:"id" json:"id"`
	DeckID    string    `db:"deck_id" json:"deck_id"`
	Position  int       `db:"position" json:"-"`
	Content   string    `db:"content" json:"content" validate:"required_without=ImageURL"`
	ImageURL  string    `db:"image_url" json:"image_url" validate:"max=2048"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Flashcards []Flashcard `db:"-" json:"flashcards" validate:"dive"`
}

// Flashcard is a front/back question-answer pair belonging to a review card.
type Flashcard struct {
	ID            string    `db:"id" json:"id"`
	ReviewCardID  string    `db:"review_card_id" json:"review_card_id"`
	Position      int       `db:"position" json:"-"`
	FrontContent  string    `db:"front_content" json:"front_content" validate:"required_without=FrontImageURL"`
	FrontImageURL string    `db:"front_image_url" json:"front_image_url" validate:"max=2048"`
	BackContent   string    `db:"back_content" json:"back_content"`
	BackImageURL  string    `db:"back_image_url" json:"back_image_url" validate:"max=2048"`
	Feedback      Feedback  `db:"feedback" json:"feedback" validate:"omitempty,oneof=Easy Medium Hard"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// FlashcardCount returns the number of flashcards across all review cards.
func (d *Deck) FlashcardCount() int {
	n := 0
	for _, rc := range d.ReviewCards {
		n += len(rc.Flashcards)
	}
	return n
}
