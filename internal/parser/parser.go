// Package parser reads deck files into unsaved domain decks. IDs are left
// empty; callers assign them.
package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/conorfennell/studydeck/internal/domain"
)

const (
	deckPrefix       = "# "
	reviewCardPrefix = "## "
	questionPrefix   = "Q:"
	answerPrefix     = "A:"
	imagePrefix      = "Image:"
	separator        = "---"
)

// ErrFlashcardOutsideReviewCard is returned when a Q: line appears before
// the first review card heading.
var ErrFlashcardOutsideReviewCard = errors.New("flashcard outside of a review card")

type state int

const (
	seeking state = iota
	readingDescription
	readingReviewCard
	readingQuestion
	readingAnswer
)

// ParseFile reads a markdown deck from path. When the file has no "# "
// heading the deck is named after the file.
func ParseFile(path string) (*domain.Deck, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	deck, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if deck.Name == "" {
		deck.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return deck, nil
}

// Parse reads a markdown deck:
//
//	# Deck name
//	description
//	## Review card heading
//	review card content
//	Q: front
//	A: back
//	---
//
// Every Q:/A: pair belongs to the review card above it.
func Parse(r io.Reader) (*domain.Deck, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	deck := &domain.Deck{}
	var description []string
	var card *domain.ReviewCard
	var cardBody []string
	var fc domain.Flashcard
	var block []string
	currentState := seeking

	flushBlock := func() {
		content := strings.TrimSpace(strings.Join(block, "\n"))
		block = nil
		switch currentState {
		case readingQuestion:
			fc.FrontContent = content
		case readingAnswer:
			fc.BackContent = content
		}
	}

	finishFlashcard := func() {
		flushBlock()
		if card != nil && (fc.FrontContent != "" || fc.FrontImageURL != "") {
			card.Flashcards = append(card.Flashcards, fc)
		}
		fc = domain.Flashcard{}
	}

	finishReviewCard := func() {
		finishFlashcard()
		if card != nil {
			if card.Content == "" {
				card.Content = strings.TrimSpace(strings.Join(cardBody, "\n"))
			}
			deck.ReviewCards = append(deck.ReviewCards, *card)
		}
		card = nil
		cardBody = nil
	}

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		switch {
		case strings.HasPrefix(line, reviewCardPrefix):
			finishReviewCard()
			card = &domain.ReviewCard{}
			cardBody = []string{line}
			currentState = readingReviewCard

		case strings.HasPrefix(line, deckPrefix) && deck.Name == "" && card == nil:
			deck.Name = strings.TrimSpace(line[len(deckPrefix):])
			currentState = readingDescription

		case strings.HasPrefix(line, questionPrefix):
			if card == nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, ErrFlashcardOutsideReviewCard)
			}
			if currentState == readingReviewCard {
				card.Content = strings.TrimSpace(strings.Join(cardBody, "\n"))
			} else {
				finishFlashcard()
			}
			currentState = readingQuestion
			block = append(block, trimPrefix(line, questionPrefix))

		case strings.HasPrefix(line, answerPrefix) && (currentState == readingQuestion || currentState == readingAnswer):
			flushBlock()
			currentState = readingAnswer
			block = append(block, trimPrefix(line, answerPrefix))

		case strings.HasPrefix(line, imagePrefix):
			url := trimPrefix(line, imagePrefix)
			switch currentState {
			case readingReviewCard:
				if card != nil {
					card.ImageURL = url
				}
			case readingQuestion:
				fc.FrontImageURL = url
			case readingAnswer:
				fc.BackImageURL = url
			}

		case line == separator:
			if currentState == readingQuestion || currentState == readingAnswer {
				finishFlashcard()
				currentState = readingReviewCard
			} else if currentState == readingReviewCard {
				cardBody = append(cardBody, line)
			}

		default:
			switch currentState {
			case readingDescription:
				description = append(description, line)
			case readingReviewCard:
				// Text after a flashcard has closed does not reopen the card body.
				if card != nil && card.Content == "" {
					cardBody = append(cardBody, line)
				}
			case readingQuestion, readingAnswer:
				block = append(block, line)
			}
		}
	}

	finishReviewCard() // Finish the very last card in the file

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	deck.Description = strings.TrimSpace(strings.Join(description, "\n"))
	return deck, nil
}

func trimPrefix(line, prefix string) string {
	return strings.TrimSpace(line[len(prefix):])
}
