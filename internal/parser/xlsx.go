package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/conorfennell/studydeck/internal/domain"
)

// Workbook columns. Image columns are optional.
const (
	colReviewCard = iota
	colFront
	colBack
	colReviewCardImage
	colFrontImage
	colBackImage
)

// ErrOrphanRow is returned for a flashcard row that precedes every review card row.
var ErrOrphanRow = errors.New("flashcard row before any review card")

// ParseWorkbookFile opens an xlsx file and parses every sheet into a deck.
func ParseWorkbookFile(path string) ([]*domain.Deck, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	decks, err := parseWorkbook(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return decks, nil
}

// ParseWorkbook reads an xlsx workbook. Each non-empty sheet becomes a deck
// named after the sheet. Rows are "review card | front | back"; a row with
// an empty first column adds a flashcard to the review card above it.
func ParseWorkbook(r io.Reader) ([]*domain.Deck, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	defer f.Close()

	return parseWorkbook(f)
}

func parseWorkbook(f *excelize.File) ([]*domain.Deck, error) {
	var decks []*domain.Deck
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to get rows of sheet %s: %w", sheet, err)
		}
		deck, err := parseSheet(sheet, rows)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", sheet, err)
		}
		if len(deck.ReviewCards) > 0 {
			decks = append(decks, deck)
		}
	}
	return decks, nil
}

func parseSheet(name string, rows [][]string) (*domain.Deck, error) {
	deck := &domain.Deck{Name: name}
	for i, row := range rows {
		if i == 0 && isHeader(row) {
			continue
		}
		rcContent := cell(row, colReviewCard)
		front := cell(row, colFront)
		rcImage := cell(row, colReviewCardImage)
		frontImage := cell(row, colFrontImage)

		if rcContent != "" || rcImage != "" {
			deck.ReviewCards = append(deck.ReviewCards, domain.ReviewCard{
				Content:  rcContent,
				ImageURL: rcImage,
			})
		}
		if front == "" && frontImage == "" {
			continue
		}
		if len(deck.ReviewCards) == 0 {
			return nil, fmt.Errorf("row %d: %w", i+1, ErrOrphanRow)
		}
		last := &deck.ReviewCards[len(deck.ReviewCards)-1]
		last.Flashcards = append(last.Flashcards, domain.Flashcard{
			FrontContent:  front,
			FrontImageURL: frontImage,
			BackContent:   cell(row, colBack),
			BackImageURL:  cell(row, colBackImage),
		})
	}
	return deck, nil
}

func isHeader(row []string) bool {
	return strings.EqualFold(cell(row, colReviewCard), "review card") &&
		strings.EqualFold(cell(row, colFront), "front")
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
