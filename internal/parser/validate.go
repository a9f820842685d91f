package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/studydeck/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a parsed deck before it is stored: it needs a name, every
// review card needs content or an image, and so does every flashcard front.
func Validate(deck *domain.Deck) error {
	err := validate.Struct(deck)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid deck %q: %s", deck.Name, strings.Join(msgs, "; "))
}
