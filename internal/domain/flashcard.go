package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Flashcard-specific validation errors
var (
	// ErrCardIDEmpty is returned when a flashcard ID is empty.
	ErrCardIDEmpty = fmt.Errorf("%w: card ID cannot be empty", ErrValidation)

	// ErrCardFrontEmpty is returned when the front text is blank after trimming.
	ErrCardFrontEmpty = NewValidationError("front", "cannot be blank", ErrValidation)

	// ErrCardBackEmpty is returned when the back text is blank after trimming.
	ErrCardBackEmpty = NewValidationError("back", "cannot be blank", ErrValidation)
)

// Flashcard is a front/back text pair owned by exactly one Deck.
type Flashcard struct {
	ID    string `json:"id"`
	Front string `json:"front"`
	Back  string `json:"back"`
}

// CardInput carries user-supplied text for a new or edited flashcard.
type CardInput struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// NewCardID returns a fresh opaque flashcard identifier.
func NewCardID() string {
	return "card-" + uuid.NewString()
}

// Normalize returns a copy of the input with surrounding whitespace removed.
func (in CardInput) Normalize() CardInput {
	return CardInput{
		Front: strings.TrimSpace(in.Front),
		Back:  strings.TrimSpace(in.Back),
	}
}

// Validate rejects inputs whose front or back is empty after trimming.
func (in CardInput) Validate() error {
	n := in.Normalize()
	if n.Front == "" {
		return ErrCardFrontEmpty
	}
	if n.Back == "" {
		return ErrCardBackEmpty
	}
	return nil
}

// ValidateCardText checks a single front or back value that is about to
// replace an existing one.
func ValidateCardText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(field, "cannot be blank", ErrValidation)
	}
	return nil
}

// Validate checks if the Flashcard has valid data.
func (c Flashcard) Validate() error {
	if c.ID == "" {
		return ErrCardIDEmpty
	}
	return CardInput{Front: c.Front, Back: c.Back}.Validate()
}
