package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Deck-specific validation errors
var (
	// ErrDeckIDEmpty is returned when a deck ID is empty.
	ErrDeckIDEmpty = fmt.Errorf("%w: deck ID cannot be empty", ErrValidation)

	// ErrDeckNameEmpty is returned when a deck name is blank.
	ErrDeckNameEmpty = NewValidationError("name", "cannot be blank", ErrValidation)

	// ErrDeckNoCards is returned when a deck is created without flashcards.
	ErrDeckNoCards = NewValidationError("flashcards", "must contain at least one card", ErrValidation)

	// ErrDeckDuplicateCardID is returned when two cards in a deck share an ID.
	ErrDeckDuplicateCardID = fmt.Errorf("%w: duplicate card ID in deck", ErrValidation)

	// ErrDeckTimestamps is returned when UpdatedAt precedes CreatedAt.
	ErrDeckTimestamps = fmt.Errorf("%w: updatedAt must not precede createdAt", ErrValidation)
)

// Deck is a named, ordered collection of flashcards. The order of
// Flashcards is the study order.
type Deck struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Flashcards []Flashcard `json:"flashcards"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// NewDeckID returns a fresh opaque deck identifier.
func NewDeckID() string {
	return "deck-" + uuid.NewString()
}

// NewDeck creates a deck named name holding cards, stamped with now.
// Cards without an ID, or whose ID repeats an earlier card's, receive a fresh
// one from newID. Returns an error if validation fails.
func NewDeck(name string, cards []Flashcard, now time.Time, newID func() string) (*Deck, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrDeckNameEmpty
	}
	if len(cards) == 0 {
		return nil, ErrDeckNoCards
	}

	deck := &Deck{
		ID:         NewDeckID(),
		Name:       name,
		Flashcards: AssignCardIDs(cards, newID),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}
	return deck, nil
}

// AssignCardIDs copies cards, giving a fresh ID to any card that lacks one
// or whose ID is already taken by an earlier card.
func AssignCardIDs(cards []Flashcard, newID func() string) []Flashcard {
	out := make([]Flashcard, len(cards))
	seen := make(map[string]struct{}, len(cards))
	for i, c := range cards {
		if _, dup := seen[c.ID]; c.ID == "" || dup {
			c.ID = newID()
		}
		seen[c.ID] = struct{}{}
		out[i] = c
	}
	return out
}

// Validate checks the structural invariants of the deck.
func (d *Deck) Validate() error {
	if d.ID == "" {
		return ErrDeckIDEmpty
	}
	if strings.TrimSpace(d.Name) == "" {
		return ErrDeckNameEmpty
	}
	if d.UpdatedAt.Before(d.CreatedAt) {
		return ErrDeckTimestamps
	}

	seen := make(map[string]struct{}, len(d.Flashcards))
	for _, c := range d.Flashcards {
		if c.ID == "" {
			return ErrCardIDEmpty
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDeckDuplicateCardID, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}

// CardIndex returns the position of the card with the given ID, or -1.
func (d *Deck) CardIndex(cardID string) int {
	for i, c := range d.Flashcards {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}

// Touch advances UpdatedAt to now. If now does not move past the current
// value, UpdatedAt is advanced by one millisecond instead.
func (d *Deck) Touch(now time.Time) {
	if !now.After(d.UpdatedAt) {
		now = d.UpdatedAt.Add(time.Millisecond)
	}
	d.UpdatedAt = now
}

// Clone returns a deep copy of the deck.
func (d *Deck) Clone() *Deck {
	if d == nil {
		return nil
	}
	c := *d
	c.Flashcards = make([]Flashcard, len(d.Flashcards))
	copy(c.Flashcards, d.Flashcards)
	return &c
}
