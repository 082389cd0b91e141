package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func TestNewDeck(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("assigns ids and timestamps", func(t *testing.T) {
		t.Parallel()
		deck, err := NewDeck("  Spanish ", []Flashcard{
			{Front: "Dog", Back: "Perro"},
			{ID: "keep", Front: "Cat", Back: "Gato"},
		}, now, sequentialIDs("card"))
		require.NoError(t, err)

		assert.NotEmpty(t, deck.ID)
		assert.Equal(t, "Spanish", deck.Name)
		assert.Equal(t, now, deck.CreatedAt)
		assert.Equal(t, now, deck.UpdatedAt)
		require.Len(t, deck.Flashcards, 2)
		assert.Equal(t, "card-1", deck.Flashcards[0].ID)
		assert.Equal(t, "keep", deck.Flashcards[1].ID)
	})

	t.Run("replaces duplicated ids", func(t *testing.T) {
		t.Parallel()
		deck, err := NewDeck("Dupes", []Flashcard{
			{ID: "x", Front: "1", Back: "2"},
			{ID: "x", Front: "3", Back: "4"},
		}, now, sequentialIDs("fresh"))
		require.NoError(t, err)
		assert.Equal(t, "x", deck.Flashcards[0].ID)
		assert.Equal(t, "fresh-1", deck.Flashcards[1].ID)
	})

	t.Run("rejects blank name", func(t *testing.T) {
		t.Parallel()
		_, err := NewDeck("   ", []Flashcard{{Front: "a", Back: "b"}}, now, NewCardID)
		assert.True(t, errors.Is(err, ErrValidation))
		assert.Equal(t, ErrDeckNameEmpty, err)
	})

	t.Run("rejects empty card list", func(t *testing.T) {
		t.Parallel()
		_, err := NewDeck("Empty", nil, now, NewCardID)
		assert.Equal(t, ErrDeckNoCards, err)
	})
}

func TestDeckValidate(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()
	valid := Deck{
		ID:         "deck-1",
		Name:       "Valid",
		Flashcards: []Flashcard{{ID: "a", Front: "1", Back: "2"}},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	tests := []struct {
		name    string
		mutate  func(d *Deck)
		wantErr error
	}{
		{name: "valid", mutate: func(d *Deck) {}},
		{name: "empty deck id", mutate: func(d *Deck) { d.ID = "" }, wantErr: ErrDeckIDEmpty},
		{name: "blank name", mutate: func(d *Deck) { d.Name = " " }, wantErr: ErrDeckNameEmpty},
		{
			name:    "updatedAt before createdAt",
			mutate:  func(d *Deck) { d.UpdatedAt = d.CreatedAt.Add(-time.Second) },
			wantErr: ErrDeckTimestamps,
		},
		{
			name: "duplicate card id",
			mutate: func(d *Deck) {
				d.Flashcards = append(d.Flashcards, Flashcard{ID: "a", Front: "3", Back: "4"})
			},
			wantErr: ErrDeckDuplicateCardID,
		},
		{
			name:    "card without id",
			mutate:  func(d *Deck) { d.Flashcards[0].ID = "" },
			wantErr: ErrCardIDEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := valid.Clone()
			tt.mutate(d)
			err := d.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestDeckTouch(t *testing.T) {
	t.Parallel()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d := &Deck{CreatedAt: start, UpdatedAt: start}

	d.Touch(start.Add(time.Second))
	assert.Equal(t, start.Add(time.Second), d.UpdatedAt)

	// A clock that does not advance still moves UpdatedAt forward.
	d.Touch(start)
	assert.Equal(t, start.Add(time.Second+time.Millisecond), d.UpdatedAt)
}

func TestDeckClone(t *testing.T) {
	t.Parallel()
	d := &Deck{ID: "d", Name: "n", Flashcards: []Flashcard{{ID: "a", Front: "1", Back: "2"}}}
	c := d.Clone()
	c.Flashcards[0].Front = "changed"
	c.Name = "other"

	assert.Equal(t, "1", d.Flashcards[0].Front)
	assert.Equal(t, "n", d.Name)
	assert.Nil(t, (*Deck)(nil).Clone())
	assert.Equal(t, 0, d.CardIndex("a"))
	assert.Equal(t, -1, d.CardIndex("missing"))
}
