package domain

// DeckPatch lists the deck fields to replace. Nil fields are left alone.
type DeckPatch struct {
	Name       *string
	Flashcards *[]Flashcard
}

// CardPatch lists the card fields to replace. Nil fields are left alone.
type CardPatch struct {
	Front *string
	Back  *string
}
