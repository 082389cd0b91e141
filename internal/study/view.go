package study

import "github.com/phrazzld/flashflow/internal/domain"

// ChoiceView is a choice together with how it should be presented.
type ChoiceView struct {
	Choice
	Feedback Feedback
}

// View is a read-only copy of the session state for rendering.
type View struct {
	DeckID   string
	DeckName string
	Deleted  bool

	// Index is zero-based; Total is the number of cards in the deck.
	Index int
	Total int

	// Card is nil when the deck is empty.
	Card    *domain.Flashcard
	Flipped bool
	Mode    Mode
	Phase   Phase

	Choices   []ChoiceView
	Attempted bool

	// NoWrongAnswers is set in choice mode when every other card shares the
	// current card's back, leaving only the correct answer.
	NoWrongAnswers bool

	CardSeconds int
	DeckSeconds int
	CardFrozen  bool

	Notice string
}

// Idle reports whether the session accepts commands.
func (v View) Idle() bool {
	return v.Phase == PhaseIdle
}

// CanNavigate reports whether next, previous and shuffle are available.
func (v View) CanNavigate() bool {
	return v.Idle() && !v.Deleted && v.Total > 1
}

// Snapshot returns the current state.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		DeckID:      s.deckID,
		DeckName:    s.deckName,
		Deleted:     s.deleted,
		Index:       s.index,
		Total:       len(s.cards),
		Flipped:     s.flipped,
		Mode:        s.mode,
		Phase:       s.phase,
		CardSeconds: s.cardTimer.Seconds(),
		DeckSeconds: s.deckTimer.Seconds(),
		CardFrozen:  s.cardTimer.Frozen(),
		Notice:      s.notice,
	}
	if card, ok := s.currentLocked(); ok {
		v.Card = &card
	}
	if s.choices != nil {
		v.Attempted = s.choices.Attempted()
		v.NoWrongAnswers = s.choices.Degenerate()
		v.Choices = make([]ChoiceView, len(s.choices.Choices))
		for i, c := range s.choices.Choices {
			v.Choices[i] = ChoiceView{Choice: c, Feedback: s.choices.Feedback(c.ID)}
		}
	}
	return v
}
