package study

import (
	"errors"
	"math/rand/v2"

	"github.com/phrazzld/flashflow/internal/domain"
)

// MaxChoices is the largest number of answers shown for one card.
const MaxChoices = 4

var (
	// ErrChoiceAttempted is returned when a second answer is selected for
	// the same card.
	ErrChoiceAttempted = errors.New("choice already attempted for this card")

	// ErrUnknownChoice is returned when the selected id is not in the set.
	ErrUnknownChoice = errors.New("unknown choice")
)

// Choice is one candidate answer. ID is the id of the card whose back text
// the choice shows.
type Choice struct {
	ID      string
	Text    string
	Correct bool
}

// Feedback describes how a choice should be presented.
type Feedback int

const (
	// FeedbackNone applies before an attempt and to unselected wrong answers.
	FeedbackNone Feedback = iota
	// FeedbackSelectedCorrect marks the selected answer when it was right.
	FeedbackSelectedCorrect
	// FeedbackSelectedIncorrect marks the selected answer when it was wrong.
	FeedbackSelectedIncorrect
	// FeedbackRevealedCorrect marks the right answer the user did not pick.
	FeedbackRevealedCorrect
)

// String returns a short name for the feedback.
func (f Feedback) String() string {
	switch f {
	case FeedbackSelectedCorrect:
		return "selected-correct"
	case FeedbackSelectedIncorrect:
		return "selected-incorrect"
	case FeedbackRevealedCorrect:
		return "revealed-correct"
	default:
		return "none"
	}
}

// ChoiceSet holds the answers generated for one card and the single attempt
// made against them.
type ChoiceSet struct {
	CardID   string
	Choices  []Choice
	selected string
}

// GenerateChoices builds the answers for current from the other cards of the
// deck: the correct back text plus up to MaxChoices-1 distinct wrong ones,
// in random order. Back texts equal to the correct one are never offered as
// wrong answers, so the set may be smaller than MaxChoices.
//
// It returns ErrNotEnoughCards if the deck has fewer than two cards.
func GenerateChoices(current domain.Flashcard, cards []domain.Flashcard, rng *rand.Rand) (*ChoiceSet, error) {
	if len(cards) < 2 {
		return nil, ErrNotEnoughCards
	}

	correct := Choice{ID: current.ID, Text: current.Back, Correct: true}

	pool := make([]domain.Flashcard, 0, len(cards)-1)
	for _, c := range cards {
		if c.ID != current.ID {
			pool = append(pool, c)
		}
	}
	pool = Shuffle(pool, rng)

	seen := map[string]struct{}{correct.Text: {}}
	choices := make([]Choice, 0, MaxChoices)
	choices = append(choices, correct)
	for _, c := range pool {
		if len(choices) == MaxChoices {
			break
		}
		if _, dup := seen[c.Back]; dup {
			continue
		}
		seen[c.Back] = struct{}{}
		choices = append(choices, Choice{ID: c.ID, Text: c.Back})
	}

	return &ChoiceSet{
		CardID:  current.ID,
		Choices: Shuffle(choices, rng),
	}, nil
}

// Select records the one attempt allowed for this card and reports whether
// it was correct. Unknown ids are rejected without using up the attempt.
func (s *ChoiceSet) Select(choiceID string) (bool, error) {
	if s.Attempted() {
		return false, ErrChoiceAttempted
	}
	for _, c := range s.Choices {
		if c.ID == choiceID {
			s.selected = choiceID
			return c.Correct, nil
		}
	}
	return false, ErrUnknownChoice
}

// Attempted reports whether an answer has been selected.
func (s *ChoiceSet) Attempted() bool {
	return s.selected != ""
}

// Selected returns the id of the selected answer, or "" before an attempt.
func (s *ChoiceSet) Selected() string {
	return s.selected
}

// Degenerate reports whether no wrong answer could be formed.
func (s *ChoiceSet) Degenerate() bool {
	return len(s.Choices) < 2
}

// Feedback returns how the choice with the given id should be shown. After
// an attempt the correct answer is always revealed, whether or not it was
// the one selected.
func (s *ChoiceSet) Feedback(choiceID string) Feedback {
	if !s.Attempted() {
		return FeedbackNone
	}
	for _, c := range s.Choices {
		if c.ID != choiceID {
			continue
		}
		switch {
		case c.ID == s.selected && c.Correct:
			return FeedbackSelectedCorrect
		case c.ID == s.selected:
			return FeedbackSelectedIncorrect
		case c.Correct:
			return FeedbackRevealedCorrect
		}
	}
	return FeedbackNone
}

// clone returns a copy that shares no slices with s.
func (s *ChoiceSet) clone() *ChoiceSet {
	if s == nil {
		return nil
	}
	out := *s
	out.Choices = append([]Choice(nil), s.Choices...)
	return &out
}
