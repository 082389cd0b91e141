package tui

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/flashflow/internal/domain"
	"github.com/phrazzld/flashflow/internal/events"
	"github.com/phrazzld/flashflow/internal/platform/logger"
	"github.com/phrazzld/flashflow/internal/service"
	"github.com/phrazzld/flashflow/internal/store"
	"github.com/phrazzld/flashflow/internal/study"
)

type fixture struct {
	svc   *service.DeckService
	sched *study.ManualScheduler
	sess  *study.Session
	deck  *domain.Deck
	model Model
}

func newFixture(t *testing.T, n int) *fixture {
	t.Helper()
	cards := make([]domain.Flashcard, n)
	for i := range cards {
		cards[i] = domain.Flashcard{
			ID:    fmt.Sprintf("card-%d", i),
			Front: fmt.Sprintf("Front %d", i),
			Back:  fmt.Sprintf("Back %d", i),
		}
	}
	return newFixtureWithCards(t, cards)
}

func newFixtureWithCards(t *testing.T, cards []domain.Flashcard) *fixture {
	t.Helper()
	ctx := context.Background()

	st := store.NewDeckStore(store.NewMemorySlot(), logger.Discard())
	st.Load(ctx)
	emitter := events.NewInMemoryEventEmitter(logger.Discard())
	svc, err := service.NewDeckService(st, emitter, logger.Discard())
	require.NoError(t, err)

	deck, err := svc.CreateDeck(ctx, "Spanish", cards)
	require.NoError(t, err)

	sched := study.NewManualScheduler()
	sess, err := study.NewSession(deck, svc,
		study.WithScheduler(sched),
		study.WithRand(rand.New(rand.NewPCG(3, 4))),
		study.WithLogger(logger.Discard()),
	)
	require.NoError(t, err)
	emitter.RegisterHandler(sess)

	return &fixture{svc: svc, sched: sched, sess: sess, deck: deck, model: New(ctx, sess)}
}

func (f *fixture) press(t *testing.T, keys ...string) tea.Cmd {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var next tea.Model
		next, cmd = f.model.Update(msg)
		f.model = next.(Model)
	}
	return cmd
}

func TestViewShowsCardAndHeader(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 3)

	out := f.model.View()
	assert.Contains(t, out, "Spanish")
	assert.Contains(t, out, "Card 1 of 3")
	assert.Contains(t, out, "Front 0")
	assert.Contains(t, out, "card 00:00")
	assert.NotContains(t, out, "Back 0")

	f.press(t, "f")
	out = f.model.View()
	assert.Contains(t, out, "Back 0")
}

func TestNavigationWaitsForTransition(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 3)

	f.press(t, "right")
	assert.Equal(t, study.PhaseTransitioningOut, f.sess.Snapshot().Phase)

	// Ignored while the card changes.
	f.press(t, "l", "f")
	assert.Empty(t, f.model.status)

	f.sched.FireAll()
	v := f.sess.Snapshot()
	assert.Equal(t, 1, v.Index)
	assert.False(t, v.Flipped)
	assert.Contains(t, f.model.View(), "Card 2 of 3")
}

func TestChoiceMode(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 4)

	f.press(t, "m")
	v := f.sess.Snapshot()
	require.Equal(t, study.ModeChoice, v.Mode)
	require.Len(t, v.Choices, 4)

	out := f.model.View()
	for i, c := range v.Choices {
		assert.Contains(t, out, fmt.Sprintf("%d. %s", i+1, c.Text))
	}

	f.press(t, "f")
	assert.Contains(t, f.model.status, "choice mode")

	wrong := 0
	for i, c := range v.Choices {
		if !c.Correct {
			wrong = i
			break
		}
	}
	f.press(t, fmt.Sprint(wrong+1))
	assert.Equal(t, "Not quite.", f.model.status)
	assert.Contains(t, f.model.View(), "(stopped)")

	f.press(t, "1")
	assert.Equal(t, "Already answered", f.model.status)
}

func TestChoiceModeFallbackNotice(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 1)

	f.press(t, "m")
	assert.Equal(t, study.ModeFlip, f.sess.Snapshot().Mode)
	assert.Contains(t, f.model.View(), study.NoticeChoiceFallback)

	f.press(t, "right")
	assert.Equal(t, "Add more cards to use this", f.model.status)
}

func TestChoiceModeWithoutWrongAnswers(t *testing.T) {
	t.Parallel()
	f := newFixtureWithCards(t, []domain.Flashcard{
		{ID: "card-0", Front: "Dog", Back: "Perro"},
		{ID: "card-1", Front: "Hound", Back: "Perro"},
	})

	f.press(t, "m")
	v := f.sess.Snapshot()
	require.Equal(t, study.ModeChoice, v.Mode)
	require.Len(t, v.Choices, 1)
	assert.True(t, v.NoWrongAnswers)

	out := f.model.View()
	assert.Contains(t, out, "1. Perro")
	assert.Contains(t, out, study.NoticeNoWrongAnswers)

	f.press(t, "1")
	assert.Equal(t, "Correct!", f.model.status)
}

func TestAddCardThroughEditor(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 1)

	f.press(t, "a")
	require.NotNil(t, f.model.editor)
	assert.Contains(t, f.model.View(), "Add card")

	// q is text while editing.
	f.press(t, "q", "u", "e", "tab", "w", "h", "a", "t", "enter")
	assert.Nil(t, f.model.editor)
	assert.Equal(t, "Card saved", f.model.status)

	deck, err := f.svc.GetDeck(context.Background(), f.deck.ID)
	require.NoError(t, err)
	require.Len(t, deck.Flashcards, 2)
	assert.Equal(t, "que", deck.Flashcards[1].Front)
	assert.Equal(t, "what", deck.Flashcards[1].Back)
	assert.Equal(t, 2, f.sess.Snapshot().Total)
}

func TestEditorRejectsBlankCard(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 2)

	f.press(t, "a", "x", "enter")
	require.NotNil(t, f.model.editor, "editor stays open")
	assert.Contains(t, f.model.View(), "Front and back are both required")

	f.press(t, "esc")
	assert.Nil(t, f.model.editor)
	assert.Equal(t, 2, f.sess.Snapshot().Total)
}

func TestEditCurrentCard(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 2)

	f.press(t, "e")
	require.NotNil(t, f.model.editor)
	assert.Equal(t, "card-0", f.model.editor.cardID)
	assert.Equal(t, "Front 0", f.model.editor.inputs[0].Value())

	f.press(t, "!", "enter")
	v := f.sess.Snapshot()
	require.NotNil(t, v.Card)
	assert.Equal(t, "Front 0!", v.Card.Front)
	assert.Equal(t, "Back 0", v.Card.Back)
}

func TestDeleteCardNeedsConfirmation(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 2)

	f.press(t, "d")
	assert.Contains(t, f.model.View(), "Delete this card? (y/n)")
	f.press(t, "n")
	assert.Equal(t, 2, f.sess.Snapshot().Total)

	f.press(t, "d", "y")
	assert.Equal(t, "Card deleted", f.model.status)
	v := f.sess.Snapshot()
	assert.Equal(t, 1, v.Total)
	assert.Equal(t, "card-1", v.Card.ID)
}

func TestDeletedDeck(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 2)

	require.NoError(t, f.svc.DeleteDeck(context.Background(), f.deck.ID))
	next, _ := f.model.Update(RefreshMsg{})
	f.model = next.(Model)

	out := f.model.View()
	assert.Contains(t, out, study.NoticeDeckDeleted)
	assert.NotContains(t, out, "Front 0")

	f.press(t, "a")
	assert.Nil(t, f.model.editor)
}

func TestEmptyDeck(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 1)

	f.press(t, "d", "y")
	out := f.model.View()
	assert.Contains(t, out, "no cards yet")
	assert.Equal(t, 0, f.sess.Snapshot().Total)
}

func TestQuit(t *testing.T) {
	t.Parallel()
	f := newFixture(t, 1)

	cmd := f.press(t, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, f.model.View())
}

func TestNotifierWithoutProgram(t *testing.T) {
	t.Parallel()
	var n Notifier
	assert.NotPanics(t, n.Notify)
}
