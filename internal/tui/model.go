// Package tui is the terminal study screen. It renders a study.Session and
// turns key presses into session commands; all study rules live in the
// session, the model only draws what Snapshot returns.
//
// The model is used from the bubbletea event loop only. Session changes that
// happen on other goroutines reach it as RefreshMsg through a Notifier.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/phrazzld/flashflow/internal/domain"
	"github.com/phrazzld/flashflow/internal/study"
)

// editor is the add/edit card form. An empty cardID means a new card.
type editor struct {
	cardID string
	inputs [2]textinput.Model
	focus  int
}

func newEditor(card *domain.Flashcard) *editor {
	e := &editor{}
	for i, placeholder := range []string{"Front", "Back"} {
		in := textinput.New()
		in.Placeholder = placeholder
		in.Prompt = fmt.Sprintf("%-6s ", placeholder+":")
		in.CharLimit = 500
		e.inputs[i] = in
	}
	if card != nil {
		e.cardID = card.ID
		e.inputs[0].SetValue(card.Front)
		e.inputs[1].SetValue(card.Back)
	}
	e.inputs[0].Focus()
	return e
}

func (e *editor) switchFocus() {
	e.inputs[e.focus].Blur()
	e.focus = (e.focus + 1) % len(e.inputs)
	e.inputs[e.focus].Focus()
}

func (e *editor) input() domain.CardInput {
	return domain.CardInput{Front: e.inputs[0].Value(), Back: e.inputs[1].Value()}
}

// Model is the bubbletea model for a study session.
type Model struct {
	ctx     context.Context
	session *study.Session

	keys       keyMap
	editorKeys editorKeys
	help       help.Model

	editor        *editor
	confirmDelete bool

	status   string
	width    int
	quitting bool
}

// New returns a model studying session. ctx is passed to commands that
// write through the mutation API.
func New(ctx context.Context, session *study.Session) Model {
	return Model{
		ctx:        ctx,
		session:    session,
		keys:       defaultKeyMap(),
		editorKeys: defaultEditorKeys(),
		help:       help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case RefreshMsg:
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) && (m.editor == nil || msg.String() == "ctrl+c") {
			m.quitting = true
			return m, tea.Quit
		}
		if m.editor != nil {
			return m.updateEditor(msg)
		}
		if m.confirmDelete {
			return m.updateConfirm(msg)
		}
		return m.updateStudy(msg), nil
	}
	return m, nil
}

func (m Model) updateStudy(msg tea.KeyMsg) Model {
	view := m.session.Snapshot()
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Flip):
		m.setError(m.session.Flip())
	case key.Matches(msg, m.keys.Next):
		m.setError(m.session.Next())
	case key.Matches(msg, m.keys.Previous):
		m.setError(m.session.Previous())
	case key.Matches(msg, m.keys.Shuffle):
		m.setError(m.session.Shuffle(m.ctx))
	case key.Matches(msg, m.keys.Mode):
		next := study.ModeChoice
		if view.Mode == study.ModeChoice {
			next = study.ModeFlip
		}
		err := m.session.SetMode(next)
		if !errors.Is(err, study.ErrNotEnoughCards) {
			m.setError(err)
		}
	case key.Matches(msg, m.keys.Choose):
		i := int(msg.String()[0] - '1')
		if i >= len(view.Choices) {
			break
		}
		correct, err := m.session.SelectChoice(view.Choices[i].ID)
		switch {
		case err != nil:
			m.setError(err)
		case correct:
			m.status = "Correct!"
		default:
			m.status = "Not quite."
		}
	case key.Matches(msg, m.keys.Add):
		if m.canEdit(view) {
			m.editor = newEditor(nil)
		}
	case key.Matches(msg, m.keys.Edit):
		if m.canEdit(view) && view.Card != nil {
			m.editor = newEditor(view.Card)
		}
	case key.Matches(msg, m.keys.Delete):
		if m.canEdit(view) && view.Card != nil {
			m.confirmDelete = true
		}
	}
	return m
}

func (m *Model) canEdit(view study.View) bool {
	switch {
	case view.Deleted:
		m.setError(study.ErrDeckDeleted)
		return false
	case !view.Idle():
		return false
	}
	return true
}

func (m Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.editorKeys.Cancel):
		m.editor = nil
		return m, nil
	case key.Matches(msg, m.editorKeys.Switch):
		m.editor.switchFocus()
		return m, nil
	case key.Matches(msg, m.editorKeys.Save):
		input := m.editor.input()
		var err error
		if m.editor.cardID == "" {
			_, err = m.session.AddCard(m.ctx, input)
		} else {
			_, err = m.session.UpdateCard(m.ctx, m.editor.cardID, domain.CardPatch{
				Front: &input.Front,
				Back:  &input.Back,
			})
		}
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.status = "Card saved"
		m.editor = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.editor.inputs[m.editor.focus], cmd = m.editor.inputs[m.editor.focus].Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.confirmDelete = false
	if msg.String() != "y" {
		m.status = ""
		return m, nil
	}
	view := m.session.Snapshot()
	if view.Card == nil {
		return m, nil
	}
	if _, err := m.session.DeleteCard(m.ctx, view.Card.ID); err != nil {
		m.setError(err)
		return m, nil
	}
	m.status = "Card deleted"
	return m, nil
}

// setError turns a command error into a status line. Commands rejected
// during a transition are ignored, as a disabled button would be.
func (m *Model) setError(err error) {
	switch {
	case err == nil, errors.Is(err, study.ErrTransitionInProgress):
	case errors.Is(err, study.ErrNotEnoughCards):
		m.status = "Add more cards to use this"
	case errors.Is(err, study.ErrFlipInChoiceMode):
		m.status = "Pick an answer; flipping is off in choice mode"
	case errors.Is(err, study.ErrChoiceAttempted):
		m.status = "Already answered"
	case errors.Is(err, study.ErrDeckDeleted):
		m.status = study.NoticeDeckDeleted
	case errors.Is(err, domain.ErrValidation):
		m.status = "Front and back are both required"
	default:
		m.status = "Error: " + err.Error()
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	view := m.session.Snapshot()

	var b strings.Builder
	b.WriteString(m.header(view))
	b.WriteString("\n\n")

	switch {
	case view.Deleted:
		b.WriteString(noticeStyle.Render(study.NoticeDeckDeleted))
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("Press q to leave."))
		b.WriteString("\n")
		return b.String()
	case m.editor != nil:
		b.WriteString(m.editorView())
		return b.String()
	case view.Card == nil:
		b.WriteString("This deck has no cards yet. Press a to add one.")
	default:
		b.WriteString(m.cardView(view))
	}
	b.WriteString("\n")

	if view.Notice != "" {
		b.WriteString(noticeStyle.Render(view.Notice))
		b.WriteString("\n")
	}
	if m.confirmDelete {
		b.WriteString(errorStyle.Render("Delete this card? (y/n)"))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

func (m Model) header(view study.View) string {
	title := titleStyle.Render(view.DeckName)
	if view.Total == 0 {
		return title
	}

	cardTime := study.FormatElapsed(view.CardSeconds)
	if view.CardFrozen {
		cardTime += " (stopped)"
	}
	info := fmt.Sprintf("Card %d of %d · %s · card %s · deck %s",
		view.Index+1, view.Total, view.Mode, cardTime, study.FormatElapsed(view.DeckSeconds))
	return lipgloss.JoinVertical(lipgloss.Left, title, dimStyle.Render(info))
}

func (m Model) cardView(view study.View) string {
	style := cardStyle
	if !view.Idle() {
		style = fadingCardStyle
	}

	if view.Mode == study.ModeFlip {
		side, text := "Front", view.Card.Front
		if view.Flipped {
			side, text = "Back", view.Card.Back
		}
		return lipgloss.JoinVertical(lipgloss.Left,
			dimStyle.Render(side),
			style.Render(text),
		)
	}

	var b strings.Builder
	b.WriteString(style.Render(view.Card.Front))
	b.WriteString("\n")
	for i, c := range view.Choices {
		line := fmt.Sprintf("%s %d. %s", feedbackMarks[c.Feedback], i+1, c.Text)
		b.WriteString(choiceStyles[c.Feedback].Render(line))
		b.WriteString("\n")
	}
	if view.NoWrongAnswers {
		b.WriteString(noticeStyle.Render(study.NoticeNoWrongAnswers))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) editorView() string {
	title := "Add card"
	if m.editor.cardID != "" {
		title = "Edit card"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	for _, in := range m.editor.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.editorKeys))
	b.WriteString("\n")
	return b.String()
}

// Run shows the study screen until the user quits or ctx is done. The
// session's timers run for as long as the screen is open; notifier must be
// the one the session was built with.
func Run(ctx context.Context, session *study.Session, notifier *Notifier, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer session.Close()

	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(ctx, session), opts...)
	if notifier != nil {
		notifier.Attach(p)
	}

	go func() {
		_ = session.Run(ctx)
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
