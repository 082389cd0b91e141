package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/phrazzld/flashflow/internal/study"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(1, 3).
			Width(48).
			Align(lipgloss.Center)

	// The card border fades while a transition is running.
	fadingCardStyle = cardStyle.BorderForeground(lipgloss.Color("8")).Foreground(lipgloss.Color("8"))

	choiceStyles = map[study.Feedback]lipgloss.Style{
		study.FeedbackNone:              lipgloss.NewStyle(),
		study.FeedbackSelectedCorrect:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		study.FeedbackSelectedIncorrect: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		study.FeedbackRevealedCorrect:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}

	feedbackMarks = map[study.Feedback]string{
		study.FeedbackNone:              " ",
		study.FeedbackSelectedCorrect:   "✓",
		study.FeedbackSelectedIncorrect: "✗",
		study.FeedbackRevealedCorrect:   "✓",
	}
)
