package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/phrazzld/flashflow/internal/csvimport"
	"github.com/phrazzld/flashflow/internal/domain"
	"github.com/phrazzld/flashflow/internal/service"
	"github.com/phrazzld/flashflow/internal/store"
	"github.com/phrazzld/flashflow/internal/study"
	"github.com/phrazzld/flashflow/internal/tui"
)

const timeLayout = "2006-01-02 15:04"

type appRunFunc func(ctx context.Context, cmd *cobra.Command, app *application, args []string) error

// runWithApp builds the application for one command and cleans it up
// afterwards.
func runWithApp(fn appRunFunc) func(*cobra.Command, []string) error {
	return runApp(false, fn)
}

// runWithScreen is runWithApp for commands that take over the terminal.
// Logs go to a file so they cannot draw over the screen.
func runWithScreen(fn appRunFunc) func(*cobra.Command, []string) error {
	return runApp(true, fn)
}

func runApp(fullScreen bool, fn appRunFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		app, err := newApplication(ctx, configFile, fullScreen)
		if err != nil {
			return err
		}
		defer app.cleanup()

		return userError(fn(ctx, cmd, app, args))
	}
}

// userError rewrites service errors into short messages for the terminal.
func userError(err error) error {
	var svcErr *service.DeckServiceError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrDeckNotFound):
		return errors.New("deck not found")
	case errors.Is(err, store.ErrCardNotFound):
		return errors.New("card not found")
	case errors.As(err, &svcErr) && errors.Is(err, domain.ErrValidation):
		return fmt.Errorf("invalid input: %v", svcErr.Err)
	}
	return err
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "flashflow",
		Short:         "Flashcard decks and study sessions in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "config file (default ./flashflow.yaml or $XDG_CONFIG_HOME/flashflow/flashflow.yaml)")

	root.AddCommand(newDeckCmd(), newCardCmd(), newStudyCmd())
	return root
}

// --- deck ---

func newDeckCmd() *cobra.Command {
	deckCmd := &cobra.Command{
		Use:   "deck",
		Short: "Create and manage decks",
	}

	importCmd := &cobra.Command{
		Use:   "import FILE.csv",
		Short: "Create a deck from a CSV file with front and back columns",
		Args:  cobra.ExactArgs(1),
		RunE:  runWithApp(runDeckImport),
	}
	importCmd.Flags().String("name", "", "deck name (default: file name without extension)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List decks",
		Args:  cobra.NoArgs,
		RunE:  runWithApp(runDeckList),
	}

	renameCmd := &cobra.Command{
		Use:   "rename DECK NAME",
		Short: "Rename a deck",
		Args:  cobra.ExactArgs(2),
		RunE:  runWithApp(runDeckRename),
	}

	deleteCmd := &cobra.Command{
		Use:   "delete DECK",
		Short: "Delete a deck and all of its cards",
		Args:  cobra.ExactArgs(1),
		RunE:  runWithApp(runDeckDelete),
	}
	deleteCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")

	shuffleCmd := &cobra.Command{
		Use:   "shuffle DECK",
		Short: "Store the deck's cards in a new random order",
		Args:  cobra.ExactArgs(1),
		RunE:  runWithApp(runDeckShuffle),
	}

	deckCmd.AddCommand(importCmd, listCmd, renameCmd, deleteCmd, shuffleCmd)
	return deckCmd
}

func runDeckImport(ctx context.Context, cmd *cobra.Command, app *application, args []string) error {
	path := args[0]
	name, _ := cmd.Flags().GetString("name")
	if strings.TrimSpace(name) == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = f.Close() }()

	imp, err := csvimport.Parse(f)
	if err != nil {
		return err
	}

	deck, err := app.decks.CreateDeck(ctx, name, imp.Cards)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created deck %q (%s) with %d cards\n", deck.Name, deck.ID, len(deck.Flashcards))
	for _, row := range imp.SkippedRows {
		fmt.Fprintf(out, "Skipped line %d: %s\n", row.Line, row.Reason)
	}
	return nil
}

func runDeckList(ctx context.Context, cmd *cobra.Command, app *application, _ []string) error {
	decks, err := app.decks.ListDecks(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(decks) == 0 {
		fmt.Fprintln(out, "No decks yet. Import one with: flashflow deck import FILE.csv")
		return nil
	}

	t := newTable("ID", "NAME", "CARDS", "UPDATED")
	for _, d := range decks {
		t.Row(d.ID, d.Name, strconv.Itoa(len(d.Flashcards)), d.UpdatedAt.Local().Format(timeLayout))
	}
	fmt.Fprintln(out, t.Render())
	return nil
}

func runDeckRename(ctx context.Context, cmd *cobra.Command, app *application, args []string) error {
	name := args[1]
	deck, err := app.decks.UpdateDeck(ctx, args[0], domain.DeckPatch{Name: &name})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Renamed deck %s to %q\n", deck.ID, deck.Name)
	return nil
}

func runDeckDelete(ctx context.Context, cmd *cobra.Command, app *application, args []string) error {
	deck, err := app.decks.GetDeck(ctx, args[0])
	if err != nil {
		return err
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		prompt := fmt.Sprintf("Delete deck %q and its %d cards? [y/N] ", deck.Name, len(deck.Flashcards))
		if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), prompt) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
			return nil
		}
	}

	if err := app.decks.DeleteDeck(ctx, deck.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted deck %q\n", deck.Name)
	return nil
}

func runDeckShuffle(ctx context.Context, cmd *cobra.Command, app *application, args []string) error {
	deck, err := app.decks.ShuffleDeck(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %q now has %d cards in a new order\n",
		study.NoticeShuffled, deck.Name, len(deck.Flashcards))
	return nil
}

// --- card ---

func newCardCmd() *cobra.Command {
	cardCmd := &cobra.Command{
		Use:   "card",
		Short: "Manage the cards of a deck",
	}

	listCmd := &cobra.Command{
		Use:   "list DECK",
		Short: "List the cards of a deck in study order",
		Args:  cobra.ExactArgs(1),
		RunE:  runWithApp(runCardList),
	}

	addCmd := &cobra.Command{
		Use:   "add DECK",
		Short: "Add a card to the end of a deck",
		Args:  cobra.ExactArgs(1),
		RunE:  runWithApp(runCardAdd),
	}
	addCmd.Flags().String("front", "", "front text")
	addCmd.Flags().String("back", "", "back text")
	_ = addCmd.MarkFlagRequired("front")
	_ = addCmd.MarkFlagRequired("back")

	editCmd := &cobra.Command{
		Use:   "edit DECK CARD",
		Short: "Change the front or back of a card",
		Args:  cobra.ExactArgs(2),
		RunE:  runWithApp(runCardEdit),
	}
	editCmd.Flags().String("front", "", "new front text")
	editCmd.Flags().String("back", "", "new back text")
	editCmd.MarkFlagsOneRequired("front", "back")

	deleteCmd := &cobra.Command{
		Use:   "delete DECK CARD",
		Short: "Remove a card from a deck",
		Args:  cobra.ExactArgs(2),
		RunE:  runWithApp(runCardDelete),
	}

	cardCmd.AddCommand(listCmd, addCmd, editCmd, deleteCmd)
	return cardCmd
}

func runCardList(ctx context.Context, cmd *cobra.Command, app *application, args []string) error {
	deck, err := app.decks.GetDeck(ctx, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(deck.Flashcards) == 0 {
		fmt.Fprintf(out, "Deck %q has no cards\n", deck.Name)
		return nil
	}

	t := newTable("#", "ID", "FRONT", "BACK")
	for i, c := range deck.Flashcards {
		t.Row(strconv.Itoa(i+1), c.ID, c.Front, c.Back)
	}
	fmt.Fprintln(out, t.Render())
	return nil
}

func runCardAdd(ctx context.Context, cmd *cobra.Command, app *application, args []string) error {
	front, _ := cmd.Flags().GetString("front")
	back, _ := cmd.Flags().GetString("back")

	deck, err := app.decks.AddCard(ctx, args[0], domain.CardInput{Front: front, Back: back})
	if err != nil {
		return err
	}
	card := deck.Flashcards[len(deck.Flashcards)-1]
	fmt.Fprintf(cmd.OutOrStdout(), "Added card %s to %q (%d cards)\n", card.ID, deck.Name, len(deck.Flashcards))
	return nil
}

func runCardEdit(ctx context.Context, cmd *cobra.Command, app *application, args []string) error {
	var patch domain.CardPatch
	if cmd.Flags().Changed("front") {
		front, _ := cmd.Flags().GetString("front")
		patch.Front = &front
	}
	if cmd.Flags().Changed("back") {
		back, _ := cmd.Flags().GetString("back")
		patch.Back = &back
	}

	if _, err := app.decks.UpdateCard(ctx, args[0], args[1], patch); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated card %s\n", args[1])
	return nil
}

func runCardDelete(ctx context.Context, cmd *cobra.Command, app *application, args []string) error {
	deck, err := app.decks.DeleteCard(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted card %s (%d cards left)\n", args[1], len(deck.Flashcards))
	return nil
}

// --- study ---

func newStudyCmd() *cobra.Command {
	studyCmd := &cobra.Command{
		Use:   "study DECK",
		Short: "Study a deck in flip or multiple choice mode",
		Args:  cobra.ExactArgs(1),
		RunE:  runWithScreen(runStudy),
	}
	studyCmd.Flags().String("mode", "", "flip or choice (default from config)")
	return studyCmd
}

func runStudy(ctx context.Context, cmd *cobra.Command, app *application, args []string) error {
	deck, err := app.decks.GetDeck(ctx, args[0])
	if err != nil {
		return err
	}

	modeName := app.config.Study.DefaultMode
	if cmd.Flags().Changed("mode") {
		modeName, _ = cmd.Flags().GetString("mode")
	}
	mode, err := study.ParseMode(modeName)
	if err != nil {
		return err
	}

	notifier := &tui.Notifier{}
	session, err := study.NewSession(deck, app.decks,
		study.WithTransitionDuration(app.config.Study.TransitionDuration),
		study.WithLogger(app.logger),
		study.WithNotifier(notifier.Notify),
		study.WithMode(mode),
	)
	if err != nil {
		return err
	}
	app.emitter.RegisterHandler(session)
	defer app.emitter.UnregisterHandler(session)

	return tui.Run(ctx, session, notifier,
		tea.WithAltScreen(),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
}

// --- helpers ---

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderColumn(false).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().PaddingRight(2)
		})
}

// confirm asks prompt on out and reports whether the answer read from in
// starts with y.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
