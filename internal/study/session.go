package study

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/phrazzld/flashflow/internal/domain"
	"github.com/phrazzld/flashflow/internal/events"
)

// DefaultTransitionDuration is the length of each half of a card change.
const DefaultTransitionDuration = 500 * time.Millisecond

// Session errors. None of them changes session state.
var (
	// ErrTransitionInProgress is returned for any command issued outside
	// PhaseIdle. Commands are never queued.
	ErrTransitionInProgress = errors.New("transition in progress")

	// ErrNotEnoughCards is returned when navigation, shuffle or choice mode
	// needs more cards than the deck has.
	ErrNotEnoughCards = errors.New("not enough cards")

	// ErrFlipInChoiceMode is returned by Flip while in choice mode.
	ErrFlipInChoiceMode = errors.New("flip is not available in choice mode")

	// ErrNotChoiceMode is returned by SelectChoice while in flip mode.
	ErrNotChoiceMode = errors.New("not in choice mode")

	// ErrNoCurrentCard is returned when the deck is empty.
	ErrNoCurrentCard = errors.New("deck has no cards")

	// ErrDeckDeleted is returned once the studied deck has been deleted.
	ErrDeckDeleted = errors.New("deck was deleted")
)

// Notice texts surfaced to the user.
const (
	NoticeShuffled       = "Cards shuffled"
	NoticeChoiceFallback = "Choice mode needs at least two cards"
	NoticeDeckDeleted    = "This deck was deleted"
	NoticeNoWrongAnswers = "Every other card has the same answer, so there is nothing to choose from"
)

// DeckMutator is the part of the mutation API a session writes through.
// *service.DeckService implements it.
type DeckMutator interface {
	UpdateDeck(ctx context.Context, id string, patch domain.DeckPatch) (*domain.Deck, error)
	AddCard(ctx context.Context, deckID string, input domain.CardInput) (*domain.Deck, error)
	UpdateCard(ctx context.Context, deckID, cardID string, patch domain.CardPatch) (*domain.Deck, error)
	DeleteCard(ctx context.Context, deckID, cardID string) (*domain.Deck, error)
}

type action int

const (
	actionNext action = iota
	actionPrevious
	actionShuffle
)

// Session is the study state for one deck: the current card, its flip or
// choice state, the transition phase and the elapsed timers.
//
// Commands are accepted only in PhaseIdle. Next, Previous and Shuffle run a
// two-phase transition whose halves are timed by the Scheduler; the card
// change happens between the halves. All methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	mutator   DeckMutator
	scheduler Scheduler
	rng       *rand.Rand
	duration  time.Duration
	logger    *slog.Logger
	notify    func()

	deckID   string
	deckName string
	cards    []domain.Flashcard
	deleted  bool

	index   int
	flipped bool
	mode    Mode
	phase   Phase
	choices *ChoiceSet
	notice  string

	cardTimer ElapsedCounter
	deckTimer ElapsedCounter

	generation uint64
	timer      Timer
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithScheduler replaces the transition scheduler.
func WithScheduler(s Scheduler) SessionOption {
	return func(sess *Session) { sess.scheduler = s }
}

// WithRand sets the random source for shuffles and choices.
func WithRand(rng *rand.Rand) SessionOption {
	return func(sess *Session) { sess.rng = rng }
}

// WithTransitionDuration sets the length of each transition half.
func WithTransitionDuration(d time.Duration) SessionOption {
	return func(sess *Session) {
		if d > 0 {
			sess.duration = d
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) SessionOption {
	return func(sess *Session) {
		if l != nil {
			sess.logger = l
		}
	}
}

// WithNotifier registers fn to be called after state changes that happen
// outside a command: transition halves, timer ticks and deck events.
func WithNotifier(fn func()) SessionOption {
	return func(sess *Session) { sess.notify = fn }
}

// WithMode sets the initial mode. Choice mode on a deck with fewer than two
// cards falls back to flip mode with a notice.
func WithMode(m Mode) SessionOption {
	return func(sess *Session) { sess.mode = m }
}

// NewSession opens a study session on deck.
func NewSession(deck *domain.Deck, mutator DeckMutator, opts ...SessionOption) (*Session, error) {
	if deck == nil {
		return nil, domain.NewValidationError("deck", "cannot be nil", domain.ErrValidation)
	}
	if mutator == nil {
		return nil, domain.NewValidationError("mutator", "cannot be nil", domain.ErrValidation)
	}

	s := &Session{
		mutator:   mutator,
		scheduler: RealScheduler{},
		duration:  DefaultTransitionDuration,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "study_session"))

	s.resetLocked(deck)
	return s, nil
}

// Flip toggles between the front and back of the current card.
func (s *Session) Flip() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.readyLocked(); err != nil {
		return err
	}
	if s.mode == ModeChoice {
		return ErrFlipInChoiceMode
	}
	s.flipped = !s.flipped
	return nil
}

// Next moves to the following card, wrapping from the last to the first.
func (s *Session) Next() error {
	return s.navigate(actionNext)
}

// Previous moves to the preceding card, wrapping from the first to the last.
func (s *Session) Previous() error {
	return s.navigate(actionPrevious)
}

func (s *Session) navigate(a action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.readyLocked(); err != nil {
		return err
	}
	if len(s.cards) <= 1 {
		return ErrNotEnoughCards
	}
	s.startTransitionLocked(context.Background(), a)
	return nil
}

// Shuffle randomly reorders the deck, stores the new order through the
// mutation API and returns to the first card. Decks with one card or none
// are left alone and no transition starts.
func (s *Session) Shuffle(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.readyLocked(); err != nil {
		return err
	}
	if len(s.cards) <= 1 {
		return ErrNotEnoughCards
	}
	s.startTransitionLocked(context.WithoutCancel(ctx), actionShuffle)
	return nil
}

// SetMode switches between flip and choice mode. Choice mode needs at least
// two cards.
func (s *Session) SetMode(m Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deleted {
		return ErrDeckDeleted
	}
	if s.phase != PhaseIdle {
		return ErrTransitionInProgress
	}
	if m == ModeChoice && len(s.cards) < 2 {
		s.notice = NoticeChoiceFallback
		return ErrNotEnoughCards
	}
	if m == s.mode {
		return nil
	}
	s.mode = m
	s.notice = ""
	s.showCardLocked()
	return nil
}

// SelectChoice records the answer for the current card and reports whether
// it was correct. Only one answer per card is accepted; the card timer stops
// once it is.
func (s *Session) SelectChoice(choiceID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.readyLocked(); err != nil {
		return false, err
	}
	if s.mode != ModeChoice || s.choices == nil {
		return false, ErrNotChoiceMode
	}
	correct, err := s.choices.Select(choiceID)
	if err != nil {
		return false, err
	}
	s.cardTimer.Freeze()
	s.logger.Debug("choice selected",
		slog.String("deck_id", s.deckID),
		slog.String("card_id", s.choices.CardID),
		slog.Bool("correct", correct))
	return correct, nil
}

// AddCard adds a card to the deck and shows the refreshed card list.
func (s *Session) AddCard(ctx context.Context, input domain.CardInput) (*domain.Deck, error) {
	deckID, err := s.mutationTarget()
	if err != nil {
		return nil, err
	}
	deck, err := s.mutator.AddCard(ctx, deckID, input)
	if err != nil {
		return nil, err
	}
	s.Refresh(deck)
	return deck, nil
}

// UpdateCard edits a card of the deck and shows the refreshed card list.
func (s *Session) UpdateCard(ctx context.Context, cardID string, patch domain.CardPatch) (*domain.Deck, error) {
	deckID, err := s.mutationTarget()
	if err != nil {
		return nil, err
	}
	deck, err := s.mutator.UpdateCard(ctx, deckID, cardID, patch)
	if err != nil {
		return nil, err
	}
	s.Refresh(deck)
	return deck, nil
}

// DeleteCard removes a card from the deck. The index stays where it was,
// clamped to the shorter list, and the new current card shows its front.
func (s *Session) DeleteCard(ctx context.Context, cardID string) (*domain.Deck, error) {
	deckID, err := s.mutationTarget()
	if err != nil {
		return nil, err
	}
	deck, err := s.mutator.DeleteCard(ctx, deckID, cardID)
	if err != nil {
		return nil, err
	}
	s.Refresh(deck)
	s.mu.Lock()
	s.flipped = false
	s.mu.Unlock()
	return deck, nil
}

// mutationTarget checks the gate for card edits. The mutator is called
// without holding the lock because it emits events back into the session.
func (s *Session) mutationTarget() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleted {
		return "", ErrDeckDeleted
	}
	if s.phase != PhaseIdle {
		return "", ErrTransitionInProgress
	}
	return s.deckID, nil
}

// Refresh replaces the visible card list with the deck's current sequence.
// The index is clamped to the new length. Decks with a different id are
// ignored.
func (s *Session) Refresh(deck *domain.Deck) {
	if deck == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if deck.ID != s.deckID {
		return
	}
	s.refreshLocked(deck)
}

// Reset starts over on deck: first card, front side, fresh timers. Any
// pending transition is abandoned.
func (s *Session) Reset(deck *domain.Deck) {
	if deck == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked(deck)
}

// HandleEvent keeps the session in step with changes made elsewhere.
// It implements events.EventHandler.
func (s *Session) HandleEvent(ctx context.Context, event *events.DeckEvent) error {
	if event == nil {
		return nil
	}

	s.mu.Lock()
	if event.DeckID != s.deckID {
		s.mu.Unlock()
		return nil
	}
	switch event.Type {
	case events.DeckUpdated:
		if event.Deck != nil {
			s.refreshLocked(event.Deck)
		}
	case events.DeckDeleted:
		s.markDeletedLocked()
	}
	notify := s.notify
	s.mu.Unlock()

	if notify != nil {
		notify()
	}
	return nil
}

var _ events.EventHandler = (*Session)(nil)

// Tick advances the card and deck timers by one second.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleted {
		return
	}
	s.cardTimer.Tick()
	s.deckTimer.Tick()
}

// Run ticks the timers once per second until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Tick()
			s.notifyChange()
		}
	}
}

// Close abandons any pending transition.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.stopTimerLocked()
}

// readyLocked is the central command gate.
func (s *Session) readyLocked() error {
	if s.deleted {
		return ErrDeckDeleted
	}
	if s.phase != PhaseIdle {
		return ErrTransitionInProgress
	}
	if len(s.cards) == 0 {
		return ErrNoCurrentCard
	}
	return nil
}

func (s *Session) startTransitionLocked(ctx context.Context, a action) {
	s.phase = PhaseTransitioningOut
	s.flipped = false
	s.notice = ""
	if s.choices != nil {
		s.choices = s.choices.clone()
		s.choices.selected = ""
	}

	gen := s.generation
	s.timer = s.scheduler.AfterFunc(s.duration, func() {
		s.midpoint(ctx, gen, a)
	})
}

// midpoint runs between the exit and enter halves of a transition.
func (s *Session) midpoint(ctx context.Context, gen uint64, a action) {
	s.mu.Lock()
	if gen != s.generation || s.phase != PhaseTransitioningOut {
		s.mu.Unlock()
		return
	}

	var shuffled []domain.Flashcard
	switch a {
	case actionNext:
		if n := len(s.cards); n > 0 {
			s.index = (s.index + 1) % n
		}
	case actionPrevious:
		if n := len(s.cards); n > 0 {
			s.index = (s.index - 1 + n) % n
		}
	case actionShuffle:
		shuffled = Shuffle(s.cards, s.rng)
	}
	deckID := s.deckID
	s.mu.Unlock()

	var stored *domain.Deck
	if a == actionShuffle {
		var err error
		stored, err = s.mutator.UpdateDeck(ctx, deckID, domain.DeckPatch{Flashcards: &shuffled})
		if err != nil {
			s.logger.Error("failed to store shuffled deck",
				slog.String("deck_id", deckID),
				slog.String("error", err.Error()))
		}
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	if a == actionShuffle {
		if stored != nil {
			s.cards = stored.Flashcards
			s.deckName = stored.Name
		} else if !s.deleted {
			s.cards = shuffled
		}
		s.index = 0
		s.notice = NoticeShuffled
		s.logger.Info("deck shuffled",
			slog.String("deck_id", deckID),
			slog.Int("card_count", len(s.cards)))
	}
	s.flipped = false
	s.showCardLocked()
	s.phase = PhaseTransitioningIn
	s.timer = s.scheduler.AfterFunc(s.duration, func() {
		s.finish(gen)
	})
	s.mu.Unlock()

	s.notifyChange()
}

func (s *Session) finish(gen uint64) {
	s.mu.Lock()
	if gen != s.generation || s.phase != PhaseTransitioningIn {
		s.mu.Unlock()
		return
	}
	s.phase = PhaseIdle
	s.timer = nil
	s.mu.Unlock()

	s.notifyChange()
}

func (s *Session) resetLocked(deck *domain.Deck) {
	s.generation++
	s.stopTimerLocked()

	s.deckID = deck.ID
	s.deckName = deck.Name
	s.cards = append([]domain.Flashcard(nil), deck.Flashcards...)
	s.deleted = false
	s.index = 0
	s.flipped = false
	s.phase = PhaseIdle
	s.notice = ""
	s.deckTimer.Reset()
	s.fallBackIfTooFewLocked()
	s.showCardLocked()
}

func (s *Session) refreshLocked(deck *domain.Deck) {
	before, hadCard := s.currentLocked()

	s.deckName = deck.Name
	s.cards = append([]domain.Flashcard(nil), deck.Flashcards...)
	switch {
	case len(s.cards) == 0:
		s.index = 0
	case s.index >= len(s.cards):
		s.index = len(s.cards) - 1
	}
	s.fallBackIfTooFewLocked()

	after, hasCard := s.currentLocked()
	switch {
	case hadCard != hasCard || before.ID != after.ID:
		s.flipped = false
		s.showCardLocked()
	case before != after:
		s.showCardLocked()
	case s.mode == ModeChoice && s.choices == nil:
		s.showCardLocked()
	}
}

func (s *Session) markDeletedLocked() {
	s.generation++
	s.stopTimerLocked()
	s.deleted = true
	s.cards = nil
	s.index = 0
	s.flipped = false
	s.phase = PhaseIdle
	s.choices = nil
	s.notice = NoticeDeckDeleted
	s.logger.Info("studied deck was deleted", slog.String("deck_id", s.deckID))
}

func (s *Session) fallBackIfTooFewLocked() {
	if s.mode == ModeChoice && len(s.cards) < 2 {
		s.mode = ModeFlip
		s.choices = nil
		s.notice = NoticeChoiceFallback
	}
}

// showCardLocked restarts the card timer and, in choice mode, builds fresh
// choices for the current card.
func (s *Session) showCardLocked() {
	s.cardTimer.Reset()
	s.choices = nil

	card, ok := s.currentLocked()
	if !ok || s.mode != ModeChoice {
		return
	}
	choices, err := GenerateChoices(card, s.cards, s.rng)
	if err != nil {
		s.logger.Warn("failed to generate choices",
			slog.String("card_id", card.ID),
			slog.String("error", err.Error()))
		return
	}
	s.choices = choices
}

func (s *Session) currentLocked() (domain.Flashcard, bool) {
	if s.index < 0 || s.index >= len(s.cards) {
		return domain.Flashcard{}, false
	}
	return s.cards[s.index], true
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) notifyChange() {
	s.mu.Lock()
	notify := s.notify
	s.mu.Unlock()
	if notify != nil {
		notify()
	}
}
