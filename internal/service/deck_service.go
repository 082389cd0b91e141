package service

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/phrazzld/flashflow/internal/domain"
	"github.com/phrazzld/flashflow/internal/events"
	"github.com/phrazzld/flashflow/internal/platform/logger"
	"github.com/phrazzld/flashflow/internal/store"
	"github.com/phrazzld/flashflow/internal/study"
)

// DeckRepository is the persistence the service needs. *store.DeckStore
// implements it.
type DeckRepository interface {
	// Decks returns a copy of every deck in storage order.
	Decks() ([]*domain.Deck, error)

	// Get returns a copy of one deck or store.ErrDeckNotFound.
	Get(id string) (*domain.Deck, error)

	// Update mutates a copy of the collection and commits it when fn succeeds.
	Update(ctx context.Context, fn store.UpdateFn) error
}

var _ DeckRepository = (*store.DeckStore)(nil)

// DeckService is the only write path for decks and cards. Every operation
// runs against the in-memory collection, persists it, and returns a copy of
// the post-mutation deck.
//
// Operations on a deck or card that does not exist return an error matching
// store.ErrDeckNotFound or store.ErrCardNotFound; blank input returns an error
// matching domain.ErrValidation. In both cases nothing is changed.
type DeckService struct {
	repo    DeckRepository
	emitter events.EventEmitter
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
	rng     *rand.Rand
}

// Option configures a DeckService.
type Option func(*DeckService)

// WithClock replaces the time source used for createdAt/updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *DeckService) { s.now = now }
}

// WithIDGenerator replaces the generator used for new card ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *DeckService) { s.newID = newID }
}

// WithRand sets the random source used by ShuffleDeck.
func WithRand(rng *rand.Rand) Option {
	return func(s *DeckService) { s.rng = rng }
}

// NewDeckService creates a DeckService.
// It returns an error if the repository is nil. A nil emitter discards
// events and a nil logger uses the default logger.
func NewDeckService(
	repo DeckRepository,
	emitter events.EventEmitter,
	logger *slog.Logger,
	opts ...Option,
) (*DeckService, error) {
	if repo == nil {
		return nil, domain.NewValidationError("repo", "cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &DeckService{
		repo:    repo,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "deck_service")),
		now:     defaultClock,
		newID:   domain.NewCardID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func defaultClock() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// CreateDeck creates a deck from imported cards. Cards keep their ids unless
// they are missing or repeated; front and back must not be blank.
func (s *DeckService) CreateDeck(ctx context.Context, name string, cards []domain.Flashcard) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cards, err := normalizeCards(cards)
	if err != nil {
		return nil, NewDeckServiceError("create_deck", "invalid card", err)
	}

	deck, err := domain.NewDeck(name, cards, s.now(), s.newID)
	if err != nil {
		return nil, NewDeckServiceError("create_deck", "invalid deck", err)
	}

	err = s.repo.Update(ctx, func(decks []*domain.Deck) ([]*domain.Deck, error) {
		return append(decks, deck.Clone()), nil
	})
	if err != nil {
		return nil, NewDeckServiceError("create_deck", "failed to store deck", err)
	}

	log.Info("deck created",
		slog.String("deck_id", deck.ID),
		slog.Int("card_count", len(deck.Flashcards)))
	s.emit(ctx, events.DeckCreated, deck.ID, deck)
	return deck, nil
}

// normalizeCards returns trimmed copies of cards, rejecting any card whose
// front or back is blank.
func normalizeCards(cards []domain.Flashcard) ([]domain.Flashcard, error) {
	out := make([]domain.Flashcard, len(cards))
	for i, c := range cards {
		in := domain.CardInput{Front: c.Front, Back: c.Back}
		if err := in.Validate(); err != nil {
			return nil, err
		}
		in = in.Normalize()
		c.Front, c.Back = in.Front, in.Back
		out[i] = c
	}
	return out, nil
}

// GetDeck returns a copy of the deck with the given id.
func (s *DeckService) GetDeck(ctx context.Context, id string) (*domain.Deck, error) {
	deck, err := s.repo.Get(id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewDeckServiceError("get_deck", "deck not found", store.ErrDeckNotFound)
		}
		return nil, NewDeckServiceError("get_deck", "failed to read deck", err)
	}
	return deck, nil
}

// ListDecks returns copies of all decks in creation order.
func (s *DeckService) ListDecks(ctx context.Context) ([]*domain.Deck, error) {
	decks, err := s.repo.Decks()
	if err != nil {
		return nil, NewDeckServiceError("list_decks", "failed to read decks", err)
	}
	return decks, nil
}

// UpdateDeck replaces the fields present in patch. The id and createdAt
// never change; updatedAt always advances.
func (s *DeckService) UpdateDeck(ctx context.Context, id string, patch domain.DeckPatch) (*domain.Deck, error) {
	var name string
	if patch.Name != nil {
		name = strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, NewDeckServiceError("update_deck", "invalid name", domain.ErrDeckNameEmpty)
		}
	}
	var cards []domain.Flashcard
	if patch.Flashcards != nil {
		normalized, err := normalizeCards(*patch.Flashcards)
		if err != nil {
			return nil, NewDeckServiceError("update_deck", "invalid card", err)
		}
		cards = domain.AssignCardIDs(normalized, s.newID)
	}

	return s.mutateDeck(ctx, "update_deck", id, func(d *domain.Deck) error {
		if patch.Name != nil {
			d.Name = name
		}
		if patch.Flashcards != nil {
			d.Flashcards = cards
		}
		return nil
	})
}

// DeleteDeck removes the deck permanently.
func (s *DeckService) DeleteDeck(ctx context.Context, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.repo.Update(ctx, func(decks []*domain.Deck) ([]*domain.Deck, error) {
		for i, d := range decks {
			if d.ID == id {
				return append(decks[:i], decks[i+1:]...), nil
			}
		}
		return nil, store.ErrDeckNotFound
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			return NewDeckServiceError("delete_deck", "deck not found", store.ErrDeckNotFound)
		}
		return NewDeckServiceError("delete_deck", "failed to delete deck", err)
	}

	log.Info("deck deleted", slog.String("deck_id", id))
	s.emit(ctx, events.DeckDeleted, id, nil)
	return nil
}

// AddCard appends a new card with a fresh id to the deck.
func (s *DeckService) AddCard(ctx context.Context, deckID string, input domain.CardInput) (*domain.Deck, error) {
	if err := input.Validate(); err != nil {
		return nil, NewDeckServiceError("add_card", "invalid card", err)
	}
	input = input.Normalize()

	return s.mutateDeck(ctx, "add_card", deckID, func(d *domain.Deck) error {
		id := s.newID()
		for d.CardIndex(id) >= 0 {
			id = s.newID()
		}
		d.Flashcards = append(d.Flashcards, domain.Flashcard{ID: id, Front: input.Front, Back: input.Back})
		return nil
	})
}

// UpdateCard merges the fields present in patch into the card.
func (s *DeckService) UpdateCard(ctx context.Context, deckID, cardID string, patch domain.CardPatch) (*domain.Deck, error) {
	var front, back string
	if patch.Front != nil {
		if err := domain.ValidateCardText("front", *patch.Front); err != nil {
			return nil, NewDeckServiceError("update_card", "invalid card", err)
		}
		front = strings.TrimSpace(*patch.Front)
	}
	if patch.Back != nil {
		if err := domain.ValidateCardText("back", *patch.Back); err != nil {
			return nil, NewDeckServiceError("update_card", "invalid card", err)
		}
		back = strings.TrimSpace(*patch.Back)
	}

	return s.mutateDeck(ctx, "update_card", deckID, func(d *domain.Deck) error {
		i := d.CardIndex(cardID)
		if i < 0 {
			return store.ErrCardNotFound
		}
		if patch.Front != nil {
			d.Flashcards[i].Front = front
		}
		if patch.Back != nil {
			d.Flashcards[i].Back = back
		}
		return nil
	})
}

// DeleteCard removes the card from the deck's sequence.
func (s *DeckService) DeleteCard(ctx context.Context, deckID, cardID string) (*domain.Deck, error) {
	return s.mutateDeck(ctx, "delete_card", deckID, func(d *domain.Deck) error {
		i := d.CardIndex(cardID)
		if i < 0 {
			return store.ErrCardNotFound
		}
		d.Flashcards = append(d.Flashcards[:i], d.Flashcards[i+1:]...)
		return nil
	})
}

// ShuffleDeck stores a uniformly random permutation of the deck's cards.
// Decks with fewer than two cards are returned unchanged.
func (s *DeckService) ShuffleDeck(ctx context.Context, deckID string) (*domain.Deck, error) {
	deck, err := s.GetDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if len(deck.Flashcards) < 2 {
		return deck, nil
	}
	shuffled := study.Shuffle(deck.Flashcards, s.rng)
	return s.UpdateDeck(ctx, deckID, domain.DeckPatch{Flashcards: &shuffled})
}

// mutateDeck applies fn to a copy of one deck, bumps updatedAt, commits the
// collection and emits DeckUpdated.
func (s *DeckService) mutateDeck(
	ctx context.Context,
	op string,
	deckID string,
	fn func(d *domain.Deck) error,
) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Deck
	err := s.repo.Update(ctx, func(decks []*domain.Deck) ([]*domain.Deck, error) {
		for _, d := range decks {
			if d.ID != deckID {
				continue
			}
			if err := fn(d); err != nil {
				return nil, err
			}
			if d.Flashcards == nil {
				d.Flashcards = []domain.Flashcard{}
			}
			d.Touch(s.now())
			updated = d.Clone()
			return decks, nil
		}
		return nil, store.ErrDeckNotFound
	})
	if err != nil {
		switch {
		case store.IsNotFoundError(err):
			log.Debug("mutation target not found",
				slog.String("operation", op),
				slog.String("deck_id", deckID),
				slog.String("error", err.Error()))
			return nil, NewDeckServiceError(op, "target not found", err)
		default:
			log.Error("mutation failed",
				slog.String("operation", op),
				slog.String("deck_id", deckID),
				slog.String("error", err.Error()))
			return nil, NewDeckServiceError(op, "failed to update deck", err)
		}
	}

	log.Debug("deck updated",
		slog.String("operation", op),
		slog.String("deck_id", deckID),
		slog.Int("card_count", len(updated.Flashcards)))
	s.emit(ctx, events.DeckUpdated, deckID, updated)
	return updated, nil
}

func (s *DeckService) emit(ctx context.Context, eventType, deckID string, deck *domain.Deck) {
	if err := s.emitter.EmitEvent(ctx, events.NewDeckEvent(eventType, deckID, deck)); err != nil {
		s.logger.Warn("deck event handler failed",
			slog.String("event_type", eventType),
			slog.String("deck_id", deckID),
			slog.String("error", err.Error()))
	}
}
