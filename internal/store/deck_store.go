package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/phrazzld/flashflow/internal/domain"
	"github.com/phrazzld/flashflow/internal/platform/logger"
)

// UpdateFn mutates a private copy of the deck collection. Returning an error
// discards the copy and leaves both memory and the slot untouched.
type UpdateFn func(decks []*domain.Deck) ([]*domain.Deck, error)

// DeckStore is the single source of truth for all decks. It reads the
// collection from a Slot once, keeps it in memory, and writes the whole
// collection back after every successful update.
type DeckStore struct {
	slot   Slot
	logger *slog.Logger

	mu     sync.RWMutex
	decks  []*domain.Deck
	loaded bool
}

// NewDeckStore creates a DeckStore backed by slot.
// If logger is nil, a default logger will be used.
func NewDeckStore(slot Slot, logger *slog.Logger) *DeckStore {
	if slot == nil {
		panic("slot cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DeckStore{
		slot:   slot,
		logger: logger.With(slog.String("component", "deck_store")),
		decks:  []*domain.Deck{},
	}
}

// Load reads the persisted collection. An empty slot, a read failure or
// malformed data all leave the store with an empty collection; none of them
// is fatal. Load marks the store as loaded in every case and returns the
// number of decks read.
func (s *DeckStore) Load(ctx context.Context) int {
	log := logger.FromContextOrDefault(ctx, s.logger)

	decks, err := s.readSlot(ctx)
	switch {
	case errors.Is(err, ErrSlotEmpty):
		log.Info("no persisted decks found, starting empty")
		decks = []*domain.Deck{}
	case err != nil:
		log.Error("failed to load decks, starting empty", slog.String("error", err.Error()))
		decks = []*domain.Deck{}
	}

	s.mu.Lock()
	s.decks = decks
	s.loaded = true
	s.mu.Unlock()

	log.Debug("deck collection loaded", slog.Int("deck_count", len(decks)))
	return len(decks)
}

// Loaded reports whether Load has completed. Until then the in-memory
// collection is not authoritative.
func (s *DeckStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Decks returns a deep copy of the collection in storage order.
func (s *DeckStore) Decks() ([]*domain.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ErrNotLoaded
	}
	return cloneDecks(s.decks), nil
}

// Get returns a copy of the deck with the given id.
func (s *DeckStore) Get(id string) (*domain.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ErrNotLoaded
	}
	for _, d := range s.decks {
		if d.ID == id {
			return d.Clone(), nil
		}
	}
	return nil, ErrDeckNotFound
}

// Update applies fn to a copy of the collection. When fn succeeds the copy
// replaces the in-memory collection and is persisted with a single Write.
// A failed write is logged and otherwise ignored: the in-memory state stays
// authoritative for the rest of the session.
func (s *DeckStore) Update(ctx context.Context, fn UpdateFn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}

	next, err := fn(cloneDecks(s.decks))
	if err != nil {
		return err
	}
	if next == nil {
		next = []*domain.Deck{}
	}
	s.decks = next
	s.persist(ctx, next)
	return nil
}

func (s *DeckStore) persist(ctx context.Context, decks []*domain.Deck) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	data, err := json.Marshal(decks)
	if err != nil {
		log.Error("failed to encode decks", slog.String("error", err.Error()))
		return
	}
	if err := s.slot.Write(ctx, data); err != nil {
		log.Error("failed to save decks",
			slog.String("error", err.Error()),
			slog.Int("deck_count", len(decks)))
		return
	}
	log.Debug("decks saved", slog.Int("deck_count", len(decks)), slog.Int("bytes", len(data)))
}

func (s *DeckStore) readSlot(ctx context.Context) ([]*domain.Deck, error) {
	data, err := s.slot.Read(ctx)
	if err != nil {
		if errors.Is(err, ErrSlotEmpty) {
			return nil, err
		}
		return nil, NewStoreError("slot", "read", "failed to read deck collection", err)
	}

	var raw []*domain.Deck
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return s.sanitize(raw), nil
}

// sanitize drops decks that cannot be repaired (missing id or name, or an id
// seen earlier) and repairs the rest: cards with a blank side are dropped,
// missing or repeated card ids are regenerated and timestamps are put back
// in order.
func (s *DeckStore) sanitize(raw []*domain.Deck) []*domain.Deck {
	out := make([]*domain.Deck, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for i, d := range raw {
		if d == nil || d.ID == "" || d.Name == "" {
			s.logger.Warn("dropping unreadable deck", slog.Int("position", i))
			continue
		}
		if _, dup := seen[d.ID]; dup {
			s.logger.Warn("dropping deck with duplicate id", slog.String("deck_id", d.ID))
			continue
		}
		seen[d.ID] = struct{}{}

		d.Flashcards = domain.AssignCardIDs(s.dropBlankCards(d), domain.NewCardID)
		if d.UpdatedAt.Before(d.CreatedAt) {
			d.UpdatedAt = d.CreatedAt
		}
		out = append(out, d)
	}
	return out
}

func (s *DeckStore) dropBlankCards(d *domain.Deck) []domain.Flashcard {
	cards := make([]domain.Flashcard, 0, len(d.Flashcards))
	for _, c := range d.Flashcards {
		if strings.TrimSpace(c.Front) == "" || strings.TrimSpace(c.Back) == "" {
			s.logger.Warn("dropping blank card",
				slog.String("deck_id", d.ID),
				slog.String("card_id", c.ID))
			continue
		}
		cards = append(cards, c)
	}
	return cards
}

func cloneDecks(decks []*domain.Deck) []*domain.Deck {
	out := make([]*domain.Deck, len(decks))
	for i, d := range decks {
		out[i] = d.Clone()
	}
	return out
}
