package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/flashflow/internal/domain"
)

// Deck event types.
const (
	DeckCreated = "deck.created"
	DeckUpdated = "deck.updated"
	DeckDeleted = "deck.deleted"
)

// DeckEvent announces a committed change to one deck.
type DeckEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of DeckCreated, DeckUpdated or DeckDeleted
	Type string `json:"type"`

	// DeckID identifies the deck that changed
	DeckID string `json:"deckId"`

	// Deck is a copy of the deck after the change; nil for DeckDeleted
	Deck *domain.Deck `json:"deck,omitempty"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"createdAt"`
}

// NewDeckEvent creates a DeckEvent of the given type. The deck is copied so
// handlers cannot alias store state.
func NewDeckEvent(eventType, deckID string, deck *domain.Deck) *DeckEvent {
	return &DeckEvent{
		ID:        uuid.New(),
		Type:      eventType,
		DeckID:    deckID,
		Deck:      deck.Clone(),
		CreatedAt: time.Now(),
	}
}

// EventHandler defines an interface for components that react to deck events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *DeckEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows the mutation API to publish changes without knowing which views
// are listening.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *DeckEvent) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *DeckEvent) error { return nil }
