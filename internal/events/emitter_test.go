package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestInMemoryEventEmitter(t *testing.T) {
	t.Parallel()
	// Create a minimal logger that discards output
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		err := emitter.EmitEvent(ctx, NewDeckEvent(DeckCreated, "d1", nil))
		assert.NoError(t, err)
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		event := NewDeckEvent(DeckUpdated, "d1", nil)

		handler1 := &MockEventHandler{}
		handler2 := &MockEventHandler{}
		handler1.On("HandleEvent", ctx, event).Return(nil).Once()
		handler2.On("HandleEvent", ctx, event).Return(nil).Once()

		emitter.RegisterHandler(handler1)
		emitter.RegisterHandler(handler2)

		assert.NoError(t, emitter.EmitEvent(ctx, event))
		handler1.AssertExpectations(t)
		handler2.AssertExpectations(t)
	})

	t.Run("emit event with failing handler", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		event := NewDeckEvent(DeckDeleted, "d1", nil)

		failing := &MockEventHandler{}
		succeeding := &MockEventHandler{}
		failing.On("HandleEvent", ctx, event).Return(errors.New("handler error")).Once()
		succeeding.On("HandleEvent", ctx, event).Return(nil).Once()

		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(succeeding)

		err := emitter.EmitEvent(ctx, event)
		assert.EqualError(t, err, "handler error")
		// Both handlers should still have received the event
		failing.AssertExpectations(t)
		succeeding.AssertExpectations(t)
	})

	t.Run("unregistered handler stops receiving", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		handler := &MockEventHandler{}
		handler.On("HandleEvent", ctx, mock.Anything).Return(nil).Once()

		emitter.RegisterHandler(handler)
		assert.NoError(t, emitter.EmitEvent(ctx, NewDeckEvent(DeckUpdated, "d1", nil)))

		emitter.UnregisterHandler(handler)
		emitter.UnregisterHandler(&MockEventHandler{})
		assert.NoError(t, emitter.EmitEvent(ctx, NewDeckEvent(DeckUpdated, "d1", nil)))

		handler.AssertNumberOfCalls(t, "HandleEvent", 1)
	})
}
