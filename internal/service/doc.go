// Package service contains the deck and card use cases. It is the only
// write path into the deck collection: views call it, it validates input,
// mutates the collection through a DeckRepository and announces every change
// on an events.EventEmitter so that study sessions can refresh.
//
// The service never depends on a concrete storage backend. Any Slot wired
// into a store.DeckStore works unchanged.
//
// Errors are returned as *DeckServiceError values that wrap the sentinel
// describing the failure:
//
//   - store.ErrDeckNotFound and store.ErrCardNotFound when a target is missing
//   - domain.ErrValidation when names or card text are blank
//   - store.ErrNotLoaded when the collection has not been read yet
//
// In all of these cases nothing is changed and nothing is persisted.
package service
