// Package store owns the durable deck collection. It defines the Slot
// abstraction over whatever medium holds the serialized collection and the
// DeckStore that loads it once and writes it back wholesale after every
// mutation. Concrete slots live under internal/platform.
package store
