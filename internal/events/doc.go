// Package events lets the deck mutation API announce committed changes to
// any number of views without knowing about them.
//
// The primary components are:
// - DeckEvent: a created, updated or deleted deck
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
