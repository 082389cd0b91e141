// Package domain contains the core entities of flashflow: decks and the
// flashcards they own. It is independent of how decks are stored or studied.
package domain
