// Package csvimport turns CSV text into flashcards for a new deck.
//
// The first non-blank row is the header. It must name a "front" and a "back"
// column, in any position and any letter case. Every later non-blank row
// yields one card built from the values at those positions, trimmed and with
// literal double quotes removed.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/phrazzld/flashflow/internal/domain"
)

// Column names looked up in the header row.
const (
	FrontColumn = "front"
	BackColumn  = "back"
)

var (
	// ErrInvalidCSV is wrapped by every import validation error.
	ErrInvalidCSV = errors.New("invalid CSV")

	// ErrMissingRows is returned when there is no header or no data row.
	ErrMissingRows = fmt.Errorf("%w: file must have a header row and at least one data row", ErrInvalidCSV)

	// ErrMissingColumns is returned when the header lacks front or back.
	ErrMissingColumns = fmt.Errorf("%w: header must contain 'front' and 'back' columns", ErrInvalidCSV)

	// ErrNoCards is returned when no row produced a usable card.
	ErrNoCards = fmt.Errorf("%w: no valid flashcards found", ErrInvalidCSV)
)

// SkippedRow is a data row that could not become a card.
type SkippedRow struct {
	// Line is the 1-based line where the row starts.
	Line   int
	Reason string
}

// Import is the result of a successful parse.
type Import struct {
	Cards       []domain.Flashcard
	SkippedRows []SkippedRow
}

// Parse reads CSV text from r. Cards have no ids; the deck service assigns
// them. Rows whose front or back is empty after cleaning are reported in
// SkippedRows instead of being imported with blank content.
func Parse(r io.Reader) (*Import, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingRows
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}

	frontIdx, backIdx := columnIndex(header, FrontColumn), columnIndex(header, BackColumn)
	if frontIdx < 0 || backIdx < 0 {
		return nil, ErrMissingColumns
	}

	result := &Import{Cards: []domain.Flashcard{}}
	rows := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
		}
		if blankRecord(record) {
			continue
		}
		rows++

		line, _ := reader.FieldPos(0)
		front, back := field(record, frontIdx), field(record, backIdx)
		switch {
		case front == "":
			result.SkippedRows = append(result.SkippedRows, SkippedRow{Line: line, Reason: "front is empty"})
		case back == "":
			result.SkippedRows = append(result.SkippedRows, SkippedRow{Line: line, Reason: "back is empty"})
		default:
			result.Cards = append(result.Cards, domain.Flashcard{Front: front, Back: back})
		}
	}

	if rows == 0 {
		return nil, ErrMissingRows
	}
	if len(result.Cards) == 0 {
		return nil, ErrNoCards
	}
	return result, nil
}

// ParseString is Parse over an in-memory string.
func ParseString(text string) (*Import, error) {
	return Parse(strings.NewReader(text))
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(clean(strings.TrimPrefix(h, "\ufeff")), name) {
			return i
		}
	}
	return -1
}

// field returns the cleaned value at i, or "" when the row is too short.
func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return clean(record[i])
}

func clean(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.TrimSpace(s), `"`, ""))
}

func blankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
