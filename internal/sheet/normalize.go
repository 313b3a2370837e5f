package sheet

import (
	"strconv"
	"strings"
)

// CellKind discriminates the three cases every downstream consumer matches
// on. Raw worksheet values collapse into exactly these.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

// Cell is a normalized worksheet cell.
type Cell struct {
	Kind   CellKind
	Text   string  // set for CellText
	Number float64 // set for CellNumber
}

// IsEmpty reports whether the cell normalized to empty.
func (c Cell) IsEmpty() bool { return c.Kind == CellEmpty }

// Normalize converts one raw cell value into a Cell. Whitespace is
// stripped; a value that parses as a float once thousands separators and a
// trailing percent sign are removed becomes a number (the percent magnitude
// is kept as displayed; the metric extractor owns the /100 conversion).
// Anything else stays text. Normalize never fails.
func Normalize(raw string) Cell {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Cell{Kind: CellEmpty}
	}

	numeric := strings.ReplaceAll(s, ",", "")
	numeric = strings.TrimSuffix(numeric, "%")
	numeric = strings.TrimSpace(numeric)
	if numeric != "" {
		if v, err := strconv.ParseFloat(numeric, 64); err == nil {
			return Cell{Kind: CellNumber, Number: v}
		}
	}

	return Cell{Kind: CellText, Text: s}
}

// NormalizeRow normalizes a raw row and pads it with empty cells up to
// width, so short rows never break positional classification.
func NormalizeRow(raw []string, width int) []Cell {
	n := len(raw)
	if width > n {
		n = width
	}
	cells := make([]Cell, n)
	for i, v := range raw {
		cells[i] = Normalize(v)
	}
	return cells
}
