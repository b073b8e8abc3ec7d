package cell

import (
	"fmt"
	"slices"
)

// Index addresses a row or a column. All selects every valid index in that
// dimension.
type Index int

// All is the wildcard index.
const All Index = -1

// Grid is the host table's view of its rendered cells.
type Grid interface {
	Rows() int
	Columns() int
	// Cell returns the rendered content at (row, col). Indices are in range.
	Cell(row, col int) Cell
}

// Extractor reads live cell values out of a Grid.
type Extractor struct {
	grid Grid
}

// NewExtractor creates an Extractor over grid.
func NewExtractor(grid Grid) *Extractor {
	return &Extractor{grid: grid}
}

// Value returns the value of the cell at (row, col): the control's current
// value for a BoundControl, the verbatim text for StaticText, nil for Null.
// Out-of-range indices are a programming error and panic.
func (e *Extractor) Value(row, col int) *string {
	if row < 0 || row >= e.grid.Rows() {
		panic(fmt.Sprintf("cell: row index %d out of range [0,%d)", row, e.grid.Rows()))
	}
	if col < 0 || col >= e.grid.Columns() {
		panic(fmt.Sprintf("cell: column index %d out of range [0,%d)", col, e.grid.Columns()))
	}
	c := e.grid.Cell(row, col)
	if c == nil {
		return nil
	}
	return c.Value()
}

// Extract returns the values addressed by row and col. With one wildcard it
// returns one value per index of that dimension, in order. With two concrete
// indices it returns a single value. Two wildcards address nothing and return
// nil.
func (e *Extractor) Extract(row, col Index) []*string {
	switch {
	case row == All && col == All:
		return nil
	case row == All:
		out := make([]*string, 0, e.grid.Rows())
		for r := 0; r < e.grid.Rows(); r++ {
			out = append(out, e.Extract(Index(r), col)...)
		}
		return out
	case col == All:
		out := make([]*string, 0, e.grid.Columns())
		for c := 0; c < e.grid.Columns(); c++ {
			out = append(out, e.Extract(row, Index(c))...)
		}
		return out
	default:
		return []*string{e.Value(int(row), int(col))}
	}
}

// Distinct returns the unique non-nil values of column col, sorted. It feeds
// the option lists of select filters.
func (e *Extractor) Distinct(col int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, v := range e.Extract(All, Index(col)) {
		if v == nil {
			continue
		}
		if _, ok := seen[*v]; ok {
			continue
		}
		seen[*v] = struct{}{}
		out = append(out, *v)
	}
	slices.Sort(out)
	return out
}
