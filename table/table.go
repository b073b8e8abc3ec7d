// Package table is a small in-memory host table: it owns column definitions
// and rendered rows, runs registered search hooks on every draw, and reports
// which rows are displayed. Sorting and paging are left to the caller.
package table

import (
	"fmt"
	"sync"

	"github.com/asaidimu/go-colfilter/core/cell"
	"go.uber.org/zap"
)

// SearchType selects the header control built for a searchable column.
type SearchType string

// Supported search types.
const (
	SearchText        SearchType = "text"
	SearchSelect      SearchType = "select"
	SearchMultiSelect SearchType = "multiselect"
)

// ColumnDef describes one column.
type ColumnDef struct {
	Title      string
	Searchable bool
	SearchType SearchType
}

// RowFilter decides whether a row is displayed during one draw pass.
type RowFilter func(row int) bool

// SearchHook is called once at the start of every draw and returns the row
// filter for that pass.
type SearchHook func() RowFilter

// Options configures a Table.
type Options struct {
	// ID identifies the table instance, for example in a state store.
	ID string
	// StateSave enables saving and restoring of filter state.
	StateSave bool
}

// Table is the host widget. It satisfies cell.Grid.
type Table struct {
	mu      sync.RWMutex
	options Options
	columns []ColumnDef
	rows    [][]cell.Cell
	hooks   []SearchHook
	drawn   []int
	logger  *zap.Logger
}

var _ cell.Grid = (*Table)(nil)

// New creates a table with the given columns.
func New(columns []ColumnDef, options Options, logger *zap.Logger) *Table {
	if logger == nil {
		logger = zap.NewNop()
	}
	cols := make([]ColumnDef, len(columns))
	for i, c := range columns {
		if c.SearchType == "" {
			c.SearchType = SearchText
		}
		cols[i] = c
	}
	return &Table{
		options: options,
		columns: cols,
		logger:  logger,
	}
}

// ID returns the table instance id.
func (t *Table) ID() string { return t.options.ID }

// StateSave reports whether filter state is saved for this table.
func (t *Table) StateSave() bool { return t.options.StateSave }

// ColumnDefs returns a copy of the column definitions.
func (t *Table) ColumnDefs() []ColumnDef {
	out := make([]ColumnDef, len(t.columns))
	copy(out, t.columns)
	return out
}

// AddRow appends a rendered row. It must have one cell per column.
func (t *Table) AddRow(cells ...cell.Cell) error {
	if len(cells) != len(t.columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(cells), len(t.columns))
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, cells)
	return nil
}

// AddTextRow appends a row of StaticText cells.
func (t *Table) AddTextRow(values ...string) error {
	cells := make([]cell.Cell, len(values))
	for i, v := range values {
		cells[i] = cell.StaticText(v)
	}
	return t.AddRow(cells...)
}

// Rows implements cell.Grid.
func (t *Table) Rows() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Columns implements cell.Grid.
func (t *Table) Columns() int {
	return len(t.columns)
}

// Cell implements cell.Grid.
func (t *Table) Cell(row, col int) cell.Cell {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rows[row][col]
}

// Search registers a hook consulted on every draw. A row is displayed only if
// every hook's filter accepts it.
func (t *Table) Search(hook SearchHook) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hooks = append(t.hooks, hook)
}

// Draw runs one refresh pass and returns the displayed row indices in order.
func (t *Table) Draw() []int {
	t.mu.RLock()
	hooks := make([]SearchHook, len(t.hooks))
	copy(hooks, t.hooks)
	n := len(t.rows)
	t.mu.RUnlock()

	filters := make([]RowFilter, 0, len(hooks))
	for _, h := range hooks {
		filters = append(filters, h())
	}

	drawn := make([]int, 0, n)
rows:
	for row := 0; row < n; row++ {
		for _, f := range filters {
			if !f(row) {
				continue rows
			}
		}
		drawn = append(drawn, row)
	}

	t.mu.Lock()
	t.drawn = drawn
	t.mu.Unlock()

	t.logger.Debug("Table drawn", zap.String("table", t.options.ID), zap.Int("rows", n), zap.Int("displayed", len(drawn)))
	return drawn
}

// Displayed returns the row indices of the last draw.
func (t *Table) Displayed() []int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]int, len(t.drawn))
	copy(out, t.drawn)
	return out
}
