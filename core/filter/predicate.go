package filter

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrInvalidState is returned when a constrained column has no extracted value
// for the row being evaluated.
var ErrInvalidState = errors.New("filter: invalid state")

// ValueSource yields the live extracted value of a cell, or nil when the cell
// has no value.
type ValueSource func(row, col int) *string

// Include reports whether row passes every constrained column in specs.
// Columns are visited in ascending order and evaluation stops at the first
// column that does not match. With no constrained column every row passes.
func Include(row int, specs Specs, values ValueSource) (bool, error) {
	return evaluate(row, specs.Constrained(), specs, values)
}

func evaluate(row int, columns []int, specs Specs, values ValueSource) (bool, error) {
	for _, col := range columns {
		value := values(row, col)
		if value == nil {
			return false, fmt.Errorf("%w: row %d column %d has no value to match %s", ErrInvalidState, row, col, specs[col])
		}
		if !specs[col].Matches(*value) {
			return false, nil
		}
	}
	return true, nil
}

// Predicate binds a snapshot of specs to a value source so the host table can
// call it once per candidate row during a single draw pass.
type Predicate struct {
	specs   Specs
	columns []int
	values  ValueSource
	logger  *zap.Logger
}

// NewPredicate creates a Predicate over a private copy of specs.
func NewPredicate(specs Specs, values ValueSource, logger *zap.Logger) *Predicate {
	if logger == nil {
		logger = zap.NewNop()
	}
	snapshot := specs.Clone()
	return &Predicate{
		specs:   snapshot,
		columns: snapshot.Constrained(),
		values:  values,
		logger:  logger,
	}
}

// Active reports whether any column is constrained.
func (p *Predicate) Active() bool {
	return len(p.columns) > 0
}

// Evaluate is Include over the bound snapshot.
func (p *Predicate) Evaluate(row int) (bool, error) {
	return evaluate(row, p.columns, p.specs, p.values)
}

// Include is the boolean form of Evaluate registered with the host table.
// Rows that fail evaluation with an error are logged and excluded.
func (p *Predicate) Include(row int) bool {
	ok, err := p.Evaluate(row)
	if err != nil {
		p.logger.Error("Filter evaluation failed, excluding row", zap.Int("row", row), zap.Error(err))
		return false
	}
	return ok
}
