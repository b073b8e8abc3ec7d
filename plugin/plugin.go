// Package plugin attaches per-column filtering to a host table. It builds the
// filter header row, registers the inclusion predicate with the table, turns
// control input into filter specs and, when the table saves state, persists
// and restores them.
package plugin

import (
	"context"
	"errors"
	"fmt"

	"github.com/asaidimu/go-colfilter/core/cell"
	"github.com/asaidimu/go-colfilter/core/filter"
	"github.com/asaidimu/go-colfilter/core/persistence"
	"github.com/asaidimu/go-colfilter/core/state"
	"github.com/asaidimu/go-colfilter/table"
	"go.uber.org/zap"
)

// Errors returned by Filters.
var (
	ErrColumnRange   = errors.New("plugin: column out of range")
	ErrNotSearchable = errors.New("plugin: column is not searchable")
)

// Localization holds the labels shown by select controls.
type Localization struct {
	DeselectAllText  string `yaml:"deselectAllText" json:"deselectAllText"`
	DoneButtonText   string `yaml:"doneButtonText" json:"doneButtonText"`
	NoneResultsText  string `yaml:"noneResultsText" json:"noneResultsText"`
	NoneSelectedText string `yaml:"noneSelectedText" json:"noneSelectedText"`
	SelectAllText    string `yaml:"selectAllText" json:"selectAllText"`
}

// DefaultLocalization returns the English labels.
func DefaultLocalization() Localization {
	return Localization{
		DeselectAllText:  "Deselect All",
		DoneButtonText:   "Done",
		NoneResultsText:  "No results matched {0}",
		NoneSelectedText: "Nothing selected",
		SelectAllText:    "Select All",
	}
}

// merge fills the blank labels of l from d.
func (l Localization) merge(d Localization) Localization {
	if l.DeselectAllText == "" {
		l.DeselectAllText = d.DeselectAllText
	}
	if l.DoneButtonText == "" {
		l.DoneButtonText = d.DoneButtonText
	}
	if l.NoneResultsText == "" {
		l.NoneResultsText = d.NoneResultsText
	}
	if l.NoneSelectedText == "" {
		l.NoneSelectedText = d.NoneSelectedText
	}
	if l.SelectAllText == "" {
		l.SelectAllText = d.SelectAllText
	}
	return l
}

// Options configures FiltersOn.
type Options struct {
	// Store receives filter state when the table has StateSave enabled. Nil
	// disables persistence.
	Store persistence.Store
	// Localization overrides the default select labels. Blank labels keep
	// their defaults.
	Localization *Localization
	Logger       *zap.Logger
}

// Filters is the filtering attached to one table.
type Filters struct {
	table     *table.Table
	state     *state.FilterState
	extractor *cell.Extractor
	header    []HeaderControl
	store     persistence.Store
	labels    Localization
	logger    *zap.Logger
}

// FiltersOn attaches filtering to t: it builds the header row, restores saved
// state when t saves state and a store is configured, and registers the
// inclusion predicate with t.
func FiltersOn(ctx context.Context, t *table.Table, options *Options) (*Filters, error) {
	if options == nil {
		options = &Options{}
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	labels := DefaultLocalization()
	if options.Localization != nil {
		labels = options.Localization.merge(labels)
	}

	st, err := state.New(t.ID(), logger)
	if err != nil {
		return nil, fmt.Errorf("creating filter state: %w", err)
	}

	extractor := cell.NewExtractor(t)
	f := &Filters{
		table:     t,
		state:     st,
		extractor: extractor,
		header:    buildHeader(t, extractor),
		labels:    labels,
		logger:    logger.With(zap.String("table", st.ID())),
	}
	if t.StateSave() {
		f.store = options.Store
	}

	if f.store != nil {
		f.logger.Info("State saving enabled, restoring filters")
		restored, err := st.Restore(ctx, f.store)
		if err != nil {
			return nil, err
		}
		if restored {
			for _, col := range st.Retain(f.searchable) {
				f.logger.Warn("Dropping restored filter of unknown or unsearchable column", zap.Int("column", col))
			}
			for col, spec := range st.Snapshot() {
				f.header[col].show(spec)
			}
		}
	}

	t.Search(f.searchHook)
	return f, nil
}

// searchHook hands the table a predicate over one snapshot per draw.
func (f *Filters) searchHook() table.RowFilter {
	return filter.NewPredicate(f.state.Snapshot(), f.extractor.Value, f.logger).Include
}

// Include reports whether row passes the current filters.
func (f *Filters) Include(row int) bool {
	return f.searchHook()(row)
}

// State returns the filter state of the table.
func (f *Filters) State() *state.FilterState {
	return f.state
}

// Header returns the filter header row.
func (f *Filters) Header() []HeaderControl {
	out := make([]HeaderControl, len(f.header))
	copy(out, f.header)
	return out
}

// Localization returns the select labels in effect.
func (f *Filters) Localization() Localization {
	return f.labels
}

// searchable reports whether col has a filter control.
func (f *Filters) searchable(col int) bool {
	_, err := f.control(col)
	return err == nil
}

// control returns the header control of col, or an error when col does not
// exist or is not searchable.
func (f *Filters) control(col int) (HeaderControl, error) {
	if col < 0 || col >= len(f.header) {
		return HeaderControl{}, fmt.Errorf("%w: %d", ErrColumnRange, col)
	}
	hc := f.header[col]
	if hc.Kind == ControlNone {
		return HeaderControl{}, fmt.Errorf("%w: %d", ErrNotSearchable, col)
	}
	return hc, nil
}

// SetColumnFilter constrains col by spec without touching the header controls
// or redrawing.
func (f *Filters) SetColumnFilter(col int, spec filter.Spec) error {
	if _, err := f.control(col); err != nil {
		return err
	}
	return f.state.SetColumnFilter(col, spec)
}

// OnInput handles a change of the header control of col: it records the
// control's values as the column's spec, saves state and redraws the table.
// It returns the rows displayed after the redraw.
func (f *Filters) OnInput(ctx context.Context, col int, values ...string) ([]int, error) {
	hc, err := f.control(col)
	if err != nil {
		return nil, err
	}

	spec := hc.specFor(values)
	hc.show(spec)
	if err := f.state.SetColumnFilter(col, spec); err != nil {
		return nil, err
	}
	if err := f.save(ctx); err != nil {
		return nil, err
	}
	return f.table.Draw(), nil
}

// Clear resets every header control and filter, saves state and redraws.
func (f *Filters) Clear(ctx context.Context) ([]int, error) {
	f.logger.Info("Clearing filters")
	for _, hc := range f.header {
		hc.show(filter.Empty())
	}
	f.state.ClearAllFilters()
	if err := f.save(ctx); err != nil {
		return nil, err
	}
	return f.table.Draw(), nil
}

func (f *Filters) save(ctx context.Context) error {
	if f.store == nil {
		return nil
	}
	return f.state.Save(ctx, f.store)
}
