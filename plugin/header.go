package plugin

import (
	"strings"

	"github.com/asaidimu/go-colfilter/core/cell"
	"github.com/asaidimu/go-colfilter/core/filter"
	"github.com/asaidimu/go-colfilter/table"
)

// ControlKind is the kind of control placed in a filter header cell.
type ControlKind string

// Header control kinds. ControlNone marks a column that is not searchable.
const (
	ControlNone        ControlKind = "none"
	ControlText        ControlKind = "text"
	ControlSelect      ControlKind = "select"
	ControlMultiSelect ControlKind = "multiselect"
)

// HeaderControl is one cell of the filter header row.
type HeaderControl struct {
	Column  int
	Kind    ControlKind
	Options []string     // Option values of select kinds, in display order.
	Control cell.Control // Nil for ControlNone.
}

// buildHeader creates one header control per column of t. Select options are
// the distinct sorted values of the column, preceded by an empty option for
// single selects.
func buildHeader(t *table.Table, extractor *cell.Extractor) []HeaderControl {
	defs := t.ColumnDefs()
	header := make([]HeaderControl, len(defs))
	for col, def := range defs {
		hc := HeaderControl{Column: col, Kind: ControlNone}
		if def.Searchable {
			switch def.SearchType {
			case table.SearchSelect:
				hc.Kind = ControlSelect
				hc.Options = append([]string{""}, extractor.Distinct(col)...)
				hc.Control = cell.NewSelect(hc.Options...)
			case table.SearchMultiSelect:
				hc.Kind = ControlMultiSelect
				hc.Options = extractor.Distinct(col)
				hc.Control = cell.NewMultiSelect(hc.Options...)
			default:
				hc.Kind = ControlText
				hc.Control = cell.NewTextInput("")
			}
		}
		header[col] = hc
	}
	return header
}

// specFor turns raw control output into a spec. Multi-selects always yield a
// set; other controls yield a single string, or a set when several values
// arrive at once.
func (hc HeaderControl) specFor(values []string) filter.Spec {
	if hc.Kind == ControlMultiSelect || len(values) > 1 {
		return filter.Many(values...)
	}
	if len(values) == 0 {
		return filter.Empty()
	}
	return filter.Single(values[0])
}

// show puts spec into the control so it displays the active filter.
func (hc HeaderControl) show(spec filter.Spec) {
	switch c := hc.Control.(type) {
	case *cell.TextInput:
		c.Set(strings.Join(spec.Values(), ","))
	case *cell.Select:
		if spec.Kind() != filter.KindSingle || !c.Choose(spec.Value()) {
			c.Reset()
		}
	case *cell.MultiSelect:
		c.Choose(spec.Values()...)
	}
}
