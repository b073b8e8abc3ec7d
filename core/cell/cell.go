// Package cell models the rendered content of table cells and extracts the
// live textual value the filter predicate compares against.
//
// Content is classified once, when the host renders a cell: plain text becomes
// StaticText, a cell that hosts an interactive control becomes a BoundControl,
// and a cell with nothing to show is Null. Extraction then asks the content for
// its value instead of inspecting markup on every call.
package cell

import (
	"strings"
	"sync"
)

// Cell is the rendered content of a single table cell.
type Cell interface {
	// Value returns the current textual value of the cell, or nil when the
	// cell has none.
	Value() *string
}

// Control is an interactive element embedded in a cell or a filter header.
type Control interface {
	// Value returns the control's current value, or nil when it has none.
	Value() *string
}

// StaticText is literal cell text, returned verbatim.
type StaticText string

// Value implements Cell.
func (t StaticText) Value() *string {
	s := string(t)
	return &s
}

// Null is a cell without content.
type Null struct{}

// Value implements Cell.
func (Null) Value() *string { return nil }

// BoundControl is a cell whose content is a control. Its value follows the
// control, not the data the row was rendered from.
type BoundControl struct {
	Control Control
}

// Bind wraps a control as cell content.
func Bind(c Control) BoundControl {
	return BoundControl{Control: c}
}

// Value implements Cell.
func (b BoundControl) Value() *string {
	if b.Control == nil {
		return nil
	}
	return b.Control.Value()
}

// TextInput is a free-text control.
type TextInput struct {
	mu    sync.RWMutex
	value string
}

// NewTextInput creates a text input holding value.
func NewTextInput(value string) *TextInput {
	return &TextInput{value: value}
}

// Set replaces the input's text.
func (in *TextInput) Set(value string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.value = value
}

// Value implements Control. A text input always has a value, possibly "".
func (in *TextInput) Value() *string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	v := in.value
	return &v
}

// Select is a single-choice control over a fixed option list.
type Select struct {
	mu       sync.RWMutex
	options  []string
	selected int
}

// NewSelect creates a select with the given options and nothing chosen.
func NewSelect(options ...string) *Select {
	return &Select{options: options, selected: -1}
}

// Options returns the option values in display order.
func (s *Select) Options() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.options))
	copy(out, s.options)
	return out
}

// Choose selects the first option equal to value. It reports false and leaves
// the selection unchanged when no option matches.
func (s *Select) Choose(value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, o := range s.options {
		if o == value {
			s.selected = i
			return true
		}
	}
	return false
}

// Reset clears the selection.
func (s *Select) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = -1
}

// Value implements Control. It is nil while nothing is selected.
func (s *Select) Value() *string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected < 0 {
		return nil
	}
	v := s.options[s.selected]
	return &v
}

// MultiSelect is a control allowing any subset of its options.
type MultiSelect struct {
	mu       sync.RWMutex
	options  []string
	selected map[int]struct{}
}

// NewMultiSelect creates a multi-select with the given options and nothing chosen.
func NewMultiSelect(options ...string) *MultiSelect {
	return &MultiSelect{options: options, selected: make(map[int]struct{})}
}

// Options returns the option values in display order.
func (m *MultiSelect) Options() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.options))
	copy(out, m.options)
	return out
}

// Choose replaces the selection with the options equal to values. Values
// without a matching option are ignored.
func (m *MultiSelect) Choose(values ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = make(map[int]struct{}, len(values))
	for _, v := range values {
		for i, o := range m.options {
			if o == v {
				m.selected[i] = struct{}{}
			}
		}
	}
}

// Reset clears the selection.
func (m *MultiSelect) Reset() {
	m.Choose()
}

// Selected returns the chosen option values in display order.
func (m *MultiSelect) Selected() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for i, o := range m.options {
		if _, ok := m.selected[i]; ok {
			out = append(out, o)
		}
	}
	return out
}

// Value implements Control. The selection is joined with commas, the way a
// multi-valued control stringifies, and is nil while nothing is selected.
func (m *MultiSelect) Value() *string {
	selected := m.Selected()
	if len(selected) == 0 {
		return nil
	}
	v := strings.Join(selected, ",")
	return &v
}
