// Package filter implements the per-column filter criteria and the row
// inclusion predicate evaluated by the host table on every draw.
package filter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/goccy/go-json"
)

// Kind identifies which variant a Spec holds.
type Kind int

// Supported spec kinds.
const (
	KindEmpty  Kind = iota // No constraint on the column.
	KindSingle             // A single substring.
	KindMany               // A set of substrings, any of which may match.
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindSingle:
		return "single"
	case KindMany:
		return "many"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Spec is the filter criterion entered for one column. It is one of Empty,
// Single(string) or Many(set of strings). The zero value is Empty.
type Spec struct {
	kind   Kind
	single string
	many   []string
}

// Empty returns a spec that imposes no constraint.
func Empty() Spec {
	return Spec{}
}

// Single returns a substring spec. An empty string yields Empty.
func Single(value string) Spec {
	if value == "" {
		return Empty()
	}
	return Spec{kind: KindSingle, single: value}
}

// Many returns a set spec as produced by a multi-select control. Duplicate
// entries are dropped, first occurrence wins. No values yields Empty.
func Many(values ...string) Spec {
	if len(values) == 0 {
		return Empty()
	}
	set := make([]string, 0, len(values))
	for _, v := range values {
		if !slices.Contains(set, v) {
			set = append(set, v)
		}
	}
	return Spec{kind: KindMany, many: set}
}

// Kind reports the variant held by s.
func (s Spec) Kind() Kind { return s.kind }

// IsEmpty reports whether s imposes no constraint.
func (s Spec) IsEmpty() bool { return s.kind == KindEmpty }

// Value returns the substring of a Single spec and "" for other kinds.
func (s Spec) Value() string { return s.single }

// Values returns a copy of the entries of a Many spec. A Single spec returns
// its one value; Empty returns nil.
func (s Spec) Values() []string {
	switch s.kind {
	case KindSingle:
		return []string{s.single}
	case KindMany:
		return slices.Clone(s.many)
	default:
		return nil
	}
}

// Matches reports whether value satisfies s. Both sides are lowercased with
// strings.ToLower before the substring test. An empty entry inside a Many set
// is a substring of every value and therefore matches.
func (s Spec) Matches(value string) bool {
	value = strings.ToLower(value)
	switch s.kind {
	case KindSingle:
		return strings.Contains(value, strings.ToLower(s.single))
	case KindMany:
		for _, entry := range s.many {
			if strings.Contains(value, strings.ToLower(entry)) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// Equal reports whether two specs hold the same variant and values.
func (s Spec) Equal(o Spec) bool {
	return s.kind == o.kind && s.single == o.single && slices.Equal(s.many, o.many)
}

func (s Spec) String() string {
	switch s.kind {
	case KindSingle:
		return fmt.Sprintf("Single(%q)", s.single)
	case KindMany:
		return fmt.Sprintf("Many(%q)", s.many)
	default:
		return "Empty"
	}
}

// MarshalJSON encodes Empty as null, Single as a string and Many as an array.
func (s Spec) MarshalJSON() ([]byte, error) {
	switch s.kind {
	case KindSingle:
		return json.Marshal(s.single)
	case KindMany:
		return json.Marshal(s.many)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON is the inverse of MarshalJSON. The same normalisation as the
// constructors applies, so "" and [] decode to Empty.
func (s *Spec) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding filter spec: %w", err)
	}
	switch v := raw.(type) {
	case nil:
		*s = Empty()
	case string:
		*s = Single(v)
	case []any:
		values := make([]string, 0, len(v))
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return fmt.Errorf("decoding filter spec: entry %d is %T, want string", i, item)
			}
			values = append(values, str)
		}
		*s = Many(values...)
	default:
		return fmt.Errorf("decoding filter spec: unsupported JSON type %T", raw)
	}
	return nil
}

// Specs maps a column index to its filter spec.
type Specs map[int]Spec

// Constrained returns the columns holding a non-empty spec in ascending order.
func (s Specs) Constrained() []int {
	cols := make([]int, 0, len(s))
	for col, spec := range s {
		if !spec.IsEmpty() {
			cols = append(cols, col)
		}
	}
	slices.Sort(cols)
	return cols
}

// Clone returns a copy of s without empty entries.
func (s Specs) Clone() Specs {
	out := make(Specs, len(s))
	for col, spec := range s {
		if spec.IsEmpty() {
			continue
		}
		spec.many = slices.Clone(spec.many)
		out[col] = spec
	}
	return out
}
