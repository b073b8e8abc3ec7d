package cell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type grid [][]Cell

func (g grid) Rows() int              { return len(g) }
func (g grid) Columns() int           { return len(g[0]) }
func (g grid) Cell(row, col int) Cell { return g[row][col] }

func deref(values []*string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		if v != nil {
			out[i] = *v
		}
	}
	return out
}

func TestCells(t *testing.T) {
	t.Run("static text is verbatim", func(t *testing.T) {
		v := StaticText("  Mixed Case ").Value()
		require.NotNil(t, v)
		assert.Equal(t, "  Mixed Case ", *v)
	})

	t.Run("null has no value", func(t *testing.T) {
		assert.Nil(t, Null{}.Value())
		assert.Nil(t, BoundControl{}.Value())
	})

	t.Run("bound control follows edits", func(t *testing.T) {
		in := NewTextInput("draft")
		c := Bind(in)
		assert.Equal(t, "draft", *c.Value())
		in.Set("final")
		assert.Equal(t, "final", *c.Value())
	})
}

func TestControls(t *testing.T) {
	t.Run("select", func(t *testing.T) {
		s := NewSelect("", "a", "b")
		assert.Nil(t, s.Value())
		assert.True(t, s.Choose("b"))
		assert.Equal(t, "b", *s.Value())
		assert.False(t, s.Choose("zz"))
		assert.Equal(t, "b", *s.Value())
		s.Reset()
		assert.Nil(t, s.Value())
		assert.Equal(t, []string{"", "a", "b"}, s.Options())
	})

	t.Run("multi select", func(t *testing.T) {
		m := NewMultiSelect("Apple", "Banana", "Cherry")
		assert.Nil(t, m.Value())
		m.Choose("Cherry", "Apple", "Kiwi")
		assert.Equal(t, []string{"Apple", "Cherry"}, m.Selected())
		assert.Equal(t, "Apple,Cherry", *m.Value())
		m.Reset()
		assert.Empty(t, m.Selected())
	})
}

func TestExtractor(t *testing.T) {
	sel := NewSelect("open", "closed")
	sel.Choose("closed")
	g := grid{
		{StaticText("Apple"), Bind(sel)},
		{StaticText("Banana"), Null{}},
		{StaticText("Apple"), StaticText("open")},
	}
	e := NewExtractor(g)

	t.Run("single cell", func(t *testing.T) {
		assert.Equal(t, "closed", *e.Value(0, 1))
		assert.Nil(t, e.Value(1, 1))
		assert.Equal(t, []any{"Banana"}, deref(e.Extract(1, 0)))
	})

	t.Run("whole column", func(t *testing.T) {
		assert.Equal(t, []any{"closed", nil, "open"}, deref(e.Extract(All, 1)))
	})

	t.Run("whole row", func(t *testing.T) {
		assert.Equal(t, []any{"Apple", "closed"}, deref(e.Extract(0, All)))
	})

	t.Run("double wildcard yields nothing", func(t *testing.T) {
		assert.Nil(t, e.Extract(All, All))
	})

	t.Run("live control value", func(t *testing.T) {
		sel.Choose("open")
		assert.Equal(t, "open", *e.Value(0, 1))
	})

	t.Run("distinct values", func(t *testing.T) {
		assert.Equal(t, []string{"Apple", "Banana"}, e.Distinct(0))
		assert.Equal(t, []string{"open"}, e.Distinct(1))
	})

	t.Run("out of range panics", func(t *testing.T) {
		assert.Panics(t, func() { e.Value(3, 0) })
		assert.Panics(t, func() { e.Value(0, 2) })
		assert.Panics(t, func() { e.Value(-1, 0) })
	})
}
