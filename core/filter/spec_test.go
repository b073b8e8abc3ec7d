package filter

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecConstructors(t *testing.T) {
	t.Run("Single normalises empty string", func(t *testing.T) {
		assert.True(t, Single("").IsEmpty())
		assert.Equal(t, KindSingle, Single("x").Kind())
		assert.Equal(t, "x", Single("x").Value())
	})

	t.Run("Many normalises empty set", func(t *testing.T) {
		assert.True(t, Many().IsEmpty())
		assert.Equal(t, KindMany, Many("").Kind())
	})

	t.Run("Many drops duplicates keeping order", func(t *testing.T) {
		s := Many("red", "blue", "red")
		assert.Equal(t, []string{"red", "blue"}, s.Values())
	})

	t.Run("Values returns a copy", func(t *testing.T) {
		s := Many("a", "b")
		v := s.Values()
		v[0] = "z"
		assert.Equal(t, []string{"a", "b"}, s.Values())
	})

	t.Run("zero value is Empty", func(t *testing.T) {
		var s Spec
		assert.True(t, s.IsEmpty())
		assert.True(t, s.Equal(Empty()))
		assert.Equal(t, "Empty", s.String())
	})
}

func TestSpecMatches(t *testing.T) {
	tests := []struct {
		name  string
		spec  Spec
		value string
		want  bool
	}{
		{"empty matches anything", Empty(), "whatever", true},
		{"substring", Single("ed"), "red", true},
		{"case folded filter", Single("ABC"), "xabcx", true},
		{"case folded value", Single("abc"), "XABCX", true},
		{"no match", Single("green"), "red", false},
		{"set any entry", Many("red", "blue"), "red apple", true},
		{"set no entry", Many("green", "blue"), "red apple", false},
		{"set empty entry matches", Many("", "green"), "red", true},
		{"set case folded", Many("APPLE"), "Red Apple", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.spec.Matches(tt.value))
		})
	}
}

func TestSpecJSON(t *testing.T) {
	specs := Specs{0: Single("an"), 2: Many("Apple", "Cherry")}

	data, err := json.Marshal(specs)
	require.NoError(t, err)
	assert.JSONEq(t, `{"0":"an","2":["Apple","Cherry"]}`, string(data))

	var decoded Specs
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded[0].Equal(specs[0]))
	assert.True(t, decoded[2].Equal(specs[2]))

	t.Run("null and empty decode to Empty", func(t *testing.T) {
		var out Specs
		require.NoError(t, json.Unmarshal([]byte(`{"0":null,"1":"","2":[]}`), &out))
		assert.Empty(t, out.Constrained())
	})

	t.Run("rejects non-string entries", func(t *testing.T) {
		var s Spec
		assert.Error(t, json.Unmarshal([]byte(`["a",1]`), &s))
		assert.Error(t, json.Unmarshal([]byte(`42`), &s))
	})
}

func TestSpecsConstrainedAndClone(t *testing.T) {
	specs := Specs{3: Single("x"), 1: Many("a"), 0: Empty()}
	assert.Equal(t, []int{1, 3}, specs.Constrained())

	clone := specs.Clone()
	assert.Len(t, clone, 2)
	clone[5] = Single("y")
	assert.NotContains(t, specs, 5)
}
