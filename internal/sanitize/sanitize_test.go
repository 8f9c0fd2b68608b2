package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redleaf-labs/hopper/internal/model"
)

func TestCleanCoercesLeavesToStrings(t *testing.T) {
	got := Clean(map[string]any{
		"int":    1,
		"float":  2.5,
		"bool":   true,
		"string": "kept",
	})

	require.IsType(t, map[string]any{}, got)
	m := got.(map[string]any)
	assert.Equal(t, "1", m["int"])
	assert.Equal(t, "2.5", m["float"])
	assert.Equal(t, "true", m["bool"])
	assert.Equal(t, "kept", m["string"])
}

func TestCleanPreservesShape(t *testing.T) {
	got := Clean(map[string]any{
		"user": map[string]any{
			"id":    7,
			"roles": []any{"admin", 2, []any{"nested"}},
		},
		"empty": map[string]any{},
	})

	want := map[string]any{
		"user": map[string]any{
			"id":    "7",
			"roles": []any{"admin", "2", []any{"nested"}},
		},
		"empty": map[string]any{},
	}
	assert.Equal(t, want, got)
}

func TestCleanSelfReferencingMap(t *testing.T) {
	m := map[string]any{"name": "outer"}
	m["self"] = m

	got := Clean(m)

	require.IsType(t, map[string]any{}, got)
	out := got.(map[string]any)
	assert.Equal(t, "outer", out["name"])
	assert.Equal(t, model.RecursionHalted, out["self"])
}

func TestCleanIndirectCycle(t *testing.T) {
	a := map[string]any{}
	b := map[string]any{"a": a}
	a["b"] = b

	got := Clean(a).(map[string]any)

	inner := got["b"].(map[string]any)
	assert.Equal(t, model.RecursionHalted, inner["a"])
}

func TestCleanSelfReferencingSlice(t *testing.T) {
	s := make([]any, 2)
	s[0] = "first"
	s[1] = s

	got := Clean(s)

	require.IsType(t, []any{}, got)
	out := got.([]any)
	assert.Equal(t, "first", out[0])
	assert.Equal(t, model.RecursionHalted, out[1])
}

func TestCleanSharedSubtreeIsNotACycle(t *testing.T) {
	shared := map[string]any{"k": "v"}
	got := Clean(map[string]any{"a": shared, "b": shared}).(map[string]any)

	want := map[string]any{"k": "v"}
	assert.Equal(t, want, got["a"])
	assert.Equal(t, want, got["b"])
}

func TestCleanIdempotent(t *testing.T) {
	in := map[string]any{
		"id":    41,
		"tags":  []any{"x", 9},
		"inner": map[string]any{"deep": false},
	}

	once := Clean(in)
	twice := Clean(once)

	assert.Equal(t, once, twice)
}

func TestCleanOpaqueValues(t *testing.T) {
	type account struct {
		Name string
	}
	got := Clean(map[string]any{
		"struct":  account{Name: "x"},
		"pointer": &account{Name: "y"},
		"chan":    make(chan int),
	}).(map[string]any)

	assert.Equal(t, "{x}", got["struct"])
	assert.Equal(t, "{y}", got["pointer"])
	assert.IsType(t, "", got["chan"])
}

func TestCleanStructLeavesAreShallow(t *testing.T) {
	type envelope struct {
		Label string
		Meta  map[string]any
	}
	got := Clean(map[string]any{
		"e": envelope{Label: "x", Meta: map[string]any{"k": "v"}},
	}).(map[string]any)

	assert.Equal(t, "{x map[string]interface {}}", got["e"])
}

// A cyclic container hidden inside a struct leaf never reaches fmt's
// recursive formatter; the traversal must terminate regardless of what a
// caller buries in an opaque value.
func TestCleanCycleInsideStructLeafTerminates(t *testing.T) {
	type envelope struct {
		Meta map[string]any
	}
	m := map[string]any{}
	m["self"] = m

	got := Clean(map[string]any{"e": envelope{Meta: m}}).(map[string]any)

	assert.Equal(t, "{map[string]interface {}}", got["e"])
}

func TestCleanStructStringerUsesStringForm(t *testing.T) {
	got := Clean(map[string]any{"when": stamp{hour: 12}}).(map[string]any)

	assert.Equal(t, "noon", got["when"])
}

type stamp struct{ hour int }

func (stamp) String() string { return "noon" }

func TestCleanOtherMapAndSliceKinds(t *testing.T) {
	got := Clean(map[string]any{
		"typed_map":   map[int]string{3: "three"},
		"typed_slice": []int{1, 2},
		"bytes":       []byte("raw"),
	}).(map[string]any)

	assert.Equal(t, map[string]any{"3": "three"}, got["typed_map"])
	assert.Equal(t, []any{"1", "2"}, got["typed_slice"])
	assert.Equal(t, "raw", got["bytes"])
}

func TestCleanNilIsNil(t *testing.T) {
	assert.Nil(t, Clean(nil))
	assert.Nil(t, CleanMap(nil))
}

func TestCleanMapKeepsMapShape(t *testing.T) {
	got := CleanMap(map[string]any{"n": 5})
	assert.Equal(t, map[string]any{"n": "5"}, got)
}

func TestCleanDoesNotMutateInput(t *testing.T) {
	in := map[string]any{"n": 5, "inner": map[string]any{"x": 1}}
	Clean(in)

	assert.Equal(t, 5, in["n"])
	assert.Equal(t, 1, in["inner"].(map[string]any)["x"])
}
