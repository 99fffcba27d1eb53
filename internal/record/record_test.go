package record

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordInsertionOrder(t *testing.T) {
	r := New[int]()
	r.Set("zebra", 1)
	r.Set("apple", 2)
	r.Set("mango", 3)

	assert.Equal(t, []string{"zebra", "apple", "mango"}, r.Keys())
	assert.Equal(t, 3, r.Len())
}

func TestRecordOverwriteKeepsPosition(t *testing.T) {
	r := FromPairs(P("a", 1), P("b", 2), P("c", 3))

	prev, existed := r.Set("b", 20)

	assert.True(t, existed)
	assert.Equal(t, 2, prev)
	assert.Equal(t, []string{"a", "b", "c"}, r.Keys())
	v, ok := r.Get("b")
	require.True(t, ok)
	assert.Equal(t, 20, v)
}

func TestRecordDeletePreservesOrder(t *testing.T) {
	r := FromPairs(P("a", 1), P("b", 2), P("c", 3), P("d", 4))

	v, ok := r.Delete("b")
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, []string{"a", "c", "d"}, r.Keys())
	assert.False(t, r.Has("b"))

	_, ok = r.Delete("missing")
	assert.False(t, ok)
}

func TestRecordZeroValue(t *testing.T) {
	var r Record[string]
	assert.Equal(t, 0, r.Len())
	_, ok := r.Get("x")
	assert.False(t, ok)

	r.Set("x", "y")
	assert.Equal(t, []string{"x"}, r.Keys())
}

func TestRecordAllStopsEarly(t *testing.T) {
	r := FromPairs(P("a", 1), P("b", 2), P("c", 3))

	var seen []string
	for k := range r.All() {
		seen = append(seen, k)
		if k == "b" {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestRecordMergePatch(t *testing.T) {
	base := FromPairs(P("name", "sue"), P("age", "30"))
	patch := FromPairs(P("city", "Oslo"), P("age", "31"))

	base.Merge(patch)

	assert.Equal(t, []string{"name", "age", "city"}, base.Keys())
	age, _ := base.Get("age")
	assert.Equal(t, "31", age)
}

func TestRecordCloneIsIndependent(t *testing.T) {
	r := FromPairs(P("a", 1))
	c := r.Clone()
	c.Set("b", 2)

	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 2, c.Len())
}

func TestMapValues(t *testing.T) {
	r := FromPairs(P("a", 1), P("b", 2))
	doubled := MapValues(r, func(v int) int { return v * 2 })

	assert.Equal(t, []string{"a", "b"}, doubled.Keys())
	b, _ := doubled.Get("b")
	assert.Equal(t, 4, b)
}

func TestTryMapValuesReportsFailingField(t *testing.T) {
	r := FromPairs(P("a", 1), P("b", -1), P("c", 3))

	_, field, ok := TryMapValues(r, func(v int) (uint, bool) {
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	})

	assert.False(t, ok)
	assert.Equal(t, "b", field)
}

func TestEqual(t *testing.T) {
	eq := func(a, b int) bool { return a == b }

	assert.True(t, Equal(FromPairs(P("a", 1), P("b", 2)), FromPairs(P("a", 1), P("b", 2)), eq))
	assert.False(t, Equal(FromPairs(P("a", 1), P("b", 2)), FromPairs(P("b", 2), P("a", 1)), eq))
	assert.False(t, Equal(FromPairs(P("a", 1)), FromPairs(P("a", 2)), eq))
	assert.True(t, Equal[int](nil, New[int](), eq))
}

func TestRecordJSONRoundTripKeepsOrder(t *testing.T) {
	input := `{"zeta":1,"alpha":"two","mid":[3]}`

	var r Record[json.RawMessage]
	require.NoError(t, json.Unmarshal([]byte(input), &r))
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, r.Keys())

	out, err := json.Marshal(&r)
	require.NoError(t, err)
	assert.Equal(t, input, string(out))
}

func TestRecordUnmarshalRejectsNonObject(t *testing.T) {
	var r Record[int]
	err := json.Unmarshal([]byte(`[1,2]`), &r)
	require.Error(t, err)
}
