package types

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vantage/internal/record"
)

// A toy wire format: "i:42", "s:hello", "~" for null, anything else untagged.

type testVariant int

const (
	vNull testVariant = iota
	vInt
	vString
)

func (v testVariant) String() string {
	return [...]string{"Null", "Int", "String"}[v]
}

var testSystem = NewSystem("test", func(w string) (testVariant, bool) {
	switch {
	case w == "~":
		return vNull, true
	case strings.HasPrefix(w, "i:"):
		return vInt, true
	case strings.HasPrefix(w, "s:"):
		return vString, true
	}
	return 0, false
})

var testNull = NullSentinel[string, testVariant]{
	Variant: vNull,
	Value:   "~",
	Is:      func(w string) bool { return w == "~" },
}

var testInt = Func(vInt,
	func(n int) string { return "i:" + strconv.Itoa(n) },
	func(w string) (int, bool) {
		s, ok := strings.CutPrefix(w, "i:")
		if !ok {
			return 0, false
		}
		n, err := strconv.Atoi(s)
		return n, err == nil
	})

var testString = Func(vString,
	func(s string) string { return "s:" + s },
	func(w string) (string, bool) { return strings.CutPrefix(w, "s:") })

// testUpper shares the String variant with testString but only decodes
// upper-case payloads.
var testUpper = Func(vString,
	func(s string) string { return "s:" + strings.ToUpper(s) },
	func(w string) (string, bool) {
		s, ok := strings.CutPrefix(w, "s:")
		if !ok || s != strings.ToUpper(s) {
			return "", false
		}
		return s, true
	})

func TestAny_RoundTrip(t *testing.T) {
	a := New(testInt, 42)

	v, tagged := a.Variant()
	assert.True(t, tagged)
	assert.Equal(t, vInt, v)
	assert.Equal(t, "i:42", a.Value())

	n, ok := TryGet(a, testInt)
	require.True(t, ok)
	assert.Equal(t, 42, n)
}

func TestAny_TagMismatchRejectedWithoutDecoding(t *testing.T) {
	decoded := false
	spy := Func(vString,
		func(s string) string { return s },
		func(w string) (string, bool) {
			decoded = true
			return w, true
		})

	_, ok := TryGet(New(testInt, 7), spy)

	assert.False(t, ok)
	assert.False(t, decoded)
}

func TestAny_SharedVariantDecoderDecides(t *testing.T) {
	a := New(testString, "hello")

	_, ok := TryGet(a, testUpper)
	assert.False(t, ok, "same variant, decoder rejects lower case")

	s, ok := TryGet(a, testString)
	require.True(t, ok)
	assert.Equal(t, "hello", s)
}

func TestAny_UntaggedFallsThroughToDecoder(t *testing.T) {
	a := testSystem.FromWire("raw")

	_, tagged := a.Variant()
	assert.False(t, tagged)

	raw := Func(vString, func(s string) string { return s }, func(w string) (string, bool) { return w, true })
	s, ok := TryGet(a, raw)
	require.True(t, ok)
	assert.Equal(t, "raw", s)

	_, ok = TryGet(a, testInt)
	assert.False(t, ok)
}

func TestSystem_FromWireSniffsVariant(t *testing.T) {
	a := testSystem.FromWire("s:x")
	v, tagged := a.Variant()
	require.True(t, tagged)
	assert.Equal(t, vString, v)
	assert.Equal(t, "test", testSystem.Name())
}

func TestNullable_NilRoundTrip(t *testing.T) {
	optInt := Nullable(testInt, testNull)

	a := New(optInt, nil)
	assert.Equal(t, "~", a.Value())

	got, ok := TryGet(a, optInt)
	require.True(t, ok)
	assert.Nil(t, got)

	n := 5
	got, ok = TryGet(New(optInt, &n), optInt)
	require.True(t, ok)
	require.NotNil(t, got)
	assert.Equal(t, 5, *got)
}

func TestNullable_SentinelFromRawWireDecodes(t *testing.T) {
	optString := Nullable(testString, testNull)

	a := testSystem.FromWire("~")
	got, ok := TryGet(a, optString)

	require.True(t, ok)
	assert.Nil(t, got)

	_, ok = TryGet(a, testString)
	assert.False(t, ok, "bare type must reject the null sentinel")
}

func TestNullable_SentinelNewCalledPerNil(t *testing.T) {
	calls := 0
	null := testNull
	null.New = func() string {
		calls++
		return "~"
	}
	optInt := Nullable(testInt, null)

	assert.Equal(t, "~", optInt.ToWire(nil))
	assert.Equal(t, "~", New(optInt, nil).Value())
	assert.Equal(t, 2, calls)

	n := 1
	assert.Equal(t, "i:1", optInt.ToWire(&n))
	assert.Equal(t, 2, calls)
}

func TestNullable_RejectsOtherVariants(t *testing.T) {
	optInt := Nullable(testInt, testNull)
	_, ok := TryGet(New(testString, "x"), optInt)
	assert.False(t, ok)
}

type account struct {
	Name    string
	Balance int
	Manager *string
}

var accountSchema = NewSchema(testSystem,
	Field("name", testString,
		func(a account) string { return a.Name },
		func(a *account, v string) { a.Name = v }),
	Field("balance", testInt,
		func(a account) int { return a.Balance },
		func(a *account, v int) { a.Balance = v }),
	Field("manager", Nullable(testString, testNull),
		func(a account) *string { return a.Manager },
		func(a *account, v *string) { a.Manager = v }),
)

func TestSchema_RecordRoundTrip(t *testing.T) {
	in := account{Name: "ops", Balance: 120}

	rec := accountSchema.ToRecord(in)
	assert.Equal(t, []string{"name", "balance", "manager"}, rec.Keys())

	out, err := accountSchema.FromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSchema_WireRecordRoundTrip(t *testing.T) {
	boss := "kim"
	in := account{Name: "ops", Balance: -3, Manager: &boss}

	wire := accountSchema.ToWireRecord(in)
	balance, _ := wire.Get("balance")
	assert.Equal(t, "i:-3", balance)

	out, err := accountSchema.FromWireRecord(wire)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSchema_MissingField(t *testing.T) {
	wire := record.FromPairs(record.P("name", "s:ops"), record.P("manager", "~"))

	_, err := accountSchema.FromWireRecord(wire)

	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "balance", fe.Field)
	assert.Equal(t, "missing", fe.Reason)
}

func TestSchema_WrongVariant(t *testing.T) {
	wire := record.FromPairs(
		record.P("name", "s:ops"),
		record.P("balance", "s:lots"),
		record.P("manager", "~"),
	)

	_, err := accountSchema.FromWireRecord(wire)

	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "balance", fe.Field)
	assert.Contains(t, err.Error(), "Int")
}

func TestStripRecord(t *testing.T) {
	r := record.FromPairs(
		record.P("a", New(testInt, 1)),
		record.P("b", New(testString, "x")),
	)

	stripped := StripRecord(r)

	assert.Equal(t, []string{"a", "b"}, stripped.Keys())
	b, _ := stripped.Get("b")
	assert.Equal(t, "s:x", b)
}
