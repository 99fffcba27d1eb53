package jsonwire

import (
	"math"
	"net/url"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vantage/internal/types"
)

func TestDecimal_RoundTripIsLossless(t *testing.T) {
	d, _, err := apd.NewFromString("12345678901234567890.000000000001")
	require.NoError(t, err)

	a := types.New(Decimal, d)
	assert.Equal(t, `{"decimal":"12345678901234567890.000000000001"}`, a.Value().String())

	// Through raw JSON and back.
	raw, err := Parse([]byte(a.Value().String()))
	require.NoError(t, err)
	got, ok := types.TryGet(FromWire(raw), Decimal)
	require.True(t, ok)
	assert.Equal(t, 0, got.Cmp(d))
	assert.Equal(t, d.Text('f'), got.Text('f'))
}

func TestDecimal_KeepsTrailingZeros(t *testing.T) {
	d, _, err := apd.NewFromString("1.50")
	require.NoError(t, err)

	got, ok := types.TryGet(types.New(Decimal, d), Decimal)
	require.True(t, ok)
	assert.Equal(t, "1.50", got.Text('f'))
}

// viaText marshals a, parses the text back and re-sniffs it.
func viaText[C any](t *testing.T, a Any, typ Type[C]) (C, bool) {
	t.Helper()
	b, err := Marshal(a.Value())
	require.NoError(t, err)
	raw, err := Parse(b)
	require.NoError(t, err)
	return types.TryGet(FromWire(raw), typ)
}

func TestCodecs_BoundaryRoundTrip(t *testing.T) {
	t.Run("int64", func(t *testing.T) {
		for _, n := range []int64{math.MaxInt64, math.MinInt64, 0} {
			got, ok := viaText(t, types.New(Int64, n), Int64)
			require.True(t, ok, n)
			assert.Equal(t, n, got)
		}
	})

	t.Run("float64", func(t *testing.T) {
		for _, f := range []float64{math.MaxFloat64, -math.MaxFloat64, math.SmallestNonzeroFloat64, -0.5} {
			got, ok := viaText(t, types.New(Float64, f), Float64)
			require.True(t, ok, f)
			assert.Equal(t, f, got)
		}
	})

	t.Run("empty string", func(t *testing.T) {
		got, ok := viaText(t, types.New(String, ""), String)
		require.True(t, ok)
		assert.Equal(t, "", got)
	})

	t.Run("decimal", func(t *testing.T) {
		tests := []string{
			"1E+3",
			"1E+1000",
			"-9.99E-1000",
			"0E-20",
			"123456789012345678901234567890.1234567890",
		}
		for _, text := range tests {
			d, _, err := apd.NewFromString(text)
			require.NoError(t, err)
			got, ok := viaText(t, types.New(Decimal, d), Decimal)
			require.True(t, ok, text)
			assert.Equal(t, d.Exponent, got.Exponent, text)
			assert.Equal(t, d.String(), got.String())
			assert.Equal(t, 0, got.Cmp(d), text)
		}
	})

	t.Run("null", func(t *testing.T) {
		got, ok := viaText(t, types.New(Nullable(String), nil), Nullable(String))
		require.True(t, ok)
		assert.Nil(t, got)

		gotInt, ok := viaText(t, types.New(Nullable(Int64), nil), Nullable(Int64))
		require.True(t, ok)
		assert.Nil(t, gotInt)
	})
}

func TestDecimal_KeepsExponent(t *testing.T) {
	d, _, err := apd.NewFromString("1E+3")
	require.NoError(t, err)

	a := types.New(Decimal, d)
	assert.Equal(t, `{"decimal":"1E+3"}`, a.Value().String())

	got, ok := types.TryGet(a, Decimal)
	require.True(t, ok)
	assert.Equal(t, int32(3), got.Exponent)
}

func TestFloat64_NonFiniteEncodesNull(t *testing.T) {
	for _, f := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		a := types.New(Float64, f)
		assert.Equal(t, NullValue{}, a.Value())
		_, ok := types.TryGet(FromWire(a.IntoWire()), Float64)
		assert.False(t, ok, "%v does not decode back", f)
	}
}

func TestTryGet_VariantGate(t *testing.T) {
	n := types.New(Int64, 42)

	_, ok := types.TryGet(n, String)
	assert.False(t, ok)
	_, ok = types.TryGet(n, Float64)
	assert.False(t, ok, "Int-tagged value is not a Float")

	got, ok := types.TryGet(n, Int64)
	require.True(t, ok)
	assert.Equal(t, int64(42), got)
}

func TestTryGet_SharedStringVariant(t *testing.T) {
	s := types.New(String, "not-a-uuid")

	_, ok := types.TryGet(s, UUID)
	assert.False(t, ok, "UUID decoder rejects arbitrary strings")
	_, ok = types.TryGet(s, URL)
	assert.False(t, ok, "URL decoder rejects strings without a scheme")

	id := uuid.MustParse("0192d4e3-7c59-7a8b-9f00-123456789abc")
	got, ok := types.TryGet(types.New(String, id.String()), UUID)
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestCodecs_RoundTrip(t *testing.T) {
	u, err := url.Parse("https://example.com/a?b=c")
	require.NoError(t, err)

	gotURL, ok := types.TryGet(types.New(URL, u), URL)
	require.True(t, ok)
	assert.Equal(t, u.String(), gotURL.String())

	ts := time.Date(2024, 3, 1, 12, 30, 0, 123456789, time.UTC)
	gotTime, ok := types.TryGet(types.New(Time, ts), Time)
	require.True(t, ok)
	assert.True(t, ts.Equal(gotTime))

	gotStrings, ok := types.TryGet(types.New(Strings, []string{"a", "b"}), Strings)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, gotStrings)

	gotBool, ok := types.TryGet(types.New(Bool, true), Bool)
	require.True(t, ok)
	assert.True(t, gotBool)

	gotInt, ok := types.TryGet(types.New(Int, -5), Int)
	require.True(t, ok)
	assert.Equal(t, -5, gotInt)

	gotFloat, ok := types.TryGet(types.New(Float64, 0.5), Float64)
	require.True(t, ok)
	assert.Equal(t, 0.5, gotFloat)
}

func TestStrings_RejectsMixedArray(t *testing.T) {
	_, ok := types.TryGet(FromWire(ArrayValue{StringValue("a"), IntValue(1)}), Strings)
	assert.False(t, ok)
}

func TestNullable_JSONNull(t *testing.T) {
	optString := Nullable(String)

	got, ok := types.TryGet(FromWire(NullValue{}), optString)
	require.True(t, ok)
	assert.Nil(t, got)

	_, ok = types.TryGet(FromWire(NullValue{}), String)
	assert.False(t, ok)

	s := "x"
	a := types.New(optString, &s)
	assert.Equal(t, `"x"`, a.Value().String())
	assert.Equal(t, "null", types.New(optString, nil).Value().String())
}
