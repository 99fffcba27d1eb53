package expr

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_ConvertsRecursively(t *testing.T) {
	e := New("a = {} AND {}", Scalar(1), Nested(New("b = {}", Scalar(2))))

	m := Map(e, func(n int) string { return "#" + strconv.Itoa(n) })

	assert.Equal(t, "a = #1 AND b = #2", m.Preview())
	assert.Equal(t, e.Template(), m.Template())
}

func TestMap_DeferredConvertedLazily(t *testing.T) {
	called := false
	e := New("{}", Deferred(NewDeferred(func(context.Context) (Param[int], error) {
		called = true
		return Nested(New("x = {}", Scalar(9))), nil
	})))

	m := Map(e, strconv.Itoa)
	assert.False(t, called)

	p, _ := m.Param(0)
	d, ok := p.AsDeferred()
	require.True(t, ok)

	res, err := d.Call(context.Background())
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "x = 9", res.Preview())
}

func TestMap_DeferredError(t *testing.T) {
	boom := errors.New("boom")
	e := New("{}", Deferred(NewDeferred(func(context.Context) (Param[int], error) {
		return Param[int]{}, boom
	})))

	p, _ := Map(e, strconv.Itoa).Param(0)
	d, _ := p.AsDeferred()
	_, err := d.Call(context.Background())
	assert.ErrorIs(t, err, boom)
}
