package value

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber_NonFiniteIsInvalid(t *testing.T) {
	assert.False(t, Number(math.NaN()).IsValid())
	assert.False(t, Number(math.Inf(1)).IsValid())
	assert.Equal(t, Undefined, Number(math.Inf(-1)).InvalidKind())
	assert.True(t, Number(0).IsValid())
}

func TestEqual(t *testing.T) {
	testCases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same number", Number(1.5), Number(1.5), true},
		{"different number", Number(1.5), Number(2), false},
		{"different invalid kinds", Invalid(Input), Invalid(OutOfRange), true},
		{"invalid vs number", Invalid(NoResult), Number(0), false},
		{"number vs string", Number(1), String("1"), false},
		{"strings", String("gal"), String("gal"), true},
		{"bools", Bool(true), Bool(false), false},
		{"zero value is invalid", Value{}, Invalid(Input), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Equal(tc.b))
			assert.Equal(t, tc.want, tc.b.Equal(tc.a))
		})
	}
}

func TestArithmeticPropagatesInvalid(t *testing.T) {
	assert.Equal(t, 5.0, Add(Number(2), Number(3)).MustFloat())
	assert.Equal(t, 6.0, Sum(Number(1), Number(2), Number(3)).MustFloat())

	got := Mul(Number(2), Invalid(OutOfRange))
	require.False(t, got.IsValid())
	assert.Equal(t, OutOfRange, got.InvalidKind())

	got = Sub(String("x"), Number(1))
	require.False(t, got.IsValid())
	assert.Equal(t, Undefined, got.InvalidKind())

	got = Div(Number(1), Number(0))
	assert.False(t, got.IsValid())

	assert.True(t, AllValid(Number(1), Number(2)))
	assert.False(t, AllValid(Number(1), Invalid(Input)))
}

func TestMarshalJSON(t *testing.T) {
	b, err := json.Marshal(map[string]Value{
		"n": Number(2106),
		"s": String("Heavy"),
		"x": Invalid(OutOfRange),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":2106,"s":"Heavy","x":{"invalid":"out_of_range"}}`, string(b))
}

func TestFromAny(t *testing.T) {
	assert.Equal(t, 3.0, FromAny(3).MustFloat())
	s, ok := FromAny("26").Str()
	require.True(t, ok)
	assert.Equal(t, "26", s)
	assert.False(t, FromAny(nil).IsValid())
	b, ok := FromAny(true).Bool()
	require.True(t, ok)
	assert.True(t, b)
}
