package format

import (
	"fmt"
	"math"
	"testing"

	"github.com/specialistvlad/pohcalc/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		in   string
		want Spec
	}{
		{"n4u", Spec{Kind: KindNumber, Width: 4, Mult: 1, Bias: BiasUp}},
		{"n2.1m.1", Spec{Kind: KindNumber, Width: 2, Digits: 1, Mult: 0.1}},
		{"n5m10d", Spec{Kind: KindNumber, Width: 5, Mult: 10, Bias: BiasDown}},
		{"t4z", Spec{Kind: KindTime, Width: 4, Mult: 1, Bias: BiasTimeOfDay}},
		{"s", Spec{Kind: KindString, Mult: 1}},
		{"n.2", Spec{Kind: KindNumber, Digits: 2, Mult: 0.01}},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want.Kind, got.Kind)
			assert.Equal(t, tc.want.Width, got.Width)
			assert.Equal(t, tc.want.Digits, got.Digits)
			assert.InDelta(t, tc.want.Mult, got.Mult, 1e-12)
			assert.Equal(t, tc.want.Bias, got.Bias)
		})
	}

	for _, bad := range []string{"", "x4", "n4q", "n4m0"} {
		_, err := Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestRender_Numbers(t *testing.T) {
	testCases := []struct {
		spec     string
		in       float64
		wantVal  float64
		wantText string
	}{
		{"n4u", 2105.6, 2106, "2,106"},
		{"n4", 1949.5, 1950, "1,950"},
		{"n2.1m.1", 39.4666, 39.5, "39.5"},
		{"n5m10", 1234, 1230, "1,230"},
		{"n5m10u", 1231, 1240, "1,240"},
		{"n4.1", -12.34, -12.3, "-12.3"},
		{"t4", 75.4, 75, "01:15"},
		{"t4z", 1445, 5, "00:05"},
	}
	for _, tc := range testCases {
		t.Run(tc.spec, func(t *testing.T) {
			r := MustParse(tc.spec).Render(value.Number(tc.in), "")
			assert.InDelta(t, tc.wantVal, r.Value.MustFloat(), 1e-9)
			assert.Equal(t, tc.wantText, r.Text)
			assert.False(t, r.Alert)
		})
	}
}

func TestRender_InvalidPolicies(t *testing.T) {
	testCases := []struct {
		name      string
		spec      string
		in        value.Value
		policy    Policy
		wantKind  value.InvalidKind
		wantText  string
		wantAlert bool
	}{
		{"dash policy", "n4", value.Invalid(value.Undefined), PolicyDash, value.NoResult, "-", false},
		{"blank policy on time", "t4", value.Invalid(value.Undefined), PolicyBlank, value.NoResult, "-:-", false},
		{"poh policy", "n2.1", value.Invalid(value.Undefined), PolicyPOH, value.OutOfRange, "POH", true},
		{"default policy", "n4", value.Invalid(value.Undefined), "", value.Input, "Input", true},
		{"explicit input kind ignores poh policy", "n4", value.Invalid(value.Input), PolicyPOH, value.Input, "Input", true},
		{"explicit no result", "n4", value.Invalid(value.NoResult), PolicyPOH, value.NoResult, "-", false},
		{"string value on number output", "n4", value.String("x"), PolicyDash, value.NoResult, "-", false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := MustParse(tc.spec).Render(tc.in, tc.policy)
			require.False(t, r.Value.IsValid())
			assert.Equal(t, tc.wantKind, r.Value.InvalidKind())
			assert.Equal(t, tc.wantText, r.Text)
			assert.Equal(t, tc.wantAlert, r.Alert)
		})
	}
}

func TestRender_Strings(t *testing.T) {
	r := MustParse("s").Render(value.String("Heavy"), "")
	assert.Equal(t, "Heavy", r.Text)

	r = MustParse("s").Render(value.Invalid(value.Undefined), PolicyDash)
	assert.Equal(t, "-", r.Text)
	s, ok := r.Value.Str()
	require.True(t, ok)
	assert.Equal(t, "-", s)
}

func TestNum(t *testing.T) {
	assert.Equal(t, "0", Num(0, 0))
	assert.Equal(t, "999", Num(999, 0))
	assert.Equal(t, "1,000", Num(1000, 0))
	assert.Equal(t, "1,234,567.89", Num(1234567.891, 2))
	assert.Equal(t, "-1,626", Num(-1626, 0))
	assert.Equal(t, "0.0", Num(-0.01, 1))
}

func TestTime(t *testing.T) {
	testCases := []struct {
		in   float64
		want string
	}{
		{in: 0, want: "00:00"},
		{in: 157, want: "02:37"},
		{in: 59.6, want: "01:00"},
		{in: -30, want: "-00:30"},
		{in: -95.4, want: "-01:35"},
		{in: -0.2, want: "00:00"},
		{in: math.NaN(), want: "-:-"},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprint(tc.in), func(t *testing.T) {
			assert.Equal(t, tc.want, Time(tc.in))
		})
	}
}
