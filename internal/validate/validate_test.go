package validate

import (
	"testing"

	"github.com/specialistvlad/pohcalc/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	testCases := []struct {
		name    string
		raw     any
		integer bool
		want    float64
		wantOK  bool
	}{
		{"plain int", "170", true, 170, true},
		{"thousands separator", "1,626", true, 1626, true},
		{"leading zeros", "0053", true, 53, true},
		{"float string", "38.1", false, 38.1, true},
		{"fraction below one", "0.5", false, 0.5, true},
		{"float rejected for int", "38.1", true, 0, false},
		{"whole float accepted for int", "5.0", true, 5, true},
		{"trailing garbage", "5abc", false, 0, false},
		{"empty", "", false, 0, false},
		{"native float", 12.5, false, 12.5, true},
		{"native fractional for int", 12.5, true, 0, false},
		{"native int", 7, true, 7, true},
		{"bool", true, false, 0, false},
		{"value number", value.Number(3), true, 3, true},
		{"value invalid", value.Invalid(value.Input), true, 0, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseNumber(tc.raw, tc.integer)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestNumber_Range(t *testing.T) {
	lo, hi := value.Number(0), value.Number(53)

	got, msg := Number("53", false, lo, hi)
	assert.Equal(t, 53.0, got.MustFloat())
	assert.Empty(t, msg)

	got, msg = Number("54", false, lo, hi)
	assert.False(t, got.IsValid())
	assert.Equal(t, value.Input, got.InvalidKind())
	assert.Equal(t, MsgTooLarge, msg)

	_, msg = Number("-1", false, lo, hi)
	assert.Equal(t, MsgTooSmall, msg)

	_, msg = Number("x", false, lo, hi)
	assert.Equal(t, MsgInvalid, msg)

	got, msg = Number("999", false, value.Invalid(value.Input), value.Invalid(value.Input))
	assert.Equal(t, 999.0, got.MustFloat(), "invalid bounds do not constrain")
	assert.Empty(t, msg)
}

func TestBool(t *testing.T) {
	for raw, want := range map[any]bool{true: true, "false": false, 2.0: true, 0: false} {
		got, msg := Bool(raw)
		b, ok := got.Bool()
		require.True(t, ok, "%v", raw)
		assert.Equal(t, want, b)
		assert.Empty(t, msg)
	}
	got, msg := Bool("yes")
	assert.False(t, got.IsValid())
	assert.Empty(t, msg, "booleans never report a message")
}

func TestEnum(t *testing.T) {
	choices := []string{"gal", "l"}
	got, _ := Enum("l", choices)
	s, _ := got.Str()
	assert.Equal(t, "l", s)

	got, msg := Enum("kg", choices)
	assert.False(t, got.IsValid())
	assert.Empty(t, msg)

	got, _ = Enum("anything", nil)
	assert.True(t, got.IsValid())
	got, _ = Enum("", nil)
	assert.False(t, got.IsValid())
}

func TestText(t *testing.T) {
	got, _ := Text("kpao", 3, true)
	s, _ := got.Str()
	assert.Equal(t, "KPA", s)

	got, _ = Text("trip to Reno", 0, false)
	s, _ = got.Str()
	assert.Equal(t, "trip to Reno", s)
}

func TestEmailAndSaveToken(t *testing.T) {
	_, msg := Email("pilot@example.com")
	assert.Empty(t, msg)
	_, msg = Email("pilot")
	assert.Equal(t, MsgInvalidEmail, msg)

	_, msg = SaveToken("")
	assert.Empty(t, msg)
	_, msg = SaveToken("N12345")
	assert.Empty(t, msg)
	_, msg = SaveToken("ab")
	assert.Equal(t, MsgInvalidChars, msg)
	_, msg = SaveToken("bad token")
	assert.Equal(t, MsgInvalidChars, msg)
}

func TestWind(t *testing.T) {
	_, msg := WindSpeed("12G20")
	assert.Empty(t, msg)
	_, msg = WindSpeed("20G12")
	assert.Equal(t, MsgInvalid, msg)

	_, msg = WindDirection("240V300")
	assert.Empty(t, msg)
	_, msg = WindDirection("245")
	assert.Equal(t, MsgInvalid, msg)
}
