// Package validate normalises raw input values. Every function returns the
// normalised value, or Invalid(Input) together with the message shown in the
// field's error slot.
package validate

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/specialistvlad/pohcalc/internal/aviation"
	"github.com/specialistvlad/pohcalc/internal/value"
)

// Error messages.
const (
	MsgInvalid      = "Invalid input"
	MsgTooSmall     = "Too small"
	MsgTooLarge     = "Too large"
	MsgInvalidEmail = "Invalid email address"
	MsgInvalidChars = "Invalid characters"
)

var (
	leadingZeros  = regexp.MustCompile(`^0*(.)`)
	emailPattern  = regexp.MustCompile(`.@.+\..+`)
	saveTokenChar = regexp.MustCompile("[^\\w!#$%&'()*+,\\-.;=@\\[\\]^_`{}~]")
)

func invalid(msg string) (value.Value, string) {
	return value.Invalid(value.Input), msg
}

// ParseNumber reads a number from a float, an int or a string. Strings may
// carry thousands separators and leading zeros but nothing else. With
// integer set the result must be whole.
func ParseNumber(raw any, integer bool) (float64, bool) {
	var f float64
	switch r := raw.(type) {
	case value.Value:
		if fv, ok := r.Float(); ok {
			return ParseNumber(fv, integer)
		}
		if s, ok := r.Str(); ok {
			return ParseNumber(s, integer)
		}
		return 0, false
	case float64:
		f = r
	case int:
		f = float64(r)
	case int64:
		f = float64(r)
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(r, ",", ""))
		s = leadingZeros.ReplaceAllString(s, "$1")
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = v
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if integer && f != math.Trunc(f) {
		return 0, false
	}
	return f, true
}

// Number validates a numeric input against its bounds. Invalid bounds do not
// constrain the value.
func Number(raw any, integer bool, lo, hi value.Value) (value.Value, string) {
	f, ok := ParseNumber(raw, integer)
	if !ok {
		return invalid(MsgInvalid)
	}
	if min, ok := lo.Float(); ok && f < min {
		return invalid(MsgTooSmall)
	}
	if max, ok := hi.Float(); ok && f > max {
		return invalid(MsgTooLarge)
	}
	return value.Number(f), ""
}

// Bool accepts booleans, "true"/"false" and numbers (non-zero is true).
// Boolean inputs never report a message.
func Bool(raw any) (value.Value, string) {
	switch r := raw.(type) {
	case value.Value:
		if b, ok := r.Bool(); ok {
			return value.Bool(b), ""
		}
		if f, ok := r.Float(); ok {
			return value.Bool(f != 0), ""
		}
		if s, ok := r.Str(); ok {
			return Bool(s)
		}
	case bool:
		return value.Bool(r), ""
	case string:
		switch r {
		case "true":
			return value.Bool(true), ""
		case "false":
			return value.Bool(false), ""
		}
	case float64:
		return value.Bool(r != 0), ""
	case int:
		return value.Bool(r != 0), ""
	}
	return value.Invalid(value.Input), ""
}

func text(raw any) (string, bool) {
	switch r := raw.(type) {
	case value.Value:
		if !r.IsValid() {
			return "", false
		}
		return r.Text(), true
	case string:
		return r, true
	case nil:
		return "", false
	default:
		return value.FromAny(raw).Text(), value.FromAny(raw).IsValid()
	}
}

// Enum accepts members of choices. An empty choice list accepts any
// non-empty string. Enums never report a message.
func Enum(raw any, choices []string) (value.Value, string) {
	s, ok := text(raw)
	if !ok {
		return value.Invalid(value.Input), ""
	}
	if len(choices) == 0 {
		if s == "" {
			return value.Invalid(value.Input), ""
		}
		return value.String(s), ""
	}
	if !slices.Contains(choices, s) {
		return value.Invalid(value.Input), ""
	}
	return value.String(s), ""
}

// Text converts to a string, optionally upper-cased and truncated to maxLen
// runes (0 is unlimited).
func Text(raw any, maxLen int, upper bool) (value.Value, string) {
	s, ok := text(raw)
	if !ok {
		return invalid(MsgInvalid)
	}
	if upper {
		s = strings.ToUpper(s)
	}
	if maxLen > 0 {
		if r := []rune(s); len(r) > maxLen {
			s = string(r[:maxLen])
		}
	}
	return value.String(s), ""
}

// Email performs a loose address check.
func Email(raw any) (value.Value, string) {
	s, ok := text(raw)
	if !ok || len(s) < 3 || !emailPattern.MatchString(s) {
		return invalid(MsgInvalidEmail)
	}
	return value.String(s), ""
}

// SaveToken accepts the empty string or at least three allowed characters.
func SaveToken(raw any) (value.Value, string) {
	s, ok := text(raw)
	if !ok {
		return invalid(MsgInvalidChars)
	}
	if s != "" && (saveTokenChar.MatchString(s) || len(s) < 3) {
		return invalid(MsgInvalidChars)
	}
	return value.String(s), ""
}

// WindSpeed accepts "NN" or "NNGmm".
func WindSpeed(raw any) (value.Value, string) {
	s, ok := text(raw)
	if !ok {
		return invalid(MsgInvalid)
	}
	if _, err := aviation.ParseWindSpeed(s); err != nil {
		return invalid(MsgInvalid)
	}
	return value.String(s), ""
}

// WindDirection accepts "DDD", "DDDVddd" or "VRB".
func WindDirection(raw any) (value.Value, string) {
	s, ok := text(raw)
	if !ok {
		return invalid(MsgInvalid)
	}
	if _, err := aviation.ParseWindDirection(s); err != nil {
		return invalid(MsgInvalid)
	}
	return value.String(s), ""
}
