// Package format parses output type specs and renders output values.
//
// A spec looks like "n4.1m.5u": kind (n number, t time in minutes, s
// string), a width whose fractional part is the number of decimals, an
// optional rounding multiple after "m", and an optional bias: u rounds up,
// d rounds down, z rounds to the minute of a day.
package format

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/specialistvlad/pohcalc/internal/mathutil"
	"github.com/specialistvlad/pohcalc/internal/value"
)

// Kind is the output kind.
type Kind byte

const (
	KindNumber Kind = 'n'
	KindTime   Kind = 't'
	KindString Kind = 's'
)

// Bias selects the rounding direction.
type Bias byte

const (
	BiasNearest   Bias = 0
	BiasUp        Bias = 'u'
	BiasDown      Bias = 'd'
	BiasTimeOfDay Bias = 'z'
)

var specPattern = regexp.MustCompile(`^([nst])(\d*\.?\d*)?(?:m(\d*\.?\d+))?([udz])?$`)

// Spec is a parsed output type spec.
type Spec struct {
	Kind   Kind
	Width  int
	Digits int
	Mult   float64
	Bias   Bias
}

// Parse parses a type spec.
func Parse(s string) (Spec, error) {
	m := specPattern.FindStringSubmatch(s)
	if m == nil {
		return Spec{}, fmt.Errorf("invalid output type %q", s)
	}
	spec := Spec{Kind: Kind(m[1][0])}
	if width := m[2]; width != "" {
		whole, frac, _ := strings.Cut(width, ".")
		if whole != "" {
			spec.Width, _ = strconv.Atoi(whole)
		}
		if frac != "" {
			spec.Digits, _ = strconv.Atoi(frac)
		}
	}
	spec.Mult = math.Pow(10, -float64(spec.Digits))
	if m[3] != "" {
		mult, err := strconv.ParseFloat(m[3], 64)
		if err != nil || mult <= 0 {
			return Spec{}, fmt.Errorf("invalid rounding multiple in output type %q", s)
		}
		spec.Mult = mult
	}
	if m[4] != "" {
		spec.Bias = Bias(m[4][0])
	}
	return spec, nil
}

// MustParse is Parse for specs known to be valid.
func MustParse(s string) Spec {
	spec, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return spec
}

// Policy is an output's declared rendering of an unspecified invalid value.
type Policy string

const (
	PolicyDash  Policy = "-"
	PolicyBlank Policy = " "
	PolicyPOH   Policy = "poh"
)

// Resolve maps an invalid kind through the policy. Specific kinds are kept;
// Undefined becomes NoResult, OutOfRange or Input.
func (p Policy) Resolve(k value.InvalidKind) value.InvalidKind {
	if k != value.Undefined {
		return k
	}
	switch p {
	case PolicyDash, PolicyBlank:
		return value.NoResult
	case PolicyPOH:
		return value.OutOfRange
	default:
		return value.Input
	}
}

// Rendered is a formatted output.
type Rendered struct {
	// Value is what gets stored: the rounded number, the string, or the
	// resolved invalid marker.
	Value value.Value
	Text  string
	// Alert marks invalid renderings that are shown red and struck through.
	Alert bool
}

// Render rounds and formats v.
func (s Spec) Render(v value.Value, policy Policy) Rendered {
	if s.Kind == KindString {
		if str, ok := v.Str(); ok {
			return Rendered{Value: v, Text: str}
		}
		text := string(policy)
		if policy == PolicyPOH {
			text = ""
		}
		return Rendered{Value: value.String(text), Text: text}
	}

	f, ok := v.Float()
	if !ok {
		kind := value.Undefined
		if !v.IsValid() {
			kind = v.InvalidKind()
		}
		kind = policy.Resolve(kind)
		return s.renderInvalid(kind)
	}

	switch s.Bias {
	case BiasUp:
		f = mathutil.RoundUpMult(f, s.Mult)
	case BiasDown:
		f = mathutil.RoundDownMult(f, s.Mult)
	case BiasTimeOfDay:
		f = mathutil.RoundTimeOfDay(f)
	default:
		f = mathutil.RoundMult(f, s.Mult)
	}

	if s.Kind == KindTime {
		return Rendered{Value: value.Number(f), Text: Time(f)}
	}
	return Rendered{Value: value.Number(f), Text: Num(f, s.Digits)}
}

func (s Spec) renderInvalid(kind value.InvalidKind) Rendered {
	r := Rendered{Value: value.Invalid(kind)}
	switch kind {
	case value.NoResult:
		r.Text = "-"
		if s.Kind == KindTime {
			r.Text = "-:-"
		}
	case value.OutOfRange:
		r.Text = "POH"
		r.Alert = true
	default:
		r.Text = "Input"
		r.Alert = true
	}
	return r
}

// Num formats a number with thousands separators and a fixed number of
// decimals.
func Num(f float64, digits int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "-"
	}
	s := strconv.FormatFloat(math.Abs(f), 'f', digits, 64)
	whole, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	if f < 0 && strings.Trim(s, "0.") != "" {
		b.WriteByte('-')
	}
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// Time formats minutes as hh:mm.
func Time(minutes float64) string {
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return "-:-"
	}
	m := int(math.Floor(math.Abs(minutes) + 0.5))
	sign := ""
	if minutes < 0 && m > 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%02d:%02d", sign, m/60, m%60)
}
