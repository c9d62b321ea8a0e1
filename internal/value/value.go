// Package value defines the tagged value type stored in every field: a valid
// number, string or boolean, or an invalid marker that says why the value is
// missing. Invalid values propagate through the arithmetic helpers in this
// package instead of relying on floating point NaN.
package value

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// InvalidKind tells why a value is invalid.
type InvalidKind uint8

const (
	// Undefined is invalid for no particular reason. It is what arithmetic on
	// invalid operands yields; outputs resolve it through their invalid policy.
	Undefined InvalidKind = iota
	// Input marks a value derived from an invalid user input.
	Input
	// NoResult marks an output with no applicable value.
	NoResult
	// OutOfRange marks a value outside a POH table's domain.
	OutOfRange
)

func (k InvalidKind) String() string {
	switch k {
	case Input:
		return "input"
	case NoResult:
		return "no_result"
	case OutOfRange:
		return "out_of_range"
	default:
		return "undefined"
	}
}

// Kind is the tag of a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNumber
	KindString
	KindBool
)

// Value is an immutable tagged union. The zero Value is Invalid(Undefined).
type Value struct {
	kind    Kind
	num     float64
	str     string
	b       bool
	invalid InvalidKind
}

// Number wraps a float. Non-finite floats become Invalid(Undefined).
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Invalid(Undefined)
	}
	return Value{kind: KindNumber, num: f}
}

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Invalid returns an invalid value of the given kind.
func Invalid(k InvalidKind) Value { return Value{kind: KindInvalid, invalid: k} }

func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v holds a value rather than an invalid marker.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// IsNumber reports whether v is a valid number.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// InvalidKind returns the invalid marker. It is only meaningful when
// IsValid is false.
func (v Value) InvalidKind() InvalidKind { return v.invalid }

// Float returns the number held by v.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Str returns the string held by v.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// Bool returns the boolean held by v.
func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// MustFloat returns the number held by v and panics otherwise. Callers check
// validity first.
func (v Value) MustFloat() float64 {
	f, ok := v.Float()
	if !ok {
		panic(fmt.Sprintf("value: %s is not a number", v))
	}
	return f
}

// Text returns the string form used for string comparisons: the string
// itself, a formatted number, "true"/"false", or "" for invalid values.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

func (v Value) String() string {
	if v.kind == KindInvalid {
		return "invalid(" + v.invalid.String() + ")"
	}
	return v.Text()
}

// Equal compares two values. Any two invalid values are equal, whatever
// their kind, so a field that stays invalid is not a change.
func (v Value) Equal(o Value) bool {
	if !v.IsValid() || !o.IsValid() {
		return !v.IsValid() && !o.IsValid()
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindString:
		return v.str == o.str
	default:
		return v.b == o.b
	}
}

// MarshalJSON renders valid values as plain JSON scalars and invalid ones as
// {"invalid": "<kind>"}.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindString:
		return json.Marshal(v.str)
	case KindBool:
		return json.Marshal(v.b)
	default:
		return json.Marshal(map[string]string{"invalid": v.invalid.String()})
	}
}

// FromAny converts a Go scalar into a Value. Unsupported types and nil are
// Invalid(Input).
func FromAny(raw any) Value {
	switch r := raw.(type) {
	case Value:
		return r
	case float64:
		return Number(r)
	case float32:
		return Number(float64(r))
	case int:
		return Number(float64(r))
	case int64:
		return Number(float64(r))
	case int32:
		return Number(float64(r))
	case string:
		return String(r)
	case bool:
		return Bool(r)
	default:
		return Invalid(Input)
	}
}
