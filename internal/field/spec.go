package field

import (
	"github.com/specialistvlad/pohcalc/internal/value"
)

// State is the read side of a session that dynamic descriptor attributes are
// evaluated against.
type State interface {
	Get(id string) value.Value
	// Datum reads aircraft data: a scalar when attr is empty, or an
	// attribute ("max", "min", "arm") of a station.
	Datum(key, attr string) value.Value
}

// Expr is a descriptor attribute that may depend on session state. It is
// evaluated every time it is read.
type Expr interface {
	Eval(s State) value.Value
}

// ExprFunc adapts a function to Expr.
type ExprFunc func(s State) value.Value

func (f ExprFunc) Eval(s State) value.Value { return f(s) }

type constExpr struct{ v value.Value }

func (c constExpr) Eval(State) value.Value { return c.v }

// Const is an Expr with a fixed value.
func Const(v value.Value) Expr { return constExpr{v: v} }

// Number is shorthand for Const(value.Number(f)).
func Number(f float64) Expr { return Const(value.Number(f)) }

// Spec is a raw field declaration as loaded from configuration. Zero values
// mean "not set" and are filled in from a same/link target.
type Spec struct {
	ID    string
	Input bool

	Kind    Kind
	Format  string
	Min     Expr
	Max     Expr
	Default Expr

	Increment float64
	MaxLen    int
	Upper     bool
	Choices   []string

	Invalid     string
	Color       string
	Background  string
	TableErrors map[string]string
	OnChange    string

	Same       string
	Link       string
	Page       string
	ErrorGroup string
	Controller string
}

// inherit fills unset attributes of s from t. Page, error group and unit
// controller are never inherited.
func (s *Spec) inherit(t *Spec) {
	if s.Kind == KindUnset {
		s.Kind = t.Kind
	}
	if s.Format == "" {
		s.Format = t.Format
	}
	if s.Min == nil {
		s.Min = t.Min
	}
	if s.Max == nil {
		s.Max = t.Max
	}
	if s.Default == nil {
		s.Default = t.Default
	}
	if s.Increment == 0 {
		s.Increment = t.Increment
	}
	if s.MaxLen == 0 {
		s.MaxLen = t.MaxLen
	}
	s.Upper = s.Upper || t.Upper
	if s.Choices == nil {
		s.Choices = t.Choices
	}
	if s.Invalid == "" {
		s.Invalid = t.Invalid
	}
	if s.Color == "" {
		s.Color = t.Color
	}
	if s.Background == "" {
		s.Background = t.Background
	}
	if s.TableErrors == nil {
		s.TableErrors = t.TableErrors
	}
	if s.OnChange == "" {
		s.OnChange = t.OnChange
	}
}
