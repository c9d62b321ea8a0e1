// Package table implements the nested POH lookup tables and the recursive
// multi-dimensional linear interpolation over them.
//
// A table is an ordered list of entries per parameter. Each entry holds the
// parameter value P and either a leaf value V (last parameter) or the next
// level A. Lookups never extrapolate: a parameter outside a level's range
// yields a typed Error tagged with the parameter name.
package table

import (
	"errors"
	"fmt"
	"math"

	"github.com/specialistvlad/pohcalc/internal/mathutil"
	"github.com/specialistvlad/pohcalc/internal/value"
)

// Entry is one row of a table level.
type Entry struct {
	P float64
	V float64
	A []Entry
}

// Table is an immutable lookup table.
type Table struct {
	ID     string
	Name   string
	Params []string
	Root   []Entry

	min []float64
	max []float64
}

// New validates the table shape and computes the per-parameter bounds.
func New(id, name string, params []string, root []Entry) (*Table, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("table '%s': no parameters", id)
	}
	t := &Table{
		ID:     id,
		Name:   name,
		Params: params,
		Root:   root,
		min:    make([]float64, len(params)),
		max:    make([]float64, len(params)),
	}
	for i := range params {
		t.min[i] = math.Inf(1)
		t.max[i] = math.Inf(-1)
	}
	if err := t.scan(root, 0); err != nil {
		return nil, fmt.Errorf("table '%s': %w", id, err)
	}
	for i, p := range params {
		if math.IsInf(t.min[i], 0) || math.IsInf(t.max[i], 0) {
			return nil, fmt.Errorf("table '%s': parameter '%s' has no finite bounds", id, p)
		}
	}
	return t, nil
}

func (t *Table) scan(level []Entry, depth int) error {
	if len(level) == 0 {
		return fmt.Errorf("empty level for parameter '%s'", t.Params[depth])
	}
	last := depth == len(t.Params)-1
	for i, e := range level {
		if math.IsNaN(e.P) || math.IsInf(e.P, 0) {
			return fmt.Errorf("non-finite value for parameter '%s'", t.Params[depth])
		}
		if i > 0 && e.P < level[i-1].P {
			return fmt.Errorf("parameter '%s' is not sorted at %v", t.Params[depth], e.P)
		}
		t.min[depth] = math.Min(t.min[depth], e.P)
		t.max[depth] = math.Max(t.max[depth], e.P)
		if last {
			if e.A != nil {
				return fmt.Errorf("entry %v of parameter '%s' nests deeper than the parameter list", e.P, t.Params[depth])
			}
			continue
		}
		if e.A == nil {
			return fmt.Errorf("entry %v of parameter '%s' is missing its '%s' level", e.P, t.Params[depth], t.Params[depth+1])
		}
		if err := t.scan(e.A, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) paramIndex(param string) int {
	for i, p := range t.Params {
		if p == param {
			return i
		}
	}
	panic(fmt.Sprintf("table '%s': unknown parameter '%s'", t.ID, param))
}

// Min returns the smallest value of a parameter anywhere in the table.
func (t *Table) Min(param string) float64 { return t.min[t.paramIndex(param)] }

// Max returns the largest value of a parameter anywhere in the table.
func (t *Table) Max(param string) float64 { return t.max[t.paramIndex(param)] }

// Interpolate looks up the table. On failure it returns an *Error naming the
// offending parameter, with Invalid(OutOfRange) for domain errors and
// Invalid(Input) for invalid parameters. Passing the wrong number of
// parameters panics.
func (t *Table) Interpolate(params ...value.Value) (value.Value, error) {
	if len(params) != len(t.Params) {
		panic(fmt.Sprintf("table '%s': %d parameters given, %d expected", t.ID, len(params), len(t.Params)))
	}
	v, err := t.lookup(t.Root, params, 0)
	if err != nil {
		if err.(*Error).Kind == KindInvalid {
			return value.Invalid(value.Input), err
		}
		return value.Invalid(value.OutOfRange), err
	}
	return value.Number(v), nil
}

func (t *Table) lookup(level []Entry, params []value.Value, depth int) (float64, error) {
	p, ok := params[depth].Float()
	if !ok {
		return 0, t.fail(KindInvalid, depth)
	}
	if p < level[0].P {
		return 0, t.fail(KindTooLow, depth)
	}
	i := 0
	for i < len(level) && p > level[i].P {
		i++
	}
	if i == len(level) {
		return 0, t.fail(KindTooHigh, depth)
	}
	last := depth == len(t.Params)-1
	if level[i].P == p {
		if last {
			return level[i].V, nil
		}
		return t.lookup(level[i].A, params, depth+1)
	}

	lo, hi := level[i-1], level[i]
	if last {
		return mathutil.Interpolate(p, lo.P, lo.V, hi.P, hi.V), nil
	}
	left, err := t.lookup(lo.A, params, depth+1)
	if err != nil {
		return 0, err
	}
	right, err := t.lookup(hi.A, params, depth+1)
	if err != nil {
		return 0, err
	}
	return mathutil.Interpolate(p, lo.P, left, hi.P, right), nil
}

func (t *Table) fail(kind ErrorKind, depth int) *Error {
	return &Error{Table: t.ID, Kind: kind, Param: t.Params[depth]}
}

// ErrorKind classifies a lookup failure.
type ErrorKind uint8

const (
	KindInvalid ErrorKind = iota
	KindTooLow
	KindTooHigh
)

func (k ErrorKind) String() string {
	switch k {
	case KindTooLow:
		return "too low"
	case KindTooHigh:
		return "too high"
	default:
		return "invalid"
	}
}

// Error is a table domain error.
type Error struct {
	Table string
	Kind  ErrorKind
	Param string
}

func (e *Error) Error() string {
	return fmt.Sprintf("table '%s': %s %s", e.Table, e.Param, e.Kind)
}

// AsError extracts a table *Error from err.
func AsError(err error) (*Error, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
