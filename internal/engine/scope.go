package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/pohcalc/internal/acdata"
	"github.com/specialistvlad/pohcalc/internal/field"
	"github.com/specialistvlad/pohcalc/internal/format"
	"github.com/specialistvlad/pohcalc/internal/table"
	"github.com/specialistvlad/pohcalc/internal/value"
)

// Scope is what a running computation sees of its session.
type Scope struct {
	e *Engine
	c *Computation
}

// Page returns the page of the running computation.
func (s *Scope) Page() string { return s.c.Page }

// Registry returns the session's field registry.
func (s *Scope) Registry() *field.Registry { return s.e.reg }

// Get returns the current value of a field.
func (s *Scope) Get(id string) value.Value { return s.e.reg.Get(id) }

// Float returns the number stored in a field.
func (s *Scope) Float(id string) (float64, bool) { return s.e.reg.Get(id).Float() }

// Changed reports whether id is a dirty input of this run.
func (s *Scope) Changed(id string) bool { return s.e.Changed(id) }

// Set writes an output with the default style.
func (s *Scope) Set(id string, v value.Value) { s.e.reg.SetOutput(id, v, nil) }

// SetStyled writes an output with a style hint.
func (s *Scope) SetStyled(id string, v value.Value, st field.Style) {
	s.e.reg.SetOutput(id, v, &st)
}

// SetError sets the error of a field; an empty msg clears it.
func (s *Scope) SetError(id, msg string) { s.e.reg.SetError(id, msg, nil) }

// Datum reads aircraft data of the selected model.
func (s *Scope) Datum(key, attr string) value.Value { return s.e.reg.Datum(key, attr) }

// Aircraft returns the selected aircraft model, or nil when the session has
// none.
func (s *Scope) Aircraft() *acdata.Model {
	if s.e.opts.Aircraft == nil {
		return nil
	}
	return s.e.opts.Aircraft()
}

// Interpolate looks up a table of the selected aircraft.
func (s *Scope) Interpolate(tableID string, params ...value.Value) value.Value {
	return s.e.opts.Tables.Interpolate(tableID, params...)
}

// TableMin returns the lower bound of a table parameter.
func (s *Scope) TableMin(tableID, param string) float64 {
	return s.e.opts.Tables.Min(tableID, param)
}

// TableMax returns the upper bound of a table parameter.
func (s *Scope) TableMax(tableID, param string) float64 {
	return s.e.opts.Tables.Max(tableID, param)
}

// TableError returns the last lookup error of a table during this run. An
// empty id means the table that failed last.
func (s *Scope) TableError(tableID string) *table.Error {
	return s.e.opts.Tables.LastError(tableID)
}

// POHError describes the last domain error of tableID for output id, using
// the output's table_errors labels. It is empty when the table lookup
// succeeded or failed for an invalid parameter.
func (s *Scope) POHError(id, tableID string) string {
	te := s.e.opts.Tables.LastError(tableID)
	if te == nil {
		return ""
	}
	label := te.Param
	if l, ok := s.e.reg.Descriptor(id).TableErrors[te.Param]; ok {
		label = l
	}
	switch te.Kind {
	case table.KindTooLow:
		return label + " < POH minimum"
	case table.KindTooHigh:
		return label + " > POH maximum"
	default:
		return ""
	}
}

// SetPOHOutput writes a table-derived output. An invalid v caused by a
// domain error of tableID is stored as OutOfRange with the POHError message;
// other invalid values keep their kind, unspecified ones becoming Input.
func (s *Scope) SetPOHOutput(id string, v value.Value, tableID string) {
	if d := s.e.reg.Descriptor(id); d.Invalid != format.PolicyPOH {
		panic(fmt.Sprintf("engine: SetPOHOutput on '%s' whose invalid policy is '%s'", id, d.Invalid))
	}
	if v.IsValid() {
		s.e.reg.SetOutput(id, v, nil)
		return
	}
	msg := s.POHError(id, tableID)
	kind := v.InvalidKind()
	switch {
	case msg != "":
		kind = value.OutOfRange
	case kind == value.Undefined:
		kind = value.Input
	}
	s.e.reg.SetOutput(id, value.Invalid(kind), nil)
	s.e.reg.SetError(id, msg, nil)
}

// ComputePage recomputes a page the running computation declared in its
// refreshes. Other pages panic.
func (s *Scope) ComputePage(ctx context.Context, page string) error {
	if !slices.Contains(s.c.Refreshes, page) {
		panic(fmt.Sprintf("engine: %s does not declare page '%s' in refreshes", s.c, page))
	}
	return s.e.ComputePage(ctx, page)
}
