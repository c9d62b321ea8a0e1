package c172

import (
	"context"

	"github.com/specialistvlad/pohcalc/internal/aviation"
	"github.com/specialistvlad/pohcalc/internal/ctxlog"
	"github.com/specialistvlad/pohcalc/internal/engine"
	"github.com/specialistvlad/pohcalc/internal/field"
	"github.com/specialistvlad/pohcalc/internal/mathutil"
	"github.com/specialistvlad/pohcalc/internal/registry"
	"github.com/specialistvlad/pohcalc/internal/value"
)

// ComputeAC shows the data of the selected model next to the empty weight
// entered for the airframe.
func ComputeAC(ctx context.Context, s *engine.Scope) error {
	ac := s.Aircraft()
	if ac == nil {
		return errNoAircraft
	}
	name := ac.Name
	if name == "" {
		name = ac.ID
	}
	s.Set("ACName", value.String(name))
	s.Set("ACMaxTOWeight_lbs", value.Number(ac.Scalar("WBMaxTOWeight")))
	s.Set("ACUsableFuel_gal", MaxUsableFuel(s.Registry()))
	s.Set("ACEmptyMoment", value.Div(value.Mul(s.Get("ACBEW_lbs"), s.Get("ACArm")), value.Number(1000)))
	return nil
}

// OnAircraftChanged resets the empty weight and arm to the defaults of a
// newly selected model.
func OnAircraftChanged(ctx context.Context, in registry.Inputs, id string) error {
	if in.Get(id).Equal(in.Previous(id)) {
		return nil
	}
	for _, f := range []string{"ACBEW_lbs", "ACArm"} {
		in.SetupValue(f, in.Default(f))
	}
	ctxlog.FromContext(ctx).Debug("Empty weight and arm reset to model defaults.", "aircraft", in.Get(id))
	return nil
}

// MaxUsableFuel is the usable fuel of the installed tanks: the long range
// tanks when ACLRTanks is set and the model offers them.
func MaxUsableFuel(s field.State, _ ...value.Value) value.Value {
	if lr, _ := s.Get("ACLRTanks").Bool(); lr {
		if v := s.Datum("WBFuelLR", "max"); v.IsValid() {
			return v
		}
	}
	return s.Datum("WBFuel", "max")
}

// CruiseStdOAT is the standard temperature at the planned cruise altitude,
// rounded to a degree.
func CruiseStdOAT(s field.State, _ ...value.Value) value.Value {
	return value.Map(func(xs ...float64) float64 {
		pa := aviation.PressureAlt(xs[0]*100, (xs[1]+xs[2])/2)
		return mathutil.Round(aviation.StdTemp(pa), 0)
	}, s.Get("EnrtAltH"), s.Get("DepAltimeter_inhg"), s.Get("DestAltimeter_inhg"))
}
