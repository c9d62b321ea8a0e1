package c172

import (
	"context"
	"math"

	"github.com/specialistvlad/pohcalc/internal/acdata"
	"github.com/specialistvlad/pohcalc/internal/ctxlog"
	"github.com/specialistvlad/pohcalc/internal/engine"
	"github.com/specialistvlad/pohcalc/internal/field"
	"github.com/specialistvlad/pohcalc/internal/value"
)

// mass is a weight and its moment about the datum.
type mass struct {
	weight value.Value
	moment value.Value
}

func (m *mass) add(weight value.Value, arm float64) {
	m.weight = value.Add(m.weight, weight)
	m.moment = value.Add(m.moment, value.Mul(weight, value.Number(arm)))
}

func (m mass) cg() value.Value { return value.Div(m.moment, m.weight) }

// fuelStation returns the station of the installed tanks.
func fuelStation(s *engine.Scope, ac *acdata.Model) acdata.Station {
	if lr, _ := s.Get("ACLRTanks").Bool(); lr {
		if st, ok := ac.Stations["WBFuelLR"]; ok {
			return st
		}
	}
	return ac.Station("WBFuel")
}

// seatRow sums the two seats of a row. A row over its station limit is
// flagged on the right seat and counts as invalid.
func seatRow(s *engine.Scope, ac *acdata.Model, stn, left, right string) value.Value {
	w := value.Add(s.Get(left), s.Get(right))
	if f, ok := w.Float(); ok && f > ac.Station(stn).Max {
		s.SetError(right, "Too large")
		return value.Invalid(value.Input)
	}
	return w
}

// ComputeWB computes zero fuel, ramp, takeoff and landing weights and CGs,
// checks them against the envelopes and determines the category.
func ComputeWB(ctx context.Context, s *engine.Scope) error {
	ac := s.Aircraft()
	if ac == nil {
		return errNoAircraft
	}
	logger := ctxlog.FromContext(ctx).With("aircraft", ac.ID)

	tank := fuelStation(s, ac)
	s.Set("WBFuelMax_gal", value.Number(tank.Max))

	zf := mass{
		weight: s.Get("ACBEW_lbs"),
		moment: value.Mul(s.Get("ACBEW_lbs"), s.Get("ACArm")),
	}
	row1 := seatRow(s, ac, "WBRow1", "WBRow1L_lbs", "WBRow1R_lbs")
	row2 := seatRow(s, ac, "WBRow2", "WBRow2L_lbs", "WBRow2R_lbs")
	zf.add(row1, ac.Station("WBRow1").Arm)
	zf.add(row2, ac.Station("WBRow2").Arm)

	bag1, bag2 := s.Get("WBBaggage1_lbs"), s.Get("WBBaggage2_lbs")
	if total, ok := value.Add(bag1, bag2).Float(); ok && total > ac.Scalar("WBMaxBaggage") {
		s.SetError("WBBaggage2_lbs", "Total baggage too large")
		bag2 = value.Invalid(value.Input)
	}
	zf.add(bag1, ac.Station("WBBaggage1").Arm)
	zf.add(bag2, ac.Station("WBBaggage2").Arm)

	s.Set("WBZFWeight_lbs", zf.weight)
	s.Set("WBZFCG", zf.cg())

	taxi := ac.Scalar("WBTaxiFuel")
	fuel := s.Get("WBFuel_gal")
	if f, ok := fuel.Float(); ok && f < ac.Scalar("WBMinTOFuel")+taxi {
		s.SetError("WBFuel_gal", "Too small for takeoff")
	}

	ramp := zf
	ramp.add(value.Mul(fuel, value.Number(lbsPerGal)), tank.Arm)
	s.Set("WBRampWeight_lbs", ramp.weight)

	to := ramp
	to.add(value.Number(-taxi*lbsPerGal), tank.Arm)

	maxTO := ac.Scalar("WBMaxTOWeight")
	s.Set("WBMaxFuel_gal", value.Map(func(xs ...float64) float64 {
		return math.Max(0, math.Min((maxTO-xs[0])/lbsPerGal+taxi, tank.Max))
	}, zf.weight))

	utilityLoad := rearEmpty(s)
	setLoading(s, ac, "WBTO", to, maxTO, utilityLoad)
	load, style := loadStatus(to.weight, maxTO)
	s.SetStyled("WBTOLoad", load, style)

	if err := s.ComputePage(ctx, "Enrt"); err != nil {
		return err
	}
	used := burnedFuel(s, fuel, taxi)
	s.Set("WBFuelBurn_gal", used)

	ldg := to
	ldg.add(value.Mul(used, value.Number(-lbsPerGal)), tank.Arm)
	setLoading(s, ac, "WBLdg", ldg, ac.Scalar("WBMaxLdgWeight"), utilityLoad)

	logger.Debug("Weight and balance computed.", "to_weight", to.weight, "to_cg", to.cg(), "ldg_weight", ldg.weight)
	return nil
}

// burnedFuel returns the fuel used to destination: the enroute result when
// WBEnrtFuelToDest is set, the entered amount otherwise.
func burnedFuel(s *engine.Scope, fuel value.Value, taxi float64) value.Value {
	toDest := s.Get("EnrtFuelToDest_gal")
	used := s.Get("WBFuelUsed_gal")
	errID := "WBFuelUsed_gal"
	if fromEnrt, _ := s.Get("WBEnrtFuelToDest").Bool(); fromEnrt {
		used, errID = toDest, "WBFuelBurn_gal"
	} else if u, ok := used.Float(); ok {
		if d, ok := toDest.Float(); ok && u < d {
			s.SetError(errID, "< fuel to destination")
		}
	}

	u, ok1 := used.Float()
	f, ok2 := fuel.Float()
	if ok1 && ok2 && u > f-taxi {
		s.SetError(errID, "> fuel")
		return value.Invalid(value.Input)
	}
	return used
}

// rearEmpty reports whether the rear row and both baggage areas are empty,
// which utility category operation requires.
func rearEmpty(s *engine.Scope) bool {
	for _, id := range []string{"WBRow2L_lbs", "WBRow2R_lbs", "WBBaggage1_lbs", "WBBaggage2_lbs"} {
		if f, ok := s.Float(id); !ok || f != 0 {
			return false
		}
	}
	return true
}

// setLoading writes the weight, CG, CG status and category outputs of one
// loading condition. prefix is "WBTO" or "WBLdg".
func setLoading(s *engine.Scope, ac *acdata.Model, prefix string, m mass, maxWeight float64, utilityLoad bool) {
	cg := m.cg()
	s.Set(prefix+"Weight_lbs", m.weight)
	s.Set(prefix+"CG", cg)

	w, ok1 := m.weight.Float()
	c, ok2 := cg.Float()
	if !ok1 || !ok2 {
		setInvalid(s, prefix+"CGStatus", prefix+"Category")
		return
	}
	status, bad := cgStatus(ac, w, c, maxWeight)
	if bad {
		s.SetStyled(prefix+"CGStatus", value.String(status), alert)
	} else {
		s.Set(prefix+"CGStatus", value.String(status))
	}

	switch {
	case utilityLoad && inEnvelope(ac, "Util", w, c, ac.Scalar("WBMaxUtilWeight")):
		s.Set(prefix+"Category", value.String("Utility"))
	case inEnvelope(ac, "Norm", w, c, maxWeight):
		s.Set(prefix+"Category", value.String("Normal"))
	default:
		s.SetStyled(prefix+"Category", value.String("None"), alert)
	}
}

// cgLimits returns the forward and aft limits of an envelope at a weight.
// Weights over maxWeight use the limits at maxWeight.
func cgLimits(ac *acdata.Model, envelope string, weight, maxWeight float64) (fwd, aft float64) {
	w := value.Number(math.Min(weight, maxWeight))
	return ac.CGLimit("WBFwdLimit"+envelope, w).MustFloat(), ac.CGLimit("WBAftLimit"+envelope, w).MustFloat()
}

func inEnvelope(ac *acdata.Model, envelope string, weight, cg, maxWeight float64) bool {
	fwd, aft := cgLimits(ac, envelope, weight, maxWeight)
	return weight <= maxWeight && cg >= fwd && cg <= aft
}

// cgStatus places a CG within the normal category envelope. bad marks
// positions outside of it.
func cgStatus(ac *acdata.Model, weight, cg, maxWeight float64) (status string, bad bool) {
	fwd, aft := cgLimits(ac, "Norm", weight, maxWeight)
	pct := (cg - fwd) / (aft - fwd)
	switch {
	case pct < 0:
		return "Too far forward", true
	case pct < 0.25:
		return "Forward", false
	case pct <= 0.75:
		return "Middle", false
	case pct <= 1:
		return "Aft", false
	default:
		return "Too far aft", true
	}
}

// loadStatus grades a weight against the maximum takeoff weight.
func loadStatus(weight value.Value, maxWeight float64) (value.Value, field.Style) {
	w, ok := weight.Float()
	if !ok {
		return value.Invalid(value.Input), field.Style{}
	}
	switch pct := w / maxWeight; {
	case pct < 0.8:
		return value.String("Light"), field.Style{}
	case pct < 0.95:
		return value.String("Moderate"), field.Style{}
	case pct <= 1:
		return value.String("Heavy"), field.Style{}
	default:
		return value.String("Too heavy"), alert
	}
}
