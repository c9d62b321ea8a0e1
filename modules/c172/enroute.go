package c172

import (
	"context"
	"math"
	"strconv"

	"github.com/specialistvlad/pohcalc/internal/aviation"
	"github.com/specialistvlad/pohcalc/internal/ctxlog"
	"github.com/specialistvlad/pohcalc/internal/engine"
	"github.com/specialistvlad/pohcalc/internal/mathutil"
	"github.com/specialistvlad/pohcalc/internal/value"
)

// Reserve rules: minutes of cruise fuel and the distance to an alternate.
var reserves = map[string]struct {
	minutes   float64
	alternate float64
}{
	"VFR":    {minutes: 30},
	"IFR0":   {minutes: 45},
	"IFR50":  {minutes: 45, alternate: 50},
	"IFR100": {minutes: 45, alternate: 100},
}

// alternateAltitude is how far above the destination the alternate leg is
// flown, capped at the cruise altitude.
const alternateAltitude = 3000

// approachMinutes is the time allowed for an approach at the alternate.
const approachMinutes = 5

// climb is the time, fuel and distance from one altitude to another.
type climb struct {
	time, fuel, dist value.Value
}

// climbBetween uses the POH time, fuel and distance to climb tables, which
// are counted from sea level, and adds 10% per 10°C above standard.
func climbBetween(s *engine.Scope, from, to, isa float64) climb {
	factor := 1.0
	if isa > 0 {
		factor += isa / 100
	}
	leg := func(table string) value.Value {
		lo := s.Interpolate(table, value.Number(math.Max(from, 0)))
		hi := s.Interpolate(table, value.Number(to))
		return value.Mul(value.Sub(hi, lo), value.Number(factor))
	}
	return climb{time: leg("ClimbTime"), fuel: leg("ClimbFuel"), dist: leg("ClimbDist")}
}

// cruiseRPM returns the RPM giving a power setting. "Max" and "LR" (long
// range) pick the highest and lowest power the table publishes.
func cruiseRPM(s *engine.Scope, power string, isa, pa float64) value.Value {
	var pct float64
	switch power {
	case "Max":
		pct = s.TableMax("CruiseRPM", "power")
	case "LR":
		pct = s.TableMin("CruiseRPM", "power")
	default:
		p, err := strconv.ParseFloat(power, 64)
		if err != nil {
			return value.Invalid(value.Input)
		}
		pct = p
	}
	rpm := s.Interpolate("CruiseRPM", value.Number(isa), value.Number(pa), value.Number(pct))
	return value.Map(func(xs ...float64) float64 { return mathutil.RoundMult(xs[0], 10) }, rpm)
}

// cruise is the performance at one altitude and power setting.
type cruise struct {
	rpm, tas, gph value.Value
}

func cruiseAt(s *engine.Scope, power string, isa, pa float64) cruise {
	rpm := cruiseRPM(s, power, isa, pa)
	return cruise{
		rpm: rpm,
		tas: s.Interpolate("CruiseTAS", value.Number(isa), value.Number(pa), rpm),
		gph: s.Interpolate("CruiseFF", value.Number(isa), value.Number(pa), rpm),
	}
}

var enrtOutputs = []string{
	"EnrtISA2", "EnrtClimbTime", "EnrtClimbDist", "EnrtClimbFuel_gal",
	"EnrtRPM", "EnrtTAS", "EnrtGPH", "EnrtPPH", "EnrtEff", "EnrtGS",
	"EnrtETE", "EnrtEndurance", "EnrtMaxRange", "EnrtReserve_gal",
	"EnrtFuelToDest_gal", "EnrtFuelAtDest_gal", "EnrtFuelSpare_gal",
}

// ComputeEnroute computes climb, cruise performance, time and fuel to the
// destination and the fuel left against the selected reserve.
func ComputeEnroute(ctx context.Context, s *engine.Scope) error {
	ac := s.Aircraft()
	if ac == nil {
		return errNoAircraft
	}
	logger := ctxlog.FromContext(ctx).With("aircraft", ac.ID)

	in, ok := floats(s,
		"DepAlt", "DepAltimeter_inhg", "DestAlt", "DestAltimeter_inhg",
		"EnrtAltH", "EnrtDist", "EnrtWind", "WBFuel_gal",
	)
	depAlt, depHg, destAlt, destHg, altH, dist, wind, fuel := in[0], in[1], in[2], in[3], in[4], in[5], in[6], in[7]
	power, okPower := s.Get("EnrtPower").Str()
	reserve, okReserve := reserves[s.Get("EnrtReserve").Text()]
	if !ok || !okPower || !okReserve {
		setInvalid(s, enrtOutputs...)
		return nil
	}

	alt := altH * 100
	switch {
	case alt <= depAlt:
		s.SetError("EnrtAltH", "<= departure altitude")
	case alt <= destAlt:
		s.SetError("EnrtAltH", "<= destination altitude")
	}
	if alt <= depAlt || alt <= destAlt {
		setInvalid(s, enrtOutputs...)
		return nil
	}

	depPA := aviation.PressureAlt(depAlt, depHg)
	destPA := aviation.PressureAlt(destAlt, destHg)
	pa := aviation.PressureAlt(alt, (depHg+destHg)/2)

	var isa float64
	if s.Get("EnrtTempType").Text() == "OAT" {
		oat, ok := s.Float("EnrtOAT")
		if !ok {
			setInvalid(s, enrtOutputs...)
			return nil
		}
		isa = aviation.StdTempDiff(pa, oat)
		s.Set("EnrtISA2", value.Number(isa))
	} else {
		f, ok := s.Float("EnrtISA")
		if !ok {
			setInvalid(s, enrtOutputs...)
			return nil
		}
		isa = f
		s.Set("EnrtISA2", value.Number(aviation.StdTemp(pa)+isa))
	}

	if wind >= 0 && s.Get("EnrtWindDir").Text() == "headwind" {
		wind = -wind
	}

	cl := climbBetween(s, depPA, pa, isa)
	cl.fuel = value.Add(cl.fuel, value.Number(ac.Scalar("WBTaxiFuel")))
	// Ground distance in the climb at the mean wind.
	cl.dist = value.Add(cl.dist, value.Map(func(xs ...float64) float64 { return wind * xs[0] / 60 }, cl.time))
	setPOH(s, "EnrtClimbTime", cl.time, "ClimbTime")
	setPOH(s, "EnrtClimbDist", cl.dist, "ClimbDist", "ClimbTime")
	setPOH(s, "EnrtClimbFuel_gal", cl.fuel, "ClimbFuel")
	climbTooLong := false
	if d, ok := cl.dist.Float(); ok && d > dist {
		s.SetError("EnrtDist", "< climb distance")
		climbTooLong = true
	}

	cr := cruiseAt(s, power, isa, pa)
	setPOH(s, "EnrtRPM", cr.rpm, "CruiseRPM")
	setPOH(s, "EnrtTAS", cr.tas, "CruiseRPM", "CruiseTAS")
	setPOH(s, "EnrtGPH", cr.gph, "CruiseRPM", "CruiseFF")
	s.Set("EnrtPPH", value.Mul(cr.gph, value.Number(lbsPerGal)))
	s.Set("EnrtEff", value.Div(cr.tas, cr.gph))

	gs := value.Add(cr.tas, value.Number(wind))
	if g, ok := gs.Float(); ok && g <= 0 {
		s.SetError("EnrtWind", "> true airspeed")
		gs = value.Invalid(value.Input)
	}
	s.Set("EnrtGS", gs)

	// Reserve: cruise minutes plus, for an alternate, the climb to the
	// alternate altitude, the leg itself and an approach.
	reserveFuel := value.Mul(cr.gph, value.Number(reserve.minutes/60))
	if reserve.alternate > 0 {
		altPA := math.Min(destPA+alternateAltitude, pa)
		altClimb := climbBetween(s, destPA, altPA, isa)
		altCruise := cruiseAt(s, power, isa, altPA)
		legHours := value.Map(func(xs ...float64) float64 {
			return reserve.alternate/xs[0] + approachMinutes/60.0
		}, altCruise.tas)
		reserveFuel = value.Sum(reserveFuel, altClimb.fuel, value.Mul(legHours, altCruise.gph))
	}
	setPOH(s, "EnrtReserve_gal", reserveFuel, "CruiseRPM", "CruiseFF", "ClimbFuel")

	cruiseFuel := value.Sub(value.Number(fuel), cl.fuel)
	endurance := value.Add(cl.time, value.Mul(value.Div(cruiseFuel, cr.gph), value.Number(60)))
	setPOH(s, "EnrtEndurance", endurance, "CruiseRPM", "CruiseFF", "ClimbTime")
	maxRange := value.Add(cl.dist, value.Mul(value.Div(value.Sub(cruiseFuel, reserveFuel), cr.gph), gs))
	setPOH(s, "EnrtMaxRange", value.Map(func(xs ...float64) float64 { return math.Max(xs[0], 0) }, maxRange), "CruiseRPM", "CruiseTAS", "CruiseFF")

	if climbTooLong {
		setInvalid(s, "EnrtETE", "EnrtFuelToDest_gal", "EnrtFuelAtDest_gal", "EnrtFuelSpare_gal")
		return nil
	}
	cruiseHours := value.Div(value.Sub(value.Number(dist), cl.dist), gs)
	ete := value.Add(cl.time, value.Mul(cruiseHours, value.Number(60)))
	toDest := value.Add(cl.fuel, value.Mul(cruiseHours, cr.gph))
	atDest := value.Sub(value.Number(fuel), toDest)
	spare := value.Sub(atDest, reserveFuel)
	setPOH(s, "EnrtETE", ete, "CruiseRPM", "CruiseTAS", "ClimbTime")
	setPOH(s, "EnrtFuelToDest_gal", toDest, "CruiseRPM", "CruiseFF", "ClimbFuel")
	setPOH(s, "EnrtFuelAtDest_gal", atDest, "CruiseRPM", "CruiseFF", "ClimbFuel")
	setPOH(s, "EnrtFuelSpare_gal", spare, "CruiseRPM", "CruiseFF", "ClimbFuel")
	if f, ok := spare.Float(); ok && f < 0 {
		s.SetError("EnrtFuelAtDest_gal", "Insufficient fuel")
	}

	logger.Debug("Enroute computed.", "pa", pa, "isa", isa, "rpm", cr.rpm, "fuel_to_dest", toDest)
	return nil
}
