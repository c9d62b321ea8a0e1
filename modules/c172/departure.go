package c172

import (
	"context"
	"math"

	"github.com/specialistvlad/pohcalc/internal/aviation"
	"github.com/specialistvlad/pohcalc/internal/ctxlog"
	"github.com/specialistvlad/pohcalc/internal/engine"
	"github.com/specialistvlad/pohcalc/internal/value"
)

// grassTakeoff is the share of the ground roll added to both takeoff
// distances on a dry grass runway.
const grassTakeoff = 0.15

// airfield is the atmosphere and runway of a departure or destination.
type airfield struct {
	oat    float64
	pa     float64 // pressure altitude, floored at sea level for POH tables
	length float64 // 0 when unknown
	cond   string
	hw, xw float64
}

// readAirfield reads the inputs prefixed with page ("Dep" or "Dest") and
// writes the temperature and density altitude outputs.
func readAirfield(s *engine.Scope, page string) (airfield, bool) {
	in, ok := floats(s, page+"Alt", page+"Altimeter_inhg", page+"OAT", page+"RwyLength_ft")
	if !ok {
		setInvalid(s, page+"TempF", page+"TempISA", page+"DA")
		return airfield{}, false
	}
	alt, hg, oat, length := in[0], in[1], in[2], in[3]
	pa := aviation.PressureAlt(alt, hg)
	s.Set(page+"TempF", value.Number(aviation.DegCToF(oat)))
	s.Set(page+"TempISA", value.Number(aviation.StdTempDiff(pa, oat)))
	s.Set(page+"DA", value.Number(aviation.DensityAlt(pa, oat)))

	af := airfield{oat: oat, pa: math.Max(pa, 0), length: length, cond: s.Get(page + "RwyCond").Text()}
	wind, ok := readWind(s, page+"WindDir", page+"Wind")
	if !ok {
		return af, false
	}
	rwy, _ := s.Get(page + "Rwy").Str()
	hw, xw, ok := runwayWind(wind, rwy)
	if !ok {
		s.SetError(page+"Rwy", "Invalid runway")
		return af, false
	}
	af.hw, af.xw = hw, xw
	return af, true
}

// setRunwayWind writes the wind components and checks the crosswind limit.
func setRunwayWind(s *engine.Scope, page string, af airfield) {
	s.Set(page+"Headwind", value.Number(af.hw))
	s.Set(page+"Crosswind", value.Number(math.Abs(af.xw)))
	s.Set(page+"CrosswindDir", value.String(crosswindSide(af.xw)))
	if math.Abs(af.xw) > s.Aircraft().Scalar("MaxXWind") {
		s.SetError(page+"Crosswind", "> max. crosswind")
	}
}

// setRunwayLeft writes the runway remaining beyond the safe distance.
func setRunwayLeft(s *engine.Scope, page string, af airfield, safe value.Value) {
	if af.length <= 0 {
		return
	}
	left := value.Sub(value.Number(af.length), safe)
	s.Set(page+"RunwayLeft_ft", left)
	if f, ok := left.Float(); ok && f < 0 {
		s.SetError(page+"RunwayLeft_ft", "< safe runway")
	}
}

var depDistances = []string{
	"DepRoll_ft", "DepObstacle_ft", "DepSafeRunway_ft", "DepSafeObstacle_ft",
	"DepRunwayLeft_ft", "DepAcStop_ft",
}

// ComputeDeparture computes takeoff speeds and distances at the takeoff
// weight for the departure runway.
func ComputeDeparture(ctx context.Context, s *engine.Scope) error {
	ac := s.Aircraft()
	if ac == nil {
		return errNoAircraft
	}
	logger := ctxlog.FromContext(ctx).With("aircraft", ac.ID)

	weight := s.Get("WBTOWeight_lbs")
	setPOH(s, "DepVx", s.Interpolate("Vx", weight), "Vx")
	setPOH(s, "DepVy", s.Interpolate("Vy", weight), "Vy")
	vr := s.Interpolate("TOVr", weight)
	setPOH(s, "DepVr", vr, "TOVr")
	setPOH(s, "DepVa", s.Interpolate("Va", weight), "Va")
	s.Set("DepVs", value.Number(ac.Scalar("StallIAS0")))
	s.Set("DepVs10", value.Number(ac.Scalar("StallIAS10")))
	s.Set("Dep13Vs", approachSpeed(s, weight, "0"))
	s.Set("Dep13Vs10", approachSpeed(s, weight, "10"))

	af, ok := readAirfield(s, "Dep")
	slope, okSlope := s.Float("DepSlope")
	margin, okMargin := s.Float("SetTOSafety")
	if !ok || !okSlope || !okMargin {
		setInvalid(s, depDistances...)
		return nil
	}
	setRunwayWind(s, "Dep", af)

	// Lighter weights use the lowest weight of the chart.
	tableWeight := value.Map(func(xs ...float64) float64 {
		return math.Max(xs[0], s.TableMin("TORoll", "weight"))
	}, weight)
	at := []value.Value{tableWeight, value.Number(af.oat), value.Number(af.pa)}
	roll := value.Mul(s.Interpolate("TORoll", at...), value.Number(windFactor(af.hw)))
	obstacle := value.Mul(s.Interpolate("TOObstacle", at...), value.Number(windFactor(af.hw)))

	if af.cond == "dry grass" {
		extra := value.Mul(roll, value.Number(grassTakeoff))
		roll, obstacle = value.Add(roll, extra), value.Add(obstacle, extra)
	}
	if slope > 0 {
		sloped := value.Map(func(xs ...float64) float64 {
			return aviation.SlopeAdjustRoll(xs[0], slope, xs[1])
		}, roll, vr)
		obstacle = value.Add(obstacle, value.Sub(sloped, roll))
		roll = sloped
	}

	setPOH(s, "DepRoll_ft", roll, "TORoll")
	setPOH(s, "DepObstacle_ft", obstacle, "TOObstacle", "TORoll")

	safe := value.Map(func(xs ...float64) float64 { return safeDistance(xs[0], margin) }, roll)
	setPOH(s, "DepSafeRunway_ft", safe, "TORoll")
	safeObstacle := value.Map(func(xs ...float64) float64 { return safeDistance(xs[0], margin) }, obstacle)
	setPOH(s, "DepSafeObstacle_ft", safeObstacle, "TOObstacle", "TORoll")
	setRunwayLeft(s, "Dep", af, safe)

	// Accelerate-stop: the takeoff roll plus a landing roll on the same
	// runway.
	stop := s.Interpolate("LdgRoll", value.Number(af.oat), value.Number(af.pa))
	setPOH(s, "DepAcStop_ft", value.Add(roll, stop), "TORoll", "LdgRoll")

	logger.Debug("Departure computed.", "roll", roll, "obstacle", obstacle, "headwind", af.hw)
	return nil
}
