package c172

import (
	"errors"
	"math"

	"github.com/specialistvlad/pohcalc/internal/aviation"
	"github.com/specialistvlad/pohcalc/internal/engine"
	"github.com/specialistvlad/pohcalc/internal/field"
	"github.com/specialistvlad/pohcalc/internal/mathutil"
	"github.com/specialistvlad/pohcalc/internal/value"
)

// lbsPerGal is the weight of a gallon of avgas.
const lbsPerGal = 6.0

var errNoAircraft = errors.New("no aircraft model selected")

var alert = field.Style{Color: field.AlertColor}

// floats reads several number fields at once. ok is false when any of them
// is invalid.
func floats(s *engine.Scope, ids ...string) (vals []float64, ok bool) {
	vals = make([]float64, len(ids))
	ok = true
	for i, id := range ids {
		f, valid := s.Float(id)
		vals[i] = f
		ok = ok && valid
	}
	return vals, ok
}

// setPOH writes a table-derived output, attributing an invalid value to the
// first of tables whose last lookup failed.
func setPOH(s *engine.Scope, id string, v value.Value, tables ...string) {
	src := tables[0]
	for _, t := range tables {
		if s.TableError(t) != nil {
			src = t
			break
		}
	}
	s.SetPOHOutput(id, v, src)
}

// setInvalid marks outputs as not computable from the inputs.
func setInvalid(s *engine.Scope, ids ...string) {
	for _, id := range ids {
		s.Set(id, value.Invalid(value.Input))
	}
}

// readWind parses a wind direction and speed input pair.
func readWind(s *engine.Scope, dirID, speedID string) (aviation.Wind, bool) {
	dirStr, ok1 := s.Get(dirID).Str()
	speedStr, ok2 := s.Get(speedID).Str()
	if !ok1 || !ok2 {
		return aviation.Wind{}, false
	}
	dir, err := aviation.ParseWindDirection(dirStr)
	if err != nil {
		return aviation.Wind{}, false
	}
	speed, err := aviation.ParseWindSpeed(speedStr)
	if err != nil {
		return aviation.Wind{}, false
	}
	return aviation.Wind{Dir: dir, Speed: speed}, true
}

// windFactor scales POH takeoff and landing distances for the runway wind:
// 10% less per 9 knots of headwind, 10% more per 2 knots of tailwind.
func windFactor(headwind float64) float64 {
	if headwind >= 0 {
		return 1 - 0.1*headwind/9
	}
	return 1 - 0.1*headwind/2
}

// safeDistance applies a safety margin in percent and rounds up to 100 ft,
// keeping at least 200 ft over the bare distance.
func safeDistance(d, margin float64) float64 {
	return math.Max(mathutil.RoundUpMult(d*(1+margin/100), 100), d+200)
}

// runwayWind returns the headwind and crosswind components for a runway
// designator. An invalid runway gives no components and ok false.
func runwayWind(w aviation.Wind, rwy string) (hw, xw float64, ok bool) {
	hdg, err := aviation.RunwayHeading(rwy)
	if err != nil {
		return 0, 0, false
	}
	return w.RunwayHeadwind(hdg), w.RunwayCrosswind(hdg), true
}

// crosswindSide names the side a crosswind comes from.
func crosswindSide(xw float64) string {
	switch {
	case xw > 0:
		return "R"
	case xw < 0:
		return "L"
	default:
		return ""
	}
}

// casToIAS converts a calibrated airspeed with the conversion table of a
// flap setting.
func casToIAS(s *engine.Scope, cas value.Value, flaps string) value.Value {
	return s.Interpolate("CASToIAS"+flapsTable(flaps), cas)
}

// flapsTable maps a flap setting to the suffix of its tables and stall
// scalars. The 172 publishes 0°, 10° and 30°; 20° uses the 30° figures.
func flapsTable(flaps string) string {
	switch flaps {
	case "0", "10":
		return flaps
	default:
		return "30"
	}
}

// approachSpeed returns 1.3 Vs in IAS for a flap setting, with the stall
// speed adjusted from maximum takeoff weight to weight.
func approachSpeed(s *engine.Scope, weight value.Value, flaps string) value.Value {
	ac := s.Aircraft()
	stall := ac.Scalar("StallCAS" + flapsTable(flaps))
	maxTO := ac.Scalar("WBMaxTOWeight")
	cas := value.Map(func(xs ...float64) float64 {
		return 1.3 * aviation.SpeedAdjust(stall, maxTO, xs[0])
	}, weight)
	return casToIAS(s, cas, flaps)
}
