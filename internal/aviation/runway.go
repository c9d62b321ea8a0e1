package aviation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/specialistvlad/pohcalc/internal/mathutil"
)

const (
	// FtPerNM is feet per nautical mile.
	FtPerNM = 6076.12
	gravity = 32.2 // ft/s²
)

var runwayPattern = regexp.MustCompile(`^(\d{1,2})([LRC]?)$`)

// RunwayHeading returns the magnetic heading of a runway designator such as
// "09" or "27L".
func RunwayHeading(id string) (float64, error) {
	m := runwayPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(id)))
	if m == nil {
		return 0, fmt.Errorf("invalid runway %q", id)
	}
	n, _ := strconv.Atoi(m[1])
	if n < 1 || n > 36 {
		return 0, fmt.Errorf("invalid runway %q", id)
	}
	return float64(n * 10), nil
}

// AngleDiff returns b-a normalised to (-180, 180].
func AngleDiff(a, b float64) float64 {
	d := math.Mod(b-a, 360)
	switch {
	case d <= -180:
		d += 360
	case d > 180:
		d -= 360
	}
	return d
}

func adjust360(a float64) float64 {
	a = math.Mod(a, 360)
	if a <= 0 {
		a += 360
	}
	return a
}

// isAngleIn reports whether a lies on the clockwise arc from start to end.
func isAngleIn(a, start, end float64) bool {
	if end > start {
		return a >= start && a <= end
	}
	return (a >= start && a <= 360) || (a >= 0 && a <= end)
}

// Wind is a surface wind as reported: a direction (possibly variable) and a
// speed (possibly gusting).
type Wind struct {
	Dir   WindDirection
	Speed WindSpeed
}

func (w Wind) max() float64 {
	if w.Speed.Gust > w.Speed.Speed {
		return w.Speed.Gust
	}
	return w.Speed.Speed
}

// RunwayHeadwind returns the headwind component along a runway heading,
// negative for a tailwind. Winds within 90° of the nose use the steady
// speed, others the gust; a variable direction takes the worst case.
func (w Wind) RunwayHeadwind(rwy float64) float64 {
	if w.Dir.Variable {
		return -w.max()
	}
	hw := func(dir float64) float64 {
		a := AngleDiff(rwy, dir)
		speed := w.max()
		if math.Abs(a) < 90 {
			speed = w.Speed.Speed
		}
		return Headwind(a, speed)
	}
	h := hw(w.Dir.Dir)
	if w.Dir.VaryTo != 0 {
		if isAngleIn(adjust360(rwy+180), w.Dir.Dir, w.Dir.VaryTo) {
			return -w.max()
		}
		h = math.Min(h, hw(w.Dir.VaryTo))
	}
	return mathutil.Round(h, 0)
}

// RunwayCrosswind returns the crosswind component across a runway heading,
// negative from the left. Gusts always count.
func (w Wind) RunwayCrosswind(rwy float64) float64 {
	if w.Dir.Variable {
		return w.max()
	}
	x := Crosswind(AngleDiff(rwy, w.Dir.Dir), w.max())
	if w.Dir.VaryTo != 0 {
		if isAngleIn(adjust360(rwy+90), w.Dir.Dir, w.Dir.VaryTo) {
			return w.max()
		}
		if isAngleIn(adjust360(rwy-90), w.Dir.Dir, w.Dir.VaryTo) {
			return -w.max()
		}
		if x2 := Crosswind(AngleDiff(rwy, w.Dir.VaryTo), w.max()); math.Abs(x2) > math.Abs(x) {
			x = x2
		}
	}
	return mathutil.Round(x, 0)
}

// DegCToF converts Celsius to Fahrenheit.
func DegCToF(c float64) float64 { return 32 + c*9/5 }

// SpeedAdjust scales a calibrated speed published for specWeight to weight.
func SpeedAdjust(v, specWeight, weight float64) float64 {
	return v * math.Sqrt(weight/specWeight)
}

// ClimbGradient returns the climb gradient in ft/nm for a rate of climb in
// ft/min and a ground speed in knots.
func ClimbGradient(roc, gs float64) float64 { return roc / (gs / 60) }

// SlopeAdjustRoll lengthens a takeoff roll for an upslope given in percent.
// Downslopes never shorten the roll.
func SlopeAdjustRoll(roll, slope, vr float64) float64 {
	if slope <= 0 {
		return roll
	}
	v := vr * FtPerNM / 3600
	rad := math.Atan(slope / 100)
	return roll / (1 - 2*gravity*roll*math.Sin(rad)/(v*v))
}
