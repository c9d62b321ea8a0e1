// Package aviation holds standard-atmosphere and wind helpers used by the
// aircraft computations and by input validation.
package aviation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// StdTemp returns the ISA temperature in °C at a pressure altitude.
func StdTemp(pa float64) float64 {
	return 15 - 1.981*pa/1000
}

// StdTempDiff returns how far oat is above standard at a pressure altitude.
func StdTempDiff(pa, oat float64) float64 {
	return oat - StdTemp(pa)
}

// PressureAlt converts an altitude and altimeter setting (inHg) to pressure
// altitude. Flight levels are already pressure altitudes.
func PressureAlt(altitude, altimeter float64) float64 {
	if altitude >= 18000 {
		return altitude
	}
	return altitude - (altimeter-29.92)*1000
}

// DensityAlt returns the density altitude for a pressure altitude and OAT.
func DensityAlt(pa, oat float64) float64 {
	return 145426 * (1 - math.Pow(math.Pow((288.16-1.981*pa/1000)/288.16, 5.2563)/((273.16+oat)/288.16), 0.235))
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 { return deg * math.Pi / 180 }

// Headwind returns the headwind component of a wind at angle degrees off the
// nose. Negative is a tailwind.
func Headwind(angle, wind float64) float64 {
	return math.Cos(DegToRad(angle)) * wind
}

// Crosswind returns the crosswind component of a wind at angle degrees off
// the nose.
func Crosswind(angle, wind float64) float64 {
	return math.Sin(DegToRad(angle)) * wind
}

var (
	windSpeedPattern = regexp.MustCompile(`(?i)^(\d{1,3})(?:G(\d{1,3}))?`)
	windDirPattern   = regexp.MustCompile(`(?i)^(\d{1,3})(?:V(\d{1,3}))?|^(VRB)`)
)

// WindSpeed is a parsed "NNGmm" wind speed. Gust is zero when absent.
type WindSpeed struct {
	Speed float64
	Gust  float64
}

// ParseWindSpeed parses "12" or "12G20". Speeds are limited to 99 knots and a
// gust must exceed the steady speed.
func ParseWindSpeed(s string) (WindSpeed, error) {
	m := windSpeedPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return WindSpeed{}, fmt.Errorf("invalid wind speed %q", s)
	}
	w := WindSpeed{}
	w.Speed, _ = strconv.ParseFloat(m[1], 64)
	if w.Speed > 99 {
		return WindSpeed{}, fmt.Errorf("wind speed %q too large", s)
	}
	if m[2] != "" {
		w.Gust, _ = strconv.ParseFloat(m[2], 64)
		if w.Gust > 99 || w.Gust <= w.Speed {
			return WindSpeed{}, fmt.Errorf("invalid gust in %q", s)
		}
	}
	return w, nil
}

// WindDirection is a parsed "DDD", "DDDVddd" or "VRB" wind direction.
type WindDirection struct {
	Dir      float64
	VaryTo   float64
	Variable bool
}

// ParseWindDirection parses a wind direction. Directions are 10..360 in
// multiples of ten and a variation bound must differ from the base.
func ParseWindDirection(s string) (WindDirection, error) {
	m := windDirPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return WindDirection{}, fmt.Errorf("invalid wind direction %q", s)
	}
	if m[3] != "" {
		return WindDirection{Variable: true}, nil
	}
	w := WindDirection{}
	w.Dir, _ = strconv.ParseFloat(m[1], 64)
	if !validHeading(w.Dir) {
		return WindDirection{}, fmt.Errorf("invalid wind direction %q", s)
	}
	if m[2] != "" {
		w.VaryTo, _ = strconv.ParseFloat(m[2], 64)
		if !validHeading(w.VaryTo) || w.VaryTo == w.Dir {
			return WindDirection{}, fmt.Errorf("invalid variable wind direction %q", s)
		}
	}
	return w, nil
}

func validHeading(d float64) bool {
	return d >= 1 && d <= 360 && math.Mod(d, 10) == 0
}
