package aviation

import "math"

const (
	seaLevelPressure = 2116.2166 // lb/ft²
	seaLevelSound    = 661.4786  // kt
	kelvin0C         = 273.15
)

// CASToMach converts a calibrated airspeed at a pressure altitude to a Mach
// number.
func CASToMach(cas, pa float64) float64 {
	dp := seaLevelPressure * (math.Pow(1+0.2*math.Pow(cas/seaLevelSound, 2), 3.5) - 1)
	p := seaLevelPressure * math.Pow(1-6.8755856e-6*pa, 5.2558797)
	return math.Sqrt(5 * (math.Pow(dp/p+1, 2.0/7) - 1))
}

// CASToTAS converts a calibrated airspeed to true airspeed at a pressure
// altitude and static air temperature (°C). Supersonic results are NaN.
func CASToTAS(cas, pa, sat float64) float64 {
	m := CASToMach(cas, pa)
	if m >= 1 {
		return math.NaN()
	}
	return m * 38.967854 * math.Sqrt(sat+kelvin0C)
}

// GlideDistance returns the distance in nm covered gliding from alt down to
// dalt (ft) at the best glide speed cas. ratio is the still-air distance in
// nm per foot of altitude. A tailwind (negative headwind) is assumed to fade
// linearly to calm at dalt; a headwind is held constant.
func GlideDistance(ratio, cas, headwind, alt, dalt, isa float64) float64 {
	if alt <= dalt {
		return 0
	}
	fade := 0.0
	if headwind < 0 {
		fade = 1000 * headwind / (alt - dalt)
	}
	drift := 0.0
	a := alt
	for ; a >= dalt+1000; a -= 1000 {
		hours := ratio * 1000 / CASToTAS(cas, a, StdTemp(a)+isa)
		drift += hours * headwind
		headwind -= fade
	}
	if a > dalt {
		hours := ratio * (a - dalt) / CASToTAS(cas, a, StdTemp(a)+isa)
		drift += hours * headwind
	}
	return ratio*(alt-dalt) - drift
}
