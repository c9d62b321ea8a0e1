// Package units parses unit suffixes out of field ids and converts values
// between the units of one sibling set.
package units

import (
	"fmt"
	"regexp"

	"github.com/specialistvlad/pohcalc/internal/mathutil"
	"github.com/specialistvlad/pohcalc/internal/value"
)

// Unit is a measurement unit tag taken from a field id suffix.
type Unit string

const (
	HPa  Unit = "hpa"
	InHg Unit = "inhg"
	Ft   Unit = "ft"
	M    Unit = "m"
	Gal  Unit = "gal"
	L    Unit = "l"
	Lbs  Unit = "lbs"
	Kg   Unit = "kg"
)

const (
	stdAtmHg  = 29.92
	stdAtmHPa = 1013.25
	ftPerM    = 3.2808
	galPerL   = 0.26417
	lbsPerKg  = 2.2046
)

var idPattern = regexp.MustCompile(`^(\w*)_(hpa|inhg|ft|m|gal|l|lbs|kg)$`)

// Split breaks an id such as "WBFuel_gal" into its base and unit. ok is false
// for ids without a unit suffix.
func Split(id string) (base string, unit Unit, ok bool) {
	m := idPattern.FindStringSubmatch(id)
	if m == nil {
		return id, "", false
	}
	return m[1], Unit(m[2]), true
}

// ID joins a base and a unit back into a field id.
func ID(base string, unit Unit) string {
	return base + "_" + string(unit)
}

// Func converts a number from one unit to another.
type Func func(float64) float64

type pair struct{ from, to Unit }

// Converter holds the conversion functions and unit controllers.
type Converter struct {
	funcs       map[pair]Func
	controllers map[Unit]string
}

// NewConverter returns a converter preloaded with the pressure, length,
// volume and weight conversions and their controlling settings fields.
func NewConverter() *Converter {
	c := &Converter{
		funcs:       make(map[pair]Func),
		controllers: make(map[Unit]string),
	}
	c.Register(HPa, InHg, HPaToInHg)
	c.Register(InHg, HPa, InHgToHPa)
	c.Register(M, Ft, MToFt)
	c.Register(Ft, M, FtToM)
	c.Register(L, Gal, LToGal)
	c.Register(Gal, L, GalToL)
	c.Register(Kg, Lbs, KgToLbs)
	c.Register(Lbs, Kg, LbsToKg)

	c.SetController("SetFuelUnits", Gal, L)
	c.SetController("SetWeightUnits", Lbs, Kg)
	c.SetController("SetRunwayUnits", Ft, M)
	c.SetController("SetAltimeterUnits", InHg, HPa)
	return c
}

// Register adds or replaces the conversion from one unit to another.
func (c *Converter) Register(from, to Unit, fn Func) {
	c.funcs[pair{from, to}] = fn
}

// SetController names the enum field that selects between the given units.
func (c *Converter) SetController(fieldID string, us ...Unit) {
	for _, u := range us {
		c.controllers[u] = fieldID
	}
}

// Controller returns the controlling field id for a unit.
func (c *Converter) Controller(u Unit) (string, bool) {
	id, ok := c.controllers[u]
	return id, ok
}

// CanConvert reports whether a conversion between the units is registered.
func (c *Converter) CanConvert(from, to Unit) bool {
	if from == to {
		return true
	}
	_, ok := c.funcs[pair{from, to}]
	return ok
}

// Convert converts v. Invalid values and same-unit conversions are returned
// unchanged. A missing conversion pair panics.
func (c *Converter) Convert(v value.Value, from, to Unit) value.Value {
	if from == to || !v.IsValid() {
		return v
	}
	f, ok := v.Float()
	if !ok {
		return v
	}
	fn, ok := c.funcs[pair{from, to}]
	if !ok {
		panic(fmt.Sprintf("units: no conversion from %s to %s", from, to))
	}
	return value.Number(fn(f))
}

func HPaToInHg(h float64) float64 { return mathutil.Round(h*stdAtmHg/stdAtmHPa, 2) }
func InHgToHPa(hg float64) float64 { return mathutil.Round(hg*stdAtmHPa/stdAtmHg, 0) }
func MToFt(m float64) float64      { return mathutil.Round(m*ftPerM, 0) }
func FtToM(ft float64) float64     { return mathutil.Round(ft/ftPerM, 0) }
func LToGal(l float64) float64     { return mathutil.Round(l*galPerL, 0) }
func GalToL(gal float64) float64   { return mathutil.Round(gal/galPerL, 0) }
func KgToLbs(kg float64) float64   { return mathutil.Round(kg*lbsPerKg, 0) }
func LbsToKg(lbs float64) float64  { return mathutil.Round(lbs/lbsPerKg, 0) }
