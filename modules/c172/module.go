package c172

import (
	"github.com/specialistvlad/pohcalc/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the page computations, change handlers and expression
// functions of the Cessna 172 calculator.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterComputation("wb", ComputeWB)
	r.RegisterComputation("enrt", ComputeEnroute)
	r.RegisterComputation("dep", ComputeDeparture)
	r.RegisterComputation("dest", ComputeDestination)
	r.RegisterComputation("settings", ComputeSettings)
	r.RegisterComputation("ac", ComputeAC)
	r.RegisterComputation("trip", ComputeTrip)
	r.RegisterComputation("emerg", ComputeEmergency)
	r.RegisterComputation("risk", ComputeRisk)

	r.RegisterChangeHandler("aircraft_changed", OnAircraftChanged)

	r.RegisterExprFunc("max_usable_fuel", MaxUsableFuel)
	r.RegisterExprFunc("cruise_std_oat", CruiseStdOAT)
}
