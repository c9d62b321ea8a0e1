package c172

import (
	"context"
	"strings"

	"github.com/specialistvlad/pohcalc/internal/engine"
	"github.com/specialistvlad/pohcalc/internal/value"
)

var unitControllers = []string{"SetFuelUnits", "SetWeightUnits", "SetRunwayUnits", "SetAltimeterUnits"}

// ComputeSettings lists the selected units. Switching units needs nothing
// else: every unit-bearing field already holds its value in all units.
func ComputeSettings(ctx context.Context, s *engine.Scope) error {
	var selected []string
	for _, id := range unitControllers {
		if u, ok := s.Get(id).Str(); ok {
			selected = append(selected, u)
		}
	}
	s.Set("SetUnitsSummary", value.String(strings.Join(selected, ", ")))
	return nil
}
