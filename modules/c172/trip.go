package c172

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/pohcalc/internal/engine"
	"github.com/specialistvlad/pohcalc/internal/format"
	"github.com/specialistvlad/pohcalc/internal/value"
)

// ComputeTrip summarises the route of the trip page. The aliased fields
// mirror themselves.
func ComputeTrip(ctx context.Context, s *engine.Scope) error {
	var parts []string

	dep, _ := s.Get("DepArpt").Str()
	dest, _ := s.Get("DestArpt").Str()
	if dep != "" || dest != "" {
		parts = append(parts, fmt.Sprintf("%s → %s", orNone(dep), orNone(dest)))
	}
	if d, ok := s.Float("EnrtDist"); ok {
		parts = append(parts, format.Num(d, 0)+" nm")
	}
	if h, ok := s.Float("EnrtAltH"); ok {
		parts = append(parts, format.Num(h*100, 0)+" ft")
	}
	if ete, ok := s.Float("EnrtETE"); ok {
		parts = append(parts, "ETE "+format.Time(ete))
	}
	s.Set("TripSummary", value.String(strings.Join(parts, ", ")))
	return nil
}

func orNone(arpt string) string {
	if arpt == "" {
		return "?"
	}
	return arpt
}
