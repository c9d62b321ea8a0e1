package c172

import (
	"context"

	"github.com/specialistvlad/pohcalc/internal/aviation"
	"github.com/specialistvlad/pohcalc/internal/ctxlog"
	"github.com/specialistvlad/pohcalc/internal/engine"
	"github.com/specialistvlad/pohcalc/internal/mathutil"
	"github.com/specialistvlad/pohcalc/internal/value"
)

// ComputeEmergency computes the engine-out glide from the selected altitude
// to the landing site, at the model's best glide speed.
func ComputeEmergency(ctx context.Context, s *engine.Scope) error {
	ac := s.Aircraft()
	if ac == nil {
		return errNoAircraft
	}
	s.Set("EmergGlideCAS", value.Number(ac.Scalar("GlideCAS")))

	in, ok := floats(s, "EmergAlt", "EmergLdgAlt", "EmergISA", "EmergWind")
	if !ok {
		setInvalid(s, "EmergOAT", "EmergGlideDist")
		return nil
	}
	alt, dalt, isa, headwind := in[0], in[1], in[2], in[3]
	s.Set("EmergOAT", value.Number(mathutil.Round(aviation.StdTemp(alt)+isa, 0)))

	if alt <= dalt {
		s.Set("EmergGlideDist", value.Invalid(value.Input))
		s.SetError("EmergGlideDist", "Below the landing site")
		return nil
	}
	dist := aviation.GlideDistance(ac.Scalar("GlideRatio"), ac.Scalar("GlideCAS"), headwind, alt, dalt, isa)
	s.Set("EmergGlideDist", value.Number(dist))

	ctxlog.FromContext(ctx).Debug("Glide computed.", "aircraft", ac.ID, "altitude", alt, "distance", dist)
	return nil
}
