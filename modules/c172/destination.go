package c172

import (
	"context"
	"math"

	"github.com/specialistvlad/pohcalc/internal/aviation"
	"github.com/specialistvlad/pohcalc/internal/ctxlog"
	"github.com/specialistvlad/pohcalc/internal/engine"
	"github.com/specialistvlad/pohcalc/internal/value"
)

const (
	// flapsUpLanding scales both landing distances with flaps retracted.
	flapsUpLanding = 1.35
	// grassLanding scales the ground roll on a dry grass runway; the
	// obstacle distance grows by the same amount.
	grassLanding = 1.45
)

var destDistances = []string{
	"DestRoll_ft", "DestObstacle_ft", "DestSafeRunway_ft", "DestSafeObstacle_ft",
	"DestRunwayLeft_ft", "DestClimbRate", "DestClimbGradient",
}

// ComputeDestination computes approach speeds, landing distances at the
// landing weight and the go-around climb for the destination runway.
func ComputeDestination(ctx context.Context, s *engine.Scope) error {
	ac := s.Aircraft()
	if ac == nil {
		return errNoAircraft
	}
	logger := ctxlog.FromContext(ctx).With("aircraft", ac.ID)

	weight := s.Get("WBLdgWeight_lbs")
	flaps := s.Get("DestFlaps").Text()
	s.Set("DestVs", value.Number(ac.Scalar("StallIAS"+flapsTable(flaps))))
	s.Set("Dest13Vs", approachSpeed(s, weight, flaps))
	vy := s.Interpolate("Vy", weight)
	setPOH(s, "DestVy", vy, "Vy")

	af, ok := readAirfield(s, "Dest")
	margin, okMargin := s.Float("SetLdgSafety")
	if !ok || !okMargin {
		setInvalid(s, destDistances...)
		return nil
	}
	setRunwayWind(s, "Dest", af)

	at := []value.Value{value.Number(af.oat), value.Number(af.pa)}
	factor := windFactor(af.hw)
	if flaps == "0" {
		factor *= flapsUpLanding
	}
	roll := value.Mul(s.Interpolate("LdgRoll", at...), value.Number(factor))
	obstacle := value.Mul(s.Interpolate("LdgObstacle", at...), value.Number(factor))
	if af.cond == "dry grass" {
		extra := value.Mul(roll, value.Number(grassLanding-1))
		roll, obstacle = value.Add(roll, extra), value.Add(obstacle, extra)
	}
	setPOH(s, "DestRoll_ft", roll, "LdgRoll")
	setPOH(s, "DestObstacle_ft", obstacle, "LdgObstacle", "LdgRoll")

	safe := value.Map(func(xs ...float64) float64 { return safeDistance(xs[0], margin) }, roll)
	setPOH(s, "DestSafeRunway_ft", safe, "LdgRoll")
	safeObstacle := value.Map(func(xs ...float64) float64 { return safeDistance(xs[0], margin) }, obstacle)
	setPOH(s, "DestSafeObstacle_ft", safeObstacle, "LdgObstacle", "LdgRoll")
	setRunwayLeft(s, "Dest", af, safe)

	// Go-around: rate of climb at Vy and the gradient over the ground
	// into the runway wind.
	roc := s.Interpolate("ClimbRate", at...)
	setPOH(s, "DestClimbRate", roc, "ClimbRate")
	gradient := value.Map(func(xs ...float64) float64 {
		return aviation.ClimbGradient(xs[0], math.Max(xs[1]-af.hw, 1))
	}, roc, vy)
	setPOH(s, "DestClimbGradient", gradient, "ClimbRate", "Vy")

	logger.Debug("Destination computed.", "roll", roll, "obstacle", obstacle, "headwind", af.hw)
	return nil
}
