package scenario

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/specialistvlad/pohcalc/internal/config"
	"github.com/specialistvlad/pohcalc/internal/ctxlog"
	"github.com/specialistvlad/pohcalc/internal/session"
	"golang.org/x/sync/errgroup"
)

// tolerance absorbs float noise in expected numbers written in decimal.
const tolerance = 1e-9

// Mismatch is one expectation a scenario did not meet.
type Mismatch struct {
	Field    string `json:"field"`
	Expected any    `json:"expected"`
	Got      string `json:"got"`
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: expected %v, got %s", m.Field, m.Expected, m.Got)
}

// Result is the outcome of one scenario.
type Result struct {
	Scenario   string        `json:"scenario"`
	Mismatches []Mismatch    `json:"mismatches,omitempty"`
	Err        error         `json:"-"`
	Duration   time.Duration `json:"duration"`
}

// Passed reports whether the scenario ran and met every expectation.
func (r Result) Passed() bool { return r.Err == nil && len(r.Mismatches) == 0 }

// Runner replays scenarios with sessions of one factory.
type Runner struct {
	Factory *session.Factory
	// AircraftField is the input a scenario's aircraft is written to.
	AircraftField string
}

// Run replays a single scenario on a new session.
func (r *Runner) Run(ctx context.Context, sc *config.Scenario) Result {
	ctx, logger := ctxlog.With(ctx, "scenario", sc.Name)
	start := time.Now()

	res := Result{Scenario: sc.Name}
	res.Mismatches, res.Err = r.run(ctx, sc)
	res.Duration = time.Since(start)

	if res.Passed() {
		logger.Debug("Scenario passed.", "duration", res.Duration)
	} else {
		logger.Info("Scenario failed.", "mismatches", len(res.Mismatches), "error", res.Err)
	}
	return res
}

func (r *Runner) run(ctx context.Context, sc *config.Scenario) ([]Mismatch, error) {
	s := r.Factory.New(ctx)

	if sc.Aircraft != "" {
		if r.AircraftField == "" {
			return nil, fmt.Errorf("scenario '%s' selects aircraft '%s' but no aircraft field is configured", sc.Name, sc.Aircraft)
		}
		if err := s.Set(ctx, r.AircraftField, sc.Aircraft); err != nil {
			return nil, fmt.Errorf("scenario '%s': selecting aircraft: %w", sc.Name, err)
		}
	}
	for _, in := range sc.Inputs {
		if err := s.Set(ctx, in.ID, in.Value); err != nil {
			return nil, fmt.Errorf("scenario '%s': setting '%s': %w", sc.Name, in.ID, err)
		}
	}

	var err error
	if sc.Page != "" {
		err = s.ComputePage(ctx, sc.Page)
	} else {
		err = s.ComputeAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("scenario '%s': %w", sc.Name, err)
	}

	var mismatches []Mismatch
	for _, exp := range sc.Expect {
		view, err := s.View(exp.ID)
		if err != nil {
			return nil, fmt.Errorf("scenario '%s': expectation '%s': %w", sc.Name, exp.ID, err)
		}
		if !matches(view, exp.Value) {
			mismatches = append(mismatches, Mismatch{Field: exp.ID, Expected: exp.Value, Got: describe(view)})
		}
	}
	return mismatches, nil
}

// matches compares a field against an expected Go scalar.
func matches(view session.FieldView, want any) bool {
	switch w := want.(type) {
	case float64:
		f, ok := view.Value.Float()
		return ok && math.Abs(f-w) <= tolerance
	case bool:
		b, ok := view.Value.Bool()
		return ok && b == w
	case string:
		if s, ok := view.Value.Str(); ok {
			return s == w
		}
		return !view.Value.IsValid() && view.Text == w
	default:
		return false
	}
}

func describe(view session.FieldView) string {
	if view.Value.IsValid() {
		return view.Value.Text()
	}
	return fmt.Sprintf("%q (invalid)", view.Text)
}

// RunAll replays scenarios concurrently, at most workers at a time, each on
// its own session. Results keep the order of scenarios. The error is only
// set when ctx is cancelled.
func (r *Runner) RunAll(ctx context.Context, scenarios []*config.Scenario, workers int) ([]Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("🚀 Replaying scenarios.", "count", len(scenarios), "workers", workers)

	results := make([]Result, len(scenarios))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, sc := range scenarios {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.Run(gctx, sc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for _, res := range results {
		if !res.Passed() {
			failed++
		}
	}
	logger.Info("🏁 Scenarios replayed.", "passed", len(results)-failed, "failed", failed)
	return results, nil
}
