package scenario

import (
	"context"
	"testing"

	"github.com/specialistvlad/pohcalc/internal/config"
	"github.com/specialistvlad/pohcalc/internal/engine"
	"github.com/specialistvlad/pohcalc/internal/field"
	"github.com/specialistvlad/pohcalc/internal/registry"
	"github.com/specialistvlad/pohcalc/internal/session"
	"github.com/specialistvlad/pohcalc/internal/testutil"
	"github.com/specialistvlad/pohcalc/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRunner builds a one-page program: CalcOut doubles CalcIn, turning
// out of range above 50, and CalcSize names it.
func newRunner(t *testing.T) *Runner {
	t.Helper()

	cat, err := field.Build([]*field.Spec{
		{ID: "CalcIn", Input: true, Kind: field.KindNumber, Min: field.Number(0), Max: field.Number(100), Default: field.Number(2)},
		{ID: "CalcOut", Format: "n3", Invalid: "poh"},
		{ID: "CalcSize", Format: "s"},
	}, field.BuildOptions{Pages: []string{"Calc"}})
	require.NoError(t, err)

	reg := registry.New()
	reg.RegisterComputation("calc", func(ctx context.Context, s *engine.Scope) error {
		in := s.Get("CalcIn")
		out := value.Mul(in, value.Number(2))
		if f, ok := in.Float(); ok && f > 50 {
			out = value.Invalid(value.OutOfRange)
		}
		s.Set("CalcOut", out)
		if f, ok := in.Float(); ok && f >= 10 {
			s.Set("CalcSize", value.String("large"))
		} else {
			s.Set("CalcSize", value.String("small"))
		}
		return nil
	})

	prog, err := engine.Compile(cat, []engine.PageSpec{{
		Name:         "Calc",
		Computations: []engine.ComputationSpec{{Fn: "calc", Inputs: []string{"CalcIn"}, Outputs: []string{"CalcOut", "CalcSize"}}},
	}}, reg)
	require.NoError(t, err)

	f, err := session.NewFactory(prog, session.Options{Handlers: reg})
	require.NoError(t, err)
	return &Runner{Factory: f}
}

func TestRunner_Run(t *testing.T) {
	testCases := []struct {
		name           string
		scenario       *config.Scenario
		wantMismatches []string
		wantErr        string
	}{
		{
			name: "defaults",
			scenario: &config.Scenario{
				Name:   "defaults",
				Expect: []config.Assignment{{ID: "CalcOut", Value: 4.0}, {ID: "CalcSize", Value: "small"}},
			},
		},
		{
			name: "inputs applied in order",
			scenario: &config.Scenario{
				Name:   "ordered",
				Inputs: []config.Assignment{{ID: "CalcIn", Value: 30.0}, {ID: "CalcIn", Value: 12.0}},
				Page:   "Calc",
				Expect: []config.Assignment{{ID: "CalcOut", Value: 24.0}, {ID: "CalcSize", Value: "large"}},
			},
		},
		{
			name: "invalid output matches its rendered text",
			scenario: &config.Scenario{
				Name:   "poh",
				Inputs: []config.Assignment{{ID: "CalcIn", Value: 60.0}},
				Expect: []config.Assignment{{ID: "CalcOut", Value: "POH"}},
			},
		},
		{
			name: "mismatches are collected",
			scenario: &config.Scenario{
				Name:   "wrong",
				Inputs: []config.Assignment{{ID: "CalcIn", Value: 5.0}},
				Expect: []config.Assignment{
					{ID: "CalcOut", Value: 11.0},
					{ID: "CalcSize", Value: "small"},
					{ID: "CalcIn", Value: true},
				},
			},
			wantMismatches: []string{"CalcOut", "CalcIn"},
		},
		{
			name: "unknown expectation field",
			scenario: &config.Scenario{
				Name:   "unknown",
				Expect: []config.Assignment{{ID: "Nope", Value: 1.0}},
			},
			wantErr: "expectation 'Nope'",
		},
		{
			name: "aircraft without selection field",
			scenario: &config.Scenario{
				Name:     "aircraft",
				Aircraft: "172S",
				Expect:   []config.Assignment{{ID: "CalcOut", Value: 4.0}},
			},
			wantErr: "no aircraft field is configured",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			r := newRunner(t)
			ctx := testutil.Context(t, &testutil.SafeBuffer{})

			// --- Act ---
			res := r.Run(ctx, tc.scenario)

			// --- Assert ---
			assert.Equal(t, tc.scenario.Name, res.Scenario)
			if tc.wantErr != "" {
				require.Error(t, res.Err)
				assert.Contains(t, res.Err.Error(), tc.wantErr)
				assert.False(t, res.Passed())
				return
			}
			require.NoError(t, res.Err)
			var got []string
			for _, m := range res.Mismatches {
				got = append(got, m.Field)
			}
			assert.Equal(t, tc.wantMismatches, got)
			assert.Equal(t, len(tc.wantMismatches) == 0, res.Passed())
		})
	}
}

func TestRunner_RunAll(t *testing.T) {
	// --- Arrange ---
	r := newRunner(t)
	ctx := testutil.Context(t, &testutil.SafeBuffer{})
	var scenarios []*config.Scenario
	for i := 0; i < 20; i++ {
		in := float64(i)
		scenarios = append(scenarios, &config.Scenario{
			Name:   "double",
			Inputs: []config.Assignment{{ID: "CalcIn", Value: in}},
			Expect: []config.Assignment{{ID: "CalcOut", Value: 2 * in}},
		})
	}
	scenarios[7].Expect[0].Value = -1.0

	// --- Act ---
	results, err := r.RunAll(ctx, scenarios, 4)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, results, len(scenarios))
	for i, res := range results {
		if i == 7 {
			assert.False(t, res.Passed())
			require.Len(t, res.Mismatches, 1)
			assert.Equal(t, "14", res.Mismatches[0].Got)
			continue
		}
		assert.True(t, res.Passed(), "scenario %d", i)
	}
}

func TestRunner_RunAll_Cancelled(t *testing.T) {
	// --- Arrange ---
	r := newRunner(t)
	ctx, cancel := context.WithCancel(testutil.Context(t, &testutil.SafeBuffer{}))
	cancel()

	// --- Act ---
	_, err := r.RunAll(ctx, []*config.Scenario{{Name: "x", Expect: []config.Assignment{{ID: "CalcOut", Value: 4.0}}}}, 1)

	// --- Assert ---
	assert.ErrorIs(t, err, context.Canceled)
}
