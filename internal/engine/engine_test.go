package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/specialistvlad/pohcalc/internal/ctxlog"
	"github.com/specialistvlad/pohcalc/internal/field"
	"github.com/specialistvlad/pohcalc/internal/table"
	"github.com/specialistvlad/pohcalc/internal/units"
	"github.com/specialistvlad/pohcalc/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcs map[string]Func

func (f funcs) Computation(name string) (Func, bool) {
	fn, ok := f[name]
	return fn, ok
}

func nop(context.Context, *Scope) error { return nil }

func testContext() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testCatalog(t *testing.T) *field.Catalog {
	t.Helper()
	cat, err := field.Build([]*field.Spec{
		{ID: "SetFuelUnits", Input: true, Kind: field.KindEnum, Choices: []string{"gal", "l"}, Default: field.Const(value.String("gal"))},
		{ID: "WBLoad", Input: true, Kind: field.KindNumber, Min: field.Number(0), Max: field.Number(1000), Default: field.Number(200)},
		{ID: "WBFuel_gal", Input: true, Kind: field.KindNumber, Min: field.Number(0), Max: field.Number(53), Default: field.Number(40)},
		{ID: "WBFuel_l", Input: true, Kind: field.KindNumber, Min: field.Number(0), Max: field.Number(200)},
		{ID: "WBTotal", Format: "n4", Invalid: "-"},
		{ID: "WBLanding", Format: "n4", Invalid: "-"},
		{ID: "EnrtAlt", Input: true, Kind: field.KindNumber, Min: field.Number(0), Max: field.Number(20000), Default: field.Number(7000)},
		{ID: "EnrtFF", Format: "n2.1", Invalid: "poh", TableErrors: map[string]string{"altitude": "Altitude"}},
		{ID: "EnrtBurn_gal", Format: "n2.1", Invalid: "-"},
		{ID: "TripTotal", Link: "WBTotal", Page: "Trip"},
		{ID: "TripNote", Format: "s", Invalid: "-"},
	}, field.BuildOptions{Pages: []string{"Set", "WB", "Enrt", "Trip"}})
	require.NoError(t, err)
	return cat
}

// harness wires a small weight, enroute and trip program and counts the
// runs of each computation.
type harness struct {
	prog      *Program
	reg       *field.Registry
	tables    *table.Set
	eng       *Engine
	calls     map[string]int
	wbChanged map[string]bool
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{calls: make(map[string]int), wbChanged: make(map[string]bool)}

	ff, err := table.New("CruiseFF", "Cruise fuel flow", []string{"altitude"}, []table.Entry{
		{P: 2000, V: 8},
		{P: 12000, V: 6},
	})
	require.NoError(t, err)

	fns := funcs{
		"wb": func(ctx context.Context, s *Scope) error {
			h.calls["wb"]++
			for _, id := range []string{"WBLoad", "WBFuel_gal", "EnrtBurn_gal"} {
				h.wbChanged[id] = s.Changed(id)
			}
			total := value.Add(s.Get("WBLoad"), value.Mul(s.Get("WBFuel_gal"), value.Number(6)))
			s.Set("WBTotal", total)
			if err := s.ComputePage(ctx, "Enrt"); err != nil {
				return err
			}
			s.Set("WBLanding", value.Sub(total, value.Mul(s.Get("EnrtBurn_gal"), value.Number(6))))
			return nil
		},
		"enrt": func(ctx context.Context, s *Scope) error {
			h.calls["enrt"]++
			ff := s.Interpolate("CruiseFF", s.Get("EnrtAlt"))
			s.SetPOHOutput("EnrtFF", ff, "CruiseFF")
			s.Set("EnrtBurn_gal", value.Mul(ff, value.Number(2)))
			return nil
		},
		"trip": func(ctx context.Context, s *Scope) error {
			h.calls["trip"]++
			if total, ok := s.Float("WBTotal"); ok && total > 500 {
				s.Set("TripNote", value.String("Heavy"))
			}
			return nil
		},
	}

	cat := testCatalog(t)
	h.prog, err = Compile(cat, []PageSpec{
		{Name: "Set"},
		{Name: "WB", Computations: []ComputationSpec{{
			Fn:        "wb",
			Inputs:    []string{"<page:WB;io:input;unit:gal>", "EnrtBurn_gal"},
			Outputs:   []string{"<page:WB;io:output>"},
			Refreshes: []string{"Enrt"},
		}}},
		{Name: "Enrt", Computations: []ComputationSpec{{
			Fn:         "enrt",
			Inputs:     []string{"EnrtAlt", "WBTotal"},
			Outputs:    []string{"<page:Enrt;io:output>"},
			Precedents: []string{"WB"},
		}}},
		{Name: "Trip", Parent: "Enrt", Computations: []ComputationSpec{{
			Fn:         "trip",
			Inputs:     []string{"WBTotal"},
			Outputs:    []string{"TripTotal", "TripNote"},
			Precedents: []string{"Enrt"},
		}}},
	}, fns)
	require.NoError(t, err)

	h.reg = field.NewRegistry(cat, nil)
	h.tables = table.NewSet(table.Map{"CruiseFF": ff})
	h.eng = h.prog.NewEngine(h.reg, Options{Tables: h.tables})
	return h
}

func TestCompile_ExpandsSelectorsAndControllers(t *testing.T) {
	h := newHarness(t)

	wb, ok := h.prog.Page("WB")
	require.True(t, ok)
	c := wb.Computations[0]
	assert.Equal(t, []string{"WBLoad", "WBFuel_gal", "EnrtBurn_gal", "SetFuelUnits"}, c.Inputs)
	assert.Equal(t, []string{"WBTotal", "WBLanding"}, c.Outputs)

	page, ok := h.prog.Producer("TripTotal")
	assert.True(t, ok)
	assert.Equal(t, "WB", page)
}

func TestParseSelector(t *testing.T) {
	testCases := []struct {
		in      string
		want    *selector
		wantErr string
	}{
		{in: "<page:WB,Enrt;io:output>", want: &selector{pages: []string{"WB", "Enrt"}, io: "output"}},
		{in: "<unit:gal, lbs>", want: &selector{units: []units.Unit{"gal", "lbs"}}},
		{in: "page:WB", wantErr: "malformed selector"},
		{in: "<io:both>", wantErr: "io must be input or output"},
		{in: "<color:red>", wantErr: "unknown clause 'color'"},
		{in: "<page>", wantErr: "malformed clause"},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseSelector(tc.in)
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	fns := funcs{"wb": nop, "enrt": nop, "trip": nop}
	wbPage := PageSpec{Name: "WB", Computations: []ComputationSpec{{Fn: "wb", Inputs: []string{"WBLoad"}, Outputs: []string{"WBTotal"}}}}

	testCases := []struct {
		name    string
		pages   []PageSpec
		wantErr string
	}{
		{
			name:    "unknown function",
			pages:   []PageSpec{{Name: "WB", Computations: []ComputationSpec{{Fn: "nope"}}}},
			wantErr: "page 'WB' computation 'nope': function is not registered",
		},
		{
			name:    "unknown field",
			pages:   []PageSpec{{Name: "WB", Computations: []ComputationSpec{{Fn: "wb", Inputs: []string{"WBNope"}}}}},
			wantErr: "unknown field 'WBNope'",
		},
		{
			name:    "bad selector",
			pages:   []PageSpec{{Name: "WB", Computations: []ComputationSpec{{Fn: "wb", Inputs: []string{"<page:WB;color:red>"}}}}},
			wantErr: "unknown clause 'color'",
		},
		{
			name:    "input listed as output",
			pages:   []PageSpec{{Name: "WB", Computations: []ComputationSpec{{Fn: "wb", Outputs: []string{"WBLoad"}}}}},
			wantErr: "'WBLoad' is an input, not an output",
		},
		{
			name:    "duplicate page",
			pages:   []PageSpec{wbPage, wbPage},
			wantErr: "page 'WB' declared more than once",
		},
		{
			name:    "unknown precedent",
			pages:   []PageSpec{{Name: "WB", Computations: []ComputationSpec{{Fn: "wb", Precedents: []string{"Nope"}}}}},
			wantErr: "unknown precedent page 'Nope'",
		},
		{
			name:    "unknown parent",
			pages:   []PageSpec{{Name: "WB", Parent: "Home"}},
			wantErr: "unknown parent page 'Home'",
		},
		{
			name: "precedent cycle",
			pages: []PageSpec{
				{Name: "WB", Computations: []ComputationSpec{{Fn: "wb", Outputs: []string{"WBTotal"}, Precedents: []string{"Enrt"}}}},
				{Name: "Enrt", Computations: []ComputationSpec{{Fn: "enrt", Outputs: []string{"EnrtFF"}, Precedents: []string{"WB"}}}},
			},
			wantErr: "cycle detected",
		},
		{
			name: "input computed by a page that is not a precedent",
			pages: []PageSpec{
				wbPage,
				{Name: "Trip", Computations: []ComputationSpec{{Fn: "trip", Inputs: []string{"WBTotal"}}}},
			},
			wantErr: "input 'WBTotal' is computed by page 'WB', which is not a precedent",
		},
		{
			name: "linked output whose owner page is not a precedent",
			pages: []PageSpec{
				wbPage,
				{Name: "Trip", Computations: []ComputationSpec{{Fn: "trip", Outputs: []string{"TripTotal"}}}},
			},
			wantErr: "linked output 'TripTotal' is computed by page 'WB'",
		},
		{
			name: "output computed twice",
			pages: []PageSpec{
				wbPage,
				{Name: "Enrt", Computations: []ComputationSpec{{Fn: "enrt", Outputs: []string{"WBTotal"}}}},
			},
			wantErr: "output 'WBTotal' is already computed by page 'WB'",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compile(testCatalog(t), tc.pages, fns)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "page compile failed")
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestEngine_Idempotence(t *testing.T) {
	// --- Arrange ---
	h := newHarness(t)
	ctx := testContext()
	require.NoError(t, h.eng.ComputeAll(ctx))
	require.Equal(t, map[string]int{"wb": 1, "enrt": 1, "trip": 1}, h.calls)

	// --- Act ---
	require.NoError(t, h.eng.ComputeAll(ctx))
	require.NoError(t, h.eng.ComputePage(ctx, "Trip"))

	// --- Assert ---
	assert.Equal(t, map[string]int{"wb": 1, "enrt": 1, "trip": 1}, h.calls)
	assert.Equal(t, 440.0, h.reg.Get("WBTotal").MustFloat())
	assert.Equal(t, 14.0, h.reg.Get("EnrtBurn_gal").MustFloat())
	assert.Equal(t, 356.0, h.reg.Get("WBLanding").MustFloat())
}

func TestEngine_DirtyTracking(t *testing.T) {
	// --- Arrange ---
	h := newHarness(t)
	ctx := testContext()
	require.NoError(t, h.eng.ComputeAll(ctx))

	// --- Act ---
	h.reg.SetupValue("WBLoad", 300)
	require.NoError(t, h.eng.ComputePage(ctx, "WB"))

	// --- Assert ---
	assert.Equal(t, 2, h.calls["wb"])
	assert.Equal(t, 2, h.calls["enrt"], "the refreshed page saw the new total")
	assert.Equal(t, map[string]bool{"WBLoad": true, "WBFuel_gal": false, "EnrtBurn_gal": false}, h.wbChanged)

	snap, ok := h.eng.Snapshot("WB", "wb", "WBLoad")
	require.True(t, ok)
	assert.Equal(t, 300.0, snap.MustFloat())
	assert.True(t, h.eng.Changed("WBLoad"), "outside a computation everything counts as changed")

	require.NoError(t, h.eng.ComputePage(ctx, "WB"))
	assert.Equal(t, 2, h.calls["wb"])
}

func TestEngine_InvalidInputsAreStable(t *testing.T) {
	// --- Arrange ---
	h := newHarness(t)
	ctx := testContext()
	require.NoError(t, h.eng.ComputeAll(ctx))

	h.reg.SetupValue("WBLoad", "abc")
	require.NoError(t, h.eng.ComputePage(ctx, "WB"))
	require.Equal(t, 2, h.calls["wb"])
	assert.Equal(t, "Input", h.reg.Display("WBTotal").Text)

	// --- Act ---
	h.reg.SetupValue("WBLoad", -5)
	require.NoError(t, h.eng.ComputePage(ctx, "WB"))

	// --- Assert ---
	assert.Equal(t, 2, h.calls["wb"], "invalid to invalid is not a change")
	require.NotNil(t, h.reg.Error("WBLoad"))
	assert.Equal(t, "Too small", h.reg.Error("WBLoad").Text)
}

func TestEngine_TableErrorRendersPOH(t *testing.T) {
	// --- Arrange ---
	h := newHarness(t)
	ctx := testContext()
	require.NoError(t, h.eng.ComputeAll(ctx))
	assert.Equal(t, "7.0", h.reg.Display("EnrtFF").Text)

	// --- Act ---
	h.reg.SetupValue("EnrtAlt", 17000)
	require.NoError(t, h.eng.ComputePage(ctx, "Enrt"))

	// --- Assert ---
	te := h.tables.LastError("CruiseFF")
	require.NotNil(t, te)
	assert.Equal(t, table.KindTooHigh, te.Kind)
	assert.Equal(t, "altitude", te.Param)

	assert.Equal(t, value.OutOfRange, h.reg.Get("EnrtFF").InvalidKind())
	d := h.reg.Display("EnrtFF")
	assert.Equal(t, "POH", d.Text)
	assert.True(t, d.Style.Strike)
	require.NotNil(t, h.reg.Error("EnrtFF"))
	assert.Equal(t, "Altitude > POH maximum", h.reg.Error("EnrtFF").Text)

	t.Run("invalid inputs render as Input", func(t *testing.T) {
		h.reg.SetupValue("EnrtAlt", "high")
		require.NoError(t, h.eng.ComputePage(ctx, "Enrt"))
		assert.Equal(t, "Input", h.reg.Display("EnrtFF").Text)
		assert.Nil(t, h.reg.Error("EnrtFF"))
	})
}

func TestEngine_LinkedOutputsMirrorTheirOwner(t *testing.T) {
	h := newHarness(t)
	ctx := testContext()

	assert.Equal(t, "-", h.reg.Display("TripTotal").Text)
	require.NoError(t, h.eng.ComputePage(ctx, "Trip"))
	assert.Equal(t, "440", h.reg.Display("TripTotal").Text)
	assert.Equal(t, "-", h.reg.Display("TripNote").Text)

	h.reg.SetupValue("WBLoad", 300)
	require.NoError(t, h.eng.ComputePage(ctx, "Trip"))
	assert.Equal(t, "540", h.reg.Display("TripTotal").Text)
	assert.Equal(t, "Heavy", h.reg.Display("TripNote").Text)

	t.Run("outputs are reset before each run", func(t *testing.T) {
		h.reg.SetupValue("WBLoad", 200)
		require.NoError(t, h.eng.ComputePage(ctx, "Trip"))
		assert.Equal(t, "-", h.reg.Display("TripNote").Text)
		assert.Equal(t, 3, h.calls["trip"])
	})
}

func TestEngine_FunctionFailures(t *testing.T) {
	cat := testCatalog(t)
	fns := funcs{
		"wb": func(ctx context.Context, s *Scope) error {
			return s.ComputePage(ctx, "Enrt")
		},
		"enrt": func(context.Context, *Scope) error { return errors.New("boom") },
	}
	prog, err := Compile(cat, []PageSpec{
		{Name: "WB", Computations: []ComputationSpec{{Fn: "wb", Outputs: []string{"WBTotal"}}}},
		{Name: "Enrt", Computations: []ComputationSpec{{Fn: "enrt", Inputs: []string{"EnrtAlt"}}}},
	}, fns)
	require.NoError(t, err)
	eng := prog.NewEngine(field.NewRegistry(cat, nil), Options{})
	ctx := testContext()

	t.Run("errors are wrapped with page and function", func(t *testing.T) {
		err := eng.ComputePage(ctx, "Enrt")
		assert.EqualError(t, err, "page 'Enrt' computation 'enrt': boom")
	})

	t.Run("refreshing an undeclared page panics", func(t *testing.T) {
		assert.Panics(t, func() { _ = eng.ComputePage(ctx, "WB") })
	})

	t.Run("unknown page panics", func(t *testing.T) {
		assert.Panics(t, func() { _ = eng.ComputePage(ctx, "Nope") })
	})
}
