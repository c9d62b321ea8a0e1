package wxfeed

import (
	"context"
	"fmt"
	"testing"

	"github.com/specialistvlad/pohcalc/internal/testutil"
	"github.com/specialistvlad/pohcalc/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTarget records every Set in order.
type fakeTarget struct {
	values map[string]value.Value
	sets   []Assignment
	failOn string
}

func newFakeTarget(dep, dest string) *fakeTarget {
	return &fakeTarget{values: map[string]value.Value{
		"DepArpt":  value.String(dep),
		"DestArpt": value.String(dest),
	}}
}

func (f *fakeTarget) Get(id string) (value.Value, error) {
	v, ok := f.values[id]
	if !ok {
		return value.Value{}, fmt.Errorf("unknown field: '%s'", id)
	}
	return v, nil
}

func (f *fakeTarget) Set(ctx context.Context, id string, raw any) error {
	if id == f.failOn {
		return fmt.Errorf("unknown field: '%s'", id)
	}
	f.sets = append(f.sets, Assignment{ID: id, Value: raw})
	f.values[id] = value.FromAny(raw)
	return nil
}

func ptr(f float64) *float64 { return &f }

func TestDecodeObservation(t *testing.T) {
	testCases := []struct {
		name    string
		data    any
		want    Observation
		wantErr string
	}{
		{
			name: "decoded event map",
			data: map[string]any{"station": " kpao ", "altimeter_inhg": 30.12, "temperature_c": 18.0, "wind_dir": 310.0, "wind_speed": 8.0},
			want: Observation{Station: "KPAO", AltimeterInHg: ptr(30.12), TemperatureC: ptr(18), WindDir: 310.0, WindSpeed: 8.0},
		},
		{
			name: "raw json string",
			data: `{"station":"KSQL","wind_dir":"VRB","wind_speed":"5"}`,
			want: Observation{Station: "KSQL", WindDir: "VRB", WindSpeed: "5"},
		},
		{
			name: "raw json bytes",
			data: []byte(`{"station":"KHAF","temperature_c":-2}`),
			want: Observation{Station: "KHAF", TemperatureC: ptr(-2)},
		},
		{
			name:    "missing station",
			data:    map[string]any{"temperature_c": 10.0},
			wantErr: ErrNoStation.Error(),
		},
		{
			name:    "malformed json",
			data:    `{"station":`,
			wantErr: "failed to decode observation payload",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Act ---
			obs, err := DecodeObservation(tc.data)

			// --- Assert ---
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, obs)
		})
	}
}

func TestObservation_Assignments(t *testing.T) {
	testCases := []struct {
		name string
		obs  Observation
		want []Assignment
	}{
		{
			name: "full report",
			obs:  Observation{Station: "KPAO", AltimeterInHg: ptr(30.123), TemperatureC: ptr(17.6), WindDir: 314.0, WindSpeed: 8.4},
			want: []Assignment{
				{ID: "DepAltimeter_inhg", Value: 30.12},
				{ID: "DepOAT", Value: 18.0},
				{ID: "DepWindDir", Value: "310"},
				{ID: "DepWind", Value: "8"},
			},
		},
		{
			name: "calm wind points north",
			obs:  Observation{Station: "KPAO", WindDir: 0.0, WindSpeed: 0.0},
			want: []Assignment{
				{ID: "DepWindDir", Value: "360"},
				{ID: "DepWind", Value: "0"},
			},
		},
		{
			name: "report strings pass through upper-cased",
			obs:  Observation{Station: "KPAO", WindDir: "vrb", WindSpeed: "12g20"},
			want: []Assignment{
				{ID: "DepWindDir", Value: "VRB"},
				{ID: "DepWind", Value: "12G20"},
			},
		},
		{
			name: "wind needs both direction and speed",
			obs:  Observation{Station: "KPAO", TemperatureC: ptr(5), WindDir: 270.0},
			want: []Assignment{{ID: "DepOAT", Value: 5.0}},
		},
		{
			name: "negative speed is dropped",
			obs:  Observation{Station: "KPAO", WindDir: 90.0, WindSpeed: -3.0},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Act ---
			got := tc.obs.Assignments("Dep")

			// --- Assert ---
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestApply(t *testing.T) {
	obs := Observation{Station: "KPAO", TemperatureC: ptr(21), WindDir: 300.0, WindSpeed: 6.0}

	t.Run("matches departure only", func(t *testing.T) {
		// --- Arrange ---
		buf := &testutil.SafeBuffer{}
		ctx := testutil.Context(t, buf)
		target := newFakeTarget("kpao", "KSQL")

		// --- Act ---
		matched, err := Apply(ctx, target, obs)

		// --- Assert ---
		require.NoError(t, err)
		assert.Equal(t, []string{"Dep"}, matched)
		assert.Equal(t, []Assignment{
			{ID: "DepOAT", Value: 21.0},
			{ID: "DepWindDir", Value: "300"},
			{ID: "DepWind", Value: "6"},
		}, target.sets)
		assert.Contains(t, buf.String(), "Observation applied.")
	})

	t.Run("matches both airfields", func(t *testing.T) {
		// --- Arrange ---
		ctx := testutil.Context(t, &testutil.SafeBuffer{})
		target := newFakeTarget("KPAO", "KPAO")

		// --- Act ---
		matched, err := Apply(ctx, target, obs)

		// --- Assert ---
		require.NoError(t, err)
		assert.Equal(t, []string{"Dep", "Dest"}, matched)
		assert.Len(t, target.sets, 6)
	})

	t.Run("no airfield matches", func(t *testing.T) {
		// --- Arrange ---
		buf := &testutil.SafeBuffer{}
		ctx := testutil.Context(t, buf)
		target := newFakeTarget("KSJC", "")

		// --- Act ---
		matched, err := Apply(ctx, target, obs)

		// --- Assert ---
		require.NoError(t, err)
		assert.Empty(t, matched)
		assert.Empty(t, target.sets)
		assert.Contains(t, buf.String(), "matches no airfield")
	})

	t.Run("unknown field fails", func(t *testing.T) {
		// --- Arrange ---
		ctx := testutil.Context(t, &testutil.SafeBuffer{})
		target := newFakeTarget("KPAO", "")
		target.failOn = "DepWind"

		// --- Act ---
		_, err := Apply(ctx, target, obs)

		// --- Assert ---
		require.Error(t, err)
		assert.Contains(t, err.Error(), "'DepWind'")
	})
}
