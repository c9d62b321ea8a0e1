package cli

import (
	"bytes"
	"testing"

	"github.com/specialistvlad/pohcalc/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		env      map[string]string
		wantExit bool
		wantCode int
		wantMsg  string
		check    func(t *testing.T, cfg *app.AppConfig)
	}{
		{
			name: "positional path and sets in order",
			args: []string{"--set", "WBFuel_gal=40", "--set", "DepRwyCond=dry grass", "--page", "WB", "cfg"},
			check: func(t *testing.T, cfg *app.AppConfig) {
				assert.Equal(t, []string{"cfg"}, cfg.ConfigPaths)
				assert.Equal(t, []app.Assignment{{ID: "WBFuel_gal", Value: "40"}, {ID: "DepRwyCond", Value: "dry grass"}}, cfg.Sets)
				assert.Equal(t, "WB", cfg.Page)
				assert.Equal(t, app.OutputText, cfg.Output)
				assert.Equal(t, app.DefaultAircraftField, cfg.AircraftField)
			},
		},
		{
			name: "config flag wins over the positional path",
			args: []string{"--config", "a", "b"},
			check: func(t *testing.T, cfg *app.AppConfig) {
				assert.Equal(t, []string{"a"}, cfg.ConfigPaths)
			},
		},
		{
			name: "environment defaults",
			args: []string{"--serve", "8080"},
			env:  map[string]string{EnvConfig: "envcfg", EnvWeatherURL: "https://wx.example/socket.io/"},
			check: func(t *testing.T, cfg *app.AppConfig) {
				assert.Equal(t, []string{"envcfg"}, cfg.ConfigPaths)
				assert.Equal(t, "https://wx.example/socket.io/", cfg.WeatherURL)
				assert.Equal(t, 8080, cfg.ServePort)
			},
		},
		{name: "no path prints usage", args: []string{}, wantExit: true},
		{name: "help", args: []string{"-h"}, wantExit: true},
		{name: "bad set", args: []string{"--set", "nope", "cfg"}, wantCode: 2, wantMsg: "want id=value"},
		{name: "bad log format", args: []string{"--log-format", "xml", "cfg"}, wantCode: 2, wantMsg: "invalid log-format"},
		{name: "bad log level", args: []string{"--log-level", "loud", "cfg"}, wantCode: 2, wantMsg: "invalid log-level"},
		{name: "bad output", args: []string{"--output", "yaml", "cfg"}, wantCode: 2, wantMsg: "invalid output"},
		{name: "scenarios with serve", args: []string{"--scenarios", "--serve", "80", "cfg"}, wantCode: 2, wantMsg: "mutually exclusive"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			t.Setenv(EnvConfig, "")
			t.Setenv(EnvWeatherURL, "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			out := &bytes.Buffer{}

			// --- Act ---
			cfg, exit, err := Parse(tc.args, out)

			// --- Assert ---
			if tc.wantCode != 0 {
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, tc.wantCode, exitErr.Code)
				assert.Contains(t, exitErr.Message, tc.wantMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantExit, exit)
			if tc.wantExit {
				assert.Contains(t, out.String(), "Usage:")
				return
			}
			tc.check(t, cfg)
		})
	}
}
