package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/specialistvlad/pohcalc/internal/ctxlog"
	"github.com/specialistvlad/pohcalc/internal/session"
	"github.com/specialistvlad/pohcalc/internal/testutil"
	"github.com/specialistvlad/pohcalc/modules/wxfeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const c172Config = "../../modules/c172/hcl"

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		in      AppConfig
		wantErr string
		check   func(t *testing.T, cfg *AppConfig)
	}{
		{
			name: "defaults filled in",
			in:   AppConfig{ConfigPaths: []string{"cfg"}},
			check: func(t *testing.T, cfg *AppConfig) {
				assert.Equal(t, DefaultAircraftField, cfg.AircraftField)
				assert.Equal(t, OutputText, cfg.Output)
				assert.Equal(t, 1, cfg.Workers)
			},
		},
		{name: "no config path", in: AppConfig{}, wantErr: "ConfigPaths is a required"},
		{name: "bad output", in: AppConfig{ConfigPaths: []string{"cfg"}, Output: "yaml"}, wantErr: "invalid output"},
		{name: "negative port", in: AppConfig{ConfigPaths: []string{"cfg"}, ServePort: -1}, wantErr: "ports must not be negative"},
		{name: "scenarios and serve", in: AppConfig{ConfigPaths: []string{"cfg"}, Scenarios: true, ServePort: 8080}, wantErr: "mutually exclusive"},
		{name: "weather without API", in: AppConfig{ConfigPaths: []string{"cfg"}, WeatherURL: "http://wx"}, wantErr: "needs the HTTP API"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Act ---
			cfg, err := NewConfig(tc.in)

			// --- Assert ---
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}

func TestParseAssignment(t *testing.T) {
	a, err := ParseAssignment("WBFuel_gal=40")
	require.NoError(t, err)
	assert.Equal(t, Assignment{ID: "WBFuel_gal", Value: "40"}, a)

	a, err = ParseAssignment("DepRwyCond=dry grass")
	require.NoError(t, err)
	assert.Equal(t, "dry grass", a.Value)

	_, err = ParseAssignment("WBFuel_gal")
	require.Error(t, err)
	_, err = ParseAssignment("=40")
	require.Error(t, err)
}

func TestNewApp_PanicsOnConfigDefects(t *testing.T) {
	testCases := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "syntax error",
			files:   map[string]string{"main.hcl": `input "A" {`},
			wantErr: "failed to parse",
		},
		{
			name: "unregistered computation",
			files: map[string]string{"main.hcl": `
				page "P" {
				  compute {
				    fn = "nope"
				  }
				}
			`},
			wantErr: "computation 'nope' is not registered",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			dir := testutil.WriteFiles(t, tc.files)

			// --- Act & Assert ---
			defer func() {
				r := recover()
				require.NotNil(t, r, "NewApp should panic")
				assert.Contains(t, fmtPanic(r), tc.wantErr)
			}()
			SetupAppTest(t, &AppConfig{ConfigPaths: []string{dir}})
		})
	}
}

func fmtPanic(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	s, _ := r.(string)
	return s
}

func TestApp_RunOnce(t *testing.T) {
	t.Run("text page", func(t *testing.T) {
		// --- Arrange ---
		a, out, logs := SetupAppTest(t, &AppConfig{
			ConfigPaths: []string{c172Config},
			Sets:        []Assignment{{ID: "WBFuel_gal", Value: "53"}, {ID: "WBEnrtFuelToDest", Value: "false"}, {ID: "WBFuelUsed_gal", Value: "26"}},
			Page:        "WB",
		})

		// --- Act ---
		err := a.Run(context.Background())

		// --- Assert ---
		require.NoError(t, err)
		assert.Contains(t, out.String(), "== Weight & Balance (WB) ==")
		assert.Regexp(t, `WBTOWeight_lbs\s+2,?106`, out.String())
		assert.Contains(t, out.String(), "WBFuel_gal*")
		assert.NotContains(t, out.String(), "== Departure")
		assert.Contains(t, logs.String(), "Calculation finished.")
	})

	t.Run("text page lists shared error rows once", func(t *testing.T) {
		// --- Arrange ---
		a, out, _ := SetupAppTest(t, &AppConfig{
			ConfigPaths: []string{c172Config},
			Sets:        []Assignment{{ID: "WBRow1L_lbs", Value: "500"}},
			Page:        "WB",
		})

		// --- Act ---
		err := a.Run(context.Background())

		// --- Assert ---
		require.NoError(t, err)
		assert.Regexp(t, `!WBRow1Error\s+Too large`, out.String())
		assert.Equal(t, 1, strings.Count(out.String(), "!WBRow1Error"))
	})

	t.Run("json every page", func(t *testing.T) {
		// --- Arrange ---
		a, out, _ := SetupAppTest(t, &AppConfig{ConfigPaths: []string{c172Config}, Output: OutputJSON})

		// --- Act ---
		err := a.Run(context.Background())

		// --- Assert ---
		require.NoError(t, err)
		var reports []struct {
			Page   string            `json:"page"`
			Fields []json.RawMessage `json:"fields"`
		}
		require.NoError(t, json.Unmarshal([]byte(out.String()), &reports))
		var pages []string
		for _, r := range reports {
			pages = append(pages, r.Page)
		}
		assert.Equal(t, a.Calculator().Program.Pages(), pages)
	})

	t.Run("unknown field", func(t *testing.T) {
		// --- Arrange ---
		a, _, _ := SetupAppTest(t, &AppConfig{
			ConfigPaths: []string{c172Config},
			Sets:        []Assignment{{ID: "NoSuchField", Value: "1"}},
		})

		// --- Act ---
		err := a.Run(context.Background())

		// --- Assert ---
		require.ErrorIs(t, err, session.ErrUnknownField)
	})
}

func TestApp_RunScenarios(t *testing.T) {
	// --- Arrange ---
	a, out, logs := SetupAppTest(t, &AppConfig{ConfigPaths: []string{c172Config}, Scenarios: true, Workers: 4})

	// --- Act ---
	err := a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err, out.String())
	assert.Contains(t, out.String(), "PASS  wb_baseline")
	assert.Contains(t, out.String(), ", 0 failed")
	assert.NotContains(t, out.String(), "FAIL")
	assert.Contains(t, logs.String(), "Scenarios replayed.")
}

func TestApp_RunScenarios_Failure(t *testing.T) {
	// --- Arrange ---
	dir := testutil.WriteFiles(t, map[string]string{"bad.hcl": `
		scenario "wrong_weight" {
		  aircraft = "172S"
		  page     = "WB"
		  expect   = { WBZFWeight_lbs = 1 }
		}
	`})
	a, out, _ := SetupAppTest(t, &AppConfig{ConfigPaths: []string{c172Config, dir}, Scenarios: true, Output: OutputJSON})

	// --- Act ---
	err := a.Run(context.Background())

	// --- Assert ---
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of")
	assert.Contains(t, out.String(), `"scenario": "wrong_weight"`)
	assert.Contains(t, out.String(), `"passed": false`)
}

func TestApp_Handler(t *testing.T) {
	// --- Arrange ---
	a, _, _ := SetupAppTest(t, &AppConfig{ConfigPaths: []string{c172Config}})
	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)

	do := func(method, path, body string) (*http.Response, map[string]any) {
		t.Helper()
		req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
		require.NoError(t, err)
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		var out map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return resp, out
	}

	resp, created := do(http.MethodPost, "/sessions", `{"aircraft":"172R"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "172R", created["aircraft"])

	testCases := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}{
		{
			name:       "read a field",
			method:     http.MethodGet,
			path:       "/sessions/" + id + "/fields/ACName",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Cessna 172R Skyhawk", body["text"])
			},
		},
		{
			name:       "set an input",
			method:     http.MethodPut,
			path:       "/sessions/" + id + "/fields/WBFuel_gal",
			body:       `{"value": 30}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, true, body["input"])
				assert.EqualValues(t, 30, body["value"])
				assert.Nil(t, body["error"])
			},
		},
		{
			name:       "invalid input is reported on the field",
			method:     http.MethodPut,
			path:       "/sessions/" + id + "/fields/WBFuel_gal",
			body:       `{"value": 500}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.NotNil(t, body["error"])
			},
		},
		{
			name:       "outputs are read-only",
			method:     http.MethodPut,
			path:       "/sessions/" + id + "/fields/WBTOWeight_lbs",
			body:       `{"value": 1}`,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "read a page",
			method:     http.MethodGet,
			path:       "/sessions/" + id + "/pages/WB",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "WB", body["page"])
				assert.NotEmpty(t, body["fields"])
			},
		},
		{name: "unknown session", method: http.MethodGet, path: "/sessions/nope/pages/WB", wantStatus: http.StatusNotFound},
		{name: "unknown page", method: http.MethodGet, path: "/sessions/" + id + "/pages/Nope", wantStatus: http.StatusNotFound},
		{name: "unknown field", method: http.MethodGet, path: "/sessions/" + id + "/fields/Nope", wantStatus: http.StatusNotFound},
		{name: "malformed body", method: http.MethodPut, path: "/sessions/" + id + "/fields/WBFuel_gal", body: `{`, wantStatus: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Act ---
			resp, body := do(tc.method, tc.path, tc.body)

			// --- Assert ---
			require.Equal(t, tc.wantStatus, resp.StatusCode, body)
			if tc.check != nil {
				tc.check(t, body)
			}
		})
	}
}

func TestApp_Health(t *testing.T) {
	a, _, _ := SetupAppTest(t, &AppConfig{ConfigPaths: []string{c172Config}})
	rec := httptest.NewRecorder()

	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK\n", rec.Body.String())
}

func TestApp_ApplyObservation(t *testing.T) {
	// --- Arrange ---
	a, _, logs := SetupAppTest(t, &AppConfig{ConfigPaths: []string{c172Config}})
	ctx := ctxlog.WithLogger(context.Background(), a.logger)

	matching := a.Calculator().Factory.New(ctx)
	require.NoError(t, matching.Set(ctx, "DepArpt", "kpao"))
	other := a.Calculator().Factory.New(ctx)
	require.NoError(t, other.Set(ctx, "DepArpt", "KSJC"))
	require.NoError(t, a.Store().Put(ctx, matching))
	require.NoError(t, a.Store().Put(ctx, other))

	temp := 25.0
	obs := wxfeed.Observation{Station: "KPAO", TemperatureC: &temp, WindDir: 300.0, WindSpeed: 7.0}

	// --- Act ---
	a.applyObservation(ctx, obs)

	// --- Assert ---
	oat, err := matching.Get("DepOAT")
	require.NoError(t, err)
	assert.Equal(t, 25.0, oat.MustFloat())
	wind, err := matching.View("DepWind")
	require.NoError(t, err)
	assert.Equal(t, "7", wind.Text)

	oat, err = other.Get("DepOAT")
	require.NoError(t, err)
	assert.Equal(t, 15.0, oat.MustFloat())
	assert.Contains(t, logs.String(), "Observation processed.")
}
