package wxfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/specialistvlad/pohcalc/internal/ctxlog"
	"github.com/specialistvlad/pohcalc/internal/mathutil"
	"github.com/specialistvlad/pohcalc/internal/value"
)

// Observation is one weather report as sent with the "observation" event.
// Wind direction and speed may arrive as numbers or as report strings
// ("VRB", "270V310", "12G20").
type Observation struct {
	Station       string   `json:"station"`
	AltimeterInHg *float64 `json:"altimeter_inhg"`
	TemperatureC  *float64 `json:"temperature_c"`
	WindDir       any      `json:"wind_dir"`
	WindSpeed     any      `json:"wind_speed"`
}

// ErrNoStation is returned for payloads without a station id.
var ErrNoStation = errors.New("observation without station")

// DecodeObservation converts an event payload, as delivered by the socket.io
// client (a JSON object decoded into Go values, or raw JSON), into an
// Observation.
func DecodeObservation(data any) (Observation, error) {
	var raw []byte
	switch d := data.(type) {
	case []byte:
		raw = d
	case string:
		raw = []byte(d)
	default:
		b, err := json.Marshal(d)
		if err != nil {
			return Observation{}, fmt.Errorf("failed to encode observation payload: %w", err)
		}
		raw = b
	}

	var obs Observation
	if err := json.Unmarshal(raw, &obs); err != nil {
		return Observation{}, fmt.Errorf("failed to decode observation payload: %w", err)
	}
	obs.Station = strings.ToUpper(strings.TrimSpace(obs.Station))
	if obs.Station == "" {
		return Observation{}, ErrNoStation
	}
	return obs, nil
}

// Assignment is an input value derived from an observation.
type Assignment struct {
	ID    string
	Value any
}

// Assignments maps an observation onto the airfield inputs with the given
// prefix ("Dep" or "Dest"). Missing parts of the report are skipped.
func (o Observation) Assignments(prefix string) []Assignment {
	var out []Assignment
	if o.AltimeterInHg != nil {
		out = append(out, Assignment{ID: prefix + "Altimeter_inhg", Value: mathutil.Round(*o.AltimeterInHg, 2)})
	}
	if o.TemperatureC != nil {
		out = append(out, Assignment{ID: prefix + "OAT", Value: mathutil.Round(*o.TemperatureC, 0)})
	}

	speed, okSpeed := windSpeed(o.WindSpeed)
	dir, okDir := windDir(o.WindDir)
	if okSpeed && okDir {
		// Calm winds report no direction the runway checks accept.
		if speed == "0" && dir == "0" {
			dir = "360"
		}
		out = append(out, Assignment{ID: prefix + "WindDir", Value: dir}, Assignment{ID: prefix + "Wind", Value: speed})
	}
	return out
}

func windDir(v any) (string, bool) {
	switch d := v.(type) {
	case float64:
		deg := mathutil.RoundMult(math.Mod(d, 360), 10)
		if deg == 0 {
			return "0", true
		}
		return strconv.Itoa(int(deg)), true
	case string:
		d = strings.ToUpper(strings.TrimSpace(d))
		return d, d != ""
	default:
		return "", false
	}
}

func windSpeed(v any) (string, bool) {
	switch s := v.(type) {
	case float64:
		if s < 0 {
			return "", false
		}
		return strconv.Itoa(int(mathutil.Round(s, 0))), true
	case string:
		s = strings.ToUpper(strings.TrimSpace(s))
		return s, s != ""
	default:
		return "", false
	}
}

// Target is the session an observation is applied to.
type Target interface {
	Get(id string) (value.Value, error)
	Set(ctx context.Context, id string, raw any) error
}

// airfields are the input prefixes whose airport id an observation's
// station is matched against.
var airfields = []string{"Dep", "Dest"}

// Apply writes an observation into every airfield of t whose airport id
// matches the station, and returns the matched prefixes. A value the
// session rejects is logged and left as an input error; only unknown
// fields fail.
func Apply(ctx context.Context, t Target, obs Observation) ([]string, error) {
	logger := ctxlog.FromContext(ctx).With("station", obs.Station)

	var matched []string
	for _, prefix := range airfields {
		arpt, err := t.Get(prefix + "Arpt")
		if err != nil {
			return matched, err
		}
		if s, ok := arpt.Str(); !ok || !strings.EqualFold(s, obs.Station) {
			continue
		}
		for _, a := range obs.Assignments(prefix) {
			if err := t.Set(ctx, a.ID, a.Value); err != nil {
				return matched, fmt.Errorf("applying observation of %s to '%s': %w", obs.Station, a.ID, err)
			}
		}
		matched = append(matched, prefix)
	}

	if len(matched) == 0 {
		logger.Debug("Observation matches no airfield.")
	} else {
		logger.Info("Observation applied.", "airfields", matched)
	}
	return matched, nil
}
