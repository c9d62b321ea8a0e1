package app

import (
	"errors"
	"fmt"
	"strings"
)

// Output formats of the single-run and scenario modes.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// DefaultAircraftField is the input selecting the aircraft model.
const DefaultAircraftField = "ACModel"

// Assignment is one `--set id=value` pair, applied in order.
type Assignment struct {
	ID    string
	Value string
}

// AppConfig holds all the necessary configuration for an App instance to run.
type AppConfig struct {
	ConfigPaths   []string // hcl files or directories
	AircraftField string

	Sets   []Assignment
	Page   string
	Output string

	Scenarios bool
	Workers   int

	ServePort       int
	HealthcheckPort int
	WeatherURL      string
	WeatherInsecure bool

	LogFormat string
	LogLevel  string
}

// NewConfig fills defaults and validates cfg.
func NewConfig(cfg AppConfig) (*AppConfig, error) {
	if len(cfg.ConfigPaths) == 0 {
		return nil, errors.New("ConfigPaths is a required configuration field and cannot be empty")
	}
	if cfg.AircraftField == "" {
		cfg.AircraftField = DefaultAircraftField
	}
	if cfg.Output == "" {
		cfg.Output = OutputText
	}
	if cfg.Output != OutputText && cfg.Output != OutputJSON {
		return nil, fmt.Errorf("invalid output: must be '%s' or '%s'", OutputText, OutputJSON)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.ServePort < 0 || cfg.HealthcheckPort < 0 {
		return nil, errors.New("ports must not be negative")
	}
	if cfg.Scenarios && cfg.ServePort > 0 {
		return nil, errors.New("scenarios and serve modes are mutually exclusive")
	}
	if cfg.WeatherURL != "" && cfg.ServePort == 0 {
		return nil, errors.New("the weather feed needs the HTTP API: set a serve port")
	}
	for _, a := range cfg.Sets {
		if strings.TrimSpace(a.ID) == "" {
			return nil, errors.New("assignment with empty field id")
		}
	}
	return &cfg, nil
}

// ParseAssignment splits an `id=value` pair.
func ParseAssignment(s string) (Assignment, error) {
	id, val, ok := strings.Cut(s, "=")
	id = strings.TrimSpace(id)
	if !ok || id == "" {
		return Assignment{}, fmt.Errorf("invalid assignment %q: want id=value", s)
	}
	return Assignment{ID: id, Value: val}, nil
}
