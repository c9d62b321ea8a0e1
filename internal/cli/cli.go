package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/specialistvlad/pohcalc/internal/app"
)

// Environment variables providing defaults for flags.
const (
	EnvConfig     = "POHCALC_CONFIG"
	EnvWeatherURL = "POHCALC_WEATHER_URL"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// setList collects repeated --set flags in order.
type setList []app.Assignment

func (s *setList) String() string {
	parts := make([]string, 0, len(*s))
	for _, a := range *s {
		parts = append(parts, a.ID+"="+a.Value)
	}
	return strings.Join(parts, ",")
}

func (s *setList) Set(v string) error {
	a, err := app.ParseAssignment(v)
	if err != nil {
		return err
	}
	*s = append(*s, a)
	return nil
}

// Parse processes command-line arguments. It returns a populated AppConfig,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.AppConfig, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("pohcalc", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
pohcalc - Cessna 172 POH performance and weight & balance calculator.

Usage:
  pohcalc [options] [CONFIG_PATH]

Arguments:
  CONFIG_PATH
    Path to a single .hcl file or a directory containing .hcl files.
    Defaults to $POHCALC_CONFIG.

Modes:
  (default)     apply --set values, compute and print --page (or every page)
  --scenarios   replay the configured scenarios and report mismatches
  --serve PORT  run the HTTP API, fed by --weather-url when given

Options:
`)
		flagSet.PrintDefaults()
	}

	var sets setList
	configFlag := flagSet.String("config", "", "Path to the configuration file or directory.")
	cFlag := flagSet.String("c", "", "Path to the configuration file or directory (shorthand).")
	flagSet.Var(&sets, "set", "Set an input before computing, as id=value. Repeatable; applied in order.")
	pageFlag := flagSet.String("page", "", "Page to compute and print. Empty computes every page.")
	outputFlag := flagSet.String("output", "text", "Result format. Options: 'text' or 'json'.")
	scenariosFlag := flagSet.Bool("scenarios", false, "Replay the configured scenarios.")
	workersFlag := flagSet.Int("workers", 4, "Number of scenarios replayed concurrently.")
	serveFlag := flagSet.Int("serve", 0, "Port for the HTTP API. 0 is disabled.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	weatherFlag := flagSet.String("weather-url", os.Getenv(EnvWeatherURL), "socket.io URL of the weather observation feed.")
	weatherInsecureFlag := flagSet.Bool("weather-insecure", false, "Skip TLS verification for the weather feed.")
	aircraftFieldFlag := flagSet.String("aircraft-field", app.DefaultAircraftField, "Input selecting the aircraft model.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	switch {
	case *configFlag != "":
		path = *configFlag
	case *cFlag != "":
		path = *cFlag
	case flagSet.NArg() > 0:
		path = flagSet.Arg(0)
	default:
		path = os.Getenv(EnvConfig)
	}
	slog.Debug("Config path determined.", "path", path)

	if path == "" {
		slog.Debug("No config path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.AppConfig{
		ConfigPaths:     []string{path},
		AircraftField:   *aircraftFieldFlag,
		Sets:            sets,
		Page:            *pageFlag,
		Output:          strings.ToLower(*outputFlag),
		Scenarios:       *scenariosFlag,
		Workers:         *workersFlag,
		ServePort:       *serveFlag,
		HealthcheckPort: *healthPortFlag,
		WeatherURL:      *weatherFlag,
		WeatherInsecure: *weatherInsecureFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
