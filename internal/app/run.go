package app

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/specialistvlad/pohcalc/internal/ctxlog"
	"github.com/specialistvlad/pohcalc/internal/scenario"
	"github.com/specialistvlad/pohcalc/internal/session"
)

// Run executes the mode selected by the configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx, a.config.HealthcheckPort)
		defer a.closeHealthcheckServer(ctx)
	}

	var err error
	switch {
	case a.config.Scenarios:
		err = a.runScenarios(ctx)
	case a.config.ServePort > 0:
		err = a.serve(ctx)
	default:
		err = a.runOnce(ctx)
	}

	a.logger.Debug("App.Run method finished.")
	return err
}

// runOnce applies the --set assignments to a new session and prints the
// selected page, or every page.
func (a *App) runOnce(ctx context.Context) error {
	s := a.calc.Factory.New(ctx)
	for _, set := range a.config.Sets {
		if err := s.Set(ctx, set.ID, set.Value); err != nil {
			return fmt.Errorf("setting '%s': %w", set.ID, err)
		}
	}

	pages := a.calc.Program.Pages()
	if a.config.Page != "" {
		if err := s.ComputePage(ctx, a.config.Page); err != nil {
			return err
		}
		pages = []string{a.config.Page}
	} else if err := s.ComputeAll(ctx); err != nil {
		return err
	}
	a.logger.Info("🏁 Calculation finished.", "aircraft", s.Aircraft(), "pages", len(pages))

	reports := make([]pageReport, 0, len(pages))
	for _, name := range pages {
		views, err := s.Outputs(name)
		if err != nil {
			return err
		}
		page, _ := a.calc.Program.Page(name)
		reports = append(reports, pageReport{Page: name, Title: page.Title, Fields: views})
	}
	return a.writePages(reports)
}

type pageReport struct {
	Page   string              `json:"page"`
	Title  string              `json:"title,omitempty"`
	Fields []session.FieldView `json:"fields"`
}

func (a *App) writePages(reports []pageReport) error {
	if a.config.Output == OutputJSON {
		enc := json.NewEncoder(a.outW)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	tw := tabwriter.NewWriter(a.outW, 0, 4, 2, ' ', 0)
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		title := r.Page
		if r.Title != "" {
			title = fmt.Sprintf("%s (%s)", r.Title, r.Page)
		}
		fmt.Fprintf(tw, "== %s ==\n", title)
		for _, f := range r.Fields {
			marker := ""
			if f.Input {
				marker = "*"
			}
			line := fmt.Sprintf("%s%s\t%s", f.ID, marker, f.Text)
			if f.Error != nil {
				line += "\t" + f.Error.Text
			}
			fmt.Fprintln(tw, line)
		}
		// Shared error rows, once per group.
		seen := make(map[string]bool)
		for _, f := range r.Fields {
			if f.GroupError == nil || seen[f.ErrorGroup] {
				continue
			}
			seen[f.ErrorGroup] = true
			fmt.Fprintf(tw, "!%s\t%s\n", f.ErrorGroup, f.GroupError.Text)
		}
	}
	return tw.Flush()
}

type scenarioReport struct {
	scenario.Result
	Passed bool   `json:"passed"`
	Error  string `json:"error,omitempty"`
}

// runScenarios replays every configured scenario and reports the outcome.
// Any failing scenario fails the run.
func (a *App) runScenarios(ctx context.Context) error {
	runner := &scenario.Runner{Factory: a.calc.Factory, AircraftField: a.calc.AircraftField}
	results, err := runner.RunAll(ctx, a.calc.Model.Scenarios, a.config.Workers)
	if err != nil {
		return err
	}

	failed := 0
	reports := make([]scenarioReport, 0, len(results))
	for _, r := range results {
		rep := scenarioReport{Result: r, Passed: r.Passed()}
		if r.Err != nil {
			rep.Error = r.Err.Error()
		}
		if !rep.Passed {
			failed++
		}
		reports = append(reports, rep)
	}

	if a.config.Output == OutputJSON {
		enc := json.NewEncoder(a.outW)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			status := "PASS"
			if !r.Passed {
				status = "FAIL"
			}
			fmt.Fprintf(a.outW, "%s  %s (%v)\n", status, r.Scenario, r.Duration)
			if r.Error != "" {
				fmt.Fprintf(a.outW, "      error: %s\n", r.Error)
			}
			for _, m := range r.Mismatches {
				fmt.Fprintf(a.outW, "      %s\n", m)
			}
		}
		fmt.Fprintf(a.outW, "%d scenarios, %d failed\n", len(reports), failed)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(reports))
	}
	return nil
}
