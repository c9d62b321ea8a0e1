package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/pohcalc/internal/acdata"
	"github.com/specialistvlad/pohcalc/internal/config"
	"github.com/specialistvlad/pohcalc/internal/ctxlog"
	"github.com/specialistvlad/pohcalc/internal/engine"
	"github.com/specialistvlad/pohcalc/internal/field"
	"github.com/specialistvlad/pohcalc/internal/hcl_adapter"
	"github.com/specialistvlad/pohcalc/internal/registry"
	"github.com/specialistvlad/pohcalc/internal/session"
	"github.com/specialistvlad/pohcalc/internal/table"
)

// Calculator is a loaded configuration ready to create sessions from.
type Calculator struct {
	Model    *config.Model
	Program  *engine.Program
	Aircraft *acdata.Catalog
	Factory  *session.Factory
	// AircraftField is the input selecting the model, empty when the
	// configuration declares none.
	AircraftField string
}

// Load reads the configuration at paths and compiles it against the Go
// functions registered in reg. The registry must be populated first: its
// expression functions are resolved while the configuration is parsed.
func Load(ctx context.Context, reg *registry.Registry, aircraftField string, paths ...string) (*Calculator, error) {
	logger := ctxlog.FromContext(ctx)

	model, conv, err := hcl_adapter.NewLoader(reg).Load(ctx, paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	if err := reg.ValidateRegistry(ctx, model); err != nil {
		return nil, err
	}
	logger.Debug("Registry validation passed.")

	pageNames := make([]string, 0, len(model.Pages))
	for _, p := range model.Pages {
		pageNames = append(pageNames, p.Name)
	}

	cat, err := buildCatalog(model.Fields, conv, pageNames)
	if err != nil {
		return nil, err
	}
	logger.Debug("Field catalog built.", "fields", len(cat.IDs()))

	prog, err := engine.Compile(cat, pageSpecs(model.Pages), reg)
	if err != nil {
		return nil, err
	}
	logger.Debug("Pages compiled.", "pages", prog.Pages())

	ac, err := buildAircraft(model.Aircraft)
	if err != nil {
		return nil, err
	}

	opts := session.Options{Handlers: reg}
	if ac != nil {
		opts.Aircraft = ac
		if _, ok := cat.Lookup(aircraftField); ok {
			opts.AircraftField = aircraftField
		}
		logger.Debug("Aircraft data loaded.", "models", ac.IDs(), "selection_field", opts.AircraftField)
	}
	factory, err := session.NewFactory(prog, opts)
	if err != nil {
		return nil, err
	}

	return &Calculator{Model: model, Program: prog, Aircraft: ac, Factory: factory, AircraftField: opts.AircraftField}, nil
}

// buildCatalog binds the descriptor expressions and expands the field
// declarations. Field references inside expressions are checked last, once
// every id is known.
func buildCatalog(fields []*config.Field, conv config.Converter, pages []string) (*field.Catalog, error) {
	var errs []string
	specs := make([]*field.Spec, 0, len(fields))
	for _, f := range fields {
		s, err := fieldSpec(f, conv)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		specs = append(specs, s)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("field declarations invalid:\n- %s", strings.Join(errs, "\n- "))
	}

	cat, err := field.Build(specs, field.BuildOptions{Pages: pages})
	if err != nil {
		return nil, err
	}
	if err := conv.CheckRefs(func(id string) bool {
		_, ok := cat.Lookup(id)
		return ok
	}); err != nil {
		return nil, err
	}
	return cat, nil
}

func fieldSpec(f *config.Field, conv config.Converter) (*field.Spec, error) {
	kind, err := field.ParseKind(f.Kind)
	if err != nil {
		return nil, fmt.Errorf("field '%s' (%s): %w", f.ID, f.Source, err)
	}
	s := &field.Spec{
		ID:          f.ID,
		Input:       f.Input,
		Kind:        kind,
		Format:      f.Format,
		Increment:   f.Increment,
		MaxLen:      f.MaxLen,
		Upper:       f.Upper,
		Choices:     f.Choices,
		Invalid:     f.Invalid,
		Color:       f.Color,
		Background:  f.Background,
		TableErrors: f.TableErrors,
		OnChange:    f.OnChange,
		Same:        f.Same,
		Link:        f.Link,
		Page:        f.Page,
		ErrorGroup:  f.ErrorGroup,
		Controller:  f.Controller,
	}
	if s.Min, err = conv.FieldExpr(f.Min); err != nil {
		return nil, fmt.Errorf("field '%s' min: %w", f.ID, err)
	}
	if s.Max, err = conv.FieldExpr(f.Max); err != nil {
		return nil, fmt.Errorf("field '%s' max: %w", f.ID, err)
	}
	if s.Default, err = conv.FieldExpr(f.Default); err != nil {
		return nil, fmt.Errorf("field '%s' default: %w", f.ID, err)
	}
	return s, nil
}

func pageSpecs(pages []*config.Page) []engine.PageSpec {
	specs := make([]engine.PageSpec, 0, len(pages))
	for _, p := range pages {
		ps := engine.PageSpec{Name: p.Name, Title: p.Title, Parent: p.Parent}
		for _, c := range p.Computations {
			ps.Computations = append(ps.Computations, engine.ComputationSpec{
				Fn:         c.Fn,
				Inputs:     c.Inputs,
				Outputs:    c.Outputs,
				Precedents: c.Precedents,
				Refreshes:  c.Refreshes,
			})
		}
		specs = append(specs, ps)
	}
	return specs
}

// buildAircraft returns nil when the configuration declares no aircraft.
func buildAircraft(aircraft []*config.Aircraft) (*acdata.Catalog, error) {
	if len(aircraft) == 0 {
		return nil, nil
	}
	models := make([]*acdata.Model, 0, len(aircraft))
	for _, a := range aircraft {
		m := &acdata.Model{
			ID:       a.ID,
			Name:     a.Name,
			Scalars:  a.Scalars,
			Stations: make(map[string]acdata.Station, len(a.Stations)),
			Limits:   make(map[string][]acdata.LimitPoint, len(a.Envelopes)),
			Tables:   make(map[string]*table.Table, len(a.Tables)),
			Ext:      a.Ext,
		}
		for _, st := range a.Stations {
			m.Stations[st.Name] = acdata.Station{Min: st.Min, Max: st.Max, Arm: st.Arm}
		}
		for _, env := range a.Envelopes {
			pts := make([]acdata.LimitPoint, 0, len(env.Points))
			for _, p := range env.Points {
				pts = append(pts, acdata.LimitPoint{Weight: p[0], Stn: p[1]})
			}
			m.Limits[env.Name] = pts
		}
		for _, t := range a.Tables {
			tbl, err := table.New(t.ID, t.Name, t.Params, t.Root)
			if err != nil {
				return nil, fmt.Errorf("aircraft '%s': %w", a.ID, err)
			}
			m.Tables[t.ID] = tbl
		}
		models = append(models, m)
	}
	return acdata.NewCatalog(models...)
}
