package hcl_adapter

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/pohcalc/internal/config"
	"github.com/specialistvlad/pohcalc/internal/ctxlog"
	"github.com/specialistvlad/pohcalc/internal/fsutil"
	"github.com/specialistvlad/pohcalc/internal/registry"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	funcs map[string]registry.ExprFunc
}

// NewLoader creates a new HCL configuration loader. The expression functions
// registered in r become callable from descriptor expressions.
func NewLoader(r *registry.Registry) *Loader {
	l := &Loader{funcs: make(map[string]registry.ExprFunc)}
	if r != nil {
		for name, fn := range r.ExprFuncRegistry {
			l.funcs[name] = fn
		}
	}
	return l
}

// Load orchestrates the entire HCL configuration loading process. It is
// agnostic to the origin of the paths and parses any valid block from any file.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := fsutil.CollectFiles(".hcl", paths...)
	if err != nil {
		return nil, nil, err
	}
	if len(hclFiles) == 0 {
		return nil, nil, fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	model := &config.Model{}
	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		// Inputs and outputs decode into separate slices; the source offset
		// restores their interleaved declaration order.
		var fields []*config.Field
		for _, in := range root.Inputs {
			fields = append(fields, translateField(ctx, in, true))
		}
		for _, out := range root.Outputs {
			fields = append(fields, translateField(ctx, out, false))
		}
		sort.SliceStable(fields, func(i, j int) bool {
			return fields[i].Source.Start.Byte < fields[j].Source.Start.Byte
		})
		model.Fields = append(model.Fields, fields...)

		for _, p := range root.Pages {
			model.Pages = append(model.Pages, translatePage(p))
		}
		for _, a := range root.Aircraft {
			ac, err := translateAircraft(ctx, a)
			if err != nil {
				return nil, nil, fmt.Errorf("in file %s: %w", file, err)
			}
			model.Aircraft = append(model.Aircraft, ac)
		}
		for _, s := range root.Scenarios {
			sc, err := translateScenario(ctx, s)
			if err != nil {
				return nil, nil, fmt.Errorf("in file %s: %w", file, err)
			}
			model.Scenarios = append(model.Scenarios, sc)
		}
	}

	logger.Debug("HCL loading complete.",
		"fields", len(model.Fields),
		"pages", len(model.Pages),
		"aircraft", len(model.Aircraft),
		"scenarios", len(model.Scenarios),
	)
	return model, NewConverter(l.funcs), nil
}
