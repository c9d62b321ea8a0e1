// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/pohcalc/internal/config"
	"github.com/specialistvlad/pohcalc/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// translateField converts an `input` or `output` block into the agnostic model.
func translateField(ctx context.Context, b *FieldBlock, input bool) *config.Field {
	ctx, logger := ctxlog.With(ctx, "field", b.ID, "input", input)
	logger.Debug("Translating HCL field to internal config model.")

	return &config.Field{
		ID:          b.ID,
		Input:       input,
		Kind:        deref(b.Kind),
		Format:      deref(b.Format),
		Min:         definedOrNil(ctx, b.Min, "min"),
		Max:         definedOrNil(ctx, b.Max, "max"),
		Default:     definedOrNil(ctx, b.Default, "default"),
		Increment:   deref(b.Increment),
		MaxLen:      deref(b.MaxLen),
		Upper:       deref(b.Upper),
		Choices:     b.Choices,
		Invalid:     deref(b.Invalid),
		Color:       deref(b.Color),
		Background:  deref(b.Background),
		TableErrors: b.TableErrors,
		OnChange:    deref(b.OnChange),
		Same:        deref(b.Same),
		Link:        deref(b.Link),
		Page:        deref(b.Page),
		ErrorGroup:  deref(b.ErrorGroup),
		Controller:  deref(b.Controller),
		Source:      bodyRange(b.Body),
	}
}

// translatePage converts a `page` block into the agnostic model.
func translatePage(b *PageBlock) *config.Page {
	p := &config.Page{
		Name:   b.Name,
		Title:  deref(b.Title),
		Parent: deref(b.Parent),
	}
	for _, c := range b.Computations {
		p.Computations = append(p.Computations, &config.Compute{
			Fn:         c.Fn,
			Inputs:     c.Inputs,
			Outputs:    c.Outputs,
			Precedents: c.Precedents,
			Refreshes:  c.Refreshes,
		})
	}
	return p
}

// translateAircraft converts an `aircraft` block, decoding its tables.
func translateAircraft(ctx context.Context, b *AircraftBlock) (*config.Aircraft, error) {
	ctxlog.FromContext(ctx).Debug("Translating HCL aircraft.", "aircraft", b.ID, "tables", len(b.Tables))

	a := &config.Aircraft{
		ID:      b.ID,
		Name:    deref(b.Name),
		Scalars: b.Scalars,
		Ext:     b.Ext,
	}
	for _, s := range b.Stations {
		a.Stations = append(a.Stations, &config.Station{
			Name: s.Name,
			Min:  deref(s.Min),
			Max:  s.Max,
			Arm:  s.Arm,
		})
	}
	for _, e := range b.Envelopes {
		env := &config.Envelope{Name: e.Name}
		for i, pt := range e.Points {
			if len(pt) != 2 {
				return nil, fmt.Errorf("aircraft '%s' envelope '%s': point %d must be [weight, station]", b.ID, e.Name, i)
			}
			env.Points = append(env.Points, [2]float64{pt[0], pt[1]})
		}
		a.Envelopes = append(a.Envelopes, env)
	}
	for _, t := range b.Tables {
		root, err := decodeTableData(t.Data, len(t.Parameters))
		if err != nil {
			return nil, fmt.Errorf("aircraft '%s' table '%s': %w", b.ID, t.ID, err)
		}
		a.Tables = append(a.Tables, &config.Table{
			ID:     t.ID,
			Name:   deref(t.Name),
			Params: t.Parameters,
			Root:   root,
		})
	}
	return a, nil
}

// translateScenario converts a `scenario` block into the agnostic model.
func translateScenario(ctx context.Context, b *ScenarioBlock) (*config.Scenario, error) {
	s := &config.Scenario{
		Name:        b.Name,
		Description: deref(b.Description),
		Aircraft:    deref(b.Aircraft),
		Page:        deref(b.Page),
	}
	var err error
	if isExprDefined(ctx, b.Inputs, "inputs") {
		if s.Inputs, err = orderedAssignments(b.Inputs); err != nil {
			return nil, fmt.Errorf("scenario '%s' inputs: %w", b.Name, err)
		}
	}
	if s.Expect, err = orderedAssignments(b.Expect); err != nil {
		return nil, fmt.Errorf("scenario '%s' expect: %w", b.Name, err)
	}
	return s, nil
}

// orderedAssignments reads an object literal `{ id = value, ... }` keeping
// the order in which its keys are written.
func orderedAssignments(expr hcl.Expression) ([]config.Assignment, error) {
	obj, ok := expr.(*hclsyntax.ObjectConsExpr)
	if !ok {
		return nil, fmt.Errorf("%s: must be an object literal", expr.Range())
	}
	out := make([]config.Assignment, 0, len(obj.Items))
	for _, item := range obj.Items {
		key, diags := item.KeyExpr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		if key.Type() != cty.String || !key.IsKnown() || key.IsNull() {
			return nil, fmt.Errorf("%s: keys must be field ids", item.KeyExpr.Range())
		}
		val, diags := item.ValueExpr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		native, err := ctyToScalar(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", item.ValueExpr.Range(), err)
		}
		out = append(out, config.Assignment{ID: key.AsString(), Value: native})
	}
	return out, nil
}
