package hcl_adapter

import (
	"fmt"
	"maps"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/pohcalc/internal/field"
	"github.com/specialistvlad/pohcalc/internal/registry"
	"github.com/specialistvlad/pohcalc/internal/value"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Converter is the HCL-specific implementation of the config.Converter interface.
type Converter struct {
	funcs map[string]registry.ExprFunc
	refs  []fieldRef
}

// fieldRef is a literal io("id") call found in an expression.
type fieldRef struct {
	id  string
	rng hcl.Range
}

// NewConverter creates a new HCL converter that knows the given module
// expression functions.
func NewConverter(funcs map[string]registry.ExprFunc) *Converter {
	if funcs == nil {
		funcs = make(map[string]registry.ExprFunc)
	}
	return &Converter{funcs: funcs}
}

func (c *Converter) known(name string) bool {
	if _, ok := staticFunctions[name]; ok {
		return true
	}
	if _, ok := stateFunctions[name]; ok {
		return true
	}
	_, ok := c.funcs[name]
	return ok
}

// FieldExpr turns a descriptor expression into a field.Expr. Expressions
// without function calls are evaluated once; the others are evaluated
// against session state on every read.
func (c *Converter) FieldExpr(expr hcl.Expression) (field.Expr, error) {
	if expr == nil {
		return nil, nil
	}
	if vars := expr.Variables(); len(vars) > 0 {
		v := vars[0]
		return nil, fmt.Errorf("%s: variable '%s' is not supported, read fields with io(\"%s\")", v.SourceRange(), v.RootName(), v.RootName())
	}

	var calls []*hclsyntax.FunctionCallExpr
	if syn, ok := expr.(hclsyntax.Expression); ok {
		walkForFunctions(syn, func(call *hclsyntax.FunctionCallExpr) { calls = append(calls, call) })
	}
	var errs []string
	for _, call := range calls {
		if !c.known(call.Name) {
			errs = append(errs, fmt.Sprintf("%s: unknown function '%s'", call.NameRange, call.Name))
			continue
		}
		if call.Name == "io" && len(call.Args) == 1 {
			if id, ok := literalString(call.Args[0]); ok {
				c.refs = append(c.refs, fieldRef{id: id, rng: call.Args[0].Range()})
			}
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%s", strings.Join(errs, "; "))
	}

	if len(calls) == 0 {
		v, diags := expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		return field.Const(fromCty(v)), nil
	}
	return field.ExprFunc(func(s field.State) value.Value {
		v, diags := expr.Value(c.evalContext(s))
		if diags.HasErrors() {
			return value.Invalid(value.Undefined)
		}
		return fromCty(v)
	}), nil
}

// CheckRefs reports io() calls naming fields for which exists is false.
func (c *Converter) CheckRefs(exists func(id string) bool) error {
	var errs []string
	for _, r := range c.refs {
		if !exists(r.id) {
			errs = append(errs, fmt.Sprintf("%s: io() refers to unknown field '%s'", r.rng, r.id))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Converter) evalContext(s field.State) *hcl.EvalContext {
	fns := make(map[string]function.Function, len(staticFunctions)+len(stateFunctions)+len(c.funcs))
	maps.Copy(fns, staticFunctions)
	for name, mk := range stateFunctions {
		fns[name] = mk(s)
	}
	for name, fn := range c.funcs {
		fns[name] = moduleFunc(s, fn)
	}
	return &hcl.EvalContext{Functions: fns}
}

// literalString returns the value of a constant string expression.
func literalString(expr hclsyntax.Expression) (string, bool) {
	if len(expr.Variables()) > 0 {
		return "", false
	}
	var nested bool
	walkForFunctions(expr, func(*hclsyntax.FunctionCallExpr) { nested = true })
	if nested {
		return "", false
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() || !v.IsKnown() || v.IsNull() || v.Type() != cty.String {
		return "", false
	}
	return v.AsString(), true
}
