package hcl_adapter

import (
	"math"

	"github.com/specialistvlad/pohcalc/internal/field"
	"github.com/specialistvlad/pohcalc/internal/registry"
	"github.com/specialistvlad/pohcalc/internal/units"
	"github.com/specialistvlad/pohcalc/internal/value"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// staticFunctions do not depend on session state.
var staticFunctions = map[string]function.Function{
	"min":         stdlib.MinFunc,
	"max":         stdlib.MaxFunc,
	"floor":       stdlib.FloorFunc,
	"ceil":        stdlib.CeilFunc,
	"abs":         stdlib.AbsoluteFunc,
	"gal_to_l":    unitFunc(units.GalToL),
	"lbs_to_kg":   unitFunc(units.LbsToKg),
	"ft_to_m":     unitFunc(units.FtToM),
	"inhg_to_hpa": unitFunc(units.InHgToHPa),
}

// stateFunctions are bound to the session state an expression is evaluated
// against.
var stateFunctions = map[string]func(s field.State) function.Function{
	"io":     ioFunc,
	"acdata": func(s field.State) function.Function { return datumFunc(s, "") },
	"acmax":  func(s field.State) function.Function { return datumFunc(s, "max") },
	"acmin":  func(s field.State) function.Function { return datumFunc(s, "min") },
	"acarm":  func(s field.State) function.Function { return datumFunc(s, "arm") },
}

// ioFunc reads a field. Invalid values become unknown so that everything
// computed from them is unknown too.
func ioFunc(s field.State) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: "id", Type: cty.String}},
		Type:   function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			return toCty(s.Get(args[0].AsString())), nil
		},
	})
}

// datumFunc reads aircraft data of the selected model.
func datumFunc(s field.State, attr string) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: "key", Type: cty.String}},
		Type:   function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			return toCty(s.Datum(args[0].AsString(), attr)), nil
		},
	})
}

func unitFunc(conv units.Func) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: "x", Type: cty.Number}},
		Type:   function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			f, _ := args[0].AsBigFloat().Float64()
			return cty.NumberFloatVal(conv(f)), nil
		},
	})
}

// moduleFunc exposes a registered expression function. Unknown arguments
// never reach fn: cty short-circuits the call to an unknown result.
func moduleFunc(s field.State, fn registry.ExprFunc) function.Function {
	return function.New(&function.Spec{
		VarParam: &function.Parameter{Name: "args", Type: cty.DynamicPseudoType},
		Type:     function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			vs := make([]value.Value, len(args))
			for i, a := range args {
				vs[i] = fromCty(a)
			}
			return toCty(fn(s, vs...)), nil
		},
	})
}

func toCty(v value.Value) cty.Value {
	switch v.Kind() {
	case value.KindNumber:
		f, _ := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return cty.DynamicVal
		}
		return cty.NumberFloatVal(f)
	case value.KindString:
		s, _ := v.Str()
		return cty.StringVal(s)
	case value.KindBool:
		b, _ := v.Bool()
		return cty.BoolVal(b)
	default:
		return cty.DynamicVal
	}
}

func fromCty(v cty.Value) value.Value {
	if !v.IsKnown() || v.IsNull() {
		return value.Invalid(value.Undefined)
	}
	switch v.Type() {
	case cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return value.Number(f)
	case cty.String:
		return value.String(v.AsString())
	case cty.Bool:
		return value.Bool(v.True())
	default:
		return value.Invalid(value.Undefined)
	}
}
