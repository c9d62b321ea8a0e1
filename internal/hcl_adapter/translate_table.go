package hcl_adapter

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/pohcalc/internal/table"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// decodeTableData evaluates the `data` attribute of a table block and turns
// it into nested table entries. Each level is a list of objects with the
// parameter value `p` and either the next level `a` or, on the last level,
// the result `v`.
func decodeTableData(expr hcl.Expression, depth int) ([]table.Entry, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	return decodeLevel(val, depth, "data")
}

func decodeLevel(val cty.Value, depth int, path string) ([]table.Entry, error) {
	if val.IsNull() || !val.IsKnown() {
		return nil, fmt.Errorf("%s: must not be null", path)
	}
	ty := val.Type()
	if !ty.IsListType() && !ty.IsTupleType() {
		return nil, fmt.Errorf("%s: expected a list, got %s", path, ty.FriendlyName())
	}

	entries := make([]table.Entry, 0, val.LengthInt())
	it := val.ElementIterator()
	for i := 0; it.Next(); i++ {
		_, elem := it.Element()
		elemPath := fmt.Sprintf("%s[%d]", path, i)
		if !elem.Type().IsObjectType() && !elem.Type().IsMapType() {
			return nil, fmt.Errorf("%s: expected an object, got %s", elemPath, elem.Type().FriendlyName())
		}
		attrs := elem.AsValueMap()

		var e table.Entry
		if err := decodeNumber(attrs, "p", &e.P, elemPath); err != nil {
			return nil, err
		}
		if depth == 1 {
			if err := decodeNumber(attrs, "v", &e.V, elemPath); err != nil {
				return nil, err
			}
		} else {
			next, ok := attrs["a"]
			if !ok {
				return nil, fmt.Errorf("%s: missing nested level 'a'", elemPath)
			}
			sub, err := decodeLevel(next, depth-1, elemPath+".a")
			if err != nil {
				return nil, err
			}
			e.A = sub
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func decodeNumber(attrs map[string]cty.Value, name string, dst *float64, path string) error {
	v, ok := attrs[name]
	if !ok {
		return fmt.Errorf("%s: missing '%s'", path, name)
	}
	// Numbers quoted in copied POH data ("2100") are accepted.
	num, err := convert.Convert(v, cty.Number)
	if err != nil {
		return fmt.Errorf("%s.%s: %w", path, name, err)
	}
	if err := gocty.FromCtyValue(num, dst); err != nil {
		return fmt.Errorf("%s.%s: %w", path, name, err)
	}
	return nil
}

// ctyToScalar converts a known primitive cty value into float64, string or
// bool.
func ctyToScalar(val cty.Value) (any, error) {
	if val.IsNull() || !val.IsKnown() {
		return nil, fmt.Errorf("value must be known and not null")
	}
	switch val.Type() {
	case cty.Number:
		f, _ := val.AsBigFloat().Float64()
		return f, nil
	case cty.String:
		return val.AsString(), nil
	case cty.Bool:
		return val.True(), nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", val.Type().FriendlyName())
	}
}
