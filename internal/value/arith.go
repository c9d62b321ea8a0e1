package value

// firstInvalid returns the first invalid operand.
func firstInvalid(vs ...Value) (Value, bool) {
	for _, v := range vs {
		if !v.IsNumber() {
			if v.IsValid() {
				return Invalid(Undefined), true
			}
			return v, true
		}
	}
	return Value{}, false
}

// Map applies fn to the numbers held by vs. If any operand is not a valid
// number the first invalid operand is returned unchanged (a non-numeric
// valid operand yields Invalid(Undefined)).
func Map(fn func(xs ...float64) float64, vs ...Value) Value {
	if bad, ok := firstInvalid(vs...); ok {
		return bad
	}
	xs := make([]float64, len(vs))
	for i, v := range vs {
		xs[i] = v.num
	}
	return Number(fn(xs...))
}

func Add(a, b Value) Value {
	return Map(func(x ...float64) float64 { return x[0] + x[1] }, a, b)
}

func Sub(a, b Value) Value {
	return Map(func(x ...float64) float64 { return x[0] - x[1] }, a, b)
}

func Mul(a, b Value) Value {
	return Map(func(x ...float64) float64 { return x[0] * x[1] }, a, b)
}

// Div yields Invalid(Undefined) on division by zero.
func Div(a, b Value) Value {
	return Map(func(x ...float64) float64 { return x[0] / x[1] }, a, b)
}

// Sum adds every operand.
func Sum(vs ...Value) Value {
	return Map(func(x ...float64) float64 {
		total := 0.0
		for _, f := range x {
			total += f
		}
		return total
	}, vs...)
}

// AllValid reports whether every operand is a valid number.
func AllValid(vs ...Value) bool {
	_, bad := firstInvalid(vs...)
	return !bad
}
