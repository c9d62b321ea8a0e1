package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/specialistvlad/pohcalc/internal/engine"
	"github.com/specialistvlad/pohcalc/internal/field"
	"github.com/specialistvlad/pohcalc/internal/value"
)

// Inputs is the part of a session a change handler may touch.
type Inputs interface {
	Get(id string) value.Value
	Previous(id string) value.Value
	Default(id string) value.Value
	SetupValue(id string, raw any)
}

// ChangeHandler runs after an input named in an `on_change` attribute was
// set, before the affected pages are recomputed.
type ChangeHandler func(ctx context.Context, in Inputs, id string) error

// ExprFunc is a function callable from descriptor expressions. Invalid
// arguments never reach it; the call result is invalid instead.
type ExprFunc func(s field.State, args ...value.Value) value.Value

// RegisterComputation registers the Go function of a page computation.
func (r *Registry) RegisterComputation(name string, fn engine.Func) {
	if _, exists := r.ComputationRegistry[name]; exists {
		panic(fmt.Sprintf("computation with name '%s' already registered", name))
	}
	slog.Debug("Registering computation.", "name", name)
	r.ComputationRegistry[name] = fn
}

// RegisterChangeHandler registers an input change handler.
func (r *Registry) RegisterChangeHandler(name string, h ChangeHandler) {
	if _, exists := r.ChangeHandlerRegistry[name]; exists {
		panic(fmt.Sprintf("change handler with name '%s' already registered", name))
	}
	slog.Debug("Registering change handler.", "name", name)
	r.ChangeHandlerRegistry[name] = h
}

// RegisterExprFunc registers an expression function.
func (r *Registry) RegisterExprFunc(name string, fn ExprFunc) {
	if _, exists := r.ExprFuncRegistry[name]; exists {
		panic(fmt.Sprintf("expression function with name '%s' already registered", name))
	}
	slog.Debug("Registering expression function.", "name", name)
	r.ExprFuncRegistry[name] = fn
}
