package registry

import (
	"slices"

	"github.com/specialistvlad/pohcalc/internal/engine"
)

// Module is the interface that all modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the registered Go functions of one application instance.
type Registry struct {
	ComputationRegistry   map[string]engine.Func
	ChangeHandlerRegistry map[string]ChangeHandler
	ExprFuncRegistry      map[string]ExprFunc
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		ComputationRegistry:   make(map[string]engine.Func),
		ChangeHandlerRegistry: make(map[string]ChangeHandler),
		ExprFuncRegistry:      make(map[string]ExprFunc),
	}
}

// Computation implements engine.Binder.
func (r *Registry) Computation(name string) (engine.Func, bool) {
	fn, ok := r.ComputationRegistry[name]
	return fn, ok
}

// ChangeHandler returns a registered change handler.
func (r *Registry) ChangeHandler(name string) (ChangeHandler, bool) {
	h, ok := r.ChangeHandlerRegistry[name]
	return h, ok
}

// ExprFuncNames returns the registered expression function names, sorted.
func (r *Registry) ExprFuncNames() []string {
	names := make([]string, 0, len(r.ExprFuncRegistry))
	for name := range r.ExprFuncRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
