package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/pohcalc/internal/config"
	"github.com/specialistvlad/pohcalc/internal/ctxlog"
)

// ValidateRegistry performs a parity check between the configuration and
// the Go code: every computation and change handler the model names must be
// registered. Registered computations no page uses only log a warning.
func (r *Registry) ValidateRegistry(ctx context.Context, model *config.Model) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	used := make(map[string]bool)
	for _, page := range model.Pages {
		for _, c := range page.Computations {
			used[c.Fn] = true
			if _, ok := r.ComputationRegistry[c.Fn]; !ok {
				errs = append(errs, fmt.Sprintf("page '%s': computation '%s' is not registered", page.Name, c.Fn))
			}
		}
	}
	for _, f := range model.Fields {
		if f.OnChange == "" {
			continue
		}
		if !f.Input {
			errs = append(errs, fmt.Sprintf("output '%s': on_change is only allowed on inputs", f.ID))
			continue
		}
		if _, ok := r.ChangeHandlerRegistry[f.OnChange]; !ok {
			errs = append(errs, fmt.Sprintf("input '%s': change handler '%s' is not registered", f.ID, f.OnChange))
		}
	}

	for name := range r.ComputationRegistry {
		if !used[name] {
			logger.Warn("Registered computation is not used by any page.", "computation", name)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
