package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/pohcalc/internal/acdata"
	"github.com/specialistvlad/pohcalc/internal/ctxlog"
	"github.com/specialistvlad/pohcalc/internal/field"
	"github.com/specialistvlad/pohcalc/internal/table"
	"github.com/specialistvlad/pohcalc/internal/value"
)

// Options carries the per-session collaborators of an Engine.
type Options struct {
	// Tables serves Scope.Interpolate. It is cleared before every run.
	Tables *table.Set
	// Aircraft returns the model selected in the session. May be nil.
	Aircraft func() *acdata.Model
}

// compState is the per-session state of one computation.
type compState struct {
	ran      bool
	snapshot map[string]value.Value
}

// frame is a computation on the active stack with its dirty inputs.
type frame struct {
	c     *Computation
	dirty map[string]bool
}

// Engine is the per-session recomputation state. It is not safe for
// concurrent use.
type Engine struct {
	prog  *Program
	reg   *field.Registry
	opts  Options
	state []compState
	stack []*frame
}

// NewEngine creates the recomputation state of one session.
func (p *Program) NewEngine(reg *field.Registry, opts Options) *Engine {
	if opts.Tables == nil {
		opts.Tables = table.NewSet(table.Map{})
	}
	e := &Engine{
		prog:  p,
		reg:   reg,
		opts:  opts,
		state: make([]compState, p.count),
	}
	for i := range e.state {
		e.state[i].snapshot = make(map[string]value.Value)
	}
	return e
}

// Program returns the compiled program.
func (e *Engine) Program() *Program { return e.prog }

// Registry returns the session's field registry.
func (e *Engine) Registry() *field.Registry { return e.reg }

// ComputePage runs the computations of a page in declared order. Each
// computation first computes its precedent pages, then runs only when one of
// its inputs changed since its last run. Unknown pages panic.
func (e *Engine) ComputePage(ctx context.Context, name string) error {
	page, ok := e.prog.pages[name]
	if !ok {
		panic(fmt.Sprintf("engine: unknown page '%s'", name))
	}
	for _, c := range page.Computations {
		if err := e.run(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// ComputeAll computes every page in declaration order.
func (e *Engine) ComputeAll(ctx context.Context) error {
	for _, name := range e.prog.order {
		if err := e.ComputePage(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) onStack(c *Computation) bool {
	return slices.ContainsFunc(e.stack, func(f *frame) bool { return f.c == c })
}

func (e *Engine) run(ctx context.Context, c *Computation) error {
	logger := ctxlog.FromContext(ctx).With("computation", c.String())
	if e.onStack(c) {
		logger.Debug("Computation already running, skipping.")
		return nil
	}

	for _, pp := range c.Precedents {
		if err := e.ComputePage(ctx, pp); err != nil {
			return err
		}
	}

	st := &e.state[c.index]
	dirty := e.dirty(c, st)
	if st.ran && len(dirty) == 0 && len(c.Inputs) > 0 {
		logger.Debug("No input changed, skipping.")
		return nil
	}
	logger.Debug("Running computation.", "dirty", len(dirty), "first_run", !st.ran)

	// The snapshot is taken before the function so a page it refreshes
	// that leads back here finds this computation clean.
	for _, id := range c.Inputs {
		st.snapshot[id] = e.reg.Get(id)
	}
	st.ran = true
	e.prepare(c)

	e.stack = append(e.stack, &frame{c: c, dirty: dirty})
	err := c.fn(ctx, &Scope{e: e, c: c})
	e.stack = e.stack[:len(e.stack)-1]
	if err != nil {
		return fmt.Errorf("page '%s' computation '%s': %w", c.Page, c.Fn, err)
	}

	// Inputs computed by a refreshed page were read fresh by the function.
	for _, id := range c.Inputs {
		if src, ok := e.prog.Producer(id); ok && slices.Contains(c.Refreshes, src) {
			st.snapshot[id] = e.reg.Get(id)
		}
	}
	for _, id := range c.Outputs {
		if e.reg.Descriptor(id).IsAlias() {
			e.reg.MirrorAlias(id)
		}
	}
	return nil
}

// dirty returns the resolved ids of inputs whose value differs from the
// snapshot. Before the first run every input is dirty.
func (e *Engine) dirty(c *Computation, st *compState) map[string]bool {
	dirty := make(map[string]bool)
	for _, id := range c.Inputs {
		prev, seen := st.snapshot[id]
		if !st.ran || !seen || !prev.Equal(e.reg.Get(id)) {
			dirty[e.reg.Resolve(id)] = true
		}
	}
	return dirty
}

// prepare clears the state a computation is about to recompute.
func (e *Engine) prepare(c *Computation) {
	e.opts.Tables.Clear()
	for _, id := range c.Inputs {
		d := e.reg.Descriptor(id)
		if d.Input && d.Page == c.Page && e.reg.IsCurrentUnit(id) {
			e.reg.SetValidationError(id)
		}
	}
	for _, id := range c.Outputs {
		if e.reg.Descriptor(id).IsAlias() {
			continue
		}
		e.reg.SetOutputNull(id)
		e.reg.ResetError(id)
	}
}

// Changed reports whether id is among the dirty inputs of the running
// computation. Outside a computation every field counts as changed.
func (e *Engine) Changed(id string) bool {
	if len(e.stack) == 0 {
		return true
	}
	return e.stack[len(e.stack)-1].dirty[e.reg.Resolve(id)]
}

// Snapshot returns the value of input id recorded at the last run of a
// page's computation with the given function name.
func (e *Engine) Snapshot(page, fn, id string) (value.Value, bool) {
	pg, ok := e.prog.pages[page]
	if !ok {
		return value.Value{}, false
	}
	for _, c := range pg.Computations {
		if c.Fn == fn {
			v, ok := e.state[c.index].snapshot[id]
			return v, ok
		}
	}
	return value.Value{}, false
}
