package engine

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/pohcalc/internal/dag"
	"github.com/specialistvlad/pohcalc/internal/field"
)

// Func is the Go implementation of a computation.
type Func func(ctx context.Context, s *Scope) error

// Binder resolves computation function names.
type Binder interface {
	Computation(name string) (Func, bool)
}

// ComputationSpec is a computation as declared in configuration.
type ComputationSpec struct {
	Fn string
	// Inputs and Outputs hold field ids or selectors.
	Inputs     []string
	Outputs    []string
	Precedents []string
	// Refreshes lists pages the function recomputes itself.
	Refreshes []string
}

// PageSpec is a page as declared in configuration.
type PageSpec struct {
	Name         string
	Title        string
	Parent       string
	Computations []ComputationSpec
}

// Computation is a compiled computation.
type Computation struct {
	Page       string
	Fn         string
	Inputs     []string
	Outputs    []string
	Precedents []string
	Refreshes  []string

	index int
	fn    Func
}

func (c *Computation) String() string { return fmt.Sprintf("%s/%s", c.Page, c.Fn) }

// Page is a compiled page.
type Page struct {
	Name         string
	Title        string
	Parent       string
	Computations []*Computation
}

// Program is the immutable, session independent result of Compile.
type Program struct {
	cat   *field.Catalog
	pages map[string]*Page
	order []string
	// producer maps an output owner id to the page computing it.
	producer map[string]string
	graph    *dag.Graph
	count    int
}

// Compile checks and binds the page declarations. Every problem found is
// reported in one error.
func Compile(cat *field.Catalog, specs []PageSpec, b Binder) (*Program, error) {
	p := &Program{
		cat:      cat,
		pages:    make(map[string]*Page, len(specs)),
		producer: make(map[string]string),
		graph:    dag.New(),
	}
	var errs []string
	fail := func(format string, args ...any) { errs = append(errs, fmt.Sprintf(format, args...)) }

	for _, ps := range specs {
		if _, dup := p.pages[ps.Name]; dup {
			fail("page '%s' declared more than once", ps.Name)
			continue
		}
		p.pages[ps.Name] = &Page{Name: ps.Name, Title: ps.Title, Parent: ps.Parent}
		p.order = append(p.order, ps.Name)
		p.graph.AddNode(ps.Name)
	}

	compiled := make(map[string]bool, len(specs))
	for _, ps := range specs {
		if compiled[ps.Name] {
			continue
		}
		compiled[ps.Name] = true
		page := p.pages[ps.Name]
		if ps.Parent != "" {
			if _, ok := p.pages[ps.Parent]; !ok {
				fail("page '%s': unknown parent page '%s'", ps.Name, ps.Parent)
			}
		}
		for _, cs := range ps.Computations {
			c, cerrs := p.compileComputation(ps.Name, cs, b)
			errs = append(errs, cerrs...)
			if c != nil {
				page.Computations = append(page.Computations, c)
			}
		}
	}
	if len(errs) > 0 {
		return nil, joinErrors(errs)
	}

	if err := p.graph.DetectCycles(); err != nil {
		return nil, joinErrors([]string{fmt.Sprintf("precedent graph: %v", err)})
	}
	if errs := p.checkPrecedents(); len(errs) > 0 {
		return nil, joinErrors(errs)
	}
	return p, nil
}

func joinErrors(errs []string) error {
	return fmt.Errorf("page compile failed:\n- %s", strings.Join(errs, "\n- "))
}

func (p *Program) compileComputation(page string, cs ComputationSpec, b Binder) (*Computation, []string) {
	var errs []string
	where := fmt.Sprintf("page '%s' computation '%s'", page, cs.Fn)
	c := &Computation{Page: page, Fn: cs.Fn, index: p.count}
	p.count++

	fn, ok := b.Computation(cs.Fn)
	if !ok {
		errs = append(errs, fmt.Sprintf("%s: function is not registered", where))
	}
	c.fn = fn

	inputs, err := p.expand(cs.Inputs)
	if err != nil {
		errs = append(errs, fmt.Sprintf("%s: inputs: %v", where, err))
	}
	outputs, err := p.expand(cs.Outputs)
	if err != nil {
		errs = append(errs, fmt.Sprintf("%s: outputs: %v", where, err))
	}

	for _, id := range outputs {
		d := p.cat.Descriptor(id)
		if d.Input {
			errs = append(errs, fmt.Sprintf("%s: '%s' is an input, not an output", where, id))
			continue
		}
		if d.IsAlias() {
			continue
		}
		if prev, dup := p.producer[id]; dup && prev != page {
			errs = append(errs, fmt.Sprintf("%s: output '%s' is already computed by page '%s'", where, id, prev))
			continue
		}
		p.producer[id] = page
	}

	// Unit controllers select which sibling is shown, so their changes must
	// reach the computation too.
	for _, id := range slices.Concat(inputs, outputs) {
		if ctl := p.cat.Descriptor(id).Controller; ctl != "" && !slices.Contains(inputs, ctl) {
			inputs = append(inputs, ctl)
		}
	}
	c.Inputs = inputs
	c.Outputs = outputs

	for _, pp := range cs.Precedents {
		if _, ok := p.pages[pp]; !ok {
			errs = append(errs, fmt.Sprintf("%s: unknown precedent page '%s'", where, pp))
			continue
		}
		if err := p.graph.AddEdge(pp, page); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", where, err))
			continue
		}
		c.Precedents = append(c.Precedents, pp)
	}
	for _, rp := range cs.Refreshes {
		if _, ok := p.pages[rp]; !ok {
			errs = append(errs, fmt.Sprintf("%s: unknown refreshed page '%s'", where, rp))
			continue
		}
		c.Refreshes = append(c.Refreshes, rp)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return c, nil
}

// checkPrecedents reports inputs that are computed by another page which
// neither precedes the computation nor is refreshed by it. Alias outputs
// need the owner's page to precede them for the same reason.
func (p *Program) checkPrecedents() []string {
	var errs []string
	for _, name := range p.order {
		for _, c := range p.pages[name].Computations {
			check := func(id, role string) {
				d := p.cat.Descriptor(id)
				owner := id
				if d.IsAlias() {
					owner = d.Link
				}
				src, ok := p.producer[owner]
				if !ok || src == c.Page || slices.Contains(c.Refreshes, src) || p.precedes(src, c.Page) {
					return
				}
				errs = append(errs, fmt.Sprintf("page '%s' computation '%s': %s '%s' is computed by page '%s', which is not a precedent", c.Page, c.Fn, role, id, src))
			}
			for _, id := range c.Inputs {
				check(id, "input")
			}
			for _, id := range c.Outputs {
				if p.cat.Descriptor(id).IsAlias() {
					check(id, "linked output")
				}
			}
		}
	}
	return errs
}

// precedes reports whether page a is a direct or transitive precedent of b.
func (p *Program) precedes(a, b string) bool {
	seen := make(map[string]bool)
	var walk func(n string) bool
	walk = func(n string) bool {
		deps, _ := p.graph.Dependencies(n)
		for _, d := range deps {
			if d == a {
				return true
			}
			if !seen[d] {
				seen[d] = true
				if walk(d) {
					return true
				}
			}
		}
		return false
	}
	return walk(b)
}

// Catalog returns the field catalog the program was compiled against.
func (p *Program) Catalog() *field.Catalog { return p.cat }

// Pages returns the page names in declaration order.
func (p *Program) Pages() []string { return p.order }

// Page returns a compiled page.
func (p *Program) Page(name string) (*Page, bool) {
	pg, ok := p.pages[name]
	return pg, ok
}

// Producer returns the page computing an output, following links.
func (p *Program) Producer(id string) (string, bool) {
	d, ok := p.cat.Lookup(id)
	if !ok {
		return "", false
	}
	if d.IsAlias() {
		id = d.Link
	}
	page, ok := p.producer[id]
	return page, ok
}
