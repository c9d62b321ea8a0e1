package field

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/pohcalc/internal/format"
	"github.com/specialistvlad/pohcalc/internal/units"
)

// Descriptor is a fully materialised field description. Descriptors are
// shared by every session and never change after Build.
type Descriptor struct {
	ID    string
	Input bool

	Kind    Kind
	Format  format.Spec
	Integer bool
	Min     Expr
	Max     Expr
	Default Expr

	Increment float64
	MaxLen    int
	Upper     bool
	Choices   []string

	Invalid     format.Policy
	Color       string
	Background  string
	TableErrors map[string]string
	OnChange    string

	// Link is the owner id when the field is an alias.
	Link       string
	Same       string
	Page       string
	ErrorGroup string

	Base       string
	Unit       units.Unit
	Controller string
	// Siblings lists the unit siblings, this field included, in declaration
	// order. It is empty for fields without units and for aliases.
	Siblings []string
	// Aliases lists the fields linking to this one.
	Aliases []string
}

// IsAlias reports whether the field links to another field.
func (d *Descriptor) IsAlias() bool { return d.Link != "" }

// Catalog is the immutable set of descriptors of one configuration.
type Catalog struct {
	byID   map[string]*Descriptor
	order  []string
	groups map[string][]string
	conv   *units.Converter
}

// BuildOptions carries what Build needs besides the specs.
type BuildOptions struct {
	// Pages are the page names used to place fields without an explicit page.
	Pages     []string
	Converter *units.Converter
}

// Build expands same/link declarations and validates the result. All
// problems found are reported together.
func Build(specs []*Spec, opts BuildOptions) (*Catalog, error) {
	conv := opts.Converter
	if conv == nil {
		conv = units.NewConverter()
	}

	raw := make(map[string]*Spec, len(specs))
	var order []string
	var errs []string
	for _, s := range specs {
		if s.ID == "" {
			errs = append(errs, "field with empty id")
			continue
		}
		if _, dup := raw[s.ID]; dup {
			errs = append(errs, fmt.Sprintf("field '%s' declared more than once", s.ID))
			continue
		}
		cp := *s
		raw[s.ID] = &cp
		order = append(order, s.ID)
	}

	b := &builder{raw: raw, done: make(map[string]bool), visiting: make(map[string]bool)}
	for _, id := range order {
		if err := b.expand(id); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return nil, joinErrors(errs)
	}

	cat := &Catalog{
		byID:   make(map[string]*Descriptor, len(order)),
		order:  order,
		groups: make(map[string][]string),
		conv:   conv,
	}
	for _, id := range order {
		d, err := materialise(raw[id], opts.Pages, conv)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		cat.byID[id] = d
	}
	if len(errs) > 0 {
		return nil, joinErrors(errs)
	}

	errs = append(errs, cat.link()...)
	if len(errs) > 0 {
		return nil, joinErrors(errs)
	}
	return cat, nil
}

func joinErrors(errs []string) error {
	return fmt.Errorf("field build failed:\n- %s", strings.Join(errs, "\n- "))
}

type builder struct {
	raw      map[string]*Spec
	done     map[string]bool
	visiting map[string]bool
}

// expand merges same/link targets into the spec, targets first.
func (b *builder) expand(id string) error {
	if b.done[id] {
		return nil
	}
	if b.visiting[id] {
		return fmt.Errorf("field '%s': same/link cycle", id)
	}
	b.visiting[id] = true
	defer delete(b.visiting, id)

	s := b.raw[id]
	if s.Same != "" && s.Link != "" {
		return fmt.Errorf("field '%s': same and link are exclusive", id)
	}
	ref := s.Same
	if s.Link != "" {
		ref = s.Link
	}
	if ref != "" {
		t, ok := b.raw[ref]
		if !ok {
			return fmt.Errorf("field '%s': unknown target '%s'", id, ref)
		}
		if s.Link != "" {
			if t.Link != "" {
				return fmt.Errorf("field '%s': link target '%s' is itself a link", id, ref)
			}
			if t.Input != s.Input {
				return fmt.Errorf("field '%s': link target '%s' is not of the same direction", id, ref)
			}
		}
		if err := b.expand(ref); err != nil {
			return err
		}
		s.inherit(t)
	}
	b.done[id] = true
	return nil
}

func materialise(s *Spec, pages []string, conv *units.Converter) (*Descriptor, error) {
	d := &Descriptor{
		ID:          s.ID,
		Input:       s.Input,
		Kind:        s.Kind,
		Min:         s.Min,
		Max:         s.Max,
		Default:     s.Default,
		Increment:   s.Increment,
		MaxLen:      s.MaxLen,
		Upper:       s.Upper,
		Choices:     s.Choices,
		Invalid:     format.Policy(s.Invalid),
		Color:       s.Color,
		Background:  s.Background,
		TableErrors: s.TableErrors,
		OnChange:    s.OnChange,
		Link:        s.Link,
		Same:        s.Same,
		Controller:  s.Controller,
	}

	if d.Input && d.Kind == KindUnset {
		return nil, fmt.Errorf("field '%s': input has no kind", s.ID)
	}
	if !d.Input && d.Kind != KindUnset {
		return nil, fmt.Errorf("field '%s': outputs take a format, not a kind", s.ID)
	}
	if d.Input && d.Kind == KindEnum && len(d.Choices) == 0 {
		return nil, fmt.Errorf("field '%s': enum without choices", s.ID)
	}

	spec := s.Format
	if spec == "" {
		spec = "n"
	}
	fs, err := format.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("field '%s': %w", s.ID, err)
	}
	d.Format = fs
	d.Integer = fs.Kind == format.KindNumber && !strings.Contains(spec, ".")

	d.Page = s.Page
	if d.Page == "" {
		d.Page = longestPrefix(s.ID, pages)
	}
	if d.Page == "" {
		return nil, fmt.Errorf("field '%s': no page matches the id", s.ID)
	}

	base, unit, ok := units.Split(s.ID)
	d.Base = base
	if ok {
		d.Unit = unit
		if d.Controller == "" {
			ctl, found := conv.Controller(unit)
			if !found {
				return nil, fmt.Errorf("field '%s': no unit controller for '%s'", s.ID, unit)
			}
			d.Controller = ctl
		}
	}

	d.ErrorGroup = s.ErrorGroup
	if d.ErrorGroup == "" {
		d.ErrorGroup = base + "Error"
	}
	return d, nil
}

func longestPrefix(id string, pages []string) string {
	best := ""
	for _, p := range pages {
		if strings.HasPrefix(id, p) && len(p) > len(best) {
			best = p
		}
	}
	return best
}

// link fills siblings, aliases and error groups and checks cross-field rules.
func (c *Catalog) link() []string {
	var errs []string
	bases := make(map[string][]string)
	for _, id := range c.order {
		d := c.byID[id]
		c.groups[d.ErrorGroup] = append(c.groups[d.ErrorGroup], id)
		if d.IsAlias() {
			owner := c.byID[d.Link]
			owner.Aliases = append(owner.Aliases, id)
			continue
		}
		if d.Unit != "" {
			key := fmt.Sprintf("%t/%s", d.Input, d.Base)
			bases[key] = append(bases[key], id)
		}
	}

	for _, ids := range bases {
		for _, id := range ids {
			d := c.byID[id]
			d.Siblings = ids
			for _, sid := range ids {
				if !c.conv.CanConvert(d.Unit, c.byID[sid].Unit) {
					errs = append(errs, fmt.Sprintf("field '%s': cannot convert %s to %s for sibling '%s'", id, d.Unit, c.byID[sid].Unit, sid))
				}
			}
		}
	}

	for _, id := range c.order {
		d := c.byID[id]
		if d.Controller == "" {
			continue
		}
		ctl, ok := c.byID[d.Controller]
		if !ok || !ctl.Input {
			errs = append(errs, fmt.Sprintf("field '%s': unit controller '%s' is not an input", id, d.Controller))
		}
	}
	return errs
}

// Lookup returns the descriptor of id.
func (c *Catalog) Lookup(id string) (*Descriptor, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// Descriptor returns the descriptor of id and panics when it is unknown.
func (c *Catalog) Descriptor(id string) *Descriptor {
	d, ok := c.byID[id]
	if !ok {
		panic(fmt.Sprintf("field: unknown id '%s'", id))
	}
	return d
}

// IDs returns every field id in declaration order.
func (c *Catalog) IDs() []string { return c.order }

// Group returns the members of an error group in declaration order.
func (c *Catalog) Group(name string) []string { return c.groups[name] }

// Converter returns the unit converter the catalog was built with.
func (c *Catalog) Converter() *units.Converter { return c.conv }

// ErrUnknownField is returned by lookups that do not panic.
var ErrUnknownField = errors.New("unknown field")
