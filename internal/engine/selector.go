package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/pohcalc/internal/field"
	"github.com/specialistvlad/pohcalc/internal/units"
)

// selector matches fields by page, direction and unit. An empty filter
// matches everything; fields without a unit pass any unit filter.
type selector struct {
	pages []string
	io    string
	units []units.Unit
}

// parseSelector reads "<page:WB,Trip;io:input;unit:gal,lbs>".
func parseSelector(s string) (*selector, error) {
	body, ok := strings.CutPrefix(s, "<")
	if ok {
		body, ok = strings.CutSuffix(body, ">")
	}
	if !ok {
		return nil, fmt.Errorf("malformed selector '%s'", s)
	}
	sel := &selector{}
	for part := range strings.SplitSeq(body, ";") {
		key, vals, found := strings.Cut(strings.TrimSpace(part), ":")
		if !found || vals == "" {
			return nil, fmt.Errorf("selector '%s': malformed clause '%s'", s, part)
		}
		list := strings.Split(vals, ",")
		for i := range list {
			list[i] = strings.TrimSpace(list[i])
		}
		switch key {
		case "page":
			sel.pages = list
		case "io":
			if len(list) != 1 || (list[0] != "input" && list[0] != "output") {
				return nil, fmt.Errorf("selector '%s': io must be input or output", s)
			}
			sel.io = list[0]
		case "unit":
			for _, u := range list {
				sel.units = append(sel.units, units.Unit(u))
			}
		default:
			return nil, fmt.Errorf("selector '%s': unknown clause '%s'", s, key)
		}
	}
	return sel, nil
}

func (s *selector) match(d *field.Descriptor) bool {
	if len(s.pages) > 0 && !slices.Contains(s.pages, d.Page) {
		return false
	}
	switch s.io {
	case "input":
		if !d.Input {
			return false
		}
	case "output":
		if d.Input {
			return false
		}
	}
	if len(s.units) > 0 && d.Unit != "" && !slices.Contains(s.units, d.Unit) {
		return false
	}
	return true
}

// expand replaces selectors with the matching ids in declaration order and
// checks plain ids. Duplicates are dropped.
func (p *Program) expand(items []string) ([]string, error) {
	var out []string
	var errs []string
	add := func(id string) {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	for _, item := range items {
		if !strings.HasPrefix(item, "<") {
			if _, ok := p.cat.Lookup(item); !ok {
				errs = append(errs, fmt.Sprintf("unknown field '%s'", item))
				continue
			}
			add(item)
			continue
		}
		sel, err := parseSelector(item)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		for _, id := range p.cat.IDs() {
			if sel.match(p.cat.Descriptor(id)) {
				add(id)
			}
		}
	}
	if len(errs) > 0 {
		return out, fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return out, nil
}
