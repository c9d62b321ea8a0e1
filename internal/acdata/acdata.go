// Package acdata holds the aircraft models: scalar data, loading stations,
// CG envelopes and the POH tables of each model. A model may take tables
// from another model through its Ext map.
package acdata

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/specialistvlad/pohcalc/internal/mathutil"
	"github.com/specialistvlad/pohcalc/internal/table"
	"github.com/specialistvlad/pohcalc/internal/value"
)

// Station is a loading station such as a seat row, baggage area or tank.
type Station struct {
	Min float64
	Max float64
	Arm float64
}

// LimitPoint is one vertex of a CG envelope line.
type LimitPoint struct {
	Weight float64
	Stn    float64
}

// Model is one aircraft model.
type Model struct {
	ID       string
	Name     string
	Scalars  map[string]float64
	Stations map[string]Station
	// Limits are CG envelope lines keyed by name, sorted by weight.
	Limits map[string][]LimitPoint
	Tables map[string]*table.Table
	// Ext maps a table id to the model that provides it.
	Ext map[string]string
}

// Datum returns a scalar when attr is empty, or the "min", "max" or "arm" of
// a station. Unknown keys are invalid.
func (m *Model) Datum(key, attr string) value.Value {
	if attr == "" {
		if f, ok := m.Scalars[key]; ok {
			return value.Number(f)
		}
		return value.Invalid(value.Undefined)
	}
	st, ok := m.Stations[key]
	if !ok {
		return value.Invalid(value.Undefined)
	}
	switch attr {
	case "min":
		return value.Number(st.Min)
	case "max":
		return value.Number(st.Max)
	case "arm":
		return value.Number(st.Arm)
	default:
		return value.Invalid(value.Undefined)
	}
}

// Scalar returns a scalar and panics when the model lacks it.
func (m *Model) Scalar(key string) float64 {
	f, ok := m.Scalars[key]
	if !ok {
		panic(fmt.Sprintf("acdata: model '%s' has no scalar '%s'", m.ID, key))
	}
	return f
}

// Station returns a station and panics when the model lacks it.
func (m *Model) Station(key string) Station {
	st, ok := m.Stations[key]
	if !ok {
		panic(fmt.Sprintf("acdata: model '%s' has no station '%s'", m.ID, key))
	}
	return st
}

// CGLimit interpolates the station of an envelope line at weight. Weights
// outside the line take the nearest end point.
func (m *Model) CGLimit(name string, weight value.Value) value.Value {
	pts, ok := m.Limits[name]
	if !ok {
		panic(fmt.Sprintf("acdata: model '%s' has no envelope '%s'", m.ID, name))
	}
	w, ok := weight.Float()
	if !ok || len(pts) == 0 {
		return value.Invalid(value.Undefined)
	}
	if w <= pts[0].Weight {
		return value.Number(pts[0].Stn)
	}
	for i := 1; i < len(pts); i++ {
		if w <= pts[i].Weight {
			a, b := pts[i-1], pts[i]
			return value.Number(mathutil.Interpolate(w, a.Weight, a.Stn, b.Weight, b.Stn))
		}
	}
	return value.Number(pts[len(pts)-1].Stn)
}

// Catalog is the immutable set of models of one configuration.
type Catalog struct {
	models map[string]*Model
	order  []string
}

// ErrUnknownModel is returned for model ids not in the catalog.
var ErrUnknownModel = errors.New("unknown aircraft model")

// NewCatalog checks the models and their Ext references. Ext must point at a
// model that owns the table itself.
func NewCatalog(models ...*Model) (*Catalog, error) {
	c := &Catalog{models: make(map[string]*Model, len(models))}
	var errs []string
	for _, m := range models {
		if _, dup := c.models[m.ID]; dup {
			errs = append(errs, fmt.Sprintf("aircraft '%s' declared more than once", m.ID))
			continue
		}
		for name, pts := range m.Limits {
			if !sort.SliceIsSorted(pts, func(i, j int) bool { return pts[i].Weight < pts[j].Weight }) {
				errs = append(errs, fmt.Sprintf("aircraft '%s': envelope '%s' is not sorted by weight", m.ID, name))
			}
		}
		c.models[m.ID] = m
		c.order = append(c.order, m.ID)
	}
	for _, id := range c.order {
		m := c.models[id]
		keys := make([]string, 0, len(m.Ext))
		for k := range m.Ext {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, tid := range keys {
			src, ok := c.models[m.Ext[tid]]
			if !ok {
				errs = append(errs, fmt.Sprintf("aircraft '%s': table '%s' refers to unknown aircraft '%s'", id, tid, m.Ext[tid]))
				continue
			}
			if _, ok := src.Tables[tid]; !ok {
				errs = append(errs, fmt.Sprintf("aircraft '%s': aircraft '%s' has no table '%s'", id, src.ID, tid))
			}
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("aircraft data invalid:\n- %s", strings.Join(errs, "\n- "))
	}
	return c, nil
}

// Model returns a model by id.
func (c *Catalog) Model(id string) (*Model, error) {
	m, ok := c.models[id]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownModel, id)
	}
	return m, nil
}

// IDs returns the model ids in declaration order.
func (c *Catalog) IDs() []string { return c.order }

// Table resolves a table of a model, following Ext one hop.
func (c *Catalog) Table(modelID, tableID string) (*table.Table, error) {
	m, err := c.Model(modelID)
	if err != nil {
		return nil, err
	}
	if t, ok := m.Tables[tableID]; ok {
		return t, nil
	}
	if src, ok := m.Ext[tableID]; ok {
		if t, ok := c.models[src].Tables[tableID]; ok {
			return t, nil
		}
	}
	return nil, fmt.Errorf("aircraft '%s' has no table '%s'", modelID, tableID)
}

// Resolver returns a table resolver that reads the model currently returned
// by current. The model may change between lookups.
func (c *Catalog) Resolver(current func() string) table.Resolver {
	return table.ResolverFunc(func(id string) (*table.Table, error) {
		return c.Table(current(), id)
	})
}
