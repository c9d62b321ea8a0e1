package table

import (
	"fmt"

	"github.com/specialistvlad/pohcalc/internal/value"
)

// Resolver finds a table by id, typically through the current aircraft
// model.
type Resolver interface {
	Table(id string) (*Table, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(id string) (*Table, error)

func (f ResolverFunc) Table(id string) (*Table, error) { return f(id) }

// Map is a fixed set of tables keyed by id.
type Map map[string]*Table

func (m Map) Table(id string) (*Table, error) {
	t, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("unknown table '%s'", id)
	}
	return t, nil
}

// Set is the per-session view of the tables. It remembers the last lookup
// error of each table, and which table failed last, until Clear.
type Set struct {
	resolver Resolver
	lastErr  map[string]*Error
	lastID   string
}

// NewSet returns a Set reading tables from r.
func NewSet(r Resolver) *Set {
	return &Set{resolver: r, lastErr: make(map[string]*Error)}
}

func (s *Set) table(id string) *Table {
	t, err := s.resolver.Table(id)
	if err != nil {
		panic(fmt.Sprintf("table: %v", err))
	}
	return t
}

// Interpolate looks up table id, recording the error for LastError. Unknown
// tables panic.
func (s *Set) Interpolate(id string, params ...value.Value) value.Value {
	v, err := s.table(id).Interpolate(params...)
	if err != nil {
		te, _ := AsError(err)
		s.lastErr[id] = te
		s.lastID = id
	}
	return v
}

// LastError returns the last error recorded for a table since Clear. An empty
// id means the table that failed last.
func (s *Set) LastError(id string) *Error {
	if id == "" {
		id = s.lastID
	}
	return s.lastErr[id]
}

// Clear forgets every recorded error.
func (s *Set) Clear() {
	clear(s.lastErr)
	s.lastID = ""
}

// Min returns the lower bound of a table parameter.
func (s *Set) Min(id, param string) float64 { return s.table(id).Min(param) }

// Max returns the upper bound of a table parameter.
func (s *Set) Max(id, param string) float64 { return s.table(id).Max(param) }
