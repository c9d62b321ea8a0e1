package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/pohcalc/internal/acdata"
	"github.com/specialistvlad/pohcalc/internal/ctxlog"
	"github.com/specialistvlad/pohcalc/internal/engine"
	"github.com/specialistvlad/pohcalc/internal/field"
	"github.com/specialistvlad/pohcalc/internal/registry"
	"github.com/specialistvlad/pohcalc/internal/table"
	"github.com/specialistvlad/pohcalc/internal/value"
)

var (
	// ErrUnknownField is returned for field ids the catalog does not know.
	ErrUnknownField = errors.New("unknown field")
	// ErrNotInput is returned when Set targets an output.
	ErrNotInput = errors.New("field is not an input")
	// ErrUnknownPage is returned for page names the program does not know.
	ErrUnknownPage = errors.New("unknown page")
)

// Options carries the optional collaborators of a Factory.
type Options struct {
	// Aircraft provides the models and their tables. May be nil.
	Aircraft *acdata.Catalog
	// Handlers resolves `on_change` names. May be nil.
	Handlers *registry.Registry
	// AircraftField is the input selecting the model by id. Without it the
	// first model of the catalog is used.
	AircraftField string
}

// Factory creates sessions sharing one compiled program.
type Factory struct {
	prog *engine.Program
	opts Options
}

// NewFactory checks the options against the program.
func NewFactory(prog *engine.Program, opts Options) (*Factory, error) {
	if opts.AircraftField != "" {
		d, ok := prog.Catalog().Lookup(opts.AircraftField)
		if !ok || !d.Input {
			return nil, fmt.Errorf("aircraft selection field '%s' is not an input", opts.AircraftField)
		}
		if opts.Aircraft == nil {
			return nil, fmt.Errorf("aircraft selection field '%s' set without aircraft data", opts.AircraftField)
		}
	}
	return &Factory{prog: prog, opts: opts}, nil
}

// Program returns the compiled program sessions run.
func (f *Factory) Program() *engine.Program { return f.prog }

// New creates a session with every input at its default. Nothing is
// computed yet.
func (f *Factory) New(ctx context.Context) *Session {
	s := &Session{
		id:      uuid.NewString(),
		f:       f,
		created: time.Now(),
	}
	var resolver table.Resolver = table.Map{}
	if ac := f.opts.Aircraft; ac != nil {
		if ids := ac.IDs(); len(ids) > 0 {
			s.aircraft = ids[0]
		}
		resolver = ac.Resolver(func() string { return s.aircraft })
	}
	s.tables = table.NewSet(resolver)
	s.reg = field.NewRegistry(f.prog.Catalog(), s)

	// Defaults were evaluated against the first model; evaluate them again
	// when the selection field defaults to another one.
	if s.syncAircraft() {
		s.reg.ApplyDefaults()
	}
	s.eng = f.prog.NewEngine(s.reg, engine.Options{Tables: s.tables, Aircraft: s.model})

	ctxlog.FromContext(ctx).Debug("Session created.", "session", s.id, "aircraft", s.aircraft)
	return s
}

// Session is one user's calculator state.
type Session struct {
	id      string
	f       *Factory
	created time.Time

	mu       sync.Mutex
	reg      *field.Registry
	eng      *engine.Engine
	tables   *table.Set
	aircraft string
}

// ID returns the session's UUID.
func (s *Session) ID() string { return s.id }

// Created returns the creation time.
func (s *Session) Created() time.Time { return s.created }

// Datum implements field.DataSource for the selected model. It expects the
// session lock to be held by the caller.
func (s *Session) Datum(key, attr string) value.Value {
	m := s.model()
	if m == nil {
		return value.Invalid(value.Undefined)
	}
	return m.Datum(key, attr)
}

func (s *Session) model() *acdata.Model {
	if s.f.opts.Aircraft == nil || s.aircraft == "" {
		return nil
	}
	m, err := s.f.opts.Aircraft.Model(s.aircraft)
	if err != nil {
		return nil
	}
	return m
}

// syncAircraft follows the selection field and reports whether the model
// changed. Unknown ids keep the previous model.
func (s *Session) syncAircraft() bool {
	if s.f.opts.AircraftField == "" {
		return false
	}
	id, ok := s.reg.Get(s.f.opts.AircraftField).Str()
	if !ok || id == s.aircraft {
		return false
	}
	if _, err := s.f.opts.Aircraft.Model(id); err != nil {
		return false
	}
	s.aircraft = id
	return true
}

// Aircraft returns the id of the selected model.
func (s *Session) Aircraft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aircraft
}

func (s *Session) lookup(id string) (*field.Descriptor, error) {
	d, ok := s.f.prog.Catalog().Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownField, id)
	}
	return d, nil
}

// Get returns the current value of a field.
func (s *Session) Get(id string) (value.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.lookup(id); err != nil {
		return value.Value{}, err
	}
	return s.reg.Get(id), nil
}

// Set validates and stores an input, runs its change handler and
// recomputes the pages of the field, of its unit siblings and of every
// alias of it.
func (s *Session) Set(ctx context.Context, id string, raw any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.lookup(id)
	if err != nil {
		return err
	}
	if !d.Input {
		return fmt.Errorf("%w: '%s'", ErrNotInput, id)
	}
	logger := ctxlog.FromContext(ctx).With("session", s.id, "field", id)
	logger.Debug("Setting input.", "raw", raw)

	s.reg.SetupValue(id, raw)
	owner := s.reg.Resolve(id)
	if owner == s.f.opts.AircraftField && s.syncAircraft() {
		logger.Info("Aircraft selected.", "aircraft", s.aircraft)
	}

	od := s.reg.Descriptor(owner)
	if od.OnChange != "" && s.f.opts.Handlers != nil {
		h, ok := s.f.opts.Handlers.ChangeHandler(od.OnChange)
		if !ok {
			return fmt.Errorf("field '%s': change handler '%s' is not registered", owner, od.OnChange)
		}
		if err := h(ctx, s.reg, owner); err != nil {
			return fmt.Errorf("field '%s' change handler '%s': %w", owner, od.OnChange, err)
		}
	}

	for _, page := range s.affectedPages(owner) {
		if err := s.eng.ComputePage(ctx, page); err != nil {
			return err
		}
	}
	return nil
}

// affectedPages returns, in declaration order, the pages holding owner, its
// unit siblings or its aliases.
func (s *Session) affectedPages(owner string) []string {
	d := s.reg.Descriptor(owner)
	want := map[string]bool{d.Page: true}
	for _, id := range d.Siblings {
		want[s.reg.Descriptor(id).Page] = true
	}
	for _, id := range d.Aliases {
		want[s.reg.Descriptor(id).Page] = true
	}
	var pages []string
	for _, p := range s.f.prog.Pages() {
		if want[p] {
			pages = append(pages, p)
		}
	}
	return pages
}

// ComputePage recomputes one page.
func (s *Session) ComputePage(ctx context.Context, page string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.f.prog.Page(page); !ok {
		return fmt.Errorf("%w: '%s'", ErrUnknownPage, page)
	}
	return s.eng.ComputePage(ctx, page)
}

// ComputeAll recomputes every page.
func (s *Session) ComputeAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.ComputeAll(ctx)
}

// FieldView is the externally visible state of one field. GroupError is the
// message of the shared error row the field belongs to, which may come from
// another member of the group.
type FieldView struct {
	ID         string         `json:"id"`
	Input      bool           `json:"input"`
	Value      value.Value    `json:"value"`
	Text       string         `json:"text"`
	Style      field.Style    `json:"style"`
	Error      *field.Message `json:"error,omitempty"`
	ErrorGroup string         `json:"error_group"`
	GroupError *field.Message `json:"group_error,omitempty"`
}

// View returns the state of one field.
func (s *Session) View(id string) (FieldView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.lookup(id)
	if err != nil {
		return FieldView{}, err
	}
	return s.view(d), nil
}

func (s *Session) view(d *field.Descriptor) FieldView {
	v := FieldView{
		ID:    d.ID,
		Input: d.Input,
		Value:      s.reg.Get(d.ID),
		Error:      s.reg.Error(d.ID),
		ErrorGroup: d.ErrorGroup,
		GroupError: s.reg.GroupError(d.ErrorGroup),
	}
	if d.Input {
		v.Text = v.Value.Text()
		if !v.Value.IsValid() && s.reg.Raw(d.ID) != nil {
			v.Text = fmt.Sprint(s.reg.Raw(d.ID))
		}
		return v
	}
	disp := s.reg.Display(d.ID)
	v.Text, v.Style = disp.Text, disp.Style
	return v
}

// Outputs returns the fields of a page in declaration order, inputs
// included.
func (s *Session) Outputs(page string) ([]FieldView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.f.prog.Page(page); !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownPage, page)
	}
	cat := s.f.prog.Catalog()
	var views []FieldView
	for _, id := range cat.IDs() {
		d := cat.Descriptor(id)
		if d.Page == page {
			views = append(views, s.view(d))
		}
	}
	return views, nil
}
