package field

import (
	"fmt"

	"github.com/specialistvlad/pohcalc/internal/units"
	"github.com/specialistvlad/pohcalc/internal/validate"
	"github.com/specialistvlad/pohcalc/internal/value"
)

// Default display colors.
const (
	DefaultColor      = "darkblue"
	DefaultBackground = "transparent"
	AlertColor        = "red"
)

// Style is a display hint.
type Style struct {
	Color      string `json:"color,omitempty"`
	Background string `json:"background,omitempty"`
	Strike     bool   `json:"strike,omitempty"`
}

// Display is the rendered form of a field.
type Display struct {
	Text  string `json:"text"`
	Style Style  `json:"style"`
}

// Message is an error shown in a field's error slot.
type Message struct {
	Text  string `json:"text"`
	Style Style  `json:"style"`
}

// FieldValue is the mutable state of a field that owns storage.
type FieldValue struct {
	Current  value.Value
	Previous value.Value
	// Raw is the last value given to SetupValue, before validation.
	Raw     any
	Err     *Message
	Display Display
}

// Ref is how a registry slot refers to its storage: *Owned or *Alias.
type Ref interface{ isRef() }

// Owned holds the storage of a field.
type Owned struct{ Value *FieldValue }

// Alias points at the owning field and keeps a mirror of its display.
type Alias struct {
	Owner   string
	Display Display
	Err     *Message
}

func (*Owned) isRef() {}
func (*Alias) isRef() {}

// DataSource answers Datum lookups for dynamic descriptor attributes.
type DataSource interface {
	Datum(key, attr string) value.Value
}

// Registry is the per-session field store.
type Registry struct {
	cat       *Catalog
	data      DataSource
	refs      map[string]Ref
	lastGroup map[string]string
}

// NewRegistry creates the storage for every field of cat and applies the
// input defaults. data may be nil.
func NewRegistry(cat *Catalog, data DataSource) *Registry {
	r := &Registry{
		cat:       cat,
		data:      data,
		refs:      make(map[string]Ref, len(cat.order)),
		lastGroup: make(map[string]string),
	}
	for _, id := range cat.order {
		d := cat.byID[id]
		if d.IsAlias() {
			r.refs[id] = &Alias{Owner: d.Link, Display: Display{Text: "-", Style: r.baseStyle(d)}}
			continue
		}
		fv := &FieldValue{
			Current:  value.Invalid(value.NoResult),
			Previous: value.Invalid(value.NoResult),
		}
		if !d.Input {
			fv.Display = Display{Text: "-", Style: r.baseStyle(d)}
		}
		r.refs[id] = &Owned{Value: fv}
	}
	r.ApplyDefaults()
	return r
}

// ApplyDefaults stores every input's default, then validates all inputs
// again so defaults whose bounds depend on other inputs see their final
// values. Unit siblings take the default of the first sibling declaring one.
func (r *Registry) ApplyDefaults() {
	var inputs []string
	seen := make(map[string]bool)
	for _, id := range r.cat.order {
		d := r.cat.byID[id]
		if !d.Input || d.IsAlias() {
			continue
		}
		inputs = append(inputs, id)
		if seen[id] {
			continue
		}
		src := id
		for _, sid := range d.Siblings {
			seen[sid] = true
			if r.cat.byID[sid].Default != nil && r.cat.byID[src].Default == nil {
				src = sid
			}
		}
		r.setup(src, r.eval(r.cat.byID[src].Default))
	}
	for _, id := range inputs {
		fv := r.owned(id)
		fv.Current, _ = r.validate(r.cat.byID[id], fv.Raw)
		fv.Previous = fv.Current
	}
}

// Catalog returns the descriptors backing the registry.
func (r *Registry) Catalog() *Catalog { return r.cat }

// Descriptor returns the descriptor of id. Unknown ids panic.
func (r *Registry) Descriptor(id string) *Descriptor { return r.cat.Descriptor(id) }

// Resolve follows a link to the id owning the storage. Unknown ids panic.
func (r *Registry) Resolve(id string) string {
	switch ref := r.ref(id).(type) {
	case *Alias:
		return ref.Owner
	default:
		return id
	}
}

func (r *Registry) ref(id string) Ref {
	ref, ok := r.refs[id]
	if !ok {
		panic(fmt.Sprintf("field: unknown id '%s'", id))
	}
	return ref
}

func (r *Registry) owned(id string) *FieldValue {
	switch ref := r.ref(r.Resolve(id)).(type) {
	case *Owned:
		return ref.Value
	default:
		panic(fmt.Sprintf("field: '%s' does not own storage", id))
	}
}

// Get returns the current value of the field or of its owner.
func (r *Registry) Get(id string) value.Value { return r.owned(id).Current }

// Previous returns the value before the last change.
func (r *Registry) Previous(id string) value.Value { return r.owned(id).Previous }

// Raw returns the last unvalidated input value.
func (r *Registry) Raw(id string) any { return r.owned(id).Raw }

// Display returns the rendered output. Aliases return their mirror.
func (r *Registry) Display(id string) Display {
	if a, ok := r.ref(id).(*Alias); ok {
		return a.Display
	}
	return r.owned(id).Display
}

// Datum forwards to the data source. Without one every datum is invalid.
func (r *Registry) Datum(key, attr string) value.Value {
	if r.data == nil {
		return value.Invalid(value.Undefined)
	}
	return r.data.Datum(key, attr)
}

func (r *Registry) eval(e Expr) value.Value {
	if e == nil {
		return value.Invalid(value.Undefined)
	}
	return e.Eval(r)
}

// Min evaluates the field's lower bound.
func (r *Registry) Min(id string) value.Value { return r.eval(r.Descriptor(r.Resolve(id)).Min) }

// Max evaluates the field's upper bound.
func (r *Registry) Max(id string) value.Value { return r.eval(r.Descriptor(r.Resolve(id)).Max) }

// Default evaluates the field's default.
func (r *Registry) Default(id string) value.Value {
	return r.eval(r.Descriptor(r.Resolve(id)).Default)
}

// SetupValue validates and stores an input value. For unit-bearing inputs
// every sibling is written too: a value equal to this field's max or min
// becomes the sibling's own max or min, any other number is converted.
func (r *Registry) SetupValue(id string, raw any) {
	owner := r.Resolve(id)
	if !r.cat.Descriptor(owner).Input {
		panic(fmt.Sprintf("field: SetupValue on output '%s'", id))
	}
	r.setup(owner, raw)
	r.SetValidationError(owner)
}

func (r *Registry) setup(owner string, raw any) {
	d := r.cat.byID[owner]
	if len(d.Siblings) < 2 {
		r.store(owner, raw)
		return
	}

	num, isNum := validate.ParseNumber(raw, false)
	max, min := r.eval(d.Max), r.eval(d.Min)
	for _, sid := range d.Siblings {
		sd := r.cat.byID[sid]
		v := raw
		if sid != owner && isNum {
			switch {
			case equalsBound(num, max):
				v = r.eval(sd.Max)
			case equalsBound(num, min):
				v = r.eval(sd.Min)
			default:
				v = r.cat.conv.Convert(value.Number(num), d.Unit, sd.Unit)
			}
		}
		r.store(sid, v)
	}
}

func equalsBound(f float64, bound value.Value) bool {
	b, ok := bound.Float()
	return ok && b == f
}

func (r *Registry) store(id string, raw any) {
	fv := r.owned(id)
	fv.Previous = fv.Current
	fv.Raw = raw
	fv.Current, _ = r.validate(r.cat.byID[id], raw)
}

func (r *Registry) validate(d *Descriptor, raw any) (value.Value, string) {
	switch d.Kind {
	case KindNumber:
		return validate.Number(raw, d.Integer, r.eval(d.Min), r.eval(d.Max))
	case KindBool:
		return validate.Bool(raw)
	case KindEnum:
		return validate.Enum(raw, d.Choices)
	case KindDynamicEnum:
		return validate.Enum(raw, nil)
	case KindString:
		return validate.Text(raw, d.MaxLen, d.Upper)
	case KindWindSpeed:
		return validate.WindSpeed(raw)
	case KindWindDirection:
		return validate.WindDirection(raw)
	case KindEmail:
		return validate.Email(raw)
	case KindSaveToken:
		return validate.SaveToken(raw)
	default:
		return value.FromAny(raw), ""
	}
}

// ValidationMessage validates the stored raw input again, against the
// current bounds, and returns the message.
func (r *Registry) ValidationMessage(id string) string {
	owner := r.Resolve(id)
	_, msg := r.validate(r.cat.Descriptor(owner), r.owned(owner).Raw)
	return msg
}

// CurrentUnit returns the unit selected by the field's controller, or ""
// for fields without units.
func (r *Registry) CurrentUnit(id string) units.Unit {
	d := r.cat.Descriptor(r.Resolve(id))
	if d.Controller == "" {
		return ""
	}
	s, ok := r.Get(d.Controller).Str()
	if !ok {
		return ""
	}
	return units.Unit(s)
}

// IsCurrentUnit reports whether id is the sibling shown in the selected
// unit. Fields without units always are.
func (r *Registry) IsCurrentUnit(id string) bool {
	d := r.cat.Descriptor(r.Resolve(id))
	if d.Unit == "" {
		return true
	}
	cu := r.CurrentUnit(id)
	return cu == "" || cu == d.Unit
}

// CurrentUnitID returns the sibling of id in the selected unit.
func (r *Registry) CurrentUnitID(id string) string {
	owner := r.Resolve(id)
	d := r.cat.Descriptor(owner)
	if d.Unit == "" {
		return owner
	}
	cu := r.CurrentUnit(owner)
	for _, sid := range d.Siblings {
		if r.cat.byID[sid].Unit == cu {
			return sid
		}
	}
	return owner
}

// Siblings returns the unit siblings of id's owner.
func (r *Registry) Siblings(id string) []string {
	return r.cat.Descriptor(r.Resolve(id)).Siblings
}

// MirrorAlias copies the owner's display and error into an alias.
func (r *Registry) MirrorAlias(id string) {
	a, ok := r.ref(id).(*Alias)
	if !ok {
		return
	}
	fv := r.owned(a.Owner)
	a.Display = fv.Display
	a.Err = fv.Err
}
