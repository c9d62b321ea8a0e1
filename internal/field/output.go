package field

import (
	"fmt"

	"github.com/specialistvlad/pohcalc/internal/value"
)

func (r *Registry) baseStyle(d *Descriptor) Style {
	st := Style{Color: DefaultColor, Background: DefaultBackground}
	if d.Color != "" {
		st.Color = d.Color
	}
	if d.Background != "" {
		st.Background = d.Background
	}
	return st
}

// SetOutput rounds, formats and stores a computed value. Outputs with unit
// siblings receive the value converted into each sibling's unit. Invalid
// values render according to the output's invalid policy.
func (r *Registry) SetOutput(id string, v value.Value, st *Style) {
	owner := r.Resolve(id)
	d := r.cat.Descriptor(owner)
	if d.Input {
		panic(fmt.Sprintf("field: SetOutput on input '%s'", id))
	}
	if len(d.Siblings) < 2 {
		r.setOutputField(owner, v, st)
		return
	}
	for _, sid := range d.Siblings {
		sv := v
		if sid != owner {
			sv = r.cat.conv.Convert(v, d.Unit, r.cat.byID[sid].Unit)
		}
		r.setOutputField(sid, sv, st)
	}
}

func (r *Registry) setOutputField(id string, v value.Value, st *Style) {
	d := r.cat.byID[id]
	fv := r.owned(id)
	rendered := d.Format.Render(v, d.Invalid)

	style := r.baseStyle(d)
	switch {
	case rendered.Alert:
		style.Color = AlertColor
		style.Strike = true
	case st != nil:
		if st.Color != "" {
			style.Color = st.Color
		}
		if st.Background != "" {
			style.Background = st.Background
		}
		style.Strike = st.Strike
	}

	if !rendered.Value.Equal(fv.Current) {
		fv.Previous = fv.Current
	}
	fv.Current = rendered.Value
	fv.Display = Display{Text: rendered.Text, Style: style}
}

// SetOutputNull marks outputs as having no applicable value.
func (r *Registry) SetOutputNull(ids ...string) {
	for _, id := range ids {
		r.SetOutput(id, value.Invalid(value.NoResult), nil)
	}
}

// SetError sets or, with an empty msg, clears a field's error. Errors on
// unit-bearing fields land on the sibling in the selected unit. Boolean and
// enum inputs never carry errors.
func (r *Registry) SetError(id, msg string, st *Style) {
	owner := r.Resolve(id)
	d := r.cat.Descriptor(owner)
	if d.Input && d.Kind.silent() {
		return
	}
	target := owner
	if d.Unit != "" {
		target = r.CurrentUnitID(owner)
	}
	fv := r.owned(target)
	if msg == "" {
		fv.Err = nil
		return
	}
	style := Style{Color: AlertColor, Background: DefaultBackground}
	if st != nil {
		if st.Color != "" {
			style.Color = st.Color
		}
		if st.Background != "" {
			style.Background = st.Background
		}
	}
	fv.Err = &Message{Text: msg, Style: style}
	r.lastGroup[r.cat.byID[target].ErrorGroup] = target
}

// ResetError clears the errors of the given fields.
func (r *Registry) ResetError(ids ...string) {
	for _, id := range ids {
		r.SetError(id, "", nil)
	}
}

// SetValidationError publishes the validation message of each input,
// validated against its current bounds, on the sibling in the selected
// unit.
func (r *Registry) SetValidationError(ids ...string) {
	for _, id := range ids {
		target := r.CurrentUnitID(id)
		if !r.cat.Descriptor(target).Input {
			panic(fmt.Sprintf("field: SetValidationError on output '%s'", id))
		}
		r.SetError(target, r.ValidationMessage(target), nil)
	}
}

// Error returns the error of a field, or of its owner for aliases.
func (r *Registry) Error(id string) *Message {
	if a, ok := r.ref(id).(*Alias); ok && a.Err != nil {
		return a.Err
	}
	return r.owned(id).Err
}

// GroupError returns the message shown in an error group's slot: the error
// set last if it is still present, otherwise the first remaining error of a
// member in its selected unit.
func (r *Registry) GroupError(group string) *Message {
	if last, ok := r.lastGroup[group]; ok {
		if err := r.owned(last).Err; err != nil && r.IsCurrentUnit(last) {
			return err
		}
	}
	for _, id := range r.cat.Group(group) {
		if !r.IsCurrentUnit(id) {
			continue
		}
		if err := r.Error(id); err != nil {
			return err
		}
	}
	return nil
}
