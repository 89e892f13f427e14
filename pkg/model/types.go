package model

import "strings"

// FieldKind selects the validation rule and the chrome used to render a field.
type FieldKind string

const (
	FieldKindName     FieldKind = "name"
	FieldKindEmail    FieldKind = "email"
	FieldKindPhone    FieldKind = "phone"
	FieldKindSelect   FieldKind = "select"
	FieldKindTextArea FieldKind = "textarea"
	FieldKindCheckbox FieldKind = "checkbox"
	FieldKindText     FieldKind = "text"
)

// Option is a selectable value for select fields.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Field models a single control inside a form. Tracked fields take part in
// draft autosave.
type Field struct {
	Name        string    `json:"name"`
	Label       string    `json:"label,omitempty"`
	Kind        FieldKind `json:"kind"`
	Required    bool      `json:"required"`
	Tracked     bool      `json:"tracked,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	Options     []Option  `json:"options,omitempty"`
	MaxLength   int       `json:"maxLength,omitempty"`
}

// HasOption reports whether value is one of the declared options. Fields
// without options accept any value.
func (f Field) HasOption(value string) bool {
	if len(f.Options) == 0 {
		return true
	}
	for _, opt := range f.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// Form is an ordered set of fields.
type Form struct {
	ID     string  `json:"id"`
	Fields []Field `json:"fields"`
}

// Field looks up a field by name.
func (f Form) Field(name string) (Field, bool) {
	name = strings.TrimSpace(name)
	for _, field := range f.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// Has reports whether the form declares name.
func (f Form) Has(name string) bool {
	_, ok := f.Field(name)
	return ok
}

// Names returns field names in declared order.
func (f Form) Names() []string {
	out := make([]string, 0, len(f.Fields))
	for _, field := range f.Fields {
		out = append(out, field.Name)
	}
	return out
}

// TrackedNames returns the names of autosaved fields in declared order.
func (f Form) TrackedNames() []string {
	var out []string
	for _, field := range f.Fields {
		if field.Tracked {
			out = append(out, field.Name)
		}
	}
	return out
}

// IsTracked reports whether name is a tracked field of the form.
func (f Form) IsTracked(name string) bool {
	field, ok := f.Field(name)
	return ok && field.Tracked
}
