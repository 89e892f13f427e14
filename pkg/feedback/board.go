// Package feedback turns validation results into per-field display state. A
// Board is the only bridge between the validator and what a page shows: every
// class name, error text and focus marker rendered for the contact form comes
// from here.
package feedback

import (
	"strings"

	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/validation"
)

// State is the visual indicator shown next to a field.
type State string

const (
	StatePristine State = "pristine"
	StateError    State = "error"
	StateSuccess  State = "success"
)

// FieldView is the render-ready state of a single field.
type FieldView struct {
	Name      string          `json:"name"`
	Label     string          `json:"label"`
	Kind      model.FieldKind `json:"kind"`
	Required  bool            `json:"required"`
	Value     any             `json:"value,omitempty"`
	State     State           `json:"state"`
	Message   string          `json:"message,omitempty"`
	ShowError bool            `json:"showError"`
	Focus     bool            `json:"focus,omitempty"`
}

// Classes returns the CSS classes for the control.
func (v FieldView) Classes() string {
	base := "form-input"
	switch v.Kind {
	case model.FieldKindTextArea:
		base = "form-textarea"
	case model.FieldKindSelect:
		base = "form-select"
	case model.FieldKindCheckbox:
		base = "form-checkbox"
	}
	switch v.State {
	case StateError:
		return base + " error"
	case StateSuccess:
		return base + " success"
	default:
		return base
	}
}

// Board tracks the view state of every field of one form instance. It is not
// safe for concurrent use; the owning controller serialises access.
type Board struct {
	form  model.Form
	views map[string]*FieldView
}

// NewBoard creates a pristine board for form.
func NewBoard(form model.Form) *Board {
	b := &Board{form: form, views: make(map[string]*FieldView, len(form.Fields))}
	for _, field := range form.Fields {
		b.views[field.Name] = pristine(field)
	}
	return b
}

func pristine(field model.Field) *FieldView {
	return &FieldView{
		Name:     field.Name,
		Label:    field.Label,
		Kind:     field.Kind,
		Required: field.Required,
		State:    StatePristine,
	}
}

// Apply records result as the current state of its field. Results for fields
// the form does not declare are ignored.
func (b *Board) Apply(result validation.Result) {
	view, ok := b.views[result.Field]
	if !ok {
		return
	}
	if result.Valid {
		view.State = StateSuccess
		view.Message = ""
		view.ShowError = false
		return
	}
	view.State = StateError
	view.Message = result.Message
	view.ShowError = true
}

// ApplyReport applies every result of a full validation pass.
func (b *Board) ApplyReport(report validation.Report) {
	for _, result := range report.Results {
		b.Apply(result)
	}
}

// ClearError drops the error indicator while the user edits a field. The
// success indicator is left alone until the next validation.
func (b *Board) ClearError(name string) {
	view, ok := b.views[name]
	if !ok {
		return
	}
	if view.State == StateError {
		view.State = StatePristine
	}
	view.ShowError = false
}

// SetValue stores the latest raw value for name.
func (b *Board) SetValue(name string, value any) {
	if view, ok := b.views[name]; ok {
		view.Value = value
	}
}

// SetValues stores every declared value from values.
func (b *Board) SetValues(values model.Values) {
	for name, value := range values {
		b.SetValue(name, value)
	}
}

// Focus marks name as the focused field and clears any previous focus.
func (b *Board) Focus(name string) {
	for key, view := range b.views {
		view.Focus = key == name
	}
}

// Reset clears values, indicators and focus, as after a successful send.
func (b *Board) Reset() {
	for _, field := range b.form.Fields {
		b.views[field.Name] = pristine(field)
	}
}

// View returns a copy of the state for name.
func (b *Board) View(name string) (FieldView, bool) {
	view, ok := b.views[strings.TrimSpace(name)]
	if !ok {
		return FieldView{}, false
	}
	return *view, true
}

// Views returns copies of all field states in declared order.
func (b *Board) Views() []FieldView {
	out := make([]FieldView, 0, len(b.form.Fields))
	for _, field := range b.form.Fields {
		out = append(out, *b.views[field.Name])
	}
	return out
}

// Values returns the stored raw values.
func (b *Board) Values() model.Values {
	out := make(model.Values, len(b.views))
	for name, view := range b.views {
		if view.Value != nil {
			out[name] = view.Value
		}
	}
	return out
}

// Errors returns the visible error messages keyed by field.
func (b *Board) Errors() map[string][]string {
	var out map[string][]string
	for _, field := range b.form.Fields {
		view := b.views[field.Name]
		if !view.ShowError || view.Message == "" {
			continue
		}
		if out == nil {
			out = make(map[string][]string)
		}
		out[field.Name] = []string{view.Message}
	}
	return out
}
