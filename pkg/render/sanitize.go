package render

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-contactform/pkg/model"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

// SanitizeText strips markup from visitor input. The strict policy escapes
// entities, which are decoded again so "O'Brien" survives as typed.
func SanitizeText(raw string) string {
	if raw == "" {
		return ""
	}
	if !strings.ContainsAny(raw, "<>&") {
		return raw
	}
	return html.UnescapeString(textSanitizer().Sanitize(raw))
}

// Sanitize returns a copy of values with markup removed from every free-text
// field of form. Checkbox and select values pass through untouched, as do keys
// the form does not declare.
func Sanitize(form model.Form, values model.Values) model.Values {
	out := values.Clone()
	for _, field := range form.Fields {
		switch field.Kind {
		case model.FieldKindCheckbox, model.FieldKindSelect:
			continue
		}
		raw, ok := out[field.Name].(string)
		if !ok {
			continue
		}
		out[field.Name] = SanitizeText(raw)
	}
	return out
}
