package model

import (
	"fmt"
	"strings"
)

// Values carries raw control values keyed by field name. Text controls hold
// strings and checkboxes hold bools, but browser form posts deliver "on" for
// checked boxes so Bool accepts the usual truthy spellings.
type Values map[string]any

// String returns the value for name as a string. Missing values are empty.
func (v Values) String(name string) string {
	if v == nil {
		return ""
	}
	switch value := v[name].(type) {
	case nil:
		return ""
	case string:
		return value
	case []string:
		if len(value) == 0 {
			return ""
		}
		return value[0]
	case bool:
		if value {
			return "true"
		}
		return ""
	default:
		return fmt.Sprint(value)
	}
}

// Bool reports whether the value for name is checked.
func (v Values) Bool(name string) bool {
	if v == nil {
		return false
	}
	switch value := v[name].(type) {
	case bool:
		return value
	case string:
		return truthy(value)
	case []string:
		return len(value) > 0 && truthy(value[0])
	default:
		return false
	}
}

// Clone returns a shallow copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for key, value := range v {
		out[key] = value
	}
	return out
}

// FromForm converts url.Values style input into Values, keeping only the
// first value per key and only keys declared by the form.
func FromForm(form Form, raw map[string][]string) Values {
	out := make(Values, len(form.Fields))
	for _, field := range form.Fields {
		entries, ok := raw[field.Name]
		if !ok || len(entries) == 0 {
			if field.Kind == FieldKindCheckbox {
				out[field.Name] = false
			}
			continue
		}
		if field.Kind == FieldKindCheckbox {
			out[field.Name] = truthy(entries[0])
			continue
		}
		out[field.Name] = entries[0]
	}
	return out
}

func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "true", "1", "yes", "checked":
		return true
	default:
		return false
	}
}
