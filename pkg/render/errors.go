package render

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-contactform/pkg/model"
)

// ErrorMapping splits an error payload into per-field messages and messages
// that belong to the form as a whole.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// FieldNames lists the fields carrying errors in declared form order.
func (m ErrorMapping) FieldNames(form model.Form) []string {
	var out []string
	for _, name := range form.Names() {
		if len(m.Fields[name]) > 0 {
			out = append(out, name)
		}
	}
	return out
}

// MergeFormErrors concatenates form-level messages, trimming blanks and
// dropping duplicates while keeping first-seen order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload attributes an error payload from the intake endpoint or the
// payload contract to contact form fields. Keys may be JSON pointers
// ("/body/email"), dotted paths ("data.email") or bare names. Keys that do not
// resolve to a declared field become form-level messages.
func MapErrorPayload(form model.Form, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}

	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		messages := normalizeMessages(payload[key])
		if len(messages) == 0 {
			continue
		}
		name, ok := resolveField(form, key)
		if !ok {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		mapping.Fields[name] = normalizeMessages(append(mapping.Fields[name], messages...))
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func resolveField(form model.Form, raw string) (string, bool) {
	if isFormLevelKey(raw) {
		return "", false
	}
	segments := stripIndexes(dropWrappers(splitPath(raw)))
	if len(segments) == 0 {
		return "", false
	}
	// Only the first segment can name a field; the contact form is flat.
	if form.Has(segments[0]) {
		return segments[0], true
	}
	for _, field := range form.Fields {
		if strings.EqualFold(field.Name, segments[0]) {
			return field.Name, true
		}
	}
	return "", false
}

func splitPath(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimLeft(clean, "#$/.")
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

var wrapperSegments = map[string]struct{}{
	"body":       {},
	"request":    {},
	"payload":    {},
	"data":       {},
	"attributes": {},
	"fields":     {},
}

func dropWrappers(segments []string) []string {
	for len(segments) > 0 {
		if _, ok := wrapperSegments[strings.ToLower(segments[0])]; !ok {
			break
		}
		segments = segments[1:]
	}
	return segments
}

func stripIndexes(segments []string) []string {
	out := segments[:0:0]
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
