package render

import (
	"crypto/subtle"
	"fmt"
	"sort"
	"strings"
)

// Names of the hidden inputs emitted with the contact form.
const (
	CSRFFieldName   = "_csrf"
	FormIDFieldName = "_form"
)

// HiddenField is a hidden input rendered alongside the visible fields.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// CSRFToken carries the session token under CSRFFieldName.
func CSRFToken(token string) HiddenField {
	return Hidden(CSRFFieldName, token)
}

// FormID tags the post with the form it belongs to.
func FormID(id string) HiddenField {
	return Hidden(FormIDFieldName, id)
}

// MergeHiddenFields returns a copy of base with fields applied. Empty names
// are ignored; later fields win.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		if field.Name == "" {
			continue
		}
		out[field.Name] = field.Value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields orders hidden fields by name for stable markup.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		if strings.TrimSpace(name) != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]HiddenField, 0, len(names))
	for _, name := range names {
		out = append(out, HiddenField{Name: strings.TrimSpace(name), Value: fields[name]})
	}
	return out
}

// VerifyCSRF reports whether a posted form carries the expected token.
func VerifyCSRF(posted map[string][]string, expected string) bool {
	values := posted[CSRFFieldName]
	if len(values) == 0 {
		return false
	}
	return VerifyToken(values[0], expected)
}

// VerifyToken compares a presented token, such as a request header, with the
// expected one in constant time. An empty expected token never matches.
func VerifyToken(got, expected string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}
