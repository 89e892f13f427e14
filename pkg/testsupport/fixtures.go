// Package testsupport holds shared fixtures and golden-file helpers for the
// package tests.
package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-contactform/pkg/model"
)

// ValidContact returns a complete contact form value set that passes every
// field rule.
func ValidContact() model.Values {
	return model.Values{
		model.FieldFirstName:  "Ada",
		model.FieldLastName:   "Lovelace",
		model.FieldEmail:      "ada@example.com",
		model.FieldPhone:      "+44 20 7946 0958",
		model.FieldSubject:    "consulting",
		model.FieldMessage:    "I would like to talk about an analytical engine.",
		model.FieldNewsletter: true,
		model.FieldPrivacy:    true,
	}
}

// ContactWith returns ValidContact with overrides applied.
func ContactWith(overrides model.Values) model.Values {
	values := ValidContact()
	for key, value := range overrides {
		values[key] = value
	}
	return values
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// WriteGolden writes data as indented JSON when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	WriteMaybeGolden(t, path, payload)
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file as a string.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set and
// reports whether it did.
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CaptureTemplateOutput runs a render function against a buffer and returns
// both the returned string and what was written.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
