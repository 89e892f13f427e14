package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/render"
)

func TestMapErrorPayload_ResolvesContactFields(t *testing.T) {
	form := model.ContactForm()

	payload := map[string][]string{
		"/body/firstName":       {"First name is required"},
		"data.email":            {"Email invalid", " Email invalid "},
		"$.payload.subject[0]":  {"Unknown subject"},
		"PHONE":                 {"Phone malformed"},
		"non_field_errors":      {"Intake is closed"},
		"request/body/referrer": {"Should fall back to form errors"},
		"":                      {"Unscoped error"},
	}

	mapped := render.MapErrorPayload(form, payload)

	wantFields := map[string][]string{
		model.FieldFirstName: {"First name is required"},
		model.FieldEmail:     {"Email invalid"},
		model.FieldSubject:   {"Unknown subject"},
		model.FieldPhone:     {"Phone malformed"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Intake is closed", "Should fall back to form errors", "Unscoped error"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}

	wantOrder := []string{model.FieldFirstName, model.FieldEmail, model.FieldPhone, model.FieldSubject}
	if diff := cmp.Diff(wantOrder, mapped.FieldNames(form)); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
}

func TestMapErrorPayload_Empty(t *testing.T) {
	mapped := render.MapErrorPayload(model.ContactForm(), nil)
	if mapped.Fields != nil || mapped.Form != nil {
		t.Fatalf("expected empty mapping, got %+v", mapped)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}
