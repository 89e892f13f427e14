package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-contactform/pkg/render"
)

func TestMergeAndSortHiddenFields(t *testing.T) {
	base := map[string]string{
		" existing ": "keep",
		"":           "ignored",
	}

	merged := render.MergeHiddenFields(base,
		render.CSRFToken("token123"),
		render.FormID("contact-form"),
		render.Hidden("  ", "skip"),
	)

	wantMerged := map[string]string{
		"existing": "keep",
		"_csrf":    "token123",
		"_form":    "contact-form",
	}
	if diff := cmp.Diff(wantMerged, merged); diff != "" {
		t.Fatalf("merged hidden fields mismatch (-want +got):\n%s", diff)
	}

	wantSorted := []render.HiddenField{
		{Name: "_csrf", Value: "token123"},
		{Name: "_form", Value: "contact-form"},
		{Name: "existing", Value: "keep"},
	}
	if diff := cmp.Diff(wantSorted, render.SortedHiddenFields(merged)); diff != "" {
		t.Fatalf("sorted hidden fields mismatch (-want +got):\n%s", diff)
	}
}

func TestVerifyCSRF(t *testing.T) {
	posted := map[string][]string{"_csrf": {"abc"}}
	if !render.VerifyCSRF(posted, "abc") {
		t.Fatalf("expected matching token to verify")
	}
	if render.VerifyCSRF(posted, "abd") {
		t.Fatalf("expected mismatched token to fail")
	}
	if render.VerifyCSRF(map[string][]string{}, "abc") {
		t.Fatalf("expected missing token to fail")
	}
	if render.VerifyCSRF(posted, "") {
		t.Fatalf("expected empty expectation to fail")
	}
}

func TestVerifyToken(t *testing.T) {
	if !render.VerifyToken("tok", "tok") {
		t.Fatalf("expected header token to verify")
	}
	if render.VerifyToken("", "") {
		t.Fatalf("expected empty tokens to fail")
	}
	if render.VerifyToken("tok", "other") {
		t.Fatalf("expected mismatch to fail")
	}
}
