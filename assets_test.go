package contactform

import (
	"io/fs"
	"strings"
	"testing"
)

func TestTemplatesFSContainsPages(t *testing.T) {
	for _, name := range []string{"layout.html", "home.html", "services.html", "about.html", "contact.html", "partials/contact_form.html"} {
		if _, err := fs.Stat(TemplatesFS(), name); err != nil {
			t.Fatalf("expected template %s: %v", name, err)
		}
	}
}

func TestStaticFSScriptTalksToAPI(t *testing.T) {
	data, err := fs.ReadFile(StaticFS(), "js/site.js")
	if err != nil {
		t.Fatalf("expected site script to be readable: %v", err)
	}
	for _, needle := range []string{"/contact/fields/", "/theme/toggle", "X-CSRF-Token"} {
		if !strings.Contains(string(data), needle) {
			t.Fatalf("expected site script to reference %q", needle)
		}
	}
}

func TestStaticFSScriptDropsStaleFieldReplies(t *testing.T) {
	data, err := fs.ReadFile(StaticFS(), "js/site.js")
	if err != nil {
		t.Fatalf("expected site script to be readable: %v", err)
	}
	script := string(data)
	if got := strings.Count(script, "if (mine !== seq) return;"); got != 2 {
		t.Fatalf("expected input and blur replies to be sequence checked, found %d guards", got)
	}
}
