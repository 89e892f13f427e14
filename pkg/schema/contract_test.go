package schema_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/goliatone/go-contactform/pkg/schema"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var out any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestLoad_DeclaresSubmitOperation(t *testing.T) {
	contract, err := schema.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ids := contract.OperationIDs()
	if len(ids) != 1 || ids[0] != "submitContact" {
		t.Fatalf("unexpected operations %v", ids)
	}
	if !strings.Contains(string(schema.Document()), "ContactSubmission") {
		t.Fatalf("expected raw document to include the submission schema")
	}
}

func TestValidatePayload(t *testing.T) {
	contract, err := schema.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	ok := decode(t, `{"firstName":"Ada","email":"ada@example.com","newsletter":false,"privacy":true}`)
	if issues := contract.ValidatePayload(ok); issues != nil {
		t.Fatalf("expected payload to match, got %+v", issues)
	}

	bad := decode(t, `{"firstName":42,"privacy":"yes"}`)
	issues := contract.ValidatePayload(bad)
	errs := schema.Errors(issues)
	if _, found := errs["firstName"]; !found {
		t.Fatalf("expected firstName issue, got %+v", issues)
	}
	if _, found := errs["privacy"]; !found {
		t.Fatalf("expected privacy issue, got %+v", issues)
	}
}

func TestValidatePayload_LeavesUnknownPropertiesToValidation(t *testing.T) {
	contract, err := schema.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if issues := contract.ValidatePayload(decode(t, `{"firstName":"Ada","referrer":"newsletter"}`)); issues != nil {
		t.Fatalf("expected unknown property to pass the contract, got %+v", issues)
	}
	if issues := contract.ValidatePayload(decode(t, `["not","an","object"]`)); len(issues) == 0 {
		t.Fatalf("expected non-object body to be rejected")
	}
}
