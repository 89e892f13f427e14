// Package schema holds the OpenAPI contract for the contact intake API and
// checks incoming JSON bodies against it before they reach the controller.
// Field-level rules (lengths, formats, consent) stay in pkg/validation; the
// contract only guards the wire shape.
package schema

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed contact.openapi.yaml
var contactDocument []byte

// SubmissionSchema names the request body schema.
const SubmissionSchema = "ContactSubmission"

// Issue is a contract violation with the offending field when known.
type Issue struct {
	Field   string `json:"field,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// Contract wraps the parsed OpenAPI document.
type Contract struct {
	doc        *openapi3.T
	submission *openapi3.Schema
}

var (
	loadOnce sync.Once
	loaded   *Contract
	loadErr  error
)

// Document returns the raw YAML contract.
func Document() []byte {
	return append([]byte(nil), contactDocument...)
}

// Load parses and validates the embedded contract once.
func Load(ctx context.Context) (*Contract, error) {
	loadOnce.Do(func() {
		loaded, loadErr = parse(ctx, contactDocument)
	})
	return loaded, loadErr
}

func parse(ctx context.Context, raw []byte) (*Contract, error) {
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("schema: load contract: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("schema: validate contract: %w", err)
	}
	ref := doc.Components.Schemas[SubmissionSchema]
	if ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("schema: %s is not defined", SubmissionSchema)
	}
	return &Contract{doc: doc, submission: ref.Value}, nil
}

// OperationIDs lists the operations declared by the contract.
func (c *Contract) OperationIDs() []string {
	var out []string
	if c == nil || c.doc.Paths == nil {
		return out
	}
	for _, item := range c.doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range item.Operations() {
			if op != nil && op.OperationID != "" {
				out = append(out, op.OperationID)
			}
		}
	}
	return out
}

// ValidatePayload checks a decoded JSON body. A nil slice means the body
// matches the contract.
func (c *Contract) ValidatePayload(value any) []Issue {
	if c == nil || c.submission == nil {
		return []Issue{{Message: "contract is not loaded"}}
	}
	err := c.submission.VisitJSON(value, openapi3.MultiErrors())
	if err == nil {
		return nil
	}
	return issuesFromError(err)
}

func issuesFromError(err error) []Issue {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		var out []Issue
		for _, inner := range multi {
			out = append(out, issuesFromError(inner)...)
		}
		return out
	}

	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		pointer := schemaErr.JSONPointer()
		path := "/" + strings.Join(pointer, "/")
		return []Issue{{
			Field:   fieldFromPointer(pointer),
			Path:    path,
			Message: strings.TrimSpace(schemaErr.Reason),
		}}
	}
	return []Issue{{Message: strings.TrimSpace(err.Error())}}
}

func fieldFromPointer(pointer []string) string {
	if len(pointer) == 0 {
		return ""
	}
	segment := strings.ReplaceAll(pointer[0], "~1", "/")
	return strings.ReplaceAll(segment, "~0", "~")
}

// Errors folds issues into messages keyed by field; issues without a field
// are keyed by the empty string so callers can treat them as form-level.
func Errors(issues []Issue) map[string][]string {
	if len(issues) == 0 {
		return nil
	}
	out := make(map[string][]string, len(issues))
	for _, issue := range issues {
		out[issue.Field] = append(out[issue.Field], issue.Message)
	}
	return out
}
