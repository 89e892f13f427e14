package validation

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-contactform/pkg/model"
)

// PromptValidator adapts the field rule to the func(any) error contract used by
// terminal prompt libraries. Answers arrive as strings or bools.
func (v *Validator) PromptValidator(field model.Field) func(any) error {
	return func(answer any) error {
		var value any
		switch typed := answer.(type) {
		case string, bool:
			value = typed
		case fmt.Stringer:
			value = typed.String()
		case nil:
			value = ""
		default:
			value = fmt.Sprint(typed)
		}
		result := v.ValidateField(field, model.Values{field.Name: value})
		if result.Valid {
			return nil
		}
		return errors.New(result.Message)
	}
}
