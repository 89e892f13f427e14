package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-contactform/pkg/model"
)

// Default patterns for email and phone values.
var (
	DefaultEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	DefaultPhonePattern = regexp.MustCompile(`^[\+]?[0-9\s\-\(\)]{8,}$`)
)

const (
	nameMinLength    = 2
	messageMinLength = 10
)

// UnknownFieldPolicy decides how fields without a built-in rule are treated.
type UnknownFieldPolicy int

const (
	// AllowUnknown passes unrecognised fields through as valid.
	AllowUnknown UnknownFieldPolicy = iota
	// RejectUnknown fails closed for unrecognised fields.
	RejectUnknown
)

// ParseUnknownFieldPolicy maps configuration strings onto a policy.
func ParseUnknownFieldPolicy(raw string) (UnknownFieldPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "allow":
		return AllowUnknown, nil
	case "reject":
		return RejectUnknown, nil
	default:
		return AllowUnknown, fmt.Errorf("validation: unknown field policy %q", raw)
	}
}

// Option configures a Validator.
type Option func(*Validator)

// WithUnknownFieldPolicy overrides the default AllowUnknown policy.
func WithUnknownFieldPolicy(policy UnknownFieldPolicy) Option {
	return func(v *Validator) {
		v.unknown = policy
	}
}

// WithPatterns swaps the email and phone expressions. Nil keeps the default.
func WithPatterns(email, phone *regexp.Regexp) Option {
	return func(v *Validator) {
		if email != nil {
			v.email = email
		}
		if phone != nil {
			v.phone = phone
		}
	}
}

// Validator evaluates field values. It holds no per-form state and is safe
// for concurrent use.
type Validator struct {
	unknown UnknownFieldPolicy
	email   *regexp.Regexp
	phone   *regexp.Regexp
}

// New constructs a Validator.
func New(options ...Option) *Validator {
	v := &Validator{
		unknown: AllowUnknown,
		email:   DefaultEmailPattern,
		phone:   DefaultPhonePattern,
	}
	for _, opt := range options {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// ValidateAll evaluates every field of form in declared order. It never stops
// at the first failure so all messages can be surfaced together.
func (v *Validator) ValidateAll(form model.Form, values model.Values) Report {
	report := Report{Valid: true, Results: make([]Result, 0, len(form.Fields))}
	for _, field := range form.Fields {
		result := v.ValidateField(field, values)
		report.Results = append(report.Results, result)
		if !result.Valid && report.Valid {
			report.Valid = false
			report.FirstInvalid = field.Name
		}
	}
	return report
}

// ValidateName validates a single named field, as done when a control loses
// focus. Names the form does not declare go through the unknown policy.
func (v *Validator) ValidateName(form model.Form, name string, values model.Values) Result {
	field, ok := form.Field(name)
	if !ok {
		return v.unknownResult(name)
	}
	return v.ValidateField(field, values)
}

// ValidateField applies the rule for field.Kind to its value in values.
func (v *Validator) ValidateField(field model.Field, values model.Values) Result {
	name := field.Name
	raw := values.String(name)
	trimmed := strings.TrimSpace(raw)

	switch field.Kind {
	case model.FieldKindName:
		if trimmed == "" {
			return invalid(name, "Please enter your "+nameNoun(field))
		}
		if utf8.RuneCountInString(trimmed) < nameMinLength {
			return invalid(name, fmt.Sprintf("Name must be at least %d characters long", nameMinLength))
		}
	case model.FieldKindEmail:
		if trimmed == "" {
			return invalid(name, "Please enter your email address")
		}
		if !v.email.MatchString(raw) {
			return invalid(name, "Please enter a valid email address")
		}
	case model.FieldKindPhone:
		if trimmed == "" {
			if field.Required {
				return invalid(name, "Please enter your phone number")
			}
			return valid(name)
		}
		if !v.phone.MatchString(raw) {
			return invalid(name, "Please enter a valid phone number")
		}
	case model.FieldKindSelect:
		if raw == "" {
			if field.Required {
				return invalid(name, "Please select a "+lowerLabel(field))
			}
			return valid(name)
		}
		if !field.HasOption(raw) {
			return invalid(name, "Please select a valid "+lowerLabel(field))
		}
	case model.FieldKindTextArea:
		if trimmed == "" {
			if field.Required {
				return invalid(name, "Please enter your "+lowerLabel(field))
			}
			return valid(name)
		}
		if utf8.RuneCountInString(trimmed) < messageMinLength {
			return invalid(name, fmt.Sprintf("%s must be at least %d characters long", field.Label, messageMinLength))
		}
		if field.MaxLength > 0 && utf8.RuneCountInString(raw) > field.MaxLength {
			return invalid(name, fmt.Sprintf("%s must be at most %d characters long", field.Label, field.MaxLength))
		}
	case model.FieldKindCheckbox:
		if field.Required && !values.Bool(name) {
			return invalid(name, "Please accept our privacy policy")
		}
	case model.FieldKindText:
		if field.Required && trimmed == "" {
			return invalid(name, "Please fill in "+lowerLabel(field))
		}
	default:
		return v.unknownResult(name)
	}
	return valid(name)
}

// TypeMismatch is the result for a field whose value has the wrong type, such
// as a string posted for a checkbox.
func TypeMismatch(field model.Field) Result {
	switch field.Kind {
	case model.FieldKindSelect:
		return invalid(field.Name, "Please select a valid "+lowerLabel(field))
	case model.FieldKindCheckbox:
		return invalid(field.Name, "Please check or uncheck this box")
	}
	return invalid(field.Name, "Please provide a valid value for "+lowerLabel(field))
}

func (v *Validator) unknownResult(name string) Result {
	if v.unknown == RejectUnknown {
		return invalid(name, "This field is not recognised")
	}
	return valid(name)
}

// nameNoun turns "First name" into "first name".
func nameNoun(field model.Field) string {
	if label := lowerLabel(field); label != "" {
		return label
	}
	return "name"
}

func lowerLabel(field model.Field) string {
	label := strings.TrimSpace(field.Label)
	if label == "" {
		return strings.ToLower(field.Name)
	}
	return strings.ToLower(label)
}

func valid(name string) Result {
	return Result{Field: name, Valid: true}
}

func invalid(name, message string) Result {
	return Result{Field: name, Message: message}
}
