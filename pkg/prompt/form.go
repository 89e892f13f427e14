package prompt

import (
	"context"
	"fmt"

	"github.com/goliatone/go-contactform/pkg/feedback"
	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/site"
	"github.com/goliatone/go-contactform/pkg/validation"
)

// Filler asks for each field of a form in declared order.
type Filler struct {
	driver    Driver
	validator *validation.Validator
}

// NewFiller builds a Filler. A nil validator uses the default rules.
func NewFiller(driver Driver, validator *validation.Validator) *Filler {
	if validator == nil {
		validator = validation.New()
	}
	return &Filler{driver: driver, validator: validator}
}

// Fill prompts for every field of form, offering defaults as initial answers.
// Answers are checked by the field rules while the visitor types, so the
// returned values normally validate; the caller still submits through a
// controller which runs the full pass.
func (f *Filler) Fill(ctx context.Context, form model.Form, defaults model.Values) (model.Values, error) {
	values := make(model.Values, len(form.Fields))
	for _, field := range form.Fields {
		value, err := f.ask(ctx, field, defaults)
		if err != nil {
			return values, fmt.Errorf("prompt: %s: %w", field.Name, err)
		}
		values[field.Name] = value
	}
	return values, nil
}

func (f *Filler) ask(ctx context.Context, field model.Field, defaults model.Values) (any, error) {
	check := f.validator.PromptValidator(field)
	message := label(field)

	switch field.Kind {
	case model.FieldKindCheckbox:
		cfg := ConfirmConfig{Message: message, Default: defaults.Bool(field.Name)}
		if field.Required {
			cfg.Validator = check
		}
		return f.driver.Confirm(ctx, cfg)

	case model.FieldKindSelect:
		labels := make([]string, len(field.Options))
		selected := -1
		for i, option := range field.Options {
			labels[i] = option.Label
			if option.Value == defaults.String(field.Name) {
				selected = i
			}
		}
		idx, err := f.driver.Select(ctx, SelectConfig{Message: message, Options: labels, DefaultIndex: selected})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(field.Options) {
			return nil, fmt.Errorf("no option selected")
		}
		return field.Options[idx].Value, nil

	case model.FieldKindTextArea:
		cfg := TextAreaConfig{Message: message, Default: defaults.String(field.Name), Validator: check}
		if field.MaxLength > 0 {
			cfg.Help = fmt.Sprintf("Up to %d characters", field.MaxLength)
		}
		text, err := f.driver.TextArea(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if field.MaxLength > 0 {
			counter := feedback.CountRemaining(text, field.MaxLength)
			if err := f.driver.Info(ctx, counter.Text()); err != nil {
				return nil, err
			}
		}
		return text, nil

	default:
		text, err := f.driver.Input(ctx, InputConfig{
			Message:   message,
			Default:   defaults.String(field.Name),
			Help:      field.Placeholder,
			Validator: check,
		})
		if err != nil {
			return nil, err
		}
		if field.Kind == model.FieldKindPhone {
			text = site.FormatPhone(text)
		}
		return text, nil
	}
}

func label(field model.Field) string {
	if field.Required {
		return field.Label + " *"
	}
	return field.Label
}
