// Package contactform serves a small marketing site whose contact form is
// validated, autosaved and submitted server-side. The packages under pkg/
// hold the form lifecycle; this package exposes the embedded site assets and
// shortcuts for programs that only need the form.
package contactform

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/submit"
	"github.com/goliatone/go-contactform/pkg/validation"
)

// Values aliases model.Values for callers that only import the root package.
type Values = model.Values

// Submission aliases the intake payload.
type Submission = model.Submission

// Form returns the contact form declaration.
func Form() model.Form {
	return model.ContactForm()
}

// Validate runs every field rule against values in declared order.
func Validate(values Values, options ...validation.Option) validation.Report {
	return validation.New(options...).ValidateAll(model.ContactForm(), values)
}

// NewController builds a submission controller for the contact form.
func NewController(submitter submit.Submitter, options ...submit.Option) *submit.Controller {
	return submit.New(model.ContactForm(), submitter, options...)
}

// SubmitterConfig selects a delivery strategy.
type SubmitterConfig struct {
	// Endpoint, when set, posts submissions to this intake URL.
	Endpoint string
	// Delay is the simulated delivery time used when Endpoint is empty.
	Delay time.Duration
	// Client overrides the HTTP client used for Endpoint.
	Client *http.Client
}

// NewSubmitter returns an Endpoint submitter when an endpoint is configured
// and a Simulated one otherwise.
func NewSubmitter(cfg SubmitterConfig) (submit.Submitter, error) {
	if cfg.Endpoint == "" {
		if cfg.Delay < 0 {
			return nil, fmt.Errorf("contactform: negative simulated delay %s", cfg.Delay)
		}
		return submit.Simulated{Delay: cfg.Delay}, nil
	}
	return submit.Endpoint{URL: cfg.Endpoint, Client: cfg.Client}, nil
}

// Deliver validates values and, when they pass, submits them once through a
// fresh controller. Long-lived pages keep their own controller.
func Deliver(ctx context.Context, submitter submit.Submitter, values Values, options ...submit.Option) (submit.Report, error) {
	return NewController(submitter, options...).Submit(ctx, values)
}
