package submit

import "errors"

// State is a step of the submission lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateInvalid    State = "invalid"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Status discriminates an Outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Outcome is the settled result of one submission attempt.
type Outcome struct {
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
	Err    error  `json:"-"`
}

// Success builds a successful outcome.
func Success() Outcome {
	return Outcome{Status: StatusSuccess}
}

// Failure builds a failed outcome.
func Failure(reason string, err error) Outcome {
	return Outcome{Status: StatusFailure, Reason: reason, Err: err}
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool {
	return o.Status == StatusSuccess
}

var (
	// ErrInFlight is returned when Submit is called while a previous attempt
	// has not settled.
	ErrInFlight = errors.New("submit: a submission is already in flight")
	// ErrRejected marks an endpoint response that did not report success.
	ErrRejected = errors.New("submit: submission rejected")
)

// FailureNotice is shown to the visitor when sending fails.
const FailureNotice = "There was an error sending your message. Please try again or contact us directly."

// SuccessNotice is shown once the message has been sent.
const SuccessNotice = "Thank you! Your message has been sent successfully. We'll get back to you within 24 hours."
