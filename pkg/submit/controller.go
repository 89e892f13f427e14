// Package submit drives the contact form from submit to settled outcome:
// validate everything, lock the submit control, deliver the payload, then
// report success or failure and unlock the control again no matter how the
// attempt ended.
package submit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-contactform/pkg/draft"
	"github.com/goliatone/go-contactform/pkg/feedback"
	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/validation"
)

// DefaultTimeout bounds a single delivery attempt.
const DefaultTimeout = 15 * time.Second

// Transition records a state change.
type Transition struct {
	From State `json:"from"`
	To   State `json:"to"`
}

// Event is delivered to observers. Exactly one of the fields is set.
type Event struct {
	Transition *Transition
	Control    *Control
}

// Report describes what a Submit call did.
type Report struct {
	State      State             `json:"state"`
	Validation validation.Report `json:"validation"`
	Focus      string            `json:"focus,omitempty"`
	Outcome    *Outcome          `json:"outcome,omitempty"`
	Notice     string            `json:"notice,omitempty"`
	Control    Control           `json:"control"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithValidator overrides the default validator.
func WithValidator(v *validation.Validator) Option {
	return func(c *Controller) {
		if v != nil {
			c.validator = v
		}
	}
}

// WithBoard shares an existing feedback board.
func WithBoard(board *feedback.Board) Option {
	return func(c *Controller) {
		if board != nil {
			c.board = board
		}
	}
}

// WithDrafts enables clearing and restoring the draft snapshot.
func WithDrafts(store *draft.Store) Option {
	return func(c *Controller) {
		c.drafts = store
	}
}

// WithAutosaver routes input events into debounced draft writes.
func WithAutosaver(saver *draft.Autosaver) Option {
	return func(c *Controller) {
		c.autosaver = saver
	}
}

// WithTimeout bounds each delivery. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver registers fn for state and control events. Observers run with
// the controller locked and must not call back into it.
func WithObserver(fn func(Event)) Option {
	return func(c *Controller) {
		if fn != nil {
			c.observers = append(c.observers, fn)
		}
	}
}

// WithPayloadFilter transforms the payload right before delivery.
func WithPayloadFilter(fn func(model.Submission) model.Submission) Option {
	return func(c *Controller) {
		c.filter = fn
	}
}

// Controller owns the lifecycle of one form instance.
type Controller struct {
	form      model.Form
	submitter Submitter
	validator *validation.Validator
	board     *feedback.Board
	drafts    *draft.Store
	autosaver *draft.Autosaver
	timeout   time.Duration
	logger    *zap.Logger
	observers []func(Event)
	filter    func(model.Submission) model.Submission

	mu          sync.Mutex
	state       State
	control     Control
	inFlight    bool
	attachments Attachments
}

// New creates a controller for form delivering through submitter.
func New(form model.Form, submitter Submitter, options ...Option) *Controller {
	c := &Controller{
		form:      form,
		submitter: submitter,
		validator: validation.New(),
		timeout:   DefaultTimeout,
		logger:    zap.NewNop(),
		state:     StateIdle,
		control:   IdleControl(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	if c.board == nil {
		c.board = feedback.NewBoard(form)
	}
	return c
}

// Form returns the form declaration.
func (c *Controller) Form() model.Form {
	return c.form
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Control returns the current submit control state.
func (c *Controller) Control() Control {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.control
}

// Views returns the field feedback in declared order.
func (c *Controller) Views() []feedback.FieldView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.board.Views()
}

// Values returns the values currently held by the form.
func (c *Controller) Values() model.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.board.Values()
}

// Restore loads the stored draft into the form, as done on page load.
func (c *Controller) Restore(ctx context.Context) model.Values {
	if c.drafts == nil {
		return model.Values{}
	}
	values := c.drafts.Restore(ctx, model.Values{})

	c.mu.Lock()
	c.board.SetValues(values)
	c.mu.Unlock()

	if c.autosaver != nil {
		c.autosaver.Seed(values)
	}
	return values
}

// Input records a keystroke: the error indicator is cleared without
// re-validating and the value is queued for autosave. Input is refused while
// a submission is in flight.
func (c *Controller) Input(name string, value any) bool {
	c.mu.Lock()
	if c.inFlight || !c.form.Has(name) {
		c.mu.Unlock()
		return false
	}
	c.board.SetValue(name, value)
	c.board.ClearError(name)
	c.mu.Unlock()

	if text, ok := value.(string); ok && c.autosaver != nil {
		c.autosaver.Touch(name, text)
	}
	return true
}

// Blur validates a single field when it loses focus. The board is left alone
// while a submission is in flight.
func (c *Controller) Blur(name string, values model.Values) validation.Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := c.validator.ValidateName(c.form, name, values)
	if c.inFlight {
		return result
	}
	if value, ok := values[name]; ok {
		c.board.SetValue(name, value)
	}
	c.board.Apply(result)
	return result
}

// Attach adds file to the next submission. It returns ErrInFlight while a
// submission is in flight and an *AttachmentError when a limit is hit.
func (c *Controller) Attach(file model.Attachment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return ErrInFlight
	}
	return c.attachments.Add(file)
}

// Detach removes every attached file called name.
func (c *Controller) Detach(name string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return false, ErrInFlight
	}
	return c.attachments.Remove(name), nil
}

// Attachments returns the files held for the next submission.
func (c *Controller) Attachments() []model.Attachment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attachments.List()
}

// MarkInvalid flags name with message, as for errors the remote endpoint
// attributes to a field. Undeclared names are ignored.
func (c *Controller) MarkInvalid(name, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.board.Apply(validation.Result{Field: name, Message: message})
}

// Submit runs one submission attempt for values. It returns ErrInFlight when
// another attempt has not settled; every other failure is reported through
// the Report so the caller can always render an actionable form.
func (c *Controller) Submit(ctx context.Context, values model.Values) (report Report, err error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return Report{State: StateSubmitting, Control: SendingControl()}, ErrInFlight
	}

	c.transition(StateValidating)
	c.board.SetValues(values)
	validated := c.validator.ValidateAll(c.form, values)
	c.board.ApplyReport(validated)
	report.Validation = validated

	if !validated.Valid {
		report = c.invalid(validated)
		c.mu.Unlock()
		return report, nil
	}

	c.inFlight = true
	attachments := c.attachments.List()
	c.board.Focus("")
	c.setControl(SendingControl())
	c.transition(StateSubmitting)
	c.mu.Unlock()

	defer func() {
		report.Control = c.settle()
	}()

	payload := model.NewSubmission(values)
	payload.Attachments = attachments
	if c.filter != nil {
		payload = c.filter(payload)
	}

	deliverErr := c.deliver(ctx, payload)

	c.mu.Lock()
	defer c.mu.Unlock()

	if deliverErr != nil {
		outcome := Failure(deliverErr.Error(), deliverErr)
		c.logger.Warn("contact form submission failed", zap.String("form", c.form.ID), zap.Error(deliverErr))
		c.transition(StateFailed)
		report.State = StateFailed
		report.Outcome = &outcome
		report.Notice = FailureNotice
		return report, nil
	}

	outcome := Success()
	c.board.Reset()
	c.attachments.Reset()
	if c.autosaver != nil {
		c.autosaver.Reset()
	}
	if c.drafts != nil {
		if err := c.drafts.Clear(context.WithoutCancel(ctx)); err != nil {
			c.logger.Warn("could not clear saved form data", zap.String("form", c.form.ID), zap.Error(err))
		}
	}
	c.logger.Info("contact form submitted", zap.String("form", c.form.ID))
	c.transition(StateSucceeded)
	report.State = StateSucceeded
	report.Outcome = &outcome
	report.Notice = SuccessNotice
	return report, nil
}

// Reject runs the validation step for values that failed a payload type
// check. Fields named in mismatched are dropped from values and reported as
// type mismatches; every other field gets its usual rule. Nothing is sent.
func (c *Controller) Reject(values model.Values, mismatched []string) (Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return Report{State: StateSubmitting, Control: SendingControl()}, ErrInFlight
	}

	c.transition(StateValidating)
	checked := values.Clone()
	overrides := make([]validation.Result, 0, len(mismatched))
	for _, name := range mismatched {
		field, ok := c.form.Field(name)
		if !ok {
			continue
		}
		delete(checked, name)
		overrides = append(overrides, validation.TypeMismatch(field))
	}
	c.board.SetValues(checked)
	validated := c.validator.ValidateAll(c.form, checked).Override(overrides...)
	c.board.ApplyReport(validated)
	if validated.Valid {
		c.transition(StateIdle)
		return Report{State: StateIdle, Validation: validated, Control: c.control}, nil
	}
	return c.invalid(validated), nil
}

// invalid focuses the first failing field and returns the form to idle.
// The caller holds c.mu.
func (c *Controller) invalid(validated validation.Report) Report {
	c.board.Focus(validated.FirstInvalid)
	c.transition(StateInvalid)
	c.transition(StateIdle)
	return Report{
		State:      StateInvalid,
		Validation: validated,
		Focus:      validated.FirstInvalid,
		Control:    c.control,
	}
}

func (c *Controller) deliver(ctx context.Context, payload model.Submission) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("submit: submitter panicked: %v", r)
		}
	}()
	if c.submitter == nil {
		return fmt.Errorf("submit: no submitter configured")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.submitter.Submit(ctx, payload)
}

// settle unlocks the form after delivery and returns the restored control.
func (c *Controller) settle() Control {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	c.setControl(IdleControl())
	c.transition(StateIdle)
	return c.control
}

func (c *Controller) transition(to State) {
	from := c.state
	c.state = to
	event := Event{Transition: &Transition{From: from, To: to}}
	for _, fn := range c.observers {
		fn(event)
	}
}

func (c *Controller) setControl(control Control) {
	c.control = control
	event := Event{Control: &control}
	for _, fn := range c.observers {
		fn(event)
	}
}
