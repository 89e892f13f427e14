package submit_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-contactform/pkg/draft"
	"github.com/goliatone/go-contactform/pkg/feedback"
	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/storage"
	"github.com/goliatone/go-contactform/pkg/submit"
	"github.com/goliatone/go-contactform/pkg/validation"
)

func validValues() model.Values {
	return model.Values{
		"firstName":  "Ada",
		"lastName":   "Lovelace",
		"email":      "ada@example.com",
		"phone":      "",
		"subject":    "consulting",
		"message":    "Please help us build an engine.",
		"newsletter": true,
		"privacy":    true,
	}
}

type recordingSubmitter struct {
	mu       sync.Mutex
	calls    []model.Submission
	err      error
	panicVal any
	block    chan struct{}
	started  chan struct{}
}

func (r *recordingSubmitter) Submit(ctx context.Context, payload model.Submission) error {
	r.mu.Lock()
	r.calls = append(r.calls, payload)
	r.mu.Unlock()
	if r.started != nil {
		close(r.started)
	}
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if r.panicVal != nil {
		panic(r.panicVal)
	}
	return r.err
}

func (r *recordingSubmitter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type controlRecorder struct {
	mu       sync.Mutex
	controls []submit.Control
	states   []submit.State
}

func (c *controlRecorder) observe(e submit.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e.Control != nil {
		c.controls = append(c.controls, *e.Control)
	}
	if e.Transition != nil {
		c.states = append(c.states, e.Transition.To)
	}
}

func TestSubmit_InvalidFieldsSkipSubmitter(t *testing.T) {
	sub := &recordingSubmitter{}
	ctrl := submit.New(model.ContactForm(), sub)

	values := validValues()
	values["firstName"] = ""
	values["email"] = "bad"

	report, err := ctrl.Submit(context.Background(), values)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.count() != 0 {
		t.Fatalf("submitter must not be invoked for invalid input")
	}
	if report.State != submit.StateInvalid {
		t.Fatalf("expected invalid state, got %s", report.State)
	}
	if report.Focus != "firstName" {
		t.Fatalf("expected focus on firstName, got %q", report.Focus)
	}

	want := map[string][]string{
		"firstName": {"Please enter your first name"},
		"email":     {"Please enter a valid email address"},
	}
	if diff := cmp.Diff(want, report.Validation.Errors()); diff != "" {
		t.Fatalf("validation errors mismatch (-want +got):\n%s", diff)
	}
	if ctrl.State() != submit.StateIdle {
		t.Fatalf("expected controller back in idle, got %s", ctrl.State())
	}

	for _, view := range ctrl.Views() {
		switch view.Name {
		case "firstName":
			if !view.Focus || view.State != feedback.StateError {
				t.Fatalf("expected focused error on firstName, got %+v", view)
			}
		case "email":
			if view.Focus || view.State != feedback.StateError {
				t.Fatalf("expected unfocused error on email, got %+v", view)
			}
		case "lastName":
			if view.State != feedback.StateSuccess {
				t.Fatalf("expected success on lastName, got %+v", view)
			}
		}
	}
}

func TestSubmit_EmptyFormNeverSubmits(t *testing.T) {
	sub := &recordingSubmitter{}
	report, err := submit.New(model.ContactForm(), sub).Submit(context.Background(), model.Values{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(report.Validation.Invalid()) == 0 || sub.count() != 0 {
		t.Fatalf("expected validation errors and no submission, got %d errors %d calls",
			len(report.Validation.Invalid()), sub.count())
	}
}

func TestSubmit_LocksControlAndRestoresOnce(t *testing.T) {
	for _, tc := range []struct {
		name  string
		err   error
		state submit.State
	}{
		{"success", nil, submit.StateSucceeded},
		{"failure", errors.New("boom"), submit.StateFailed},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec := &controlRecorder{}
			sub := &recordingSubmitter{err: tc.err, block: make(chan struct{}), started: make(chan struct{})}
			ctrl := submit.New(model.ContactForm(), sub, submit.WithObserver(rec.observe))

			done := make(chan submit.Report, 1)
			go func() {
				report, err := ctrl.Submit(context.Background(), validValues())
				if err != nil {
					t.Errorf("submit: %v", err)
				}
				done <- report
			}()

			<-sub.started
			if got := ctrl.Control(); got != submit.SendingControl() {
				t.Fatalf("expected control locked while in flight, got %+v", got)
			}
			if _, err := ctrl.Submit(context.Background(), validValues()); !errors.Is(err, submit.ErrInFlight) {
				t.Fatalf("expected ErrInFlight, got %v", err)
			}
			if ctrl.Input("firstName", "Bob") {
				t.Fatalf("input must be refused while in flight")
			}
			close(sub.block)

			report := <-done
			if report.State != tc.state {
				t.Fatalf("expected %s, got %s", tc.state, report.State)
			}
			if report.Control != submit.IdleControl() {
				t.Fatalf("expected restored control, got %+v", report.Control)
			}

			want := []submit.Control{submit.SendingControl(), submit.IdleControl()}
			if diff := cmp.Diff(want, rec.controls); diff != "" {
				t.Fatalf("control changes mismatch (-want +got):\n%s", diff)
			}
			wantStates := []submit.State{submit.StateValidating, submit.StateSubmitting, tc.state, submit.StateIdle}
			if diff := cmp.Diff(wantStates, rec.states); diff != "" {
				t.Fatalf("state changes mismatch (-want +got):\n%s", diff)
			}
			if sub.count() != 1 {
				t.Fatalf("expected a single delivery, got %d", sub.count())
			}
		})
	}
}

func TestSubmit_FailureKeepsValuesAndNotice(t *testing.T) {
	sub := &recordingSubmitter{err: errors.New("network down")}
	ctrl := submit.New(model.ContactForm(), sub)

	report, err := ctrl.Submit(context.Background(), validValues())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if report.Outcome == nil || report.Outcome.OK() {
		t.Fatalf("expected failure outcome, got %+v", report.Outcome)
	}
	if report.Notice != submit.FailureNotice {
		t.Fatalf("unexpected notice %q", report.Notice)
	}
	if ctrl.Values().String("firstName") != "Ada" {
		t.Fatalf("failed submission must keep entered values")
	}
	if ctrl.Control().Disabled {
		t.Fatalf("control must be actionable after failure")
	}
}

func TestSubmit_PanicIsRecoveredAsFailure(t *testing.T) {
	sub := &recordingSubmitter{panicVal: "exploded"}
	ctrl := submit.New(model.ContactForm(), sub)

	report, err := ctrl.Submit(context.Background(), validValues())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if report.State != submit.StateFailed || ctrl.Control().Disabled {
		t.Fatalf("expected failed state with unlocked control, got %s %+v", report.State, ctrl.Control())
	}
}

func TestSubmit_TimeoutBoundsDelivery(t *testing.T) {
	sub := &recordingSubmitter{block: make(chan struct{})}
	ctrl := submit.New(model.ContactForm(), sub, submit.WithTimeout(20*time.Millisecond))

	report, err := ctrl.Submit(context.Background(), validValues())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if report.State != submit.StateFailed {
		t.Fatalf("expected timeout failure, got %s", report.State)
	}
	if !errors.Is(report.Outcome.Err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", report.Outcome.Err)
	}
}

func TestSubmit_SuccessClearsDraftAndFields(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	form := model.ContactForm()
	drafts := draft.NewStore(mem, form)
	saver := draft.NewAutosaver(drafts)

	if _, err := drafts.Save(ctx, validValues()); err != nil {
		t.Fatalf("seed draft: %v", err)
	}

	ctrl := submit.New(form, &recordingSubmitter{}, submit.WithDrafts(drafts), submit.WithAutosaver(saver))
	restored := ctrl.Restore(ctx)
	if restored.String("email") != "ada@example.com" {
		t.Fatalf("expected draft restored, got %v", restored)
	}

	ctrl.Input("message", "Please help us build an engine, quickly.")
	report, err := ctrl.Submit(ctx, validValues())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if report.State != submit.StateSucceeded || report.Notice != submit.SuccessNotice {
		t.Fatalf("unexpected report %+v", report)
	}
	if _, ok := drafts.Load(ctx); ok {
		t.Fatalf("expected draft removed after success")
	}
	if saver.Pending() {
		t.Fatalf("expected pending autosave dropped after success")
	}
	for _, view := range ctrl.Views() {
		if view.Value != nil || view.State != feedback.StatePristine {
			t.Fatalf("expected cleared field after success, got %+v", view)
		}
	}
}

func TestInputAndBlur(t *testing.T) {
	ctrl := submit.New(model.ContactForm(), &recordingSubmitter{})

	result := ctrl.Blur("email", model.Values{"email": "nope"})
	if result.Valid {
		t.Fatalf("expected invalid email on blur")
	}
	if !ctrl.Input("email", "ada@") {
		t.Fatalf("expected input accepted")
	}
	for _, view := range ctrl.Views() {
		if view.Name == "email" && (view.ShowError || view.State == feedback.StateError) {
			t.Fatalf("expected error cleared on input, got %+v", view)
		}
	}
	if ctrl.Input("company", "x") {
		t.Fatalf("undeclared fields must be refused")
	}
}

func TestController_MarkInvalidShowsRemoteError(t *testing.T) {
	c := submit.New(model.ContactForm(), &recordingSubmitter{})
	c.MarkInvalid("email", "Address already registered")
	c.MarkInvalid("unknown", "ignored")

	var got feedback.FieldView
	for _, view := range c.Views() {
		if view.Name == "email" {
			got = view
		}
	}
	if got.State != feedback.StateError || !got.ShowError {
		t.Fatalf("expected email to show an error, got %+v", got)
	}
	if got.Message != "Address already registered" {
		t.Fatalf("unexpected message %q", got.Message)
	}
}

// gatedStorage holds the first Put open until release is closed.
type gatedStorage struct {
	*storage.Memory
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStorage) Put(ctx context.Context, key string, value []byte) error {
	gate := false
	g.once.Do(func() { gate = true })
	if gate {
		close(g.entered)
		<-g.release
	}
	return g.Memory.Put(ctx, key, value)
}

func TestSubmit_SuccessWinsOverAutosaveInProgress(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock()
	gated := &gatedStorage{
		Memory:  storage.NewMemory(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	form := model.ContactForm()
	drafts := draft.NewStore(gated, form)
	saver := draft.NewAutosaver(drafts, draft.WithClock(mock))
	ctrl := submit.New(form, &recordingSubmitter{}, submit.WithDrafts(drafts), submit.WithAutosaver(saver))

	ctrl.Input("firstName", "Ada")
	go mock.Add(draft.DefaultDebounce)
	select {
	case <-gated.entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the debounced write")
	}

	done := make(chan submit.Report, 1)
	go func() {
		report, err := ctrl.Submit(ctx, validValues())
		if err != nil {
			t.Errorf("submit: %v", err)
		}
		done <- report
	}()
	time.Sleep(20 * time.Millisecond)
	close(gated.release)

	select {
	case report := <-done:
		if report.State != submit.StateSucceeded {
			t.Fatalf("expected success, got %s", report.State)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for submit")
	}
	if saved, ok := drafts.Load(ctx); ok {
		t.Fatalf("expected no draft after success, got %v", saved)
	}
}

func TestSubmit_ClearsDraftWhenCallerCancels(t *testing.T) {
	mem := storage.NewMemory()
	form := model.ContactForm()
	drafts := draft.NewStore(mem, form)
	if _, err := drafts.Save(context.Background(), validValues()); err != nil {
		t.Fatalf("seed draft: %v", err)
	}
	ctrl := submit.New(form, &recordingSubmitter{}, submit.WithDrafts(drafts))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := ctrl.Submit(ctx, validValues())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if report.State != submit.StateSucceeded {
		t.Fatalf("expected success, got %s", report.State)
	}
	if _, ok := drafts.Load(context.Background()); ok {
		t.Fatalf("expected draft cleared despite cancelled caller")
	}
}

func TestBlur_LeavesBoardAloneWhileSending(t *testing.T) {
	sub := &recordingSubmitter{block: make(chan struct{}), started: make(chan struct{})}
	ctrl := submit.New(model.ContactForm(), sub)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := ctrl.Submit(context.Background(), validValues()); err != nil {
			t.Errorf("submit: %v", err)
		}
	}()
	<-sub.started

	result := ctrl.Blur("email", model.Values{"email": "nope"})
	if result.Valid {
		t.Fatalf("expected blur result to report the invalid email")
	}
	for _, view := range ctrl.Views() {
		if view.Name == "email" && (view.State == feedback.StateError || view.Value != "ada@example.com") {
			t.Fatalf("board changed while sending: %+v", view)
		}
	}

	close(sub.block)
	<-done
}

func TestReject_ValidatesRemainingFieldsAndFocusesFirst(t *testing.T) {
	sub := &recordingSubmitter{}
	ctrl := submit.New(model.ContactForm(), sub)

	values := validValues()
	values["privacy"] = "yes"
	values["email"] = "bad"
	values["firstName"] = ""

	report, err := ctrl.Reject(values, []string{"privacy", "unknown"})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if report.State != submit.StateInvalid || report.Focus != "firstName" {
		t.Fatalf("unexpected report %+v", report)
	}
	if diff := cmp.Diff([]string{"firstName", "email", "privacy"}, fieldNames(report.Validation.Invalid())); diff != "" {
		t.Fatalf("invalid fields mismatch (-want +got):\n%s", diff)
	}
	for _, view := range ctrl.Views() {
		if view.Name == "firstName" && !view.Focus {
			t.Fatalf("expected firstName focused")
		}
		if view.Name == "privacy" && view.Value == "yes" {
			t.Fatalf("mistyped value must not reach the board")
		}
	}
	if sub.count() != 0 || ctrl.State() != submit.StateIdle {
		t.Fatalf("reject must not deliver and must leave the form idle")
	}
}

func fieldNames(results []validation.Result) []string {
	out := make([]string, 0, len(results))
	for _, result := range results {
		out = append(out, result.Field)
	}
	return out
}
