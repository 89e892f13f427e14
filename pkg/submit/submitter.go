package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/goliatone/go-contactform/pkg/model"
)

// Submitter delivers a payload. A nil error means the message was accepted.
type Submitter interface {
	Submit(ctx context.Context, payload model.Submission) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, payload model.Submission) error

// Submit calls f.
func (f SubmitterFunc) Submit(ctx context.Context, payload model.Submission) error {
	return f(ctx, payload)
}

// DefaultSimulatedDelay is how long Simulated takes to resolve.
const DefaultSimulatedDelay = 2 * time.Second

// Simulated resolves after a fixed delay without sending anything.
type Simulated struct {
	Delay time.Duration
	Clock clock.Clock
	// Err, when set, is returned after the delay.
	Err error
}

// Submit waits for the delay or the context, whichever comes first.
func (s Simulated) Submit(ctx context.Context, _ model.Submission) error {
	delay := s.Delay
	if delay <= 0 {
		delay = DefaultSimulatedDelay
	}
	clk := s.Clock
	if clk == nil {
		clk = clock.New()
	}

	timer := clk.Timer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return s.Err
	}
}

const maxResponseBytes = 1 << 20

// Endpoint posts the payload as JSON to a form intake URL. The endpoint
// replies with an object whose "result" is "success"; anything else fails.
type Endpoint struct {
	URL    string
	Client *http.Client
}

type endpointResponse struct {
	Result string              `json:"result"`
	Error  any                 `json:"error,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
}

// RejectedError is returned when the endpoint answered but did not accept
// the message. Fields carries any per-field messages the endpoint sent back,
// keyed as the endpoint reported them.
type RejectedError struct {
	Status int
	Result string
	Detail string
	Fields map[string][]string
}

func (e *RejectedError) Error() string {
	if e.Result == "" {
		return fmt.Sprintf("%s: status %d%s", ErrRejected, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s: result %q%s", ErrRejected, e.Result, e.Detail)
}

// Unwrap lets errors.Is match ErrRejected.
func (e *RejectedError) Unwrap() error { return ErrRejected }

// Submit performs the POST.
func (e Endpoint) Submit(ctx context.Context, payload model.Submission) error {
	target := strings.TrimSpace(e.URL)
	if target == "" {
		return errors.New("submit: endpoint URL is required")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("submit: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("submit: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("submit: post: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("submit: read response: %w", err)
	}

	var decoded endpointResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("%w: unexpected response (status %d)", ErrRejected, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RejectedError{Status: resp.StatusCode, Detail: describe(decoded.Error), Fields: decoded.Errors}
	}
	if decoded.Result != "success" {
		return &RejectedError{Status: resp.StatusCode, Result: decoded.Result, Detail: describe(decoded.Error), Fields: decoded.Errors}
	}
	return nil
}

func describe(remote any) string {
	if remote == nil {
		return ""
	}
	switch v := remote.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return ""
		}
		return ": " + v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return ": " + string(encoded)
	}
}
