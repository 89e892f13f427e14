package submit_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/submit"
)

func TestEndpoint_PostsJSONPayload(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{"result":"success"}`))
	}))
	defer server.Close()

	payload := model.NewSubmission(validValues())
	if err := (submit.Endpoint{URL: server.URL, Client: server.Client()}).Submit(context.Background(), payload); err != nil {
		t.Fatalf("submit: %v", err)
	}

	want := map[string]any{
		"firstName":  "Ada",
		"lastName":   "Lovelace",
		"email":      "ada@example.com",
		"phone":      "",
		"subject":    "consulting",
		"message":    "Please help us build an engine.",
		"newsletter": true,
		"privacy":    true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestEndpoint_FailureShapes(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"error result", http.StatusOK, `{"result":"error","error":"sheet locked"}`},
		{"missing result", http.StatusOK, `{"ok":true}`},
		{"not json", http.StatusOK, `<html>oops</html>`},
		{"server error", http.StatusInternalServerError, `{"result":"success"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			err := submit.Endpoint{URL: server.URL}.Submit(context.Background(), model.Submission{})
			if !errors.Is(err, submit.ErrRejected) {
				t.Fatalf("expected ErrRejected, got %v", err)
			}
		})
	}
}

func TestEndpoint_RejectionCarriesFieldErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"result":"error","errors":{"/body/email":["Email already registered"]}}`))
	}))
	defer server.Close()

	err := submit.Endpoint{URL: server.URL}.Submit(context.Background(), model.Submission{})
	var rejected *submit.RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected RejectedError, got %v", err)
	}
	if rejected.Status != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status %d", rejected.Status)
	}
	want := map[string][]string{"/body/email": {"Email already registered"}}
	if diff := cmp.Diff(want, rejected.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
}

func TestEndpoint_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	err := submit.Endpoint{URL: url}.Submit(context.Background(), model.Submission{})
	if err == nil || errors.Is(err, submit.ErrRejected) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestSimulated_ResolvesAfterDelay(t *testing.T) {
	mock := clock.NewMock()
	sim := submit.Simulated{Delay: 2 * time.Second, Clock: mock}

	done := make(chan error, 1)
	go func() { done <- sim.Submit(context.Background(), model.Submission{}) }()

	// let the goroutine register its timer before advancing
	deadline := time.Now().Add(time.Second)
	for {
		mock.Add(500 * time.Millisecond)
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("simulated submit: %v", err)
			}
			return
		default:
		}
		if time.Now().After(deadline) {
			t.Fatalf("simulated submitter never resolved")
		}
	}
}

func TestSimulated_HonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := submit.Simulated{Delay: time.Hour}.Submit(ctx, model.Submission{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
