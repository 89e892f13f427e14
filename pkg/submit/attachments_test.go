package submit_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/submit"
)

func TestAttachments_Limits(t *testing.T) {
	var list submit.Attachments

	err := list.Add(model.Attachment{Name: "huge.pdf", Size: submit.MaxAttachmentSize + 1})
	if !errors.Is(err, submit.ErrAttachmentTooLarge) {
		t.Fatalf("expected too large, got %v", err)
	}
	if err.Error() != `File "huge.pdf" is too large. Maximum size is 10MB.` {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if err := list.Add(model.Attachment{Name: "  "}); !errors.Is(err, submit.ErrAttachmentName) {
		t.Fatalf("expected name error, got %v", err)
	}

	for i := 0; i < submit.MaxAttachments; i++ {
		if err := list.Add(model.Attachment{Name: fmt.Sprintf("f%d.txt", i), Data: []byte("x")}); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	err = list.Add(model.Attachment{Name: "six.txt"})
	if !errors.Is(err, submit.ErrTooManyAttachments) || err.Error() != "Maximum 5 files allowed." {
		t.Fatalf("expected count limit, got %v", err)
	}
	if list.List()[0].Size != 1 {
		t.Fatalf("expected size taken from data, got %d", list.List()[0].Size)
	}
}

func TestAttachments_RemoveByName(t *testing.T) {
	var list submit.Attachments
	for _, name := range []string{"a.txt", "b.txt", "a.txt"} {
		if err := list.Add(model.Attachment{Name: name}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if !list.Remove("a.txt") {
		t.Fatalf("expected a.txt removed")
	}
	if list.Remove("missing.txt") {
		t.Fatalf("missing names are not removed")
	}
	if diff := cmp.Diff([]model.Attachment{{Name: "b.txt"}}, list.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
	list.Reset()
	if list.List() != nil || list.Len() != 0 {
		t.Fatalf("expected empty list after reset")
	}
}

func TestSubmit_ForwardsAndClearsAttachments(t *testing.T) {
	sub := &recordingSubmitter{}
	ctrl := submit.New(model.ContactForm(), sub)
	file := model.Attachment{Name: "brief.txt", ContentType: "text/plain", Data: []byte("hello")}
	if err := ctrl.Attach(file); err != nil {
		t.Fatalf("attach: %v", err)
	}

	if _, err := ctrl.Submit(context.Background(), validValues()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	file.Size = 5
	if diff := cmp.Diff([]model.Attachment{file}, sub.calls[0].Attachments); diff != "" {
		t.Fatalf("forwarded attachments mismatch (-want +got):\n%s", diff)
	}
	if ctrl.Attachments() != nil {
		t.Fatalf("expected attachments cleared after success")
	}
}

func TestSubmit_FailureKeepsAttachments(t *testing.T) {
	ctrl := submit.New(model.ContactForm(), &recordingSubmitter{err: errors.New("down")})
	if err := ctrl.Attach(model.Attachment{Name: "brief.txt", Size: 3}); err != nil {
		t.Fatalf("attach: %v", err)
	}
	report, err := ctrl.Submit(context.Background(), validValues())
	if err != nil || report.State != submit.StateFailed {
		t.Fatalf("expected failed report, got %+v %v", report, err)
	}
	if len(ctrl.Attachments()) != 1 {
		t.Fatalf("expected attachments kept for a retry")
	}
}

func TestAttach_RefusedWhileSending(t *testing.T) {
	sub := &recordingSubmitter{block: make(chan struct{}), started: make(chan struct{})}
	ctrl := submit.New(model.ContactForm(), sub)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = ctrl.Submit(context.Background(), validValues())
	}()
	<-sub.started

	if err := ctrl.Attach(model.Attachment{Name: "late.txt"}); !errors.Is(err, submit.ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}
	if _, err := ctrl.Detach("late.txt"); !errors.Is(err, submit.ErrInFlight) {
		t.Fatalf("expected ErrInFlight on detach, got %v", err)
	}
	close(sub.block)
	<-done
}
