package submit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-contactform/pkg/model"
)

// Attachment limits.
const (
	MaxAttachmentSize int64 = 10 << 20
	MaxAttachments          = 5
)

var (
	// ErrAttachmentTooLarge is returned for files over MaxAttachmentSize.
	ErrAttachmentTooLarge = errors.New("submit: attachment too large")
	// ErrTooManyAttachments is returned once MaxAttachments files are held.
	ErrTooManyAttachments = errors.New("submit: too many attachments")
	// ErrAttachmentName is returned for files without a name.
	ErrAttachmentName = errors.New("submit: attachment has no name")
)

// AttachmentError explains why a file was refused, in words fit for the
// visitor.
type AttachmentError struct {
	Name string
	Err  error
}

func (e *AttachmentError) Error() string {
	switch {
	case errors.Is(e.Err, ErrAttachmentTooLarge):
		return fmt.Sprintf("File \"%s\" is too large. Maximum size is %dMB.", e.Name, MaxAttachmentSize>>20)
	case errors.Is(e.Err, ErrTooManyAttachments):
		return fmt.Sprintf("Maximum %d files allowed.", MaxAttachments)
	case errors.Is(e.Err, ErrAttachmentName):
		return "Please choose a file with a name."
	default:
		return e.Err.Error()
	}
}

func (e *AttachmentError) Unwrap() error { return e.Err }

// Attachments is the ordered list of files picked for the next submission.
// It is not safe for concurrent use; the Controller guards it.
type Attachments struct {
	files []model.Attachment
}

// Add appends file when it fits the size and count limits.
func (a *Attachments) Add(file model.Attachment) error {
	file.Name = strings.TrimSpace(file.Name)
	if file.Name == "" {
		return &AttachmentError{Err: ErrAttachmentName}
	}
	if n := int64(len(file.Data)); n > file.Size {
		file.Size = n
	}
	if file.Size > MaxAttachmentSize {
		return &AttachmentError{Name: file.Name, Err: ErrAttachmentTooLarge}
	}
	if len(a.files) >= MaxAttachments {
		return &AttachmentError{Name: file.Name, Err: ErrTooManyAttachments}
	}
	a.files = append(a.files, file)
	return nil
}

// Remove drops every file called name and reports whether any was held.
func (a *Attachments) Remove(name string) bool {
	kept := a.files[:0]
	for _, file := range a.files {
		if file.Name != name {
			kept = append(kept, file)
		}
	}
	removed := len(kept) != len(a.files)
	for i := len(kept); i < len(a.files); i++ {
		a.files[i] = model.Attachment{}
	}
	a.files = kept
	return removed
}

// List returns a copy of the held files, or nil when there are none.
func (a *Attachments) List() []model.Attachment {
	if len(a.files) == 0 {
		return nil
	}
	out := make([]model.Attachment, len(a.files))
	copy(out, a.files)
	return out
}

// Len reports how many files are held.
func (a *Attachments) Len() int { return len(a.files) }

// Reset forgets every file.
func (a *Attachments) Reset() { a.files = nil }
