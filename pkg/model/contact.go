package model

import "strings"

// ContactFormID identifies the contact form across storage and templates.
const ContactFormID = "contact-form"

// Field names of the contact form. They double as JSON keys in the
// submission payload and as keys of the draft snapshot.
const (
	FieldFirstName  = "firstName"
	FieldLastName   = "lastName"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldSubject    = "subject"
	FieldMessage    = "message"
	FieldNewsletter = "newsletter"
	FieldPrivacy    = "privacy"
)

// MessageMaxLength caps the message body.
const MessageMaxLength = 500

// SubjectOptions lists the topics offered by the subject select.
var SubjectOptions = []Option{
	{Value: "general", Label: "General Inquiry"},
	{Value: "web-development", Label: "Web Development"},
	{Value: "mobile-app", Label: "Mobile App Development"},
	{Value: "ui-ux", Label: "UI/UX Design"},
	{Value: "consulting", Label: "Consulting"},
	{Value: "support", Label: "Technical Support"},
	{Value: "partnership", Label: "Partnership"},
}

// ContactForm returns the contact form declaration.
func ContactForm() Form {
	subjects := make([]Option, len(SubjectOptions))
	copy(subjects, SubjectOptions)

	return Form{
		ID: ContactFormID,
		Fields: []Field{
			{Name: FieldFirstName, Label: "First name", Kind: FieldKindName, Required: true, Tracked: true, Placeholder: "John"},
			{Name: FieldLastName, Label: "Last name", Kind: FieldKindName, Required: true, Tracked: true, Placeholder: "Doe"},
			{Name: FieldEmail, Label: "Email address", Kind: FieldKindEmail, Required: true, Tracked: true, Placeholder: "john@example.com"},
			{Name: FieldPhone, Label: "Phone number", Kind: FieldKindPhone, Tracked: true, Placeholder: "+1 (555) 123-4567"},
			{Name: FieldSubject, Label: "Subject", Kind: FieldKindSelect, Required: true, Tracked: true, Options: subjects},
			{Name: FieldMessage, Label: "Message", Kind: FieldKindTextArea, Required: true, Tracked: true, MaxLength: MessageMaxLength, Placeholder: "Tell us about your project..."},
			{Name: FieldNewsletter, Label: "Subscribe to our newsletter", Kind: FieldKindCheckbox},
			{Name: FieldPrivacy, Label: "I agree to the privacy policy", Kind: FieldKindCheckbox, Required: true},
		},
	}
}

// Submission is the JSON payload posted to the intake endpoint.
type Submission struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Subject    string `json:"subject"`
	Message    string `json:"message"`
	Newsletter bool   `json:"newsletter"`
	Privacy    bool   `json:"privacy"`

	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment is a file sent along with a submission. Data is base64 encoded
// on the wire.
type Attachment struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType,omitempty"`
	Data        []byte `json:"data,omitempty"`
}

// NewSubmission collects the payload from values. Text values are trimmed;
// the subject is forwarded as selected.
func NewSubmission(values Values) Submission {
	return Submission{
		FirstName:  strings.TrimSpace(values.String(FieldFirstName)),
		LastName:   strings.TrimSpace(values.String(FieldLastName)),
		Email:      strings.TrimSpace(values.String(FieldEmail)),
		Phone:      strings.TrimSpace(values.String(FieldPhone)),
		Subject:    values.String(FieldSubject),
		Message:    strings.TrimSpace(values.String(FieldMessage)),
		Newsletter: values.Bool(FieldNewsletter),
		Privacy:    values.Bool(FieldPrivacy),
	}
}

// Values converts the payload back into form values.
func (s Submission) Values() Values {
	return Values{
		FieldFirstName:  s.FirstName,
		FieldLastName:   s.LastName,
		FieldEmail:      s.Email,
		FieldPhone:      s.Phone,
		FieldSubject:    s.Subject,
		FieldMessage:    s.Message,
		FieldNewsletter: s.Newsletter,
		FieldPrivacy:    s.Privacy,
	}
}
