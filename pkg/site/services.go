package site

import (
	"fmt"
	"strings"
	"unicode"
)

// AllCategories is the filter tab that shows every service.
const AllCategories = "all"

// ServiceCard is a service with its visibility under the current filter.
type ServiceCard struct {
	Service
	Hidden bool
}

// Filter marks services outside category as hidden. An unknown category
// hides everything, matching a tab with no cards.
func (c *Content) Filter(category string) []ServiceCard {
	category = strings.TrimSpace(category)
	if category == "" {
		category = AllCategories
	}
	cards := make([]ServiceCard, len(c.Services))
	for i, service := range c.Services {
		cards[i] = ServiceCard{
			Service: service,
			Hidden:  category != AllCategories && service.Category != category,
		}
	}
	return cards
}

// NewsletterResult is the feedback for a newsletter signup.
type NewsletterResult struct {
	Subscribed bool   `json:"subscribed"`
	Label      string `json:"label"`
	Message    string `json:"message,omitempty"`
}

// Subscribe accepts any address containing '@'. Delivery is outside this
// package; callers persist or forward accepted addresses.
func Subscribe(email string) NewsletterResult {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return NewsletterResult{Label: "Subscribe", Message: "Please enter a valid email address"}
	}
	return NewsletterResult{Subscribed: true, Label: "Subscribed!"}
}

// ScheduleMessage returns the confirmation for a booking kind.
func (c *Content) ScheduleMessage(kind string) string {
	for _, option := range c.Schedule.Options {
		if option.Kind == kind {
			return option.Message
		}
	}
	if c.Schedule.Default != "" {
		return c.Schedule.Default
	}
	return "Scheduling request received!"
}

// FormatPhone reformats digits as the visitor types: 555, 555-123,
// 555-123-4567. Anything past ten digits is dropped. Numbers starting with
// '+' are international and kept as typed.
func FormatPhone(value string) string {
	if strings.HasPrefix(strings.TrimSpace(value), "+") {
		return value
	}
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			return r
		}
		return -1
	}, value)

	switch n := len(digits); {
	case n < 4:
		return digits
	case n < 7:
		return fmt.Sprintf("%s-%s", digits[:3], digits[3:])
	default:
		if n > 10 {
			digits = digits[:10]
		}
		return fmt.Sprintf("%s-%s-%s", digits[:3], digits[3:6], digits[6:])
	}
}
