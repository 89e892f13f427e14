package feedback

import (
	"fmt"
	"unicode/utf8"
)

// CounterLevel colours the remaining-characters hint.
type CounterLevel string

const (
	CounterNormal  CounterLevel = "normal"
	CounterWarning CounterLevel = "warning"
	CounterError   CounterLevel = "error"
)

const counterWarnBelow = 50

// Counter describes how many characters are left in a length-capped field.
type Counter struct {
	Max       int          `json:"max"`
	Remaining int          `json:"remaining"`
	Level     CounterLevel `json:"level"`
}

// CountRemaining computes the counter for value against max.
func CountRemaining(value string, max int) Counter {
	remaining := max - utf8.RuneCountInString(value)
	level := CounterNormal
	switch {
	case remaining < 0:
		level = CounterError
	case remaining < counterWarnBelow:
		level = CounterWarning
	}
	return Counter{Max: max, Remaining: remaining, Level: level}
}

// Text is the hint shown under the field.
func (c Counter) Text() string {
	return fmt.Sprintf("%d characters remaining", c.Remaining)
}
