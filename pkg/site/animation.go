package site

import (
	"strconv"
	"time"
)

// CounterDuration is how long a stat takes to count up.
const CounterDuration = 2 * time.Second

// Counter animates a stat from zero to its target.
type Counter struct {
	Target   int
	Suffix   string
	Duration time.Duration
}

// NewCounter builds a counter for stat with the default duration.
func NewCounter(stat Stat) Counter {
	return Counter{Target: stat.Target, Suffix: stat.Suffix, Duration: CounterDuration}
}

// ValueAt returns the number shown after elapsed. The value grows linearly
// and is floored, reaching Target exactly once the duration has passed.
func (c Counter) ValueAt(elapsed time.Duration) int {
	if c.Duration <= 0 || elapsed >= c.Duration {
		return c.Target
	}
	if elapsed <= 0 {
		return 0
	}
	progress := float64(elapsed) / float64(c.Duration)
	return int(progress * float64(c.Target))
}

// TextAt renders ValueAt with the suffix.
func (c Counter) TextAt(elapsed time.Duration) string {
	return strconv.Itoa(c.ValueAt(elapsed)) + c.Suffix
}

// Done reports whether the animation has finished.
func (c Counter) Done(elapsed time.Duration) bool {
	return elapsed >= c.Duration
}

// Typewriter timings.
const (
	TypeDelay       = 100 * time.Millisecond
	DeleteDelay     = 50 * time.Millisecond
	HoldDelay       = 2000 * time.Millisecond
	NextPhraseDelay = 500 * time.Millisecond
	StartDelay      = 1000 * time.Millisecond
)

// Typewriter types each phrase out a character at a time, holds it, deletes
// it, then moves on to the next phrase.
type Typewriter struct {
	phrases  [][]rune
	index    int
	chars    int
	deleting bool
}

// NewTypewriter cycles through phrases. Empty phrases are skipped.
func NewTypewriter(phrases []string) *Typewriter {
	t := &Typewriter{}
	for _, phrase := range phrases {
		if phrase != "" {
			t.phrases = append(t.phrases, []rune(phrase))
		}
	}
	return t
}

// Step advances one character and returns the visible text and how long to
// wait before the next step.
func (t *Typewriter) Step() (string, time.Duration) {
	if len(t.phrases) == 0 {
		return "", 0
	}
	current := t.phrases[t.index]

	if t.deleting {
		t.chars--
		text := string(current[:t.chars])
		if t.chars == 0 {
			t.deleting = false
			t.index = (t.index + 1) % len(t.phrases)
			return text, NextPhraseDelay
		}
		return text, DeleteDelay
	}

	t.chars++
	text := string(current[:t.chars])
	if t.chars == len(current) {
		t.deleting = true
		return text, HoldDelay
	}
	return text, TypeDelay
}

// Phrase is the index of the phrase being typed.
func (t *Typewriter) Phrase() int { return t.index }
