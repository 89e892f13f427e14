package site

import "fmt"

// Accordion tracks which FAQ items are expanded.
type Accordion struct {
	ids       map[string]struct{}
	open      map[string]bool
	exclusive bool
}

// NewAccordion creates a collapsed accordion over ids. An exclusive
// accordion keeps at most one item open.
func NewAccordion(ids []string, exclusive bool) *Accordion {
	a := &Accordion{
		ids:       make(map[string]struct{}, len(ids)),
		open:      make(map[string]bool, len(ids)),
		exclusive: exclusive,
	}
	for _, id := range ids {
		a.ids[id] = struct{}{}
	}
	return a
}

// Toggle flips id and returns whether it is now open.
func (a *Accordion) Toggle(id string) (bool, error) {
	if _, ok := a.ids[id]; !ok {
		return false, fmt.Errorf("site: unknown faq item %q", id)
	}
	next := !a.open[id]
	if a.exclusive {
		for other := range a.open {
			if other != id {
				delete(a.open, other)
			}
		}
	}
	if next {
		a.open[id] = true
	} else {
		delete(a.open, id)
	}
	return next, nil
}

// IsOpen reports whether id is expanded.
func (a *Accordion) IsOpen(id string) bool { return a.open[id] }

// OpenIDs returns the expanded items.
func (a *Accordion) OpenIDs() map[string]bool {
	out := make(map[string]bool, len(a.open))
	for id := range a.open {
		out[id] = true
	}
	return out
}
