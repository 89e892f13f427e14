package site

// NavbarOffset is the fixed header height scrolled targets clear.
const NavbarOffset = 100

// activeSectionLead makes a section count as current slightly before its
// top reaches the viewport edge.
const activeSectionLead = 150

// Section is a page region with its layout position in pixels.
type Section struct {
	ID     string
	Top    int
	Height int
}

// ScrollTarget returns the scroll position that brings id into view below
// the navbar. ok is false when the section does not exist.
func ScrollTarget(sections []Section, id string) (int, bool) {
	for _, section := range sections {
		if section.ID == id {
			y := section.Top - NavbarOffset
			if y < 0 {
				y = 0
			}
			return y, true
		}
	}
	return 0, false
}

// ActiveSection returns the id of the section the reader is in at scrollY.
// When several match, the last one in document order wins.
func ActiveSection(sections []Section, scrollY int) string {
	current := ""
	for _, section := range sections {
		top := section.Top - activeSectionLead
		if scrollY >= top && scrollY < top+section.Height {
			current = section.ID
		}
	}
	return current
}
