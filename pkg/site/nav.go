package site

// Navigation returns the nav links with the link for current marked active.
func (c *Content) Navigation(current string) []NavLink {
	links := make([]NavLink, len(c.Nav))
	for i, link := range c.Nav {
		link.Active = link.Page == current
		links[i] = link
	}
	return links
}

// MobileMenu is the collapsible navigation shown on narrow screens.
type MobileMenu struct {
	open bool
}

// Open reports whether the menu is expanded.
func (m *MobileMenu) Open() bool { return m.open }

// Toggle flips the menu and returns the new state.
func (m *MobileMenu) Toggle() bool {
	m.open = !m.open
	return m.open
}

// LinkClicked closes the menu after navigation.
func (m *MobileMenu) LinkClicked() { m.open = false }

// Icon is the Font Awesome class for the toggle button.
func (m *MobileMenu) Icon() string {
	if m.open {
		return "fa-times"
	}
	return "fa-bars"
}
