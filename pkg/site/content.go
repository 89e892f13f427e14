package site

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultContent []byte

// Info carries the organisation details shown in headers and footers.
type Info struct {
	Name    string `yaml:"name"`
	Tagline string `yaml:"tagline"`
	Email   string `yaml:"email"`
	Phone   string `yaml:"phone"`
	Address string `yaml:"address"`
}

// NavLink is one entry of the main navigation.
type NavLink struct {
	Page   string `yaml:"page"`
	Label  string `yaml:"label"`
	Href   string `yaml:"href"`
	Active bool   `yaml:"-"`
}

// Page describes a routable page and the sections it is built from.
type Page struct {
	Title    string   `yaml:"title"`
	Sections []string `yaml:"sections"`
}

// Category groups services for the filter tabs.
type Category struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
}

// Service is a card in the services catalogue.
type Service struct {
	ID       string `yaml:"id"`
	Category string `yaml:"category"`
	Icon     string `yaml:"icon"`
	Title    string `yaml:"title"`
	Summary  string `yaml:"summary"`
}

// Stat is an animated headline number.
type Stat struct {
	ID     string `yaml:"id"`
	Label  string `yaml:"label"`
	Target int    `yaml:"target"`
	Suffix string `yaml:"suffix"`
}

// FAQItem is one accordion entry.
type FAQItem struct {
	ID       string `yaml:"id"`
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// ScheduleOption is a way of booking a consultation.
type ScheduleOption struct {
	Kind    string `yaml:"kind"`
	Label   string `yaml:"label"`
	Icon    string `yaml:"icon"`
	Message string `yaml:"message"`
}

// Schedule lists the booking options and the fallback confirmation.
type Schedule struct {
	Default string           `yaml:"default"`
	Options []ScheduleOption `yaml:"options"`
}

// Content is everything the pages display that is not form state.
type Content struct {
	Site       Info            `yaml:"site"`
	Nav        []NavLink       `yaml:"nav"`
	Pages      map[string]Page `yaml:"pages"`
	Phrases    []string        `yaml:"phrases"`
	Categories []Category      `yaml:"categories"`
	Services   []Service       `yaml:"services"`
	Stats      []Stat          `yaml:"stats"`
	FAQ        []FAQItem       `yaml:"faq"`
	Schedule   Schedule        `yaml:"schedule"`
}

// DefaultContent parses the embedded content file.
func DefaultContent() (*Content, error) {
	return ParseContent(defaultContent)
}

// ParseContent decodes and checks a content document.
func ParseContent(raw []byte) (*Content, error) {
	var content Content
	if err := yaml.Unmarshal(raw, &content); err != nil {
		return nil, fmt.Errorf("site: parse content: %w", err)
	}
	if err := content.validate(); err != nil {
		return nil, err
	}
	return &content, nil
}

func (c *Content) validate() error {
	if len(c.Nav) == 0 {
		return fmt.Errorf("site: content declares no navigation")
	}
	for _, link := range c.Nav {
		if _, ok := c.Pages[link.Page]; !ok {
			return fmt.Errorf("site: nav link %q points at unknown page", link.Page)
		}
	}
	categories := make(map[string]struct{}, len(c.Categories))
	for _, category := range c.Categories {
		categories[category.ID] = struct{}{}
	}
	for _, service := range c.Services {
		if _, ok := categories[service.Category]; !ok {
			return fmt.Errorf("site: service %q uses unknown category %q", service.ID, service.Category)
		}
	}
	seen := make(map[string]struct{}, len(c.FAQ))
	for _, item := range c.FAQ {
		if strings.TrimSpace(item.ID) == "" {
			return fmt.Errorf("site: faq item %q has no id", item.Question)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("site: duplicate faq id %q", item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

// Page returns the named page.
func (c *Content) Page(name string) (Page, bool) {
	page, ok := c.Pages[name]
	return page, ok
}

// FAQIDs lists accordion item ids in display order.
func (c *Content) FAQIDs() []string {
	ids := make([]string, 0, len(c.FAQ))
	for _, item := range c.FAQ {
		ids = append(ids, item.ID)
	}
	return ids
}
