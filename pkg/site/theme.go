package site

import (
	"context"
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-contactform/pkg/storage"
)

// Theme is the colour scheme applied to the document root.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ThemePreferenceKey is the storage key holding the saved theme.
const ThemePreferenceKey = "theme"

// SiteThemeName is the go-theme manifest name for the site.
const SiteThemeName = "nexa"

// ParseTheme accepts "light" or "dark" in any case.
func ParseTheme(raw string) (Theme, bool) {
	switch Theme(strings.ToLower(strings.TrimSpace(raw))) {
	case ThemeLight:
		return ThemeLight, true
	case ThemeDark:
		return ThemeDark, true
	default:
		return "", false
	}
}

// ResolveTheme picks the theme to show: a saved choice wins, then the
// client's prefers-color-scheme hint, then light.
func ResolveTheme(saved string, prefersDark bool) Theme {
	if t, ok := ParseTheme(saved); ok {
		return t
	}
	if prefersDark {
		return ThemeDark
	}
	return ThemeLight
}

// ToggleTheme flips between light and dark.
func ToggleTheme(current Theme) Theme {
	if current == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ToggleIcon is the icon class shown on the theme toggle for t.
func ToggleIcon(t Theme) string {
	if t == ThemeDark {
		return "fas fa-sun"
	}
	return "fa-regular fa-moon"
}

// ThemePreference persists the visitor's theme choice.
type ThemePreference struct {
	store  storage.Storage
	logger *zap.Logger
}

// NewThemePreference wraps store. A nil logger is replaced with a no-op one.
func NewThemePreference(store storage.Storage, logger *zap.Logger) *ThemePreference {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ThemePreference{store: store, logger: logger}
}

// Load returns the saved theme, or "" when none is stored. Read errors are
// logged and treated as no preference.
func (p *ThemePreference) Load(ctx context.Context) string {
	raw, ok, err := p.store.Get(ctx, ThemePreferenceKey)
	if err != nil {
		p.logger.Warn("theme preference unreadable", zap.Error(err))
		return ""
	}
	if !ok {
		return ""
	}
	return string(raw)
}

// Resolve combines the saved preference with the client hint.
func (p *ThemePreference) Resolve(ctx context.Context, prefersDark bool) Theme {
	return ResolveTheme(p.Load(ctx), prefersDark)
}

// Save stores t.
func (p *ThemePreference) Save(ctx context.Context, t Theme) error {
	if _, ok := ParseTheme(string(t)); !ok {
		return fmt.Errorf("site: unknown theme %q", t)
	}
	if err := p.store.Put(ctx, ThemePreferenceKey, []byte(t)); err != nil {
		return fmt.Errorf("site: save theme: %w", err)
	}
	return nil
}

// Toggle flips the current theme and saves the result.
func (p *ThemePreference) Toggle(ctx context.Context, prefersDark bool) (Theme, error) {
	next := ToggleTheme(p.Resolve(ctx, prefersDark))
	if err := p.Save(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}

// Manifest describes the site palette. Base tokens are the light scheme and
// the dark variant overrides them.
func Manifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    SiteThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"primary-dark":   "#1e3a8a",
			"primary-medium": "#3b82f6",
			"primary-light":  "#60a5fa",
			"bg-primary":     "#ffffff",
			"bg-secondary":   "#f8fafc",
			"text-primary":   "#0f172a",
			"text-secondary": "#475569",
			"border-color":   "#e2e8f0",
			"success":        "#10b981",
			"error":          "#ef4444",
		},
		Templates: map[string]string{
			"layout": "layout.html",
		},
		Assets: theme.Assets{
			Prefix: "/static",
			Files: map[string]string{
				"stylesheet": "css/site.css",
				"script":     "js/site.js",
			},
		},
		Variants: map[string]theme.Variant{
			string(ThemeDark): {
				Tokens: map[string]string{
					"bg-primary":     "#0f172a",
					"bg-secondary":   "#1e293b",
					"text-primary":   "#f1f5f9",
					"text-secondary": "#94a3b8",
					"border-color":   "#334155",
				},
			},
		},
	}
}

// Selector resolves theme selections from registered manifests. It
// implements theme.ThemeSelector.
type Selector struct {
	registry       interface{ Register(*theme.Manifest) error }
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*Selector)(nil)

// NewSelector registers manifests with a go-theme registry and returns a
// selector that falls back to defaultTheme and defaultVariant.
func NewSelector(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) (*Selector, error) {
	s := &Selector{
		registry:       theme.NewRegistry(),
		manifests:      make(map[string]*theme.Manifest, len(manifests)),
		defaultTheme:   defaultTheme,
		defaultVariant: defaultVariant,
	}
	for _, manifest := range manifests {
		if manifest == nil {
			continue
		}
		if err := s.registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("site: register theme %q: %w", manifest.Name, err)
		}
		s.manifests[manifest.Name] = manifest
	}
	if _, ok := s.manifests[defaultTheme]; !ok {
		return nil, fmt.Errorf("site: default theme %q is not registered", defaultTheme)
	}
	return s, nil
}

// Select returns the manifest for name with variant applied on top. Empty
// arguments fall back to the defaults. The base variant is the light scheme
// and needs no variant entry.
func (s *Selector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if name == "" {
		name = s.defaultTheme
	}
	if variant == "" {
		variant = s.defaultVariant
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("site: theme %q not found", name)
	}
	if variant != "" && variant != string(ThemeLight) {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("site: theme %q has no variant %q", name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// RendererConfig flattens a selection into tokens, CSS variables and an
// asset resolver for the page layout.
func RendererConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return &theme.RendererConfig{}
	}
	manifest := selection.Manifest

	tokens := make(map[string]string, len(manifest.Tokens))
	for key, value := range manifest.Tokens {
		tokens[key] = value
	}
	partials := make(map[string]string, len(manifest.Templates))
	for key, value := range manifest.Templates {
		partials[key] = value
	}
	assets := make(map[string]string, len(manifest.Assets.Files))
	for key, value := range manifest.Assets.Files {
		assets[key] = value
	}
	if variant, ok := manifest.Variants[selection.Variant]; ok {
		for key, value := range variant.Tokens {
			tokens[key] = value
		}
		for key, value := range variant.Templates {
			partials[key] = value
		}
		for key, value := range variant.Assets.Files {
			assets[key] = value
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}

	prefix := strings.TrimRight(manifest.Assets.Prefix, "/")
	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := assets[key]
			if !ok || file == "" {
				return ""
			}
			return prefix + "/" + strings.TrimLeft(file, "/")
		},
	}
}

// CSSVarsStyle renders CSS variables as a sorted inline style body.
func CSSVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s: %s;", key, vars[key])
	}
	return b.String()
}
