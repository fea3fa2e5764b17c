package html

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

const (
	// DefaultThemeName is the built-in theme.
	DefaultThemeName = "careerpath"

	themeAssetStylesheet = "stylesheet"
	themePartialPrefix   = "pages."
)

// ErrThemeNotFound is returned when no manifest matches the requested name.
var ErrThemeNotFound = errors.New("html renderer: theme not found")

// DefaultManifest describes the built-in theme: brand colours exposed as CSS
// variables and a dark variant.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand":          "#4a6cf7",
			"brand-contrast": "#ffffff",
			"surface":        "#ffffff",
			"background":     "#f4f6fb",
			"text":           "#1f2933",
			"muted":          "#616e7c",
			"error":          "#d64545",
		},
		Assets: theme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				themeAssetStylesheet: StylesheetName,
			},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"surface":    "#1f2933",
					"background": "#121a23",
					"text":       "#e4e7eb",
					"muted":      "#9aa5b1",
				},
			},
		},
	}
}

type manifestRegistry interface {
	Register(manifest *theme.Manifest) error
}

// ManifestSelector resolves themes from in-memory manifests. Manifests are
// validated through a go-theme registry when added.
type ManifestSelector struct {
	registry     manifestRegistry
	manifests    map[string]*theme.Manifest
	defaultTheme string
}

var _ theme.ThemeSelector = (*ManifestSelector)(nil)

// NewManifestSelector registers manifests. The first manifest becomes the
// default when Select is called with an empty name.
func NewManifestSelector(manifests ...*theme.Manifest) (*ManifestSelector, error) {
	selector := &ManifestSelector{
		registry:  theme.NewRegistry(),
		manifests: make(map[string]*theme.Manifest, len(manifests)),
	}
	for _, manifest := range manifests {
		if manifest == nil {
			continue
		}
		if err := selector.registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("html renderer: register theme %q: %w", manifest.Name, err)
		}
		selector.manifests[manifest.Name] = manifest
		if selector.defaultTheme == "" {
			selector.defaultTheme = manifest.Name
		}
	}
	if len(selector.manifests) == 0 {
		return nil, errors.New("html renderer: at least one theme manifest is required")
	}
	return selector, nil
}

// Select returns the manifest for name. Unknown variants fall back to the
// base manifest.
func (s *ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.defaultTheme
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}
	variant = strings.TrimSpace(variant)
	if _, ok := manifest.Variants[variant]; !ok {
		variant = ""
	}
	return &theme.Selection{Theme: manifest.Name, Variant: variant, Manifest: manifest}, nil
}

// rendererConfig flattens a selection into the renderer configuration: the
// variant overrides the base tokens, templates and assets, and every token
// is exposed as a CSS custom property.
func rendererConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest
	variant := manifest.Variants[selection.Variant]

	tokens := mergeStringMaps(manifest.Tokens, variant.Tokens)
	partials := mergeStringMaps(manifest.Templates, variant.Templates)
	files := mergeStringMaps(manifest.Assets.Files, variant.Assets.Files)
	prefix := manifest.Assets.Prefix
	if variant.Assets.Prefix != "" {
		prefix = variant.Assets.Prefix
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok || file == "" {
				return ""
			}
			if strings.HasPrefix(file, "/") || strings.Contains(file, "://") {
				return file
			}
			return path.Join("/", prefix, file)
		},
	}
}

type rendererTheme struct {
	Name         string            `json:"name,omitempty"`
	Variant      string            `json:"variant,omitempty"`
	Partials     map[string]string `json:"partials,omitempty"`
	Tokens       map[string]string `json:"tokens,omitempty"`
	CSSVars      map[string]string `json:"cssVars,omitempty"`
	CSSVarsStyle string            `json:"css_vars_style,omitempty"`
}

func buildThemeContext(cfg *theme.RendererConfig) rendererTheme {
	if cfg == nil {
		return rendererTheme{}
	}
	ctx := rendererTheme{
		Name:     cfg.Theme,
		Variant:  cfg.Variant,
		Partials: mergeStringMaps(cfg.Partials, nil),
		Tokens:   mergeStringMaps(cfg.Tokens, nil),
		CSSVars:  mergeStringMaps(cfg.CSSVars, nil),
	}
	ctx.CSSVarsStyle = cssVarsStyle(ctx.CSSVars)
	return ctx
}

// pageTemplate returns the template a theme assigns to a page kind, falling
// back to the built-in one.
func (t rendererTheme) pageTemplate(kind, fallback string) string {
	if name := strings.TrimSpace(t.Partials[themePartialPrefix+kind]); name != "" {
		return name
	}
	return fallback
}

func mergeStringMaps(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range override {
		out[key] = value
	}
	return out
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
