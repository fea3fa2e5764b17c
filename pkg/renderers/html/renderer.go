package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-careerpath/pkg/render"
	rendertemplate "github.com/goliatone/go-careerpath/pkg/render/template"
	gotemplate "github.com/goliatone/go-careerpath/pkg/render/template/gotemplate"
)

const (
	layoutTemplate = "templates/layout.tpl"

	// DefaultContact is the footer line on the landing page.
	DefaultContact = "Contact Us: Email - contact@careerprediction.com | Phone - +1 234 567 890"

	// DefaultAbout is the landing page copy.
	DefaultAbout = `<p>Making informed career decisions is crucial for professional success. This tool helps predict potential career paths based on your academic background, skills, and preferences. Our AI-powered system analyzes various factors to suggest the most suitable career options for you.</p>
<p>Whether you're a student planning your future or a professional considering a career change, our prediction tool can provide valuable insights to guide your decision-making process.</p>`
)

var pageTemplates = map[render.Kind]string{
	render.KindHome:   "templates/home.tpl",
	render.KindForm:   "templates/form.tpl",
	render.KindResult: "templates/result.tpl",
}

// Paths are the links the pages point at.
type Paths struct {
	Home    string `json:"home"`
	Profile string `json:"profile"`
	Form    string `json:"form"`
	Restart string `json:"restart"`
	Result  string `json:"result"`
}

// DefaultPaths matches the routes mounted by the server package.
func DefaultPaths() Paths {
	return Paths{
		Home:    "/",
		Profile: "#",
		Form:    "/form",
		Restart: "/form/restart",
		Result:  "/result",
	}
}

// Option customises the renderer configuration.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	selector         theme.ThemeSelector
	themeName        string
	themeVariant     string
	about            string
	contact          string
	paths            Paths
	assetPrefix      string
	policy           *bluemonday.Policy
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithTheme selects a theme and variant through selector. A nil selector
// keeps the built-in manifest.
func WithTheme(selector theme.ThemeSelector, name, variant string) Option {
	return func(cfg *config) {
		if selector != nil {
			cfg.selector = selector
		}
		cfg.themeName = strings.TrimSpace(name)
		cfg.themeVariant = strings.TrimSpace(variant)
	}
}

// WithAboutHTML replaces the landing page copy. The markup is sanitised.
func WithAboutHTML(markup string) Option {
	return func(cfg *config) {
		if strings.TrimSpace(markup) != "" {
			cfg.about = markup
		}
	}
}

// WithContact replaces the landing page footer line.
func WithContact(line string) Option {
	return func(cfg *config) {
		cfg.contact = strings.TrimSpace(line)
	}
}

// WithPaths overrides the links emitted by the templates.
func WithPaths(paths Paths) Option {
	return func(cfg *config) {
		cfg.paths = paths
	}
}

// WithAssetURLPrefix sets the prefix used for assets the theme does not map.
func WithAssetURLPrefix(prefix string) Option {
	return func(cfg *config) {
		cfg.assetPrefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	}
}

// WithSanitizer replaces the policy applied to operator supplied markup.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// Renderer produces full HTML documents for the home, form and result pages.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	theme     rendererTheme
	assets    map[string]string
	about     string
	contact   string
	paths     Paths
}

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS:  TemplatesFS(),
		about:       DefaultAbout,
		contact:     DefaultContact,
		paths:       DefaultPaths(),
		assetPrefix: "/assets",
		policy:      bluemonday.UGCPolicy(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	selector := cfg.selector
	if selector == nil {
		builtin, err := NewManifestSelector(DefaultManifest())
		if err != nil {
			return nil, err
		}
		selector = builtin
	}
	selection, err := selector.Select(cfg.themeName, cfg.themeVariant)
	if err != nil {
		return nil, fmt.Errorf("html renderer: select theme: %w", err)
	}
	themeCfg := rendererConfig(selection)

	stylesheet := cfg.assetPrefix + "/" + StylesheetName
	if themeCfg != nil && themeCfg.AssetURL != nil {
		if url := themeCfg.AssetURL(themeAssetStylesheet); url != "" {
			stylesheet = url
		}
	}

	return &Renderer{
		templates: renderer,
		theme:     buildThemeContext(themeCfg),
		assets:    map[string]string{"stylesheet": stylesheet},
		about:     cfg.policy.Sanitize(cfg.about),
		contact:   cfg.contact,
		paths:     cfg.paths,
	}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render renders the page body for the view kind and wraps it in the layout.
func (r *Renderer) Render(_ context.Context, view render.View) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	fallback, ok := pageTemplates[view.Kind]
	if !ok {
		return nil, fmt.Errorf("html renderer: unsupported view kind %q", view.Kind)
	}

	data := map[string]any{
		"view":    view,
		"form":    view.Form,
		"result":  view.Result,
		"theme":   r.theme,
		"assets":  r.assets,
		"paths":   r.paths,
		"about":   r.about,
		"contact": r.contact,
	}

	body, err := r.templates.RenderTemplate(r.theme.pageTemplate(string(view.Kind), fallback), data)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render %s page: %w", view.Kind, err)
	}
	data["content"] = body

	page, err := r.templates.RenderTemplate(layoutTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render layout: %w", err)
	}
	return []byte(page), nil
}
