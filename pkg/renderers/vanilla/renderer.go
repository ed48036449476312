package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/render"
	rendertemplate "github.com/goliatone/go-formbuilder/pkg/render/template"
	"github.com/goliatone/go-formbuilder/pkg/render/template/pongo"
	"github.com/goliatone/go-formbuilder/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

const (
	formTemplate  = "templates/form.tpl"
	formPartial   = "forms.form"
	defaultSubmit = "Submit"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	submitLabel      string
	inlineStyles     bool
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

// WithComponentRegistry replaces the component registry.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithSubmitLabel changes the submit button text.
func WithSubmitLabel(label string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			cfg.submitLabel = trimmed
		}
	}
}

// WithInlineStyles toggles embedding the default stylesheet when the theme
// provides no stylesheet URL. Enabled by default.
func WithInlineStyles(enabled bool) Option {
	return func(cfg *config) {
		cfg.inlineStyles = enabled
	}
}

// Renderer produces an HTML preview of the visible fields of a schema.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	registry     *components.Registry
	submitLabel  string
	inlineStyles bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS:   TemplatesFS(),
		submitLabel:  defaultSubmit,
		inlineStyles: true,
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
	if cfg.registry == nil {
		cfg.registry = components.NewDefaultRegistry()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := pongo.New(pongo.WithFS(cfg.templateFS))
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:    renderer,
		registry:     cfg.registry,
		submitLabel:  cfg.submitLabel,
		inlineStyles: cfg.inlineStyles,
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render emits a form element with one control per visible field, in schema
// order.
func (r *Renderer) Render(ctx context.Context, fields []schema.Field, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	themeCtx := buildThemeContext(options.Theme)
	fr := &fieldRenderer{
		templates: r.templates,
		registry:  r.registry,
		partials:  themeCtx.Partials,
		options:   options,
		used:      make(map[string]struct{}),
	}

	visible := options.VisibleFields(fields)
	markup := make([]string, 0, len(visible))
	for _, field := range visible {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := fr.render(field)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: %w", err)
		}
		markup = append(markup, out)
	}

	stylesheets := r.registry.Stylesheets(usedNames(fr.used))
	inline := ""
	if href := themeCtx.asset(themeAssetStylesheet); href != "" {
		stylesheets = append([]string{href}, stylesheets...)
	} else if r.inlineStyles {
		inline = defaultStylesheet()
	}

	hidden := make([]map[string]any, 0, len(options.Hidden))
	for _, field := range render.SortedHiddenFields(options.Hidden) {
		hidden = append(hidden, map[string]any{"name": field.Name, "value": field.Value})
	}

	method := strings.ToUpper(strings.TrimSpace(options.Method))
	if method == "" {
		method = "POST"
	}

	template := formTemplate
	if candidate := strings.TrimSpace(themeCtx.Partials[formPartial]); candidate != "" {
		template = candidate
	}

	result, err := r.templates.Render(template, map[string]any{
		"title":         options.Title,
		"action":        options.Action,
		"method":        method,
		"fields":        markup,
		"hidden_fields": hidden,
		"form_errors":   render.MergeFormErrors(options.FormErrors),
		"stylesheets":   stylesheets,
		"inline_styles": inline,
		"theme":         themeCtx.view(),
		"submit_label":  r.submitLabel,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func usedNames(used map[string]struct{}) []string {
	names := make([]string, 0, len(used))
	for name := range used {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
