package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-fieldset/pkg/render"
	rendertemplate "github.com/goliatone/go-fieldset/pkg/render/template"
	gotemplate "github.com/goliatone/go-fieldset/pkg/render/template/gotemplate"
)

// Name is the registry name of the HTML renderer.
const Name = "vanilla"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	engineOptions    []gotemplate.Option
	templates        map[string]string
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

// WithEngineOptions configures the default template engine. Hooks or
// go-template options select the github.com/goliatone/go-template engine.
// Ignored when WithTemplateRenderer is set.
func WithEngineOptions(options ...gotemplate.Option) Option {
	return func(cfg *config) {
		cfg.engineOptions = append(cfg.engineOptions, options...)
	}
}

// WithTemplate replaces the template used for a role (TemplateEditable or
// TemplateReadonly). Per-render RenderOptions.Templates still win.
func WithTemplate(role, name string) Option {
	return func(cfg *config) {
		role, name = strings.TrimSpace(role), strings.TrimSpace(name)
		if role == "" || name == "" {
			return
		}
		cfg.templates[role] = name
	}
}

// Renderer lays out a prepared FieldSet view as HTML: labelled blocks for
// editable views and a table body for read-only ones.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	names     map[string]string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
		templates: map[string]string{
			TemplateEditable: "templates/fieldset.tmpl",
			TemplateReadonly: "templates/fieldset_readonly.tmpl",
		},
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
		engineOptions := append([]gotemplate.Option{
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		}, cfg.engineOptions...)
		engine, err := gotemplate.NewRenderer(engineOptions...)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer, names: cfg.templates}, nil
}

// MustNew panics when New fails. Useful for init-time registry wiring.
func MustNew(options ...Option) *Renderer {
	r, err := New(options...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render localises the view, applies class overrides and hidden inputs from
// options, then executes the template for the view mode.
func (r *Renderer) Render(_ context.Context, view render.View, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	render.LocalizeView(&view, options)
	base := view.Classes
	view.Classes = base.Merge(options.Classes)
	for i := range view.Fields {
		relabel(&view.Fields[i], base, view.Classes)
	}
	if len(options.Hidden) > 0 {
		view.Hidden = render.SortedHiddenFields(append(append([]render.HiddenField(nil), view.Hidden...), options.Hidden...))
	}

	role := TemplateEditable
	if view.Readonly {
		role = TemplateReadonly
	}
	name := r.names[role]
	if override := strings.TrimSpace(options.Templates[role]); override != "" {
		name = override
	}

	result, err := r.templates.RenderTemplate(name, map[string]any{
		"view": view,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(strings.TrimSpace(result)), nil
}

// relabel moves label classes that use the view tokens onto the overridden
// ones. Custom label classes are kept.
func relabel(field *render.FieldView, before, after render.ChromeClasses) {
	switch field.LabelClass {
	case before.Required:
		field.LabelClass = after.Required
	case before.Optional:
		field.LabelClass = after.Optional
	}
}

// Register adds a vanilla renderer to registry.
func Register(registry *render.Registry, options ...Option) error {
	r, err := New(options...)
	if err != nil {
		return err
	}
	return registry.Register(r)
}
