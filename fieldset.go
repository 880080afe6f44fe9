// Package fieldset re-exports the main entry points of the module so simple
// callers need a single import: build a FieldSet over a model, bind submitted
// data, validate, sync and render.
//
//	fs, err := fieldset.ForStruct(&user, fieldset.WithData(r.PostForm))
//	if ok, _ := fs.Validate(); ok {
//		err = fs.Sync()
//	}
package fieldset

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-fieldset/pkg/config"
	"github.com/goliatone/go-fieldset/pkg/forms"
	"github.com/goliatone/go-fieldset/pkg/model"
	"github.com/goliatone/go-fieldset/pkg/openapi"
	"github.com/goliatone/go-fieldset/pkg/render"
	"github.com/goliatone/go-fieldset/pkg/renderers/vanilla"
)

// FieldSet aliases forms.FieldSet.
type FieldSet = forms.FieldSet

// Option aliases forms.Option for New.
type Option = forms.Option

// Errors maps field keys to validation messages.
type Errors = forms.Errors

// MultiDict is the multi-valued submitted data adapter.
type MultiDict = forms.MultiDict

// Config aliases config.Config.
type Config = config.Config

// RenderOptions describes per-request overrides renderers honour, such as
// extra hidden inputs and class tokens.
type RenderOptions = render.RenderOptions

// New builds a FieldSet for a model instance or class.
func New(m model.Model, options ...Option) (*FieldSet, error) {
	return forms.New(m, options...)
}

// ForStruct wraps a pointer to a tagged struct and builds its FieldSet.
func ForStruct(ptr any, options ...Option) (*FieldSet, error) {
	inst, err := model.Wrap(ptr)
	if err != nil {
		return nil, err
	}
	return forms.New(inst, options...)
}

// ForSchema builds a FieldSet over a new map-backed record of schema.
func ForSchema(schema *model.Schema, options ...Option) (*FieldSet, error) {
	class, err := model.NewRecordClass(schema)
	if err != nil {
		return nil, err
	}
	return forms.New(class, options...)
}

// WithData binds submitted data; see forms.CoerceData for accepted shapes.
func WithData(data any) Option { return forms.WithData(data) }

// WithSession sets the session used to resolve relation options.
func WithSession(session model.Session) Option { return forms.WithSession(session) }

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option { return forms.WithConfig(cfg) }

// WithPrefix namespaces input names.
func WithPrefix(prefix string) Option { return forms.WithPrefix(prefix) }

// DefaultConfig returns the documented configuration defaults.
func DefaultConfig() Config { return config.Default() }

// SchemasFromOpenAPI loads an OpenAPI 3 document from a file path or URL and
// converts its object component schemas.
func SchemasFromOpenAPI(ctx context.Context, location string, options ...openapi.ParseOption) ([]*model.Schema, error) {
	src, err := openapi.SourceFor(location)
	if err != nil {
		return nil, err
	}
	loader := openapi.NewLoader(openapi.WithHTTPFallback(0))
	return loader.Schemas(ctx, src, options...)
}

// EmbeddedTemplates exposes the built-in fieldset templates so callers can
// reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// AssetsFS exposes the default stylesheet for the class tokens.
//
// Typical mount:
//
//	mux.Handle("/fieldset/",
//	  http.StripPrefix("/fieldset/",
//	    http.FileServerFS(fieldset.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
