package config

import (
	"fmt"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-fieldset/pkg/fields"
	"github.com/goliatone/go-fieldset/pkg/metrics"
	"github.com/goliatone/go-fieldset/pkg/model"
	"github.com/goliatone/go-fieldset/pkg/render"
	"github.com/goliatone/go-fieldset/pkg/renderers/vanilla"
)

// Order selects how default fields are sequenced.
type Order string

const (
	// OrderAlphabetical sorts scalars, then relations, by name.
	OrderAlphabetical Order = "alphabetical"
	// OrderDeclared keeps the schema declaration order.
	OrderDeclared Order = "declared"
)

// Valid reports whether o is a known ordering.
func (o Order) Valid() bool {
	return o == OrderAlphabetical || o == OrderDeclared
}

const (
	DefaultEncoding = "utf-8"
	DefaultView     = vanilla.Name
)

// Config is passed to every FieldSet. The zero value is not usable; start
// from Default.
type Config struct {
	// Encoding is advertised in rendered content types.
	Encoding string
	// Order sequences the default fields.
	Order Order
	// SelectSize is the size of multiple selects.
	SelectSize int
	// Classes are the CSS class tokens of the fieldset templates.
	Classes render.ChromeClasses
	// Templates overrides template names by role ("fieldset",
	// "fieldset_readonly").
	Templates map[string]string
	// Prettify turns attribute names into labels.
	Prettify func(string) string

	// Renderers picks default field renderers by semantic type.
	Renderers *fields.Registry
	// Views holds layout renderers; View names the one used.
	Views *render.Registry
	View  string

	// Theme and ThemeVariant are resolved through ThemeSelector.
	Theme         string
	ThemeVariant  string
	ThemeSelector theme.ThemeSelector

	Logger  *zap.Logger
	Metrics metrics.Recorder
}

var (
	defaultViewsOnce sync.Once
	defaultViews     *render.Registry
)

// DefaultViews returns the shared registry holding the vanilla HTML renderer.
func DefaultViews() *render.Registry {
	defaultViewsOnce.Do(func() {
		defaultViews = render.NewRegistry()
		defaultViews.MustRegister(vanilla.MustNew())
	})
	return defaultViews
}

// Default returns the documented defaults:
//
//	Encoding:   "utf-8"
//	Order:      OrderAlphabetical
//	SelectSize: fields.DefaultSelectSize (5)
//	Classes:    render.DefaultChromeClasses()
//	Prettify:   model.Prettify
//	Renderers:  fields.DefaultRegistry()
//	Views/View: DefaultViews() / "vanilla"
//	Logger:     zap.NewNop()
//	Metrics:    metrics.Nop{}
func Default() Config {
	return Config{
		Encoding:   DefaultEncoding,
		Order:      OrderAlphabetical,
		SelectSize: fields.DefaultSelectSize,
		Classes:    render.DefaultChromeClasses(),
		Prettify:   model.Prettify,
		Renderers:  fields.DefaultRegistry(),
		Views:      DefaultViews(),
		View:       DefaultView,
		Logger:     zap.NewNop(),
		Metrics:    metrics.Nop{},
	}
}

// Resolve fills unset values from Default, checks the result and applies the
// theme selection. Theme class tokens override Classes; explicit Templates
// override theme templates.
func (c Config) Resolve() (Config, error) {
	def := Default()
	if c.Encoding == "" {
		c.Encoding = def.Encoding
	}
	if c.Order == "" {
		c.Order = def.Order
	}
	if !c.Order.Valid() {
		return Config{}, fmt.Errorf("config: unknown order %q", c.Order)
	}
	if c.SelectSize <= 0 {
		c.SelectSize = def.SelectSize
	}
	c.Classes = def.Classes.Merge(&c.Classes)
	if c.Prettify == nil {
		c.Prettify = def.Prettify
	}
	if c.Renderers == nil {
		c.Renderers = def.Renderers
	}
	if c.Views == nil {
		c.Views = def.Views
	}
	if strings.TrimSpace(c.View) == "" {
		c.View = def.View
	}
	if c.Logger == nil {
		c.Logger = def.Logger
	}
	if c.Metrics == nil {
		c.Metrics = def.Metrics
	}
	if !c.Views.Has(c.View) {
		return Config{}, fmt.Errorf("config: view renderer %q not registered", c.View)
	}
	return c.applyTheme()
}

func (c Config) applyTheme() (Config, error) {
	if c.ThemeSelector == nil || strings.TrimSpace(c.Theme) == "" {
		return c, nil
	}
	selection, err := c.ThemeSelector.Select(c.Theme, c.ThemeVariant)
	if err != nil {
		return Config{}, fmt.Errorf("config: select theme %q: %w", c.Theme, err)
	}
	tokens, templates := Flatten(selection)
	c.Classes = c.Classes.Merge(render.FromTokens(tokens))

	merged := make(map[string]string, len(templates)+len(c.Templates))
	for role, name := range templates {
		if role, ok := strings.CutPrefix(role, templatePrefix); ok {
			merged[role] = name
		}
	}
	for role, name := range c.Templates {
		merged[role] = name
	}
	c.Templates = merged

	c.Logger.Debug("theme applied",
		zap.String("theme", c.Theme),
		zap.String("variant", c.ThemeVariant),
		zap.Int("tokens", len(tokens)),
		zap.Int("templates", len(merged)),
	)
	return c, nil
}

// templatePrefix namespaces fieldset templates inside theme manifests:
// "fieldset.fieldset" overrides the editable layout.
const templatePrefix = "fieldset."

// Flatten merges manifest tokens and templates with the selected variant's.
func Flatten(selection *theme.Selection) (tokens, templates map[string]string) {
	tokens = map[string]string{}
	templates = map[string]string{}
	if selection == nil || selection.Manifest == nil {
		return tokens, templates
	}
	manifest := selection.Manifest
	for key, value := range manifest.Tokens {
		tokens[key] = value
	}
	for key, value := range manifest.Templates {
		templates[key] = value
	}
	if variant, ok := manifest.Variants[selection.Variant]; ok {
		for key, value := range variant.Tokens {
			tokens[key] = value
		}
		for key, value := range variant.Templates {
			templates[key] = value
		}
	}
	return tokens, templates
}

// RenderOptions returns the view options carrying the configured class and
// template overrides.
func (c Config) RenderOptions() render.RenderOptions {
	classes := c.Classes
	var templates map[string]string
	if len(c.Templates) > 0 {
		templates = make(map[string]string, len(c.Templates))
		for role, name := range c.Templates {
			templates[role] = name
		}
	}
	return render.RenderOptions{Classes: &classes, Templates: templates}
}
