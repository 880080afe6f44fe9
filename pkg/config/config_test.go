package config_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-fieldset/pkg/config"
	"github.com/goliatone/go-fieldset/pkg/render"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	if cfg.Order != config.OrderAlphabetical {
		t.Fatalf("expected alphabetical order, got %q", cfg.Order)
	}
	if cfg.SelectSize != 5 {
		t.Fatalf("expected select size 5, got %d", cfg.SelectSize)
	}
	if diff := cmp.Diff(render.DefaultChromeClasses(), cfg.Classes); diff != "" {
		t.Fatalf("default classes mismatch (-want +got):\n%s", diff)
	}
	if got := cfg.Prettify("my_column_name"); got != "My column name" {
		t.Fatalf("unexpected prettify %q", got)
	}
	if !cfg.Views.Has(cfg.View) {
		t.Fatalf("default view %q not registered", cfg.View)
	}
	if cfg.Logger == nil || cfg.Metrics == nil {
		t.Fatal("expected logger and metrics defaults")
	}
}

func TestFromMap(t *testing.T) {
	cfg, err := config.FromMap(map[string]string{
		"fieldset.encoding":          "latin-1",
		"fieldset.order":             "declared",
		"fieldset.select_size":       "8",
		"fieldset.class.required":    "req",
		"fieldset.template.fieldset": "custom/fieldset.tmpl",
		"other.setting":              "ignored",
	}, "")
	if err != nil {
		t.Fatalf("from map: %v", err)
	}
	if cfg.Encoding != "latin-1" || cfg.Order != config.OrderDeclared || cfg.SelectSize != 8 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Classes.Required != "req" || cfg.Classes.Optional != render.DefaultOptionalClass {
		t.Fatalf("unexpected classes %+v", cfg.Classes)
	}
	if cfg.Templates["fieldset"] != "custom/fieldset.tmpl" {
		t.Fatalf("unexpected templates %v", cfg.Templates)
	}
}

func TestFromMap_CustomPrefixAndErrors(t *testing.T) {
	cfg, err := config.FromMap(map[string]string{"forms.order": "declared"}, "forms.")
	if err != nil {
		t.Fatalf("from map: %v", err)
	}
	if cfg.Order != config.OrderDeclared {
		t.Fatalf("expected declared order, got %q", cfg.Order)
	}

	cases := map[string]map[string]string{
		"unknown key":   {"fieldset.colour": "blue"},
		"bad order":     {"fieldset.order": "random"},
		"bad size":      {"fieldset.select_size": "zero"},
		"unknown class": {"fieldset.class.fancy": "x"},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := config.FromMap(values, ""); err == nil {
				t.Fatalf("expected error for %v", values)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	cfg, err := config.Load(strings.NewReader(`
order: declared
select_size: 3
classes:
  field_error: is-invalid
theme:
  name: acme
  variant: dark
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Order != config.OrderDeclared || cfg.SelectSize != 3 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Classes.FieldError != "is-invalid" {
		t.Fatalf("unexpected classes %+v", cfg.Classes)
	}
	if cfg.Theme != "acme" || cfg.ThemeVariant != "dark" {
		t.Fatalf("unexpected theme %q/%q", cfg.Theme, cfg.ThemeVariant)
	}

	empty, err := config.Load(strings.NewReader(""))
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if empty.Order != config.OrderAlphabetical {
		t.Fatalf("expected defaults for empty document, got %q", empty.Order)
	}
}

func TestResolve_FillsDefaults(t *testing.T) {
	cfg, err := config.Config{Classes: render.ChromeClasses{Required: "must"}}.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Classes.Required != "must" || cfg.Classes.Optional != render.DefaultOptionalClass {
		t.Fatalf("unexpected classes %+v", cfg.Classes)
	}
	if cfg.Order != config.OrderAlphabetical || cfg.Renderers == nil || cfg.Logger == nil {
		t.Fatalf("defaults not applied: %+v", cfg)
	}

	if _, err := (config.Config{View: "missing"}).Resolve(); err == nil {
		t.Fatal("expected error for unregistered view")
	}
}

type stubSelector struct {
	selection *theme.Selection
	err       error
	calls     []string
}

func (s *stubSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls = append(s.calls, name+"/"+variant)
	return s.selection, s.err
}

func acmeManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens: map[string]string{
			"fieldset.class.required": "acme-req",
			"fieldset.class.doc":      "acme-doc",
		},
		Templates: map[string]string{
			"fieldset.fieldset": "themes/acme/fieldset.tmpl",
			"other.form":         "ignored.tmpl",
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{"fieldset.class.required": "acme-req-dark"},
				Templates: map[string]string{
					"fieldset.fieldset_readonly": "themes/acme/dark/readonly.tmpl",
				},
			},
		},
	}
}

func TestResolve_AppliesThemeVariant(t *testing.T) {
	selector := &stubSelector{selection: &theme.Selection{Theme: "acme", Variant: "dark", Manifest: acmeManifest()}}
	cfg := config.Default()
	cfg.Theme, cfg.ThemeVariant, cfg.ThemeSelector = "acme", "dark", selector
	cfg.Templates = map[string]string{"fieldset": "explicit.tmpl"}

	resolved, err := cfg.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if diff := cmp.Diff([]string{"acme/dark"}, selector.calls); diff != "" {
		t.Fatalf("selector calls mismatch (-want +got):\n%s", diff)
	}
	if resolved.Classes.Required != "acme-req-dark" || resolved.Classes.Doc != "acme-doc" {
		t.Fatalf("unexpected classes %+v", resolved.Classes)
	}
	want := map[string]string{
		"fieldset":          "explicit.tmpl",
		"fieldset_readonly": "themes/acme/dark/readonly.tmpl",
	}
	if diff := cmp.Diff(want, resolved.Templates); diff != "" {
		t.Fatalf("templates mismatch (-want +got):\n%s", diff)
	}

	opts := resolved.RenderOptions()
	if opts.Classes == nil || opts.Classes.Required != "acme-req-dark" {
		t.Fatalf("render options missing classes: %+v", opts.Classes)
	}
}

func TestResolve_ThemeError(t *testing.T) {
	selector := &stubSelector{err: errors.New("boom")}
	cfg := config.Default()
	cfg.Theme, cfg.ThemeSelector = "acme", selector
	if _, err := cfg.Resolve(); err == nil {
		t.Fatal("expected selector error")
	}
}

func TestManifestSelector(t *testing.T) {
	manifest, err := config.LoadManifest(strings.NewReader(`
name: acme
version: "2"
tokens:
  fieldset.class.required: acme-req
variants:
  compact:
    tokens:
      fieldset.class.doc: hint
`))
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	selector, err := config.NewManifestSelector(manifest)
	if err != nil {
		t.Fatalf("selector: %v", err)
	}

	selection, err := selector.Select("acme", "compact")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	tokens, _ := config.Flatten(selection)
	want := map[string]string{"fieldset.class.required": "acme-req", "fieldset.class.doc": "hint"}
	if diff := cmp.Diff(want, tokens); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}

	if _, err := selector.Select("missing", ""); !errors.Is(err, config.ErrThemeNotFound) {
		t.Fatalf("expected ErrThemeNotFound, got %v", err)
	}
	if diff := cmp.Diff([]string{"acme"}, selector.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}
