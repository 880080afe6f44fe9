package template_test

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-fieldset/pkg/render/template/gotemplate"
	"github.com/goliatone/go-fieldset/pkg/testsupport"
)

var templateFiles = fstest.MapFS{
	"hello.tmpl":      {Data: []byte("Hello {{ name }}!")},
	"use-global.tmpl": {Data: []byte("env={{ settings.env }}")},
	"use-filter.tmpl": {Data: []byte("{{ name|shout }}")},
	"view.tmpl":       {Data: []byte(`{% for field in view.fields %}[{{ field.key }}:{{ field.html|safe }}]{% endfor %}`)},
}

func TestEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, w)
	})
	if result != "Hello Ada!" {
		t.Fatalf("unexpected result %q", result)
	}
	if written != result {
		t.Fatalf("writer mismatch\nwant: %q\n got: %q", result, written)
	}
}

func TestEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, err := engine.RenderTemplate("use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "env=staging" {
		t.Fatalf("unexpected result %q", result)
	}
}

func TestEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	shout := func(input any, _ any) (any, error) {
		if input == nil {
			return "", nil
		}
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	}
	if err := engine.RegisterFilter("shout", shout); err != nil {
		t.Fatalf("register filter: %v", err)
	}
	if err := engine.RegisterFilter("shout", shout); err == nil {
		t.Fatal("expected a duplicate filter to be rejected")
	}

	result, err := engine.RenderTemplate("use-filter", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "ADA!" {
		t.Fatalf("unexpected result %q", result)
	}
}

type fieldContext struct {
	Key  string `json:"key"`
	HTML string `json:"html"`
}

type viewContext struct {
	Fields []fieldContext `json:"fields"`
}

func TestEngine_StructsUseJSONTags(t *testing.T) {
	engine := newEngine(t)
	data := map[string]any{"view": viewContext{Fields: []fieldContext{
		{Key: "foo", HTML: `<input name="foo" />`},
		{Key: "bar", HTML: `<b>x</b>`},
	}}}

	result, err := engine.RenderTemplate("view", data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `[foo:<input name="foo" />][bar:<b>x</b>]`
	if result != want {
		t.Fatalf("render mismatch\nwant: %q\n got: %q", want, result)
	}
}

func TestEngine_RenderInlineContent(t *testing.T) {
	engine := newEngine(t)

	result, err := engine.Render(`<p class="{{ classes|classlist }}">{{ label|trim }}</p>`, map[string]any{
		"classes": "field  field_req field",
		"label":   "  Email ",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != `<p class="field field_req">Email</p>` {
		t.Fatalf("unexpected result %q", result)
	}
}

func TestEngine_Errors(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatal("expected an error without a template source")
	}
	engine := newEngine(t)
	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatal("expected an error for a missing template")
	}
	if _, err := engine.RenderTemplate("hello", 42); err == nil {
		t.Fatal("expected an error for non-object data")
	}
}

func TestNewRenderer_SelectsEngine(t *testing.T) {
	plain, err := gotemplate.NewRenderer(gotemplate.WithFS(templateFiles))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if _, ok := plain.(*gotemplate.Engine); !ok {
		t.Fatalf("expected the pongo2 engine without hooks, got %T", plain)
	}

	hooked, err := gotemplate.NewRenderer(
		gotemplate.WithFS(templateFiles),
		gotemplate.WithPostHook(func(ctx *gotemplatepkg.HookContext) (string, error) {
			return strings.ToUpper(ctx.Output), nil
		}),
	)
	if err != nil {
		t.Fatalf("new hooked renderer: %v", err)
	}
	if _, ok := hooked.(*gotemplatepkg.Engine); !ok {
		t.Fatalf("expected the go-template engine with hooks, got %T", hooked)
	}
	result, err := hooked.RenderTemplate("hello", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "HELLO ADA!" {
		t.Fatalf("expected the post hook output, got %q", result)
	}
}

func TestNewGoTemplate_Options(t *testing.T) {
	engine, err := gotemplate.NewGoTemplate(
		gotemplate.WithFS(templateFiles),
		gotemplate.WithGoTemplateOptions(gotemplatepkg.WithGlobalData(map[string]any{
			"settings": map[string]any{"env": "prod"},
		})),
		gotemplate.WithPreHook(func(ctx *gotemplatepkg.HookContext) error {
			if ctx.TemplateName == "alias" {
				ctx.TemplateName = "use-global"
			}
			return nil
		}),
	)
	if err != nil {
		t.Fatalf("new go-template engine: %v", err)
	}
	result, err := engine.RenderTemplate("alias", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "env=prod" {
		t.Fatalf("unexpected result %q", result)
	}

	if _, err := gotemplate.NewGoTemplate(); err == nil {
		t.Fatal("expected an error without a template source")
	}
}

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()

	engine, err := gotemplate.New(gotemplate.WithFS(templateFiles))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
