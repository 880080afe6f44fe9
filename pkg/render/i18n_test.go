package render_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-fieldset/pkg/render"
)

type stubTranslator map[string]string

func (t stubTranslator) Translate(_ string, key string, _ ...any) (string, error) {
	if msg, ok := t[key]; ok {
		return msg, nil
	}
	return "", errors.New("missing translation")
}

func TestLocalizeView_UsesKeysAndFallbacks(t *testing.T) {
	view := render.View{
		Fields: []render.FieldView{
			{
				Key:   "name",
				Label: "Name",
				Help:  "Used for display",
				Meta: map[string]string{
					"labelKey":    "fields.user.name",
					"helpTextKey": "fields.user.name.help",
				},
			},
			{Key: "email", Label: "Email"},
		},
	}

	render.LocalizeView(&view, render.RenderOptions{
		Locale:     "es",
		Translator: stubTranslator{"fields.user.name": "Nombre"},
	})

	if view.Fields[0].Label != "Nombre" {
		t.Fatalf("expected translated label, got %q", view.Fields[0].Label)
	}
	if view.Fields[0].Help != "Used for display" {
		t.Fatalf("expected help to fall back, got %q", view.Fields[0].Help)
	}
	if view.Fields[1].Label != "Email" {
		t.Fatalf("expected untouched label, got %q", view.Fields[1].Label)
	}
}

func TestLocalizeView_OnMissingWithoutTranslator(t *testing.T) {
	view := render.View{
		Fields: []render.FieldView{{Label: "Name", Meta: map[string]string{"labelKey": "fields.name"}}},
	}

	var gotErr error
	render.LocalizeView(&view, render.RenderOptions{
		OnMissing: func(_ string, key string, _ []any, err error) string {
			gotErr = err
			return "[" + key + "]"
		},
	})

	if view.Fields[0].Label != "[fields.name]" {
		t.Fatalf("unexpected label %q", view.Fields[0].Label)
	}
	if !errors.Is(gotErr, render.ErrMissingTranslator) {
		t.Fatalf("expected ErrMissingTranslator, got %v", gotErr)
	}
}
