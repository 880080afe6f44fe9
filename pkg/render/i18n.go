package render

import (
	"errors"
	"strings"
)

const (
	fieldLabelKeyHint    = "labelKey"
	fieldHelpTextKeyHint = "helpTextKey"
)

// ErrMissingTranslator is passed to MissingTranslationHandler when a
// translation key is present but no Translator is configured.
var ErrMissingTranslator = errors.New("render: translator not configured")

// Translator resolves a message key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler decides what to render for a missing key.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

func missingTranslationDefault(_ string, key string, args []any, _ error) string {
	for _, arg := range args {
		if m, ok := arg.(map[string]any); ok {
			if fallback, ok := m["default"].(string); ok && strings.TrimSpace(fallback) != "" {
				return fallback
			}
		}
	}
	return key
}

// LocalizeView translates labels and help text of fields carrying
// "labelKey" / "helpTextKey" metadata, in place.
//
// This is best-effort: translation failures are routed through
// opts.OnMissing, which defaults to the untranslated text.
func LocalizeView(view *View, opts RenderOptions) {
	if view == nil {
		return
	}

	onMissing := opts.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}

	for i := range view.Fields {
		localizeField(&view.Fields[i], opts.Locale, opts.Translator, onMissing)
	}
}

func localizeField(field *FieldView, locale string, t Translator, onMissing MissingTranslationHandler) {
	if field == nil || len(field.Meta) == 0 {
		return
	}

	if key := strings.TrimSpace(field.Meta[fieldLabelKeyHint]); key != "" {
		field.Label = translate(locale, key, strings.TrimSpace(field.Label), t, onMissing)
	}
	if key := strings.TrimSpace(field.Meta[fieldHelpTextKeyHint]); key != "" {
		field.Help = translate(locale, key, strings.TrimSpace(field.Help), t, onMissing)
	}
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}

	if t == nil {
		return onMissing(locale, key, []any{map[string]any{"default": fallback}}, ErrMissingTranslator)
	}

	result, err := t.Translate(locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	return onMissing(locale, key, []any{map[string]any{"default": fallback}}, err)
}
