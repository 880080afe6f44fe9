package render

import "strings"

// ChromeClasses are the CSS class tokens fieldset templates emit.
type ChromeClasses struct {
	Required   string `json:"required" yaml:"required"`
	Optional   string `json:"optional" yaml:"optional"`
	FieldError string `json:"field_error" yaml:"field_error"`
	FormError  string `json:"form_error" yaml:"form_error"`
	Readonly   string `json:"readonly" yaml:"readonly"`
	Doc        string `json:"doc" yaml:"doc"`
}

// Default class tokens, kept compatible with existing stylesheets.
const (
	DefaultRequiredClass   = "field_req"
	DefaultOptionalClass   = "field_opt"
	DefaultFieldErrorClass = "field_error"
	DefaultFormErrorClass  = "fieldset_error"
	DefaultReadonlyClass   = "field_readonly"
	DefaultDocClass        = "field_doc"
)

// DefaultChromeClasses returns the built-in tokens.
func DefaultChromeClasses() ChromeClasses {
	return ChromeClasses{
		Required:   DefaultRequiredClass,
		Optional:   DefaultOptionalClass,
		FieldError: DefaultFieldErrorClass,
		FormError:  DefaultFormErrorClass,
		Readonly:   DefaultReadonlyClass,
		Doc:        DefaultDocClass,
	}
}

// Merge returns c with every non-empty token of override applied.
func (c ChromeClasses) Merge(override *ChromeClasses) ChromeClasses {
	if override == nil {
		return c
	}
	pick := func(base, next string) string {
		if trimmed := strings.TrimSpace(next); trimmed != "" {
			return trimmed
		}
		return base
	}
	return ChromeClasses{
		Required:   pick(c.Required, override.Required),
		Optional:   pick(c.Optional, override.Optional),
		FieldError: pick(c.FieldError, override.FieldError),
		FormError:  pick(c.FormError, override.FormError),
		Readonly:   pick(c.Readonly, override.Readonly),
		Doc:        pick(c.Doc, override.Doc),
	}
}

// FromTokens reads class overrides from theme tokens such as
// "fieldset.class.required".
func FromTokens(tokens map[string]string) *ChromeClasses {
	if len(tokens) == 0 {
		return nil
	}
	return &ChromeClasses{
		Required:   tokens["fieldset.class.required"],
		Optional:   tokens["fieldset.class.optional"],
		FieldError: tokens["fieldset.class.field_error"],
		FormError:  tokens["fieldset.class.form_error"],
		Readonly:   tokens["fieldset.class.readonly"],
		Doc:        tokens["fieldset.class.doc"],
	}
}
