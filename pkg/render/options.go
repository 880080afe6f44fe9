package render

// RenderOptions describe per-request data that renderers can use to customise
// their output without reconfiguring the FieldSet.
type RenderOptions struct {
	// Locale and Translator localise labels and help text carrying
	// "labelKey"/"helpTextKey" metadata. OnMissing decides what a missing
	// translation renders as.
	Locale     string
	Translator Translator
	OnMissing  MissingTranslationHandler
	// Hidden inputs are emitted after the fields (CSRF tokens, versions).
	Hidden []HiddenField
	// Classes overrides individual CSS class tokens of the view.
	Classes *ChromeClasses
	// Templates overrides template names by role ("fieldset",
	// "fieldset_readonly"). Renderers ignore roles they do not know.
	Templates map[string]string
}
