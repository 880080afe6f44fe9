package vanilla

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

//go:embed assets/*
var embeddedAssets embed.FS

const (
	StylesheetName = "fieldset.css"

	// Template roles, used as keys of RenderOptions.Templates.
	TemplateEditable = "fieldset"
	TemplateReadonly = "fieldset_readonly"
)

// TemplatesFS exposes the embedded template bundle for consumers that want to
// copy or extend the built-in layouts.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

// AssetsFS exposes the embedded stylesheet so callers can serve it over HTTP
// or copy it into their own asset pipeline.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}

// Stylesheet returns the default stylesheet for the class tokens.
func Stylesheet() string {
	data, err := fs.ReadFile(embeddedAssets, "assets/"+StylesheetName)
	if err != nil {
		return ""
	}
	return string(data)
}
