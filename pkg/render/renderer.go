package render

import (
	"context"
)

// Renderer turns a prepared FieldSet view into bytes (editable HTML, a
// read-only table, ...). Field inputs are already rendered; renderers only
// lay them out.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view View, options RenderOptions) ([]byte, error)
}

// View is the template-facing snapshot of a FieldSet.
type View struct {
	Model    string        `json:"model"`
	Readonly bool          `json:"readonly"`
	Errors   []string      `json:"errors,omitempty"`
	Fields   []FieldView   `json:"fields"`
	Hidden   []HiddenField `json:"hidden,omitempty"`
	Classes  ChromeClasses `json:"classes"`
}

// FieldView is one field of a View.
type FieldView struct {
	Key        string            `json:"key"`
	ID         string            `json:"id"`
	Label      string            `json:"label"`
	LabelClass string            `json:"label_class"`
	HTML       string            `json:"html"`
	Help       string            `json:"help,omitempty"`
	Errors     []string          `json:"errors,omitempty"`
	Required   bool              `json:"required"`
	Hidden     bool              `json:"hidden"`
	Focus      bool              `json:"focus"`
	Meta       map[string]string `json:"meta,omitempty"`
}

// Visible returns the fields that are not hidden inputs.
func (v View) Visible() []FieldView {
	out := make([]FieldView, 0, len(v.Fields))
	for _, field := range v.Fields {
		if !field.Hidden {
			out = append(out, field)
		}
	}
	return out
}
