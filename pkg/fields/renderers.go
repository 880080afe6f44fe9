package fields

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-fieldset/pkg/model"
)

// Renderer turns a bound field into HTML. extra holds the attributes merged
// from the field overlay and the render call.
type Renderer interface {
	Render(f *Field, extra Attrs) (string, error)
}

// Deserializer is implemented by renderers whose inputs do not map to a
// single submitted key.
type Deserializer interface {
	Deserialize(f *Field, data Data) (any, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(f *Field, extra Attrs) (string, error)

func (fn RendererFunc) Render(f *Field, extra Attrs) (string, error) { return fn(f, extra) }

// DefaultSelectSize is the size of multiple selects when the parent does not
// configure one.
const DefaultSelectSize = 5

// Render renders the field's input.
func (f *Field) Render() (string, error) {
	return f.RenderWith(nil)
}

// RenderWith renders with extra attributes. readonly="true" renders the
// escaped display text instead of an input and disabled="true" disables it.
func (f *Field) RenderWith(attrs map[string]string) (string, error) {
	extra := Attrs(f.attrs).Merge(attrs)
	readonly := f.readonly || truthy(extra["readonly"])
	delete(extra, "readonly")
	if readonly || (f.renderer == nil && f.parent != nil && f.parent.Readonly()) {
		return ReadOnlyRenderer{}.Render(f, extra)
	}
	if disabled, ok := extra["disabled"]; ok && !truthy(disabled) {
		delete(extra, "disabled")
	}
	if f.disabled || truthy(extra["disabled"]) {
		extra["disabled"] = "disabled"
	}
	return f.currentRenderer().Render(f, extra)
}

// Renderer returns the strategy the field renders with.
func (f *Field) Renderer() Renderer {
	return f.currentRenderer()
}

func (f *Field) currentRenderer() Renderer {
	if f.renderer != nil {
		return f.renderer
	}
	switch f.kind {
	case kindHidden:
		return HiddenRenderer{}
	case kindPassword:
		return PasswordRenderer{}
	case kindTextarea:
		return TextareaRenderer{}
	case kindRadio:
		return RadioRenderer{}
	case kindCheckboxSet:
		return CheckboxSetRenderer{}
	case kindDropdown:
		if f.attr.Type == model.FieldTypeBoolean {
			return BooleanSelectRenderer{}
		}
		return SelectRenderer{}
	}
	if f.attr.IsRelation() {
		return SelectRenderer{}
	}
	registry := defaultRegistry
	if f.parent != nil && f.parent.Registry() != nil {
		registry = f.parent.Registry()
	}
	if r, ok := registry.Resolve(f); ok {
		return r
	}
	return TextRenderer{}
}

func truthy(value string) bool {
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on", "disabled", "readonly":
		return true
	default:
		return false
	}
}

func inputAttrs(f *Field, typ string) Attrs {
	return Attrs{"id": f.Name(), "name": f.Name(), "type": typ}
}

func valueInput(f *Field, typ string, extra Attrs) string {
	attrs := inputAttrs(f, typ)
	if value := f.RawValue(); value != "" {
		attrs["value"] = value
	}
	if f.attr.MaxLength > 0 {
		attrs["maxlength"] = strconv.Itoa(f.attr.MaxLength)
	}
	return VoidTag("input", attrs.Merge(extra))
}

// TextRenderer renders <input type="text">.
type TextRenderer struct{}

func (TextRenderer) Render(f *Field, extra Attrs) (string, error) {
	return valueInput(f, "text", extra), nil
}

// IntegerRenderer renders integers as text inputs.
type IntegerRenderer struct{}

func (IntegerRenderer) Render(f *Field, extra Attrs) (string, error) {
	return valueInput(f, "text", extra), nil
}

// PasswordRenderer renders <input type="password">.
type PasswordRenderer struct{}

func (PasswordRenderer) Render(f *Field, extra Attrs) (string, error) {
	return valueInput(f, "password", extra), nil
}

// HiddenRenderer renders <input type="hidden">.
type HiddenRenderer struct{}

func (HiddenRenderer) Render(f *Field, extra Attrs) (string, error) {
	attrs := inputAttrs(f, "hidden")
	if value := f.RawValue(); value != "" {
		attrs["value"] = value
	}
	return VoidTag("input", attrs.Merge(extra)), nil
}

// DateRenderer renders date, datetime and time inputs.
type DateRenderer struct {
	InputType string
}

func (r DateRenderer) Render(f *Field, extra Attrs) (string, error) {
	typ := r.InputType
	if typ == "" {
		typ = "date"
	}
	attrs := inputAttrs(f, typ)
	if value := f.RawValue(); value != "" {
		attrs["value"] = value
	}
	return VoidTag("input", attrs.Merge(extra)), nil
}

// FileRenderer renders <input type="file">. Files never echo a value.
type FileRenderer struct{}

func (FileRenderer) Render(f *Field, extra Attrs) (string, error) {
	return VoidTag("input", inputAttrs(f, "file").Merge(extra)), nil
}

// CheckBoxRenderer renders a single boolean checkbox submitting "True".
type CheckBoxRenderer struct{}

func (CheckBoxRenderer) Render(f *Field, extra Attrs) (string, error) {
	attrs := inputAttrs(f, "checkbox")
	attrs["value"] = "True"
	if f.checked() {
		attrs["checked"] = "checked"
	}
	return VoidTag("input", attrs.Merge(extra)), nil
}

// checked reports the box state: unchecked boxes are absent from
// submissions, so bound data decides alone.
func (f *Field) checked() bool {
	if data := f.data(); data != nil {
		raw, _ := data.GetOne(f.Name())
		return parseBool(raw)
	}
	value, _ := f.ModelValue().(bool)
	return value
}

// TextareaRenderer renders a textarea; the field size overlay ("COLSxROWS")
// becomes cols and rows.
type TextareaRenderer struct{}

func (TextareaRenderer) Render(f *Field, extra Attrs) (string, error) {
	attrs := Attrs{"id": f.Name(), "name": f.Name()}
	if cols, rows, ok := ParseSize(f.size); ok {
		attrs["cols"] = strconv.Itoa(cols)
		attrs["rows"] = strconv.Itoa(rows)
	}
	return Tag("textarea", attrs.Merge(extra), Escape(f.RawValue())), nil
}

// ParseSize splits a "COLSxROWS" size.
func ParseSize(size string) (cols, rows int, ok bool) {
	left, right, found := strings.Cut(strings.ToLower(strings.TrimSpace(size)), "x")
	if !found {
		return 0, 0, false
	}
	cols, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil {
		return 0, 0, false
	}
	rows, err = strconv.Atoi(strings.TrimSpace(right))
	if err != nil {
		return 0, 0, false
	}
	return cols, rows, true
}

func selectedSet(f *Field) map[string]struct{} {
	raw := f.RawValues()
	set := make(map[string]struct{}, len(raw))
	for _, value := range raw {
		set[value] = struct{}{}
	}
	return set
}

// SelectRenderer renders a select; multiple fields add multiple="multiple"
// and the configured size.
type SelectRenderer struct{}

func (SelectRenderer) Render(f *Field, extra Attrs) (string, error) {
	options, err := f.resolveOptions()
	if err != nil {
		return "", fmt.Errorf("fields: options for %s: %w", f.key, err)
	}
	return renderSelect(f, options, extra), nil
}

func renderSelect(f *Field, options []Option, extra Attrs) string {
	attrs := Attrs{"id": f.Name(), "name": f.Name()}
	if f.Multiple() {
		size := DefaultSelectSize
		if f.parent != nil && f.parent.SelectSize() > 0 {
			size = f.parent.SelectSize()
		}
		attrs["multiple"] = "multiple"
		attrs["size"] = strconv.Itoa(size)
	}
	selected := selectedSet(f)
	typ := f.valueType()
	items := make([]string, 0, len(options))
	for _, option := range options {
		value := FormatValue(typ, option.Value)
		_, isSelected := selected[value]
		items = append(items, optionTag(value, option.Label, isSelected))
	}
	return Tag("select", attrs.Merge(extra), strings.Join(items, "\n"))
}

// BooleanSelectRenderer renders a boolean as a Yes/No select.
type BooleanSelectRenderer struct{}

func (BooleanSelectRenderer) Render(f *Field, extra Attrs) (string, error) {
	options := BooleanOptions()
	if f.hasOptions {
		options = f.Options()
	}
	return renderSelect(f, options, extra), nil
}

// RadioRenderer renders one radio input per option, each followed by its
// label.
type RadioRenderer struct{}

func (RadioRenderer) Render(f *Field, extra Attrs) (string, error) {
	return renderGroup(f, "radio", true, extra)
}

// CheckboxSetRenderer renders one checkbox per option sharing the field id.
type CheckboxSetRenderer struct{}

func (CheckboxSetRenderer) Render(f *Field, extra Attrs) (string, error) {
	return renderGroup(f, "checkbox", false, extra)
}

func renderGroup(f *Field, typ string, suffixID bool, extra Attrs) (string, error) {
	options, err := f.resolveOptions()
	if err != nil {
		return "", fmt.Errorf("fields: options for %s: %w", f.key, err)
	}
	selected := selectedSet(f)
	valueType := f.valueType()
	items := make([]string, 0, len(options))
	for _, option := range options {
		value := FormatValue(valueType, option.Value)
		attrs := inputAttrs(f, typ)
		attrs["value"] = value
		if suffixID {
			attrs["id"] = f.Name() + "_" + value
		}
		if _, ok := selected[value]; ok {
			attrs["checked"] = "checked"
		}
		items = append(items, VoidTag("input", attrs.Merge(extra))+Escape(option.Label))
	}
	return strings.Join(items, "<br />"), nil
}

// ReadOnlyRenderer renders the escaped display text.
type ReadOnlyRenderer struct{}

func (ReadOnlyRenderer) Render(f *Field, _ Attrs) (string, error) {
	text, err := f.DisplayValue()
	if err != nil {
		return "", err
	}
	return Escape(text), nil
}

// CompositeRenderer renders one text input per part, named NAME-PART. Split
// maps the model value to part strings and Join builds the value back from
// the submitted parts.
type CompositeRenderer struct {
	Parts []string
	Split func(value any) []string
	Join  func(parts []string) (any, error)
}

func (r CompositeRenderer) Render(f *Field, extra Attrs) (string, error) {
	var current []string
	if r.Split != nil {
		if value := f.ModelValue(); value != nil {
			current = r.Split(value)
		}
	}
	data := f.data()
	var b strings.Builder
	for i, part := range r.Parts {
		name := f.Name() + "-" + part
		value := ""
		if i < len(current) {
			value = current[i]
		}
		if data != nil {
			if raw, ok := data.GetOne(name); ok {
				value = raw
			}
		}
		attrs := Attrs{"id": name, "name": name, "type": "text", "value": value}
		b.WriteString(VoidTag("input", attrs.Merge(extra)))
	}
	return b.String(), nil
}

func (r CompositeRenderer) Deserialize(f *Field, data Data) (any, error) {
	parts := make([]string, len(r.Parts))
	empty := true
	for i, part := range r.Parts {
		raw, _ := data.GetOne(f.Name() + "-" + part)
		parts[i] = raw
		if raw != "" {
			empty = false
		}
	}
	if empty {
		return nil, nil
	}
	if r.Join == nil {
		return parts, nil
	}
	return r.Join(parts)
}
