package fields

import (
	"fmt"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-fieldset/pkg/model"
	"github.com/goliatone/go-fieldset/pkg/validators"
)

// Data is the submitted-form capability fields read from: every value for a
// key, or the first one.
type Data interface {
	GetAll(key string) []string
	GetOne(key string) (string, bool)
}

// Parent is the FieldSet view a bound field needs.
type Parent interface {
	Schema() *model.Schema
	Model() model.Instance
	Session() model.Session
	Data() Data
	Name(column string) string
	Prettify(text string) string
	Registry() *Registry
	FieldErrors(key string) []string
	SelectSize() int
	Readonly() bool
	// ManualValue and SetManualValue hold synced values of manual fields.
	ManualValue(key string) (any, bool)
	SetManualValue(key string, value any)
}

type kind int

const (
	kindDefault kind = iota
	kindDropdown
	kindRadio
	kindCheckboxSet
	kindHidden
	kindPassword
	kindTextarea
)

// Field is one renderable, validatable attribute.
type Field struct {
	key    string
	column string
	attr   model.Attribute
	schema string
	manual bool
	value  any

	label      string
	help       string
	kind       kind
	renderer   Renderer
	options    []Option
	hasOptions bool
	multiple   bool
	size       string
	attrs      map[string]string
	validators []validators.Validator
	required   bool
	readonly   bool
	disabled   bool
	metadata   map[string]string

	parent Parent
}

// FromAttribute wraps a schema attribute. To-one relations are keyed by the
// relation name but read, render, and sync through their foreign key column.
func FromAttribute(schema *model.Schema, attr model.Attribute) *Field {
	f := &Field{
		key:    attr.Name,
		column: attr.Name,
		attr:   attr,
		schema: schema.Name,
	}
	if rel := attr.Relation; rel != nil && rel.Cardinality == model.ToOne && rel.Column != "" {
		f.column = rel.Column
	}
	return f
}

// New builds a manual field that is not backed by a model attribute. value is
// the initial value; FieldSet.Sync stores later values on the FieldSet.
func New(name string, typ model.FieldType, value any) *Field {
	if typ == "" {
		typ = model.FieldTypeString
	}
	return &Field{
		key:    name,
		column: name,
		attr:   model.Attribute{Name: name, Type: typ, Nullable: true},
		manual: true,
		value:  value,
	}
}

func (f *Field) clone() *Field {
	c := *f
	c.options = append([]Option(nil), f.options...)
	c.validators = append([]validators.Validator(nil), f.validators...)
	c.attrs = cloneStringMap(f.attrs)
	c.metadata = cloneStringMap(f.metadata)
	return &c
}

// Bind returns a copy attached to parent. Manual fields adopt the parent's
// model type so equality keeps working across snapshots.
func (f *Field) Bind(parent Parent) *Field {
	c := f.clone()
	c.parent = parent
	if c.schema == "" && parent != nil {
		c.schema = parent.Schema().Name
	}
	return c
}

// Key is the attribute (or relation) name identifying the field.
func (f *Field) Key() string { return f.key }

// Column is the attribute the field reads and writes.
func (f *Field) Column() string { return f.column }

// Attribute returns the wrapped descriptor.
func (f *Field) Attribute() model.Attribute { return f.attr }

// ModelType names the schema the field belongs to.
func (f *Field) ModelType() string { return f.schema }

// Parent returns the bound FieldSet, or nil.
func (f *Field) Parent() Parent { return f.parent }

// IsManual reports whether the field was added with New.
func (f *Field) IsManual() bool { return f.manual }

// IsRelation reports whether the field renders an association.
func (f *Field) IsRelation() bool { return f.attr.IsRelation() }

// IsCollection reports whether the field holds several values.
func (f *Field) IsCollection() bool { return f.attr.IsCollection() || f.multiple }

// IsHidden reports whether the field renders as a hidden input.
func (f *Field) IsHidden() bool {
	if f.renderer != nil {
		_, ok := f.renderer.(HiddenRenderer)
		return ok
	}
	return f.kind == kindHidden
}

// IsReadonly reports whether the field is displayed without an input.
func (f *Field) IsReadonly() bool { return f.readonly }

// IsDisabled reports whether the input carries disabled="disabled".
func (f *Field) IsDisabled() bool { return f.disabled }

// IsRequired reports whether the field must be filled: non-nullable
// attributes and fields marked with Required.
func (f *Field) IsRequired() bool {
	return f.required || !f.attr.Nullable
}

// implicitRequired excludes generated keys and booleans, whose "empty"
// submission is meaningful.
func (f *Field) implicitRequired() bool {
	if f.required {
		return true
	}
	if f.attr.Nullable || f.attr.PrimaryKey || f.attr.Type == model.FieldTypeBoolean {
		return false
	}
	return !f.attr.IsCollection()
}

// Equal compares structural identity: same key and same model type. Fields
// bound to different instances of one model compare equal.
func (f *Field) Equal(other *Field) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.key == other.key && f.schema == other.schema
}

// Name is the namespaced input name.
func (f *Field) Name() string {
	if f.parent == nil {
		return f.column
	}
	return f.parent.Name(f.column)
}

// Label is the overlay label or the prettified key.
func (f *Field) Label() string {
	if f.label != "" {
		return f.label
	}
	if f.parent != nil {
		return f.parent.Prettify(f.key)
	}
	return model.Prettify(f.key)
}

// HelpText returns the sanitised help markup.
func (f *Field) HelpText() string { return f.help }

// Errors returns the messages recorded for the field by the last validation.
func (f *Field) Errors() []string {
	if f.parent == nil {
		return nil
	}
	return f.parent.FieldErrors(f.key)
}

// Validators returns the attached validator chain.
func (f *Field) Validators() []validators.Validator {
	return append([]validators.Validator(nil), f.validators...)
}

// Meta returns a metadata value attached with With.
func (f *Field) Meta(key string) string { return f.metadata[key] }

// Metadata returns a copy of every metadata entry.
func (f *Field) Metadata() map[string]string { return cloneStringMap(f.metadata) }

// Options returns the explicit options attached by Dropdown/Radio/Checkbox.
func (f *Field) Options() []Option { return append([]Option(nil), f.options...) }

// HasOptions reports whether explicit options were attached.
func (f *Field) HasOptions() bool { return f.hasOptions }

// Multiple reports whether a dropdown accepts several values.
func (f *Field) Multiple() bool { return f.multiple || f.attr.IsCollection() }

// Size is the textarea size overlay ("COLSxROWS").
func (f *Field) Size() string { return f.size }

func (f *Field) String() string {
	return fmt.Sprintf("Field(%s)", f.key)
}

// WithLabel returns a copy with a custom label.
func (f *Field) WithLabel(text string) *Field {
	c := f.clone()
	c.label = text
	return c
}

// Dropdown returns a copy rendered as a select. Without options the
// previously attached ones (or the relation candidates) are kept.
func (f *Field) Dropdown(options []Option, multiple bool) *Field {
	c := f.clone()
	c.kind = kindDropdown
	c.renderer = nil
	if options != nil {
		c.options = append([]Option(nil), options...)
		c.hasOptions = true
	}
	c.multiple = multiple
	return c
}

// Radio returns a copy rendered as a radio group.
func (f *Field) Radio(options []Option) *Field {
	c := f.clone()
	c.kind = kindRadio
	c.renderer = nil
	if options != nil {
		c.options = append([]Option(nil), options...)
		c.hasOptions = true
	}
	return c
}

// Checkbox returns a copy rendered as a group of checkboxes.
func (f *Field) Checkbox(options []Option) *Field {
	c := f.clone()
	c.kind = kindCheckboxSet
	c.renderer = nil
	c.multiple = true
	if options != nil {
		c.options = append([]Option(nil), options...)
		c.hasOptions = true
	}
	return c
}

// Hidden returns a copy rendered as a hidden input.
func (f *Field) Hidden() *Field {
	c := f.clone()
	c.kind = kindHidden
	c.renderer = nil
	return c
}

// Password returns a copy rendered as a password input.
func (f *Field) Password() *Field {
	c := f.clone()
	c.kind = kindPassword
	c.renderer = nil
	return c
}

// Textarea returns a copy rendered as a textarea. size is "" or "COLSxROWS".
func (f *Field) Textarea(size string) *Field {
	c := f.clone()
	c.kind = kindTextarea
	c.renderer = nil
	c.size = size
	return c
}

// Readonly returns a copy displayed as text and excluded from validation and
// sync.
func (f *Field) Readonly() *Field {
	c := f.clone()
	c.readonly = true
	return c
}

// Disabled returns a copy whose input is disabled.
func (f *Field) Disabled() *Field {
	c := f.clone()
	c.disabled = true
	return c
}

// Required returns a copy that rejects empty submissions.
func (f *Field) Required() *Field {
	c := f.clone()
	c.required = true
	return c
}

// Validate returns a copy with extra validators appended to the chain.
func (f *Field) Validate(vs ...validators.Validator) *Field {
	c := f.clone()
	for _, v := range vs {
		if v != nil {
			c.validators = append(c.validators, v)
		}
	}
	return c
}

// WithRenderer returns a copy that always renders with r.
func (f *Field) WithRenderer(r Renderer) *Field {
	c := f.clone()
	c.renderer = r
	return c
}

// WithAttrs returns a copy carrying extra HTML attributes.
func (f *Field) WithAttrs(attrs map[string]string) *Field {
	c := f.clone()
	if c.attrs == nil {
		c.attrs = make(map[string]string, len(attrs))
	}
	for key, value := range attrs {
		c.attrs[key] = value
	}
	return c
}

var (
	helpPolicyOnce sync.Once
	helpPolicy     *bluemonday.Policy
)

func helpSanitizer() *bluemonday.Policy {
	helpPolicyOnce.Do(func() {
		helpPolicy = bluemonday.UGCPolicy()
	})
	return helpPolicy
}

// Help returns a copy with help markup shown next to the input. The markup is
// sanitised with a user-generated-content policy.
func (f *Field) Help(markup string) *Field {
	c := f.clone()
	c.help = strings.TrimSpace(helpSanitizer().Sanitize(markup))
	return c
}

// With returns a copy carrying a metadata entry. Metadata survives Bind.
func (f *Field) With(key, value string) *Field {
	c := f.clone()
	if c.metadata == nil {
		c.metadata = make(map[string]string)
	}
	c.metadata[key] = value
	return c
}

// Reset returns a copy with rendering overlays removed so the default
// renderer applies again. Labels, validators and metadata are kept.
func (f *Field) Reset() *Field {
	c := f.clone()
	c.kind = kindDefault
	c.renderer = nil
	c.options = nil
	c.hasOptions = false
	c.multiple = false
	c.size = ""
	c.attrs = nil
	c.readonly = false
	c.disabled = false
	return c
}

func cloneStringMap(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}
