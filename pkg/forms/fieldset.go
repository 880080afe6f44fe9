package forms

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-fieldset/pkg/config"
	"github.com/goliatone/go-fieldset/pkg/fields"
	"github.com/goliatone/go-fieldset/pkg/model"
)

// FieldSet renders, validates and syncs one model instance.
type FieldSet struct {
	cfg    config.Config
	prefix string

	schema   *model.Schema
	class    model.Class
	instance model.Instance
	session  model.Session
	data     fields.Data

	// defaults is the unbound base sequence plus manual fields; all is the
	// same sequence bound to this FieldSet; render is the configured set.
	defaults []*fields.Field
	manual   []*fields.Field
	all      []*fields.Field
	render   []*fields.Field
	settings settings

	fieldErrors map[string][]string
	formErrors  []string
	validated   bool
	valid       bool

	boundKey     any
	manualValues map[string]any
}

var _ fields.Parent = (*FieldSet)(nil)

// New builds a FieldSet for m. A Class is instantiated without arguments;
// the initial configuration hides primary keys and focuses the first field.
func New(m model.Model, opts ...Option) (*FieldSet, error) {
	options := newOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	cfg := config.Default()
	if options.config != nil {
		cfg = *options.config
	}
	cfg, err := cfg.Resolve()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	if m == nil {
		return nil, fmt.Errorf("%w: model is required", ErrConfiguration)
	}
	schema := m.Schema()
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	fs := &FieldSet{
		cfg:      cfg,
		prefix:   strings.TrimSpace(options.prefix),
		schema:   schema,
		defaults: defaultFields(schema, cfg.Order),
		settings: defaultSettings(),
	}
	if err := fs.rebind(binding{
		model:      m,
		hasModel:   true,
		session:    options.session,
		hasSession: options.session != nil,
		data:       options.data,
		hasData:    options.data != nil,
	}); err != nil {
		return nil, err
	}
	if err := fs.apply(fs.settings); err != nil {
		return nil, err
	}
	return fs, nil
}

// MustNew panics when New fails. Useful for package-level FieldSets.
func MustNew(m model.Model, opts ...Option) *FieldSet {
	fs, err := New(m, opts...)
	if err != nil {
		panic(err)
	}
	return fs
}

// Configure recomputes the render set from the default sequence. Every call
// starts from scratch: options of earlier calls do not carry over.
func (fs *FieldSet) Configure(opts ...ConfigureOption) error {
	s := defaultSettings()
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return fs.apply(s)
}

func (fs *FieldSet) apply(s settings) error {
	sequence, err := fs.resolve(s)
	if err != nil {
		return err
	}
	fs.settings = s
	fs.render = fs.bindAll(sequence)
	return nil
}

// Add appends a manual field that is not backed by a model attribute. The
// field joins the default sequence and the current render set.
func (fs *FieldSet) Add(f *fields.Field) error {
	if f == nil {
		return fmt.Errorf("%w: field is required", ErrConfiguration)
	}
	if !f.IsManual() {
		return fmt.Errorf("%w: %s is a model field; configure it with Overlays", ErrConfiguration, f.Key())
	}
	if indexOf(fs.defaults, f) >= 0 || indexOf(fs.manual, f) >= 0 {
		return fmt.Errorf("%w: field %q already exists", ErrConfiguration, f.Key())
	}
	fs.manual = append(fs.manual, f)
	bound := f.Bind(fs)
	fs.all = append(fs.all, bound)
	fs.render = append(fs.render, bound)
	return nil
}

// Bind returns a new FieldSet sharing this one's configuration, bound to a
// model, session and/or data. Without BindModel the previous class is reused
// when the previous instance is pending (no primary key), the previous
// instance otherwise.
func (fs *FieldSet) Bind(opts ...BindOption) (*FieldSet, error) {
	b := collectBinding(opts)
	if !b.hasModel && !b.hasSession && !b.hasData {
		return nil, fmt.Errorf("%w: bind needs at least one of model, session, data", ErrConfiguration)
	}
	if !b.hasModel {
		if fs.instance == nil {
			return nil, fmt.Errorf("%w: model must be specified when none is already set", ErrConfiguration)
		}
		if model.PrimaryKey(fs.instance) == nil {
			b.model = fs.class
		} else {
			b.model = fs.instance
		}
		b.hasModel = true
	}

	c := &FieldSet{
		cfg:      fs.cfg,
		prefix:   fs.prefix,
		schema:   fs.schema,
		class:    fs.class,
		instance: fs.instance,
		session:  fs.session,
		defaults: fs.defaults,
		manual:   append([]*fields.Field(nil), fs.manual...),
		settings: fs.settings,
	}
	for key, value := range fs.manualValues {
		c.SetManualValue(key, value)
	}
	if err := c.rebind(b); err != nil {
		return nil, err
	}
	c.render = c.bindAll(fs.render)
	return c, nil
}

// Rebind binds in place. Data not passed is cleared.
func (fs *FieldSet) Rebind(opts ...BindOption) error {
	return fs.rebind(collectBinding(opts))
}

func collectBinding(opts []BindOption) binding {
	var b binding
	for _, opt := range opts {
		if opt != nil {
			opt(&b)
		}
	}
	return b
}

func (fs *FieldSet) rebind(b binding) error {
	if b.hasModel {
		if err := fs.bindModel(b.model); err != nil {
			return err
		}
	}
	if fs.instance == nil {
		return fmt.Errorf("%w: model must be specified when none is already set", ErrConfiguration)
	}

	switch {
	case b.hasSession:
		fs.session = b.session
	case b.hasModel:
		if carrier, ok := fs.instance.(model.SessionCarrier); ok && carrier.Session() != nil {
			fs.session = carrier.Session()
		}
	}

	data, err := CoerceData(b.data)
	if err != nil {
		return err
	}
	fs.data = data

	fs.fieldErrors = nil
	fs.formErrors = nil
	fs.validated = false
	fs.valid = false
	fs.boundKey = model.PrimaryKey(fs.instance)
	fs.all = fs.bindAll(append(append([]*fields.Field(nil), fs.defaults...), fs.manual...))

	fs.cfg.Logger.Debug("fieldset bound",
		zap.String("model", fs.schema.Name),
		zap.String("pk", model.FormatKey(fs.boundKey)),
		zap.Bool("data", fs.data != nil),
		zap.Bool("session", fs.session != nil),
	)
	return nil
}

func (fs *FieldSet) bindModel(m model.Model) error {
	if m == nil {
		return fmt.Errorf("%w: model is required", ErrConfiguration)
	}
	if name := model.TypeName(m); name != fs.schema.Name {
		return fmt.Errorf("%w: cannot bind %s to a %s FieldSet", ErrConfiguration, name, fs.schema.Name)
	}
	switch v := m.(type) {
	case model.Instance:
		fs.instance = v
		fs.class = v.Class()
	case model.Class:
		inst, err := v.New()
		if err != nil {
			return fmt.Errorf("forms: %s appears to be a class that cannot be instantiated without arguments: %w", fs.schema.Name, err)
		}
		fs.class = v
		fs.instance = inst
	default:
		return fmt.Errorf("%w: %T is neither a class nor an instance", ErrConfiguration, m)
	}
	return nil
}

func (fs *FieldSet) bindAll(list []*fields.Field) []*fields.Field {
	out := make([]*fields.Field, len(list))
	for i, f := range list {
		out[i] = f.Bind(fs)
	}
	return out
}

// checkPrimaryKey enforces that the instance keeps the key it was bound with
// while data is bound.
func (fs *FieldSet) checkPrimaryKey() error {
	if fs.data == nil {
		return nil
	}
	current := model.PrimaryKey(fs.instance)
	if !model.SameKey(fs.boundKey, current) {
		return fmt.Errorf("%w: %s was bound as %q and is now %q; bind again",
			ErrPrimaryKeyChanged, fs.schema.Name, model.FormatKey(fs.boundKey), model.FormatKey(current))
	}
	return nil
}

// Field returns the bound field with key, or nil. Every default field is
// available, including ones the configuration does not render, without the
// configured overlays.
func (fs *FieldSet) Field(key string) *fields.Field {
	for _, f := range fs.all {
		if f.Key() == key {
			return f
		}
	}
	return nil
}

// ManualValue returns the synced value of a manual field.
func (fs *FieldSet) ManualValue(key string) (any, bool) {
	value, ok := fs.manualValues[key]
	return value, ok
}

// SetManualValue records the synced value of a manual field.
func (fs *FieldSet) SetManualValue(key string, value any) {
	if fs.manualValues == nil {
		fs.manualValues = make(map[string]any)
	}
	fs.manualValues[key] = value
}

// Fields returns the bound default sequence including manual fields.
func (fs *FieldSet) Fields() []*fields.Field {
	return append([]*fields.Field(nil), fs.all...)
}

// RenderFields returns the configured render set.
func (fs *FieldSet) RenderFields() []*fields.Field {
	return append([]*fields.Field(nil), fs.render...)
}

// Config returns the resolved configuration.
func (fs *FieldSet) Config() config.Config { return fs.cfg }

// Schema implements fields.Parent.
func (fs *FieldSet) Schema() *model.Schema { return fs.schema }

// Model returns the bound instance.
func (fs *FieldSet) Model() model.Instance { return fs.instance }

// Class returns the model class.
func (fs *FieldSet) Class() model.Class { return fs.class }

// Session returns the bound session, or nil.
func (fs *FieldSet) Session() model.Session { return fs.session }

// Data returns the bound data, or nil.
func (fs *FieldSet) Data() fields.Data { return fs.data }

// Prefix returns the input name prefix.
func (fs *FieldSet) Prefix() string { return fs.prefix }

// Name namespaces an attribute: [prefix-]Model-<pk>-column. Pending
// instances render an empty key ("Order--quantity").
func (fs *FieldSet) Name(column string) string {
	name := fs.schema.Name + "-" + model.FormatKey(model.PrimaryKey(fs.instance)) + "-" + column
	if fs.prefix != "" {
		return fs.prefix + "-" + name
	}
	return name
}

// Prettify turns an attribute name into a label with the configured function.
func (fs *FieldSet) Prettify(text string) string { return fs.cfg.Prettify(text) }

// Registry returns the field renderer registry.
func (fs *FieldSet) Registry() *fields.Registry { return fs.cfg.Renderers }

// SelectSize returns the size of multiple selects.
func (fs *FieldSet) SelectSize() int { return fs.cfg.SelectSize }

// Readonly reports whether the FieldSet renders as a read-only table.
func (fs *FieldSet) Readonly() bool { return fs.settings.readonly }

// FieldErrors returns the messages recorded for key.
func (fs *FieldSet) FieldErrors(key string) []string {
	return append([]string(nil), fs.fieldErrors[key]...)
}

// AddFieldError records a message for a field. Global validators use it to
// attach cross-field problems to a specific input.
func (fs *FieldSet) AddFieldError(key, message string) error {
	if key == NoField {
		fs.formErrors = append(fs.formErrors, message)
		return nil
	}
	if fs.Field(key) == nil && indexOfKey(fs.render, key) < 0 {
		return fmt.Errorf("forms: %s has no field %q", fs.schema.Name, key)
	}
	if fs.fieldErrors == nil {
		fs.fieldErrors = make(map[string][]string)
	}
	fs.fieldErrors[key] = append(fs.fieldErrors[key], message)
	return nil
}

// Errors returns the messages of the last validation. It is empty before
// Validate runs.
func (fs *FieldSet) Errors() Errors {
	out := make(Errors)
	if len(fs.formErrors) > 0 {
		out[NoField] = append([]string(nil), fs.formErrors...)
	}
	for key, messages := range fs.fieldErrors {
		if len(messages) > 0 {
			out[key] = append([]string(nil), messages...)
		}
	}
	return out
}

// Validated reports whether Validate ran since the last bind, and its result.
func (fs *FieldSet) Validated() (ran, valid bool) {
	return fs.validated, fs.valid
}
