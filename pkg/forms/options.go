package forms

import (
	"github.com/goliatone/go-fieldset/pkg/config"
	"github.com/goliatone/go-fieldset/pkg/fields"
	"github.com/goliatone/go-fieldset/pkg/model"
)

// Option configures New.
type Option func(*newOptions)

type newOptions struct {
	session model.Session
	data    any
	config  *config.Config
	prefix  string
}

// WithSession sets the session used for relation candidates and lookups.
func WithSession(session model.Session) Option {
	return func(o *newOptions) {
		o.session = session
	}
}

// WithData binds submitted data at construction.
func WithData(data any) Option {
	return func(o *newOptions) {
		o.data = data
	}
}

// WithConfig replaces config.Default. Unset values are filled by
// config.Config.Resolve.
func WithConfig(cfg config.Config) Option {
	return func(o *newOptions) {
		o.config = &cfg
	}
}

// WithPrefix namespaces input names ("prefix-Model-pk-field") so several
// FieldSets of one model can share a page.
func WithPrefix(prefix string) Option {
	return func(o *newOptions) {
		o.prefix = prefix
	}
}

// FormValidator checks the whole FieldSet after field validation. Returning
// a *validators.ValidationError adds form-level messages; any other error
// aborts Validate.
type FormValidator func(fs *FieldSet) error

// ConfigureOption is one Configure parameter.
type ConfigureOption func(*settings)

type focusMode int

const (
	focusFirst focusMode = iota
	focusNone
	focusField
)

// settings is the state Configure rebuilds from scratch on every call.
type settings struct {
	pk        bool
	include   []*fields.Field
	exclude   []*fields.Field
	overlays  []*fields.Field
	validator FormValidator
	focus     focusMode
	focusKey  string
	readonly  bool
}

func defaultSettings() settings {
	return settings{focus: focusFirst}
}

// PK includes primary key fields in the default sequence.
func PK(include bool) ConfigureOption {
	return func(s *settings) {
		s.pk = include
	}
}

// Exclude drops fields from the default sequence.
func Exclude(fs ...*fields.Field) ConfigureOption {
	return func(s *settings) {
		s.exclude = append(s.exclude, fs...)
	}
}

// Include replaces the default sequence: only these fields, in this order.
func Include(fs ...*fields.Field) ConfigureOption {
	return func(s *settings) {
		s.include = append(s.include, fs...)
	}
}

// Overlays replaces matching fields in place, keeping the sequence order.
func Overlays(fs ...*fields.Field) ConfigureOption {
	return func(s *settings) {
		s.overlays = append(s.overlays, fs...)
	}
}

// GlobalValidator runs after field validation.
func GlobalValidator(fn FormValidator) ConfigureOption {
	return func(s *settings) {
		s.validator = fn
	}
}

// Focus enables focusing the first field (the default) or disables focus.
func Focus(enabled bool) ConfigureOption {
	return func(s *settings) {
		s.focusKey = ""
		if enabled {
			s.focus = focusFirst
			return
		}
		s.focus = focusNone
	}
}

// FocusField focuses the given field instead of the first one.
func FocusField(f *fields.Field) ConfigureOption {
	return func(s *settings) {
		if f == nil {
			s.focus = focusNone
			return
		}
		s.focus = focusField
		s.focusKey = f.Key()
	}
}

// Readonly renders the FieldSet as a read-only table.
func Readonly(readonly bool) ConfigureOption {
	return func(s *settings) {
		s.readonly = readonly
	}
}

// BindOption is one Bind/Rebind parameter.
type BindOption func(*binding)

type binding struct {
	model      model.Model
	session    model.Session
	data       any
	hasModel   bool
	hasSession bool
	hasData    bool
}

// BindModel binds an Instance, or a Class to instantiate.
func BindModel(m model.Model) BindOption {
	return func(b *binding) {
		b.model = m
		b.hasModel = m != nil
	}
}

// BindSession binds the session.
func BindSession(session model.Session) BindOption {
	return func(b *binding) {
		b.session = session
		b.hasSession = session != nil
	}
}

// BindData binds submitted data. Without it the result has no data bound.
func BindData(data any) BindOption {
	return func(b *binding) {
		b.data = data
		b.hasData = data != nil
	}
}
