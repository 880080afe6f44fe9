package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrInstantiation is returned when a Class cannot build a new instance
// without arguments.
var ErrInstantiation = errors.New("model: cannot instantiate class")

// ErrOutOfRange reports a value the attribute's storage cannot hold, such as
// 300 for an int8 field or a negative number for an unsigned one.
var ErrOutOfRange = errors.New("model: value out of range")

// Model is anything that can describe its attributes: a Class or an Instance.
type Model interface {
	Schema() *Schema
}

// Class is a model type reference. New must build a pending instance without
// arguments.
type Class interface {
	Model
	New() (Instance, error)
}

// Instance is a model value whose attributes can be read and written.
type Instance interface {
	Model
	Class() Class
	Get(name string) any
	Set(name string, value any) error
}

// ValueChecker is implemented by instances whose storage is narrower than
// the semantic type. CheckValue reports whether Set would accept value
// without writing it.
type ValueChecker interface {
	CheckValue(name string, value any) error
}

// Session is the persistence handle used to populate relation widgets and to
// resolve submitted identifiers. Transactions stay with the host ORM.
type Session interface {
	Candidates(target string) ([]Instance, error)
	Lookup(target string, ids []any) ([]Instance, error)
}

// SessionCarrier is implemented by instances that know the session they were
// loaded from.
type SessionCarrier interface {
	Session() Session
}

// TypeName returns the schema name of m, or "" when unknown.
func TypeName(m Model) string {
	if m == nil {
		return ""
	}
	if schema := m.Schema(); schema != nil {
		return schema.Name
	}
	return ""
}

// PrimaryKey returns the identity of inst: nil for pending instances, the
// single key value, or a []any for composite keys.
func PrimaryKey(inst Instance) any {
	if inst == nil {
		return nil
	}
	keys := inst.Schema().PrimaryKeys()
	if len(keys) == 0 {
		return nil
	}
	values := make([]any, 0, len(keys))
	for _, key := range keys {
		value := inst.Get(key.Name)
		if IsZero(value) {
			return nil
		}
		values = append(values, value)
	}
	if len(values) == 1 {
		return values[0]
	}
	return values
}

// FormatKey renders a primary key for use in names and option values.
func FormatKey(key any) string {
	switch v := key.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, len(v))
		for i, part := range v {
			parts[i] = fmt.Sprint(part)
		}
		return strings.Join(parts, "_")
	default:
		return fmt.Sprint(v)
	}
}

// SameKey compares two primary keys by their formatted identity.
func SameKey(a, b any) bool {
	return FormatKey(a) == FormatKey(b)
}

// Display describes inst for humans: fmt.Stringer wins, then the schema
// display template, then the primary key.
func Display(inst Instance) string {
	if inst == nil {
		return ""
	}
	if s, ok := inst.(fmt.Stringer); ok {
		return s.String()
	}
	if u, ok := inst.(interface{ Unwrap() any }); ok {
		if s, ok := u.Unwrap().(fmt.Stringer); ok {
			return s.String()
		}
	}
	if tpl := inst.Schema().Display; tpl != "" {
		return expandDisplay(tpl, inst)
	}
	return FormatKey(PrimaryKey(inst))
}

func expandDisplay(tpl string, inst Instance) string {
	var out strings.Builder
	for {
		start := strings.IndexByte(tpl, '{')
		if start < 0 {
			out.WriteString(tpl)
			break
		}
		end := strings.IndexByte(tpl[start:], '}')
		if end < 0 {
			out.WriteString(tpl)
			break
		}
		out.WriteString(tpl[:start])
		name := tpl[start+1 : start+end]
		if value := inst.Get(name); value != nil {
			out.WriteString(fmt.Sprint(value))
		}
		tpl = tpl[start+end+1:]
	}
	return out.String()
}

// IsZero reports whether v is nil or the zero value of its type.
func IsZero(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.IsNil()
	}
	return rv.IsZero()
}
