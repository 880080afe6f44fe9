package forms

import (
	"errors"
	"sort"
)

var (
	// ErrConfiguration reports an invalid Configure/Bind/Add call.
	ErrConfiguration = errors.New("forms: invalid configuration")
	// ErrUnsupportedData reports submitted data of an unsupported shape.
	ErrUnsupportedData = errors.New("forms: unsupported data")
	// ErrNotBound is returned by Validate and Sync without bound data.
	ErrNotBound = errors.New("forms: no data bound")
	// ErrPrimaryKeyChanged reports a stale FieldSet: the bound instance's
	// primary key changed since it was bound.
	ErrPrimaryKeyChanged = errors.New("forms: primary key changed since bind")
)

// NoField is the Errors key holding form-level messages.
const NoField = ""

// Errors maps field keys to validation messages. Form-level messages from
// the global validator live under NoField.
type Errors map[string][]string

// Form returns the form-level messages.
func (e Errors) Form() []string {
	return e[NoField]
}

// Field returns the messages of one field.
func (e Errors) Field(key string) []string {
	return e[key]
}

// Keys returns the field keys with messages, sorted, without NoField.
func (e Errors) Keys() []string {
	keys := make([]string, 0, len(e))
	for key := range e {
		if key != NoField {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Empty reports whether there are no messages at all.
func (e Errors) Empty() bool {
	for _, messages := range e {
		if len(messages) > 0 {
			return false
		}
	}
	return true
}
