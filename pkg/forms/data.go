package forms

import (
	"fmt"
	"net/url"
	"sort"

	"github.com/goliatone/go-fieldset/pkg/fields"
)

// MultiDict is the multi-valued mapping adapter for submitted data.
type MultiDict map[string][]string

var _ fields.Data = MultiDict(nil)

// GetAll returns every value submitted for key.
func (m MultiDict) GetAll(key string) []string {
	return append([]string(nil), m[key]...)
}

// GetOne returns the first value submitted for key.
func (m MultiDict) GetOne(key string) (string, bool) {
	values, ok := m[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Add appends a value for key.
func (m MultiDict) Add(key, value string) {
	m[key] = append(m[key], value)
}

// Set replaces the values of key.
func (m MultiDict) Set(key string, values ...string) {
	m[key] = append([]string(nil), values...)
}

// Keys returns the submitted keys, sorted.
func (m MultiDict) Keys() []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// FromMap adapts a single-valued mapping.
func FromMap(values map[string]string) MultiDict {
	out := make(MultiDict, len(values))
	for key, value := range values {
		out[key] = []string{value}
	}
	return out
}

// CoerceData converts submitted data into the Data capability. It accepts
// Data implementations, map[string]string, map[string][]string, url.Values
// and map[string]any with string, []string or scalar values.
func CoerceData(data any) (fields.Data, error) {
	switch v := data.(type) {
	case nil:
		return nil, nil
	case MultiDict:
		if v == nil {
			return nil, nil
		}
		return v, nil
	case fields.Data:
		return v, nil
	case map[string]string:
		return FromMap(v), nil
	case map[string][]string:
		return cloneValues(v), nil
	case url.Values:
		return cloneValues(v), nil
	case map[string]any:
		out := make(MultiDict, len(v))
		for key, value := range v {
			values, err := anyValues(value)
			if err != nil {
				return nil, fmt.Errorf("%w: key %q: %v", ErrUnsupportedData, key, err)
			}
			out[key] = values
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T (expected a multi-valued mapping or a plain mapping)", ErrUnsupportedData, data)
	}
}

func cloneValues(in map[string][]string) MultiDict {
	out := make(MultiDict, len(in))
	for key, values := range in {
		out[key] = append([]string(nil), values...)
	}
	return out
}

func anyValues(value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return []string{""}, nil
	case string:
		return []string{v}, nil
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			switch item.(type) {
			case []any, []string, map[string]any:
				return nil, fmt.Errorf("nested value %T", item)
			}
			out = append(out, fields.FormatValue("", item))
		}
		return out, nil
	case map[string]any, map[string]string:
		return nil, fmt.Errorf("nested value %T", value)
	default:
		return []string{fields.FormatValue("", v)}, nil
	}
}
