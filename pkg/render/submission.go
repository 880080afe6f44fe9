package render

import (
	"fmt"
	"sort"
	"strings"
)

// HiddenField is a hidden input emitted after the FieldSet fields. Use the
// helpers (CSRFToken, VersionField) for common cases.
type HiddenField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// CSRFToken constructs a hidden field carrying the provided token. Callers
// supply the input name to match their backend expectations (for example,
// "_csrf" or "csrf_token").
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// VersionField constructs a hidden field used for optimistic locking.
func VersionField(name string, version any) HiddenField {
	return Hidden(name, version)
}

// SortedHiddenFields drops unnamed entries, lets later fields win on name
// collisions and sorts by name for deterministic rendering.
func SortedHiddenFields(fields []HiddenField) []HiddenField {
	if len(fields) == 0 {
		return nil
	}

	clean := make(map[string]string, len(fields))
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		clean[name] = field.Value
	}
	if len(clean) == 0 {
		return nil
	}

	names := make([]string, 0, len(clean))
	for name := range clean {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{
			Name:  name,
			Value: clean[name],
		})
	}
	return result
}
