package fields

import (
	"sort"

	"github.com/goliatone/go-fieldset/pkg/model"
)

// Option is one choice of a select, radio or checkbox group.
type Option struct {
	Label string
	Value any
}

// Choices builds options whose label and value are the same string.
func Choices(values ...string) []Option {
	out := make([]Option, len(values))
	for i, value := range values {
		out[i] = Option{Label: value, Value: value}
	}
	return out
}

// Pairs builds options from alternating label, value arguments.
func Pairs(labelValues ...string) []Option {
	out := make([]Option, 0, len(labelValues)/2)
	for i := 0; i+1 < len(labelValues); i += 2 {
		out = append(out, Option{Label: labelValues[i], Value: labelValues[i+1]})
	}
	return out
}

// OptionsFromMap builds options from a label to value map, sorted by label.
func OptionsFromMap(choices map[string]any) []Option {
	labels := make([]string, 0, len(choices))
	for label := range choices {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	out := make([]Option, len(labels))
	for i, label := range labels {
		out[i] = Option{Label: label, Value: choices[label]}
	}
	return out
}

// QueryOptions turns instances into options labelled with their display text
// and valued with their primary key.
func QueryOptions(items []model.Instance) []Option {
	out := make([]Option, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, Option{Label: model.Display(item), Value: model.PrimaryKey(item)})
	}
	return out
}

// BooleanOptions are the Yes/No choices used by boolean dropdowns.
func BooleanOptions() []Option {
	return []Option{{Label: "Yes", Value: true}, {Label: "No", Value: false}}
}

// resolveOptions picks the choices to render: explicit options, then relation
// candidates from the session, then Yes/No for booleans.
func (f *Field) resolveOptions() ([]Option, error) {
	if f.hasOptions {
		return f.Options(), nil
	}
	if rel := f.attr.Relation; rel != nil {
		if f.parent == nil || f.parent.Session() == nil {
			return nil, nil
		}
		items, err := f.parent.Session().Candidates(rel.Target)
		if err != nil {
			return nil, err
		}
		return QueryOptions(items), nil
	}
	if f.attr.Type == model.FieldTypeBoolean {
		return BooleanOptions(), nil
	}
	return nil, nil
}

// ResolvedOptions returns the choices the field renders with.
func (f *Field) ResolvedOptions() ([]Option, error) {
	return f.resolveOptions()
}

// OptionValue serializes an option value the way the field's inputs submit
// it.
func (f *Field) OptionValue(option Option) string {
	return FormatValue(f.valueType(), option.Value)
}
