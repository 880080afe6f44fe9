package fields

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-fieldset/pkg/model"
	"github.com/goliatone/go-fieldset/pkg/validators"
)

// ErrNoData is returned when deserializing a field whose parent has no
// submitted data bound.
var ErrNoData = errors.New("fields: no data bound")

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04:05"
	TimeLayout     = "15:04:05"
)

var (
	dateLayouts     = []string{DateLayout}
	dateTimeLayouts = []string{DateTimeLayout, "2006-01-02 15:04:05", "2006-01-02T15:04", "2006-01-02 15:04", time.RFC3339}
	timeLayouts     = []string{TimeLayout, "15:04"}
)

// FormatValue serializes value for an input attribute. Booleans use the
// "True"/"False" spelling the checkbox and Yes/No widgets submit.
func FormatValue(typ model.FieldType, value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "True"
		}
		return "False"
	case time.Time:
		if v.IsZero() {
			return ""
		}
		switch typ {
		case model.FieldTypeDate:
			return v.Format(DateLayout)
		case model.FieldTypeTime:
			return v.Format(TimeLayout)
		default:
			return v.Format(DateTimeLayout)
		}
	case *time.Time:
		if v == nil {
			return ""
		}
		return FormatValue(typ, *v)
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case model.Instance:
		return model.FormatKey(model.PrimaryKey(v))
	case []any:
		return model.FormatKey(v)
	default:
		return fmt.Sprint(v)
	}
}

func (f *Field) data() Data {
	if f.parent == nil {
		return nil
	}
	return f.parent.Data()
}

// ModelValue reads the field's value from the bound instance. Pending
// instances fall back to the attribute default for zero values; to-many
// relations yield the related primary keys.
func (f *Field) ModelValue() any {
	if f.manual {
		if f.parent != nil {
			if value, ok := f.parent.ManualValue(f.key); ok {
				return value
			}
		}
		return f.value
	}
	if f.parent == nil || f.parent.Model() == nil {
		return f.attr.Default
	}
	inst := f.parent.Model()
	if f.attr.IsCollection() {
		items, _ := inst.Get(f.key).([]model.Instance)
		keys := make([]any, 0, len(items))
		for _, item := range items {
			keys = append(keys, model.PrimaryKey(item))
		}
		return keys
	}
	value := inst.Get(f.column)
	if model.IsZero(value) && model.PrimaryKey(inst) == nil {
		return f.attr.Default
	}
	return value
}

// Value is the submitted value when data is bound and deserializes to
// something, else the model value.
func (f *Field) Value() any {
	if f.data() != nil && !f.readonly {
		if value, err := f.Deserialize(); err == nil && !validators.IsEmpty(value) {
			return value
		}
	}
	return f.ModelValue()
}

// RawValue is the string the input shows: the submitted raw value when it is
// present and non-empty, else the serialized model value.
func (f *Field) RawValue() string {
	if data := f.data(); data != nil {
		if raw, ok := data.GetOne(f.Name()); ok && raw != "" {
			return raw
		}
	}
	return FormatValue(f.valueType(), f.ModelValue())
}

// RawValues is the multi-valued counterpart of RawValue used by selects and
// groups.
func (f *Field) RawValues() []string {
	if data := f.data(); data != nil {
		if raw := nonEmpty(data.GetAll(f.Name())); len(raw) > 0 {
			return raw
		}
	}
	switch v := f.ModelValue().(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, FormatValue(f.valueType(), item))
		}
		return out
	case []string:
		return append([]string(nil), v...)
	default:
		if text := FormatValue(f.valueType(), v); text != "" {
			return []string{text}
		}
		return nil
	}
}

// valueType is the type submitted values are parsed as. To-one relations
// submit their foreign key, typed like the owning column.
func (f *Field) valueType() model.FieldType {
	if rel := f.attr.Relation; rel != nil {
		if rel.Cardinality == model.ToOne && f.parent != nil {
			if column, ok := f.parent.Schema().Attribute(f.column); ok && column.Type != "" {
				return column.Type
			}
		}
		return model.FieldTypeString
	}
	return f.attr.Type
}

// Deserialize converts the submitted raw value into the field's semantic
// type. Empty submissions deserialize to nil; multi-valued fields yield
// []any in submission order.
func (f *Field) Deserialize() (any, error) {
	data := f.data()
	if data == nil {
		return nil, ErrNoData
	}
	if d, ok := f.currentRenderer().(Deserializer); ok {
		return d.Deserialize(f, data)
	}
	name := f.Name()
	typ := f.valueType()
	if f.Multiple() {
		raw := nonEmpty(data.GetAll(name))
		out := make([]any, 0, len(raw))
		for _, item := range raw {
			value, err := ParseValue(typ, item)
			if err != nil {
				return nil, err
			}
			out = append(out, value)
		}
		return out, nil
	}
	raw, _ := data.GetOne(name)
	if typ == model.FieldTypeBoolean {
		return parseBool(raw), nil
	}
	if raw == "" {
		return nil, nil
	}
	return ParseValue(typ, raw)
}

// ParseValue converts one raw string. Failures are *validators.ValidationError.
func ParseValue(typ model.FieldType, raw string) (any, error) {
	switch typ {
	case model.FieldTypeInteger:
		return validators.ParseInteger(raw)
	case model.FieldTypeNumber:
		return validators.ParseFloat(raw)
	case model.FieldTypeBoolean:
		return parseBool(raw), nil
	case model.FieldTypeDate:
		return parseTime(strings.TrimSpace(raw), dateLayouts, "Value is not a valid date")
	case model.FieldTypeDateTime:
		return parseTime(strings.TrimSpace(raw), dateTimeLayouts, "Value is not a valid date/time")
	case model.FieldTypeTime:
		return parseTime(strings.TrimSpace(raw), timeLayouts, "Value is not a valid time")
	case model.FieldTypeBinary:
		return []byte(raw), nil
	default:
		return raw, nil
	}
}

func parseTime(raw string, layouts []string, message string) (any, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return nil, validators.NewError(message)
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "on", "yes", "y", "t":
		return true
	default:
		return false
	}
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value != "" {
			out = append(out, value)
		}
	}
	return out
}

// Check validates the submitted value: deserialization, the required check,
// then the validator chain, stopping at the first failure. Messages describe
// user errors; a non-nil error is a broken validator and aborts validation.
func (f *Field) Check() ([]string, error) {
	if f.readonly {
		return nil, nil
	}
	value, err := f.Deserialize()
	if err != nil {
		if verr, ok := validators.AsValidationError(err); ok {
			return verr.Messages, nil
		}
		return nil, err
	}
	if validators.IsEmpty(value) {
		if f.implicitRequired() {
			verr, _ := validators.AsValidationError(validators.Required(value))
			return verr.Messages, nil
		}
		return nil, nil
	}
	if message := f.rangeMessage(value); message != "" {
		return []string{message}, nil
	}
	for _, validate := range f.validators {
		err := validate(value)
		if err == nil {
			continue
		}
		if verr, ok := validators.AsValidationError(err); ok {
			return verr.Messages, nil
		}
		return nil, fmt.Errorf("fields: validator for %s: %w", f.key, err)
	}
	return nil, nil
}

// rangeMessage reports values the bound instance cannot store, such as 300
// for an int8 struct field.
func (f *Field) rangeMessage(value any) string {
	if f.manual || f.attr.IsCollection() || f.parent == nil || f.parent.Model() == nil {
		return ""
	}
	if err := checkValue(f.parent.Model(), f.column, value); errors.Is(err, model.ErrOutOfRange) {
		return "Value is out of range"
	}
	return ""
}

// Sync writes the deserialized value into the bound instance. Manual fields
// store it on their parent. To-many relations are resolved through the
// session and stored in submission order.
func (f *Field) Sync() error {
	write, err := f.PrepareSync()
	if err != nil {
		return err
	}
	return write()
}

// PrepareSync does the failing half of Sync: it deserializes the submitted
// value, resolves related instances and checks the instance can hold the
// value. The returned function writes it. Nothing is written until then.
func (f *Field) PrepareSync() (func() error, error) {
	if f.readonly {
		return func() error { return nil }, nil
	}
	value, err := f.Deserialize()
	if err != nil {
		return nil, err
	}
	if f.manual {
		if f.parent == nil {
			return nil, fmt.Errorf("fields: %s is not bound to a FieldSet", f.key)
		}
		return func() error {
			f.parent.SetManualValue(f.key, value)
			return nil
		}, nil
	}
	if f.parent == nil || f.parent.Model() == nil {
		return nil, fmt.Errorf("fields: %s is not bound to an instance", f.key)
	}
	inst := f.parent.Model()
	switch {
	case f.attr.IsCollection():
		ids, _ := value.([]any)
		items, err := f.lookup(ids)
		if err != nil {
			return nil, err
		}
		return func() error { return inst.Set(f.key, items) }, nil
	case f.attr.IsRelation():
		if err := checkValue(inst, f.column, value); err != nil {
			return nil, err
		}
		related, replace, err := f.resolveRelated(value)
		if err != nil {
			return nil, err
		}
		return func() error {
			if err := inst.Set(f.column, value); err != nil {
				return err
			}
			if !replace {
				return nil
			}
			if related == nil {
				return inst.Set(f.key, nil)
			}
			return inst.Set(f.key, related)
		}, nil
	case f.attr.Type == model.FieldTypeBinary && value == nil:
		return func() error { return nil }, nil
	default:
		if err := checkValue(inst, f.column, value); err != nil {
			return nil, err
		}
		return func() error { return inst.Set(f.column, value) }, nil
	}
}

func checkValue(inst model.Instance, column string, value any) error {
	if checker, ok := inst.(model.ValueChecker); ok {
		return checker.CheckValue(column, value)
	}
	return nil
}

// resolveRelated finds the instance a to-one key points at. replace is false
// when the relation has no separate attribute or there is no session to
// resolve it with.
func (f *Field) resolveRelated(key any) (related model.Instance, replace bool, err error) {
	if f.key == f.column {
		return nil, false, nil
	}
	if key == nil {
		return nil, true, nil
	}
	if f.parent.Session() == nil {
		return nil, false, nil
	}
	items, err := f.lookup([]any{key})
	if err != nil {
		return nil, false, err
	}
	return items[0], true, nil
}

func (f *Field) lookup(ids []any) ([]model.Instance, error) {
	items := make([]model.Instance, 0, len(ids))
	if len(ids) == 0 {
		return items, nil
	}
	target := f.attr.Relation.Target
	session := f.parent.Session()
	if session == nil {
		return nil, fmt.Errorf("fields: %s needs a session to resolve %s", f.key, target)
	}
	found, err := session.Lookup(target, ids)
	if err != nil {
		return nil, fmt.Errorf("fields: resolve %s: %w", f.key, err)
	}
	byKey := make(map[string]model.Instance, len(found))
	for _, item := range found {
		byKey[model.FormatKey(model.PrimaryKey(item))] = item
	}
	for _, id := range ids {
		item, ok := byKey[model.FormatKey(id)]
		if !ok {
			return nil, fmt.Errorf("fields: %s %s not found", target, model.FormatKey(id))
		}
		items = append(items, item)
	}
	return items, nil
}

// DisplayValue is the human-readable text used by read-only rendering.
func (f *Field) DisplayValue() (string, error) {
	if rel := f.attr.Relation; rel != nil && f.parent != nil && f.parent.Model() != nil {
		items, err := f.relatedInstances(rel)
		if err != nil {
			return "", err
		}
		labels := make([]string, 0, len(items))
		for _, item := range items {
			labels = append(labels, model.Display(item))
		}
		return strings.Join(labels, ", "), nil
	}
	text := FormatValue(f.valueType(), f.ModelValue())
	if f.hasOptions {
		for _, option := range f.options {
			if FormatValue(f.valueType(), option.Value) == text {
				return option.Label, nil
			}
		}
	}
	return text, nil
}

func (f *Field) relatedInstances(rel *model.Relation) ([]model.Instance, error) {
	inst := f.parent.Model()
	switch v := inst.Get(f.key).(type) {
	case []model.Instance:
		return v, nil
	case model.Instance:
		return []model.Instance{v}, nil
	}
	if rel.Cardinality != model.ToOne {
		return nil, nil
	}
	key := inst.Get(f.column)
	if model.IsZero(key) || f.parent.Session() == nil {
		return nil, nil
	}
	return f.lookup([]any{key})
}
