package openapi

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-fieldset/pkg/model"
)

const (
	componentPrefix = "#/components/schemas/"

	extensionPrimaryKey = "x-primary-key"
	extensionFieldType  = "x-fieldset-type"
	extensionColumn     = "x-fieldset-column"
	extensionDisplay    = "x-fieldset-display"
)

// ParseOptions controls how documents are converted.
type ParseOptions struct {
	// Validate runs the kin-openapi document validation before conversion.
	Validate bool
	// Components restricts conversion to the named component schemas.
	Components []string
}

// ParseOption mutates ParseOptions.
type ParseOption func(*ParseOptions)

// WithValidation toggles document validation.
func WithValidation(enabled bool) ParseOption {
	return func(opts *ParseOptions) {
		opts.Validate = enabled
	}
}

// WithComponents converts only the named component schemas.
func WithComponents(names ...string) ParseOption {
	return func(opts *ParseOptions) {
		opts.Components = append(opts.Components, names...)
	}
}

// Schemas fetches src and converts its component schemas.
func (l *Loader) Schemas(ctx context.Context, src Source, options ...ParseOption) ([]*model.Schema, error) {
	raw, err := l.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return Schemas(ctx, raw, options...)
}

// Schemas parses a JSON or YAML OpenAPI 3 document and converts every object
// component schema, ordered by component name. Non-object components are
// skipped unless requested through WithComponents.
func Schemas(ctx context.Context, raw []byte, options ...ParseOption) ([]*model.Schema, error) {
	cfg := ParseOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if cfg.Validate {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return nil, errors.New("openapi: document has no component schemas")
	}

	explicit := len(cfg.Components) > 0
	names := cfg.Components
	if !explicit {
		names = make([]string, 0, len(doc.Components.Schemas))
		for name := range doc.Components.Schemas {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	out := make([]*model.Schema, 0, len(names))
	for _, name := range names {
		ref, ok := doc.Components.Schemas[name]
		if !ok || ref == nil || ref.Value == nil {
			return nil, fmt.Errorf("openapi: component schema %q not found", name)
		}
		if !isObject(ref.Value) {
			if explicit {
				return nil, fmt.Errorf("openapi: component schema %q is not an object", name)
			}
			continue
		}
		schema, err := SchemaFromComponent(name, ref.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, schema)
	}
	return out, nil
}

// SchemaFromComponent converts one object schema. Properties become
// attributes in alphabetical order; $ref properties become to-one relations
// rendered under NAME_id (or x-fieldset-column) and arrays of $ref become
// to-many relations. Arrays of scalars have no attribute counterpart and are
// skipped.
func SchemaFromComponent(name string, value *openapi3.Schema) (*model.Schema, error) {
	if value == nil {
		return nil, fmt.Errorf("openapi: component schema %q is empty", name)
	}
	required := make(map[string]struct{}, len(value.Required))
	for _, prop := range value.Required {
		required[prop] = struct{}{}
	}

	props := make([]string, 0, len(value.Properties))
	for prop := range value.Properties {
		props = append(props, prop)
	}
	sort.Strings(props)

	schema := &model.Schema{Name: name}
	if display, ok := value.Extensions[extensionDisplay].(string); ok {
		schema.Display = display
	}
	hasPK := false
	for _, prop := range props {
		_, isRequired := required[prop]
		attr, ok, err := attributeFromProperty(name, prop, value.Properties[prop], isRequired)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		hasPK = hasPK || attr.PrimaryKey
		schema.Attributes = append(schema.Attributes, attr)
	}

	for i := range schema.Attributes {
		attr := &schema.Attributes[i]
		if !hasPK && attr.Name == "id" && !attr.IsRelation() {
			attr.PrimaryKey = true
			attr.Nullable = false
		}
		if rel := attr.Relation; rel != nil && rel.Cardinality == model.ToOne {
			for j := range schema.Attributes {
				column := &schema.Attributes[j]
				if column.Name == rel.Column && column.ForeignKey == "" {
					column.ForeignKey = rel.Target
				}
			}
		}
	}

	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("openapi: component %s: %w", name, err)
	}
	return schema, nil
}

func attributeFromProperty(owner, prop string, ref *openapi3.SchemaRef, required bool) (model.Attribute, bool, error) {
	if ref == nil || ref.Value == nil {
		return model.Attribute{}, false, fmt.Errorf("openapi: %s.%s has an unresolved schema", owner, prop)
	}
	value := ref.Value
	attr := model.Attribute{Name: prop, Nullable: !required || value.Nullable}

	if target := componentName(ref.Ref); target != "" && isObject(value) {
		column, _ := value.Extensions[extensionColumn].(string)
		if column == "" {
			column = prop + "_id"
		}
		attr.Type = model.FieldTypeRelation
		attr.Relation = &model.Relation{Target: target, Cardinality: model.ToOne, Column: column}
		return attr, true, nil
	}
	if value.Type.Is("array") {
		if value.Items == nil {
			return attr, false, nil
		}
		target := componentName(value.Items.Ref)
		if target == "" {
			return attr, false, nil
		}
		attr.Type = model.FieldTypeRelation
		attr.Nullable = true
		attr.Relation = &model.Relation{Target: target, Cardinality: model.ToMany}
		return attr, true, nil
	}

	typ, ok := fieldType(value)
	if override, set := value.Extensions[extensionFieldType].(string); set {
		typ, ok = model.FieldType(strings.TrimSpace(override)), true
		if !typ.Valid() {
			return attr, false, fmt.Errorf("openapi: %s.%s has unknown %s %q", owner, prop, extensionFieldType, override)
		}
	}
	if !ok {
		return attr, false, fmt.Errorf("openapi: %s.%s has unsupported type %v", owner, prop, value.Type)
	}
	attr.Type = typ
	if value.MaxLength != nil {
		attr.MaxLength = int(*value.MaxLength)
	}
	attr.Default = normaliseDefault(typ, value.Default)
	if pk, _ := value.Extensions[extensionPrimaryKey].(bool); pk {
		attr.PrimaryKey = true
		attr.Nullable = false
	}
	return attr, true, nil
}

func fieldType(value *openapi3.Schema) (model.FieldType, bool) {
	switch {
	case value.Type.Is("string"):
		switch value.Format {
		case "date":
			return model.FieldTypeDate, true
		case "date-time":
			return model.FieldTypeDateTime, true
		case "time":
			return model.FieldTypeTime, true
		case "binary", "byte":
			return model.FieldTypeBinary, true
		default:
			return model.FieldTypeString, true
		}
	case value.Type.Is("integer"):
		return model.FieldTypeInteger, true
	case value.Type.Is("number"):
		return model.FieldTypeNumber, true
	case value.Type.Is("boolean"):
		return model.FieldTypeBoolean, true
	default:
		return "", false
	}
}

// normaliseDefault turns JSON numbers declared on integer properties back
// into int64, the type submitted integers deserialize to.
func normaliseDefault(typ model.FieldType, value any) any {
	if f, ok := value.(float64); ok && typ == model.FieldTypeInteger && f == math.Trunc(f) {
		return int64(f)
	}
	return value
}

func isObject(value *openapi3.Schema) bool {
	if value == nil {
		return false
	}
	if value.Type.Is("object") {
		return true
	}
	return value.Type == nil && len(value.Properties) > 0
}

func componentName(ref string) string {
	if !strings.HasPrefix(ref, componentPrefix) {
		return ""
	}
	return strings.TrimPrefix(ref, componentPrefix)
}
