package model

import (
	"errors"
	"fmt"
)

// FieldType is the semantic type of an attribute. It drives default renderer
// selection and deserialization of submitted values.
type FieldType string

const (
	FieldTypeString    FieldType = "string"
	FieldTypeText      FieldType = "text"
	FieldTypeInteger   FieldType = "integer"
	FieldTypeNumber    FieldType = "number"
	FieldTypeBoolean   FieldType = "boolean"
	FieldTypeDate      FieldType = "date"
	FieldTypeDateTime  FieldType = "datetime"
	FieldTypeTime      FieldType = "time"
	FieldTypeBinary    FieldType = "binary"
	FieldTypeRelation  FieldType = "relation"
	FieldTypeComposite FieldType = "composite"
)

// Valid reports whether the type is one of the known semantic types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeString, FieldTypeText, FieldTypeInteger, FieldTypeNumber,
		FieldTypeBoolean, FieldTypeDate, FieldTypeDateTime, FieldTypeTime,
		FieldTypeBinary, FieldTypeRelation, FieldTypeComposite:
		return true
	default:
		return false
	}
}

// Cardinality distinguishes scalar from collection relations.
type Cardinality string

const (
	ToOne  Cardinality = "to-one"
	ToMany Cardinality = "to-many"
)

// Relation describes an association to another model. For to-one relations
// Column names the foreign key attribute on the owning schema; the relation
// field is rendered and synced under that column.
type Relation struct {
	Target      string      `json:"target" yaml:"target"`
	Cardinality Cardinality `json:"cardinality" yaml:"cardinality"`
	Column      string      `json:"column,omitempty" yaml:"column,omitempty"`
}

// Attribute is one introspected model attribute.
type Attribute struct {
	Name       string    `json:"name" yaml:"name"`
	Type       FieldType `json:"type" yaml:"type"`
	Nullable   bool      `json:"nullable" yaml:"nullable"`
	PrimaryKey bool      `json:"primaryKey,omitempty" yaml:"primary_key,omitempty"`
	// ForeignKey names the target model of a raw foreign key column.
	ForeignKey string    `json:"foreignKey,omitempty" yaml:"foreign_key,omitempty"`
	MaxLength  int       `json:"maxLength,omitempty" yaml:"max_length,omitempty"`
	Default    any       `json:"default,omitempty" yaml:"default,omitempty"`
	Relation   *Relation `json:"relation,omitempty" yaml:"relation,omitempty"`
}

// IsRelation reports whether the attribute is an association.
func (a Attribute) IsRelation() bool {
	return a.Relation != nil
}

// IsCollection reports whether the attribute is a to-many association.
func (a Attribute) IsCollection() bool {
	return a.Relation != nil && a.Relation.Cardinality == ToMany
}

// Schema is the ordered attribute list of one model type.
type Schema struct {
	Name       string      `json:"name" yaml:"name"`
	Attributes []Attribute `json:"attributes" yaml:"attributes"`
	// Display is an optional "{attr}" template used to describe instances in
	// selection widgets and read-only output.
	Display string `json:"display,omitempty" yaml:"display,omitempty"`
}

// Attribute returns the descriptor with the given name.
func (s *Schema) Attribute(name string) (Attribute, bool) {
	if s == nil {
		return Attribute{}, false
	}
	for _, attr := range s.Attributes {
		if attr.Name == name {
			return attr, true
		}
	}
	return Attribute{}, false
}

// PrimaryKeys returns the primary key attributes in declaration order.
func (s *Schema) PrimaryKeys() []Attribute {
	if s == nil {
		return nil
	}
	var out []Attribute
	for _, attr := range s.Attributes {
		if attr.PrimaryKey {
			out = append(out, attr)
		}
	}
	return out
}

// Scalars returns non-relation attributes in declaration order.
func (s *Schema) Scalars() []Attribute {
	if s == nil {
		return nil
	}
	var out []Attribute
	for _, attr := range s.Attributes {
		if !attr.IsRelation() {
			out = append(out, attr)
		}
	}
	return out
}

// Relations returns relation attributes in declaration order.
func (s *Schema) Relations() []Attribute {
	if s == nil {
		return nil
	}
	var out []Attribute
	for _, attr := range s.Attributes {
		if attr.IsRelation() {
			out = append(out, attr)
		}
	}
	return out
}

// RelationForColumn returns the to-one relation rendered under column.
func (s *Schema) RelationForColumn(column string) (Attribute, bool) {
	for _, attr := range s.Relations() {
		if attr.Relation.Cardinality == ToOne && attr.Relation.Column == column {
			return attr, true
		}
	}
	return Attribute{}, false
}

var errSchemaNameMissing = errors.New("model: schema name is required")

// Validate checks the descriptor list for structural problems.
func (s *Schema) Validate() error {
	if s == nil || s.Name == "" {
		return errSchemaNameMissing
	}
	seen := make(map[string]struct{}, len(s.Attributes))
	for _, attr := range s.Attributes {
		if attr.Name == "" {
			return fmt.Errorf("model: schema %q has an attribute without a name", s.Name)
		}
		if _, dup := seen[attr.Name]; dup {
			return fmt.Errorf("model: schema %q declares %q twice", s.Name, attr.Name)
		}
		seen[attr.Name] = struct{}{}
		if attr.Type != "" && !attr.Type.Valid() {
			return fmt.Errorf("model: attribute %s.%s has unknown type %q", s.Name, attr.Name, attr.Type)
		}
		if rel := attr.Relation; rel != nil {
			if rel.Target == "" {
				return fmt.Errorf("model: relation %s.%s has no target", s.Name, attr.Name)
			}
			switch rel.Cardinality {
			case ToOne:
				if rel.Column == "" {
					return fmt.Errorf("model: to-one relation %s.%s has no column", s.Name, attr.Name)
				}
				if _, ok := s.Attribute(rel.Column); !ok {
					return fmt.Errorf("model: relation %s.%s references unknown column %q", s.Name, attr.Name, rel.Column)
				}
			case ToMany:
			default:
				return fmt.Errorf("model: relation %s.%s has unknown cardinality %q", s.Name, attr.Name, rel.Cardinality)
			}
		}
	}
	return nil
}
