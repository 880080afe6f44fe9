package model

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type schemaDocument struct {
	Schemas []schemaEntry `yaml:"schemas"`
}

type schemaEntry struct {
	Name       string           `yaml:"name"`
	Display    string           `yaml:"display"`
	Attributes []attributeEntry `yaml:"attributes"`
}

// attributeEntry mirrors Attribute but leaves nullability optional so YAML
// documents follow ORM defaults: columns are nullable unless they are primary
// keys or say otherwise.
type attributeEntry struct {
	Name       string    `yaml:"name"`
	Type       FieldType `yaml:"type"`
	Nullable   *bool     `yaml:"nullable"`
	PrimaryKey bool      `yaml:"primary_key"`
	ForeignKey string    `yaml:"foreign_key"`
	MaxLength  int       `yaml:"max_length"`
	Default    any       `yaml:"default"`
	Relation   *Relation `yaml:"relation"`
}

// LoadSchemas decodes a YAML document holding a top-level `schemas` list.
func LoadSchemas(r io.Reader) ([]*Schema, error) {
	var doc schemaDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("model: schema document is empty")
		}
		return nil, fmt.Errorf("model: decode schemas: %w", err)
	}

	out := make([]*Schema, 0, len(doc.Schemas))
	for _, entry := range doc.Schemas {
		schema := &Schema{Name: entry.Name, Display: entry.Display}
		for _, attr := range entry.Attributes {
			schema.Attributes = append(schema.Attributes, attr.attribute())
		}
		if err := schema.Validate(); err != nil {
			return nil, err
		}
		out = append(out, schema)
	}
	return out, nil
}

// LoadSchemaFile reads schemas from a YAML file on disk.
func LoadSchemaFile(path string) ([]*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("model: open schema file: %w", err)
	}
	defer f.Close()
	return LoadSchemas(f)
}

func (e attributeEntry) attribute() Attribute {
	attr := Attribute{
		Name:       e.Name,
		Type:       e.Type,
		PrimaryKey: e.PrimaryKey,
		ForeignKey: e.ForeignKey,
		MaxLength:  e.MaxLength,
		Default:    e.Default,
		Relation:   e.Relation,
	}
	switch {
	case e.Nullable != nil:
		attr.Nullable = *e.Nullable
	default:
		attr.Nullable = !e.PrimaryKey
	}
	if attr.Relation != nil {
		attr.Type = FieldTypeRelation
		if attr.Relation.Cardinality == "" {
			attr.Relation.Cardinality = ToOne
		}
	}
	if attr.Type == "" {
		attr.Type = FieldTypeString
	}
	return attr
}
