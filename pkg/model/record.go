package model

import (
	"fmt"
	"sort"
)

// RecordClass is a Class whose instances store attribute values in a map. It
// lets schemas declared in YAML or OpenAPI documents be bound without Go
// struct definitions.
type RecordClass struct {
	schema *Schema
}

// NewRecordClass validates schema and returns a class for it.
func NewRecordClass(schema *Schema) (*RecordClass, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return &RecordClass{schema: schema}, nil
}

// MustRecordClass panics when NewRecordClass fails. Useful for fixtures.
func MustRecordClass(schema *Schema) *RecordClass {
	class, err := NewRecordClass(schema)
	if err != nil {
		panic(err)
	}
	return class
}

func (c *RecordClass) Schema() *Schema { return c.schema }

// New returns an empty pending record.
func (c *RecordClass) New() (Instance, error) {
	return &Record{class: c, values: make(map[string]any)}, nil
}

// NewRecord builds a record populated with values. Unknown attributes fail.
func (c *RecordClass) NewRecord(values map[string]any) (*Record, error) {
	rec := &Record{class: c, values: make(map[string]any, len(values))}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := rec.Set(name, values[name]); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// Record is a map-backed Instance.
type Record struct {
	class   *RecordClass
	values  map[string]any
	session Session
}

func (r *Record) Schema() *Schema { return r.class.schema }

func (r *Record) Class() Class { return r.class }

// Get returns the stored value, falling back to nil for unset attributes.
func (r *Record) Get(name string) any {
	return r.values[name]
}

// Set stores value under a declared attribute.
func (r *Record) Set(name string, value any) error {
	if _, ok := r.class.schema.Attribute(name); !ok {
		return fmt.Errorf("model: %s has no attribute %q", r.class.schema.Name, name)
	}
	if value == nil {
		delete(r.values, name)
		return nil
	}
	r.values[name] = value
	return nil
}

// Values returns a copy of the stored attribute values.
func (r *Record) Values() map[string]any {
	out := make(map[string]any, len(r.values))
	for key, value := range r.values {
		if items, ok := value.([]Instance); ok {
			keys := make([]any, len(items))
			for i, item := range items {
				keys[i] = PrimaryKey(item)
			}
			out[key] = keys
			continue
		}
		out[key] = value
	}
	return out
}

// Session implements SessionCarrier once the record is attached.
func (r *Record) Session() Session { return r.session }

// Attach records the session the instance belongs to.
func (r *Record) Attach(session Session) { r.session = session }

func (r *Record) String() string {
	if r.class.schema.Display != "" {
		return expandDisplay(r.class.schema.Display, r)
	}
	return fmt.Sprintf("%s(%s)", r.class.schema.Name, FormatKey(PrimaryKey(r)))
}
