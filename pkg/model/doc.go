// Package model describes the metadata seam between FieldSets and the host
// ORM. A model adapter exposes an ordered list of attribute descriptors
// (name, semantic type, nullability, primary/foreign key flags, relation
// cardinality) through Schema, and instances expose attribute access through
// Get/Set. Sessions enumerate candidate related instances and look them up by
// identifier so relation widgets can be populated and synced.
//
// Two adapters ship with the package: Wrap and ClassOf reflect over Go
// structs annotated with `fieldset` tags, and RecordClass backs instances with
// a plain map so schemas can be declared in YAML (see LoadSchemas) or derived
// from OpenAPI components (see package openapi).
package model
