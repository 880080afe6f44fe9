// Package fields implements the per-attribute rendering and validation unit of
// a FieldSet. A Field wraps one model attribute (or a manual, model-less
// value), carries its overlays (label, dropdown/radio options, hidden,
// readonly, extra validators, renderer swap) and knows how to deserialize the
// submitted raw value for its semantic type.
//
// Overlay methods never mutate the receiver: each returns a reconfigured copy
// that can be handed to FieldSet.Configure or rendered directly.
//
// Renderers are stateless strategies selected from the field's overlays, its
// relation cardinality, and finally a Registry keyed by semantic type.
package fields
