// Package template defines the engine-agnostic template seam used by the
// fieldset view renderers. Implementations live in subpackages.
package template
