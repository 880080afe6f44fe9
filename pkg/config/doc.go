// Package config holds the explicit configuration value FieldSets are built
// with. Default documents every setting; Load and FromMap read overrides from
// YAML files and flat prefixed maps, and Resolve applies a go-theme selection
// on top.
package config
