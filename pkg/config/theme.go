package config

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"
)

// ErrThemeNotFound is returned by ManifestSelector for unknown themes.
var ErrThemeNotFound = errors.New("config: theme not found")

// ManifestSelector is a theme.ThemeSelector over registered manifests. It
// covers deployments that ship their themes as files next to the binary; a
// go-theme provider can be plugged in through Config.ThemeSelector instead.
type ManifestSelector struct {
	mu        sync.RWMutex
	manifests map[string]*theme.Manifest
}

var _ theme.ThemeSelector = (*ManifestSelector)(nil)

// NewManifestSelector registers manifests by name.
func NewManifestSelector(manifests ...*theme.Manifest) (*ManifestSelector, error) {
	s := &ManifestSelector{manifests: make(map[string]*theme.Manifest)}
	for _, manifest := range manifests {
		if err := s.Register(manifest); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Register adds manifest, replacing one with the same name.
func (s *ManifestSelector) Register(manifest *theme.Manifest) error {
	if manifest == nil || strings.TrimSpace(manifest.Name) == "" {
		return errors.New("config: theme manifest name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifests[manifest.Name] = manifest
	return nil
}

// Names lists registered themes.
func (s *ManifestSelector) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.manifests))
	for name := range s.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select returns the named theme. Unknown variants fall back to the base
// manifest values.
func (s *ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.mu.RLock()
	manifest, ok := s.manifests[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

type manifestDocument struct {
	Name      string                     `yaml:"name"`
	Version   string                     `yaml:"version"`
	Tokens    map[string]string          `yaml:"tokens"`
	Templates map[string]string          `yaml:"templates"`
	Variants  map[string]variantDocument `yaml:"variants"`
}

type variantDocument struct {
	Tokens    map[string]string `yaml:"tokens"`
	Templates map[string]string `yaml:"templates"`
}

// LoadManifest decodes a YAML theme manifest:
//
//	name: acme
//	tokens:
//	  fieldset.class.required: required
//	templates:
//	  fieldset.fieldset: themes/acme/fieldset.tmpl
//	variants:
//	  compact:
//	    tokens:
//	      fieldset.class.doc: hint
func LoadManifest(r io.Reader) (*theme.Manifest, error) {
	var doc manifestDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("config: decode theme manifest: %w", err)
	}
	if strings.TrimSpace(doc.Name) == "" {
		return nil, errors.New("config: theme manifest name is required")
	}
	manifest := &theme.Manifest{
		Name:      doc.Name,
		Version:   doc.Version,
		Tokens:    doc.Tokens,
		Templates: doc.Templates,
	}
	if len(doc.Variants) > 0 {
		manifest.Variants = make(map[string]theme.Variant, len(doc.Variants))
		for name, variant := range doc.Variants {
			manifest.Variants[name] = theme.Variant{
				Tokens:    variant.Tokens,
				Templates: variant.Templates,
			}
		}
	}
	return manifest, nil
}
