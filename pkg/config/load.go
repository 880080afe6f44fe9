package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPrefix is the key prefix FromMap uses when none is given.
const DefaultPrefix = "fieldset."

type fileConfig struct {
	Encoding   string            `yaml:"encoding"`
	Order      Order             `yaml:"order"`
	SelectSize int               `yaml:"select_size"`
	View       string            `yaml:"view"`
	Classes    map[string]string `yaml:"classes"`
	Templates  map[string]string `yaml:"templates"`
	Theme      struct {
		Name    string `yaml:"name"`
		Variant string `yaml:"variant"`
	} `yaml:"theme"`
}

// Load reads a YAML document on top of Default:
//
//	encoding: utf-8
//	order: declared
//	select_size: 8
//	classes:
//	  required: required
//	theme:
//	  name: acme
func Load(r io.Reader) (Config, error) {
	var doc fileConfig
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}

	cfg := Default()
	values := map[string]string{}
	if doc.Encoding != "" {
		values["encoding"] = doc.Encoding
	}
	if doc.Order != "" {
		values["order"] = string(doc.Order)
	}
	if doc.SelectSize != 0 {
		values["select_size"] = strconv.Itoa(doc.SelectSize)
	}
	if doc.View != "" {
		values["view"] = doc.View
	}
	if doc.Theme.Name != "" {
		values["theme"] = doc.Theme.Name
	}
	if doc.Theme.Variant != "" {
		values["theme_variant"] = doc.Theme.Variant
	}
	for key, value := range doc.Classes {
		values["class."+key] = value
	}
	for key, value := range doc.Templates {
		values["template."+key] = value
	}
	if err := cfg.apply(values); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// FromMap reads the keys of values that start with prefix (DefaultPrefix
// when empty) on top of Default. Other keys are ignored, so an application
// can pass its whole settings map:
//
//	fieldset.encoding         fieldset.order
//	fieldset.select_size      fieldset.view
//	fieldset.theme            fieldset.theme_variant
//	fieldset.class.<token>    fieldset.template.<role>
func FromMap(values map[string]string, prefix string) (Config, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	scoped := make(map[string]string)
	for key, value := range values {
		if rest, ok := strings.CutPrefix(key, prefix); ok {
			scoped[rest] = value
		}
	}
	cfg := Default()
	if err := cfg.apply(scoped); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) apply(values map[string]string) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := strings.TrimSpace(values[key])
		switch {
		case key == "encoding":
			c.Encoding = value
		case key == "order":
			order := Order(strings.ToLower(value))
			if !order.Valid() {
				return fmt.Errorf("config: unknown order %q", value)
			}
			c.Order = order
		case key == "select_size":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return fmt.Errorf("config: select_size must be a positive integer, got %q", value)
			}
			c.SelectSize = n
		case key == "view":
			c.View = value
		case key == "theme":
			c.Theme = value
		case key == "theme_variant":
			c.ThemeVariant = value
		case strings.HasPrefix(key, "class."):
			if err := c.setClass(strings.TrimPrefix(key, "class."), value); err != nil {
				return err
			}
		case strings.HasPrefix(key, "template."):
			if c.Templates == nil {
				c.Templates = make(map[string]string)
			}
			c.Templates[strings.TrimPrefix(key, "template.")] = value
		default:
			return fmt.Errorf("config: unknown key %q", key)
		}
	}
	return nil
}

func (c *Config) setClass(token, value string) error {
	switch token {
	case "required":
		c.Classes.Required = value
	case "optional":
		c.Classes.Optional = value
	case "field_error":
		c.Classes.FieldError = value
	case "form_error":
		c.Classes.FormError = value
	case "readonly":
		c.Classes.Readonly = value
	case "doc":
		c.Classes.Doc = value
	default:
		return fmt.Errorf("config: unknown class token %q", token)
	}
	return nil
}
