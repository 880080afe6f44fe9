package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-fieldset/pkg/config"
	"github.com/goliatone/go-fieldset/pkg/forms"
	"github.com/goliatone/go-fieldset/pkg/model"
	"github.com/goliatone/go-fieldset/pkg/openapi"
	"github.com/goliatone/go-fieldset/pkg/store/memory"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	schemas       string
	openapi       string
	components    []string
	validate      bool
	config        string
	records       string
	themeManifest string
	theme         string
	variant       string
	timeout       time.Duration
	verbose       bool
}

func (g *globalFlags) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&g.schemas, "schemas", "", "YAML schema document")
	flags.StringVar(&g.openapi, "openapi", "", "OpenAPI 3 document path or URL")
	flags.StringSliceVar(&g.components, "component", nil, "OpenAPI component schemas to load (default: all objects)")
	flags.BoolVar(&g.validate, "validate-openapi", false, "Validate the OpenAPI document before loading it")
	flags.StringVarP(&g.config, "config", "c", "", "YAML configuration file")
	flags.StringVarP(&g.records, "records", "r", "", "YAML file with related records, keyed by model")
	flags.StringVar(&g.themeManifest, "theme-manifest", "", "YAML theme manifest")
	flags.StringVar(&g.theme, "theme", "", "Theme name (default: the manifest's)")
	flags.StringVar(&g.variant, "variant", "", "Theme variant")
	flags.DurationVar(&g.timeout, "timeout", 10*time.Second, "Timeout for remote OpenAPI documents")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "Log debug output to stderr")
}

// environment is the loaded state a subcommand works with.
type environment struct {
	logger  *zap.Logger
	cfg     config.Config
	schemas map[string]*model.Schema
	order   []string
	classes map[string]*model.RecordClass
	store   *memory.Store
}

func (g *globalFlags) open(ctx context.Context) (*environment, error) {
	logger := zap.NewNop()
	if g.verbose {
		dev, err := zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("create logger: %w", err)
		}
		logger = dev
	}

	cfg, err := g.loadConfig(logger)
	if err != nil {
		return nil, err
	}

	schemas, err := g.loadSchemas(ctx)
	if err != nil {
		return nil, err
	}

	env := &environment{
		logger:  logger,
		cfg:     cfg,
		schemas: make(map[string]*model.Schema, len(schemas)),
		classes: make(map[string]*model.RecordClass, len(schemas)),
		store:   memory.New(),
	}
	for _, schema := range schemas {
		class, err := model.NewRecordClass(schema)
		if err != nil {
			return nil, err
		}
		env.schemas[schema.Name] = schema
		env.classes[schema.Name] = class
		env.order = append(env.order, schema.Name)
	}

	if g.records != "" {
		if err := env.seed(g.records); err != nil {
			return nil, err
		}
	}
	logger.Debug("environment loaded",
		zap.Strings("schemas", env.order),
		zap.String("records", g.records),
	)
	return env, nil
}

func (g *globalFlags) loadConfig(logger *zap.Logger) (config.Config, error) {
	cfg := config.Default()
	if g.config != "" {
		loaded, err := config.LoadFile(g.config)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	cfg.Logger = logger

	if g.themeManifest == "" {
		if g.theme != "" {
			return config.Config{}, errors.New("--theme requires --theme-manifest")
		}
		return cfg, nil
	}
	f, err := os.Open(g.themeManifest)
	if err != nil {
		return config.Config{}, fmt.Errorf("open theme manifest: %w", err)
	}
	defer f.Close()
	manifest, err := config.LoadManifest(f)
	if err != nil {
		return config.Config{}, err
	}
	selector, err := config.NewManifestSelector(manifest)
	if err != nil {
		return config.Config{}, err
	}
	cfg.ThemeSelector = selector
	cfg.Theme = manifest.Name
	if g.theme != "" {
		cfg.Theme = g.theme
	}
	cfg.ThemeVariant = g.variant
	return cfg, nil
}

func (g *globalFlags) loadSchemas(ctx context.Context) ([]*model.Schema, error) {
	switch {
	case g.schemas != "" && g.openapi != "":
		return nil, errors.New("use either --schemas or --openapi, not both")
	case g.schemas != "":
		return model.LoadSchemaFile(g.schemas)
	case g.openapi != "":
		src, err := openapi.SourceFor(g.openapi)
		if err != nil {
			return nil, err
		}
		loader := openapi.NewLoader(openapi.WithHTTPFallback(g.timeout))
		return loader.Schemas(ctx, src,
			openapi.WithValidation(g.validate),
			openapi.WithComponents(g.components...),
		)
	default:
		return nil, errors.New("a schema source is required: pass --schemas or --openapi")
	}
}

// class returns the record class of the named model.
func (e *environment) class(name string) (*model.RecordClass, error) {
	class, ok := e.classes[name]
	if !ok {
		return nil, fmt.Errorf("unknown model %q (known: %s)", name, strings.Join(e.order, ", "))
	}
	return class, nil
}

// records file layout:
//
//	User:
//	  - {id: 1, name: Ada}
//	Order:
//	  - {id: 7, customer_id: 1, items: [1, 2]}
type recordsDocument map[string][]map[string]any

// seed saves every record of path into the store. Scalars are stored first
// for all models so to-many relations can reference records of any model.
func (e *environment) seed(path string) error {
	var doc recordsDocument
	if err := readYAML(path, &doc); err != nil {
		return err
	}
	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)

	type pendingRelations struct {
		record *model.Record
		values map[string]any
	}
	var pending []pendingRelations
	for _, name := range names {
		class, err := e.class(name)
		if err != nil {
			return fmt.Errorf("records: %w", err)
		}
		for i, values := range doc[name] {
			scalars, relations := splitRelations(class.Schema(), values)
			record, err := class.NewRecord(scalars)
			if err != nil {
				return fmt.Errorf("records: %s[%d]: %w", name, i, err)
			}
			if err := e.store.Save(record); err != nil {
				return fmt.Errorf("records: %s[%d]: %w", name, i, err)
			}
			if len(relations) > 0 {
				pending = append(pending, pendingRelations{record: record, values: relations})
			}
		}
	}
	for _, item := range pending {
		if err := e.resolveRelations(item.record, item.values); err != nil {
			return fmt.Errorf("records: %w", err)
		}
	}
	e.logger.Debug("records seeded", zap.String("path", path), zap.Int("models", len(names)))
	return nil
}

// newRecord builds an instance of the named model from a values document.
// An empty path yields a pending record.
func (e *environment) newRecord(name, path string) (*model.Record, error) {
	class, err := e.class(name)
	if err != nil {
		return nil, err
	}
	values := map[string]any{}
	if path != "" {
		if err := readYAML(path, &values); err != nil {
			return nil, err
		}
	}
	scalars, relations := splitRelations(class.Schema(), values)
	record, err := class.NewRecord(scalars)
	if err != nil {
		return nil, err
	}
	if err := e.resolveRelations(record, relations); err != nil {
		return nil, err
	}
	return record, nil
}

func (e *environment) resolveRelations(record *model.Record, values map[string]any) error {
	schema := record.Schema()
	for _, name := range sortedKeys(values) {
		attr, _ := schema.Attribute(name)
		if values[name] == nil {
			continue
		}
		ids, ok := values[name].([]any)
		if !ok {
			return fmt.Errorf("%s.%s: expected a list of keys", schema.Name, name)
		}
		for i := range ids {
			ids[i] = normaliseValue(ids[i])
		}
		items, err := e.store.Lookup(attr.Relation.Target, ids)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", schema.Name, name, err)
		}
		if len(items) != len(ids) {
			return fmt.Errorf("%s.%s: %d of %d %s records found", schema.Name, name, len(items), len(ids), attr.Relation.Target)
		}
		if err := record.Set(name, items); err != nil {
			return err
		}
	}
	return nil
}

// splitRelations separates to-many relation values (lists of keys) from
// everything else. To-one relations are set through their column.
func splitRelations(schema *model.Schema, values map[string]any) (scalars, relations map[string]any) {
	scalars = make(map[string]any, len(values))
	relations = map[string]any{}
	for key, value := range values {
		if attr, ok := schema.Attribute(key); ok && attr.IsCollection() {
			relations[key] = value
			continue
		}
		scalars[key] = normaliseValue(value)
	}
	return scalars, relations
}

// normaliseValue widens YAML integers to int64, the type submitted integers
// deserialize to.
func normaliseValue(value any) any {
	switch v := value.(type) {
	case int:
		return int64(v)
	case []any:
		for i := range v {
			v[i] = normaliseValue(v[i])
		}
		return v
	default:
		return value
	}
}

// exportValues returns record values with related instances replaced by
// their keys.
func exportValues(record *model.Record) map[string]any {
	values := record.Values()
	for key, value := range values {
		if inst, ok := value.(model.Instance); ok {
			values[key] = model.PrimaryKey(inst)
		}
	}
	return values
}

// fieldSet builds a FieldSet over record with the environment's config and
// store as session.
func (e *environment) fieldSet(record *model.Record, prefix string, data any) (*forms.FieldSet, error) {
	opts := []forms.Option{
		forms.WithConfig(e.cfg),
		forms.WithSession(e.store),
		forms.WithPrefix(prefix),
	}
	if data != nil {
		opts = append(opts, forms.WithData(data))
	}
	return forms.New(record, opts...)
}

// readData decodes a submission document: a mapping of input names to a
// value or a list of values.
func readData(path string) (map[string]any, error) {
	data := map[string]any{}
	if err := readYAML(path, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func readYAML(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeYAML(w io.Writer, value any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(value); err != nil {
		return err
	}
	return enc.Close()
}

func sortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
