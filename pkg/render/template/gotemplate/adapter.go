package gotemplate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"reflect"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-fieldset/pkg/render/template"
)

// DefaultExtension is appended to template names that lack one.
const DefaultExtension = ".tmpl"

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	baseDir    string
	templates  fs.FS
	extension  string
	setName    string
	templateFn map[string]any
	globalData map[string]any
	goTemplate []gotemplatepkg.Option
	preHooks   []gotemplatepkg.PreHook
	postHooks  []gotemplatepkg.PostHook
}

// hooked reports whether the configuration needs the go-template engine.
func (cfg *config) hooked() bool {
	return len(cfg.goTemplate) > 0 || len(cfg.preHooks) > 0 || len(cfg.postHooks) > 0
}

// WithBaseDir loads templates from a directory on disk. It is consulted
// before WithFS, so on-disk files override embedded ones.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the default template extension.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithSetName names the underlying pongo2 template set (shown in errors).
func WithSetName(name string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.setName = trimmed
		}
	}
}

// WithTemplateFunc registers helper functions or filters when the engine loads.
func WithTemplateFunc(funcs map[string]any) Option {
	return func(cfg *config) {
		if len(funcs) == 0 {
			return
		}
		if cfg.templateFn == nil {
			cfg.templateFn = make(map[string]any, len(funcs))
		}
		for name, fn := range funcs {
			cfg.templateFn[strings.TrimSpace(name)] = fn
		}
	}
}

// WithGlobalData seeds global context values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// WithGoTemplateOptions passes options straight to the
// github.com/goliatone/go-template engine. NewRenderer switches to that
// engine when any are given; New ignores them.
func WithGoTemplateOptions(options ...gotemplatepkg.Option) Option {
	return func(cfg *config) {
		for _, opt := range options {
			if opt != nil {
				cfg.goTemplate = append(cfg.goTemplate, opt)
			}
		}
	}
}

// WithPreHook registers a go-template pre-render hook, which may rewrite the
// template name or data. It selects the go-template engine.
func WithPreHook(hook gotemplatepkg.PreHook) Option {
	return func(cfg *config) {
		if hook != nil {
			cfg.preHooks = append(cfg.preHooks, hook)
		}
	}
}

// WithPostHook registers a go-template post-render hook, which may rewrite
// the rendered output. It selects the go-template engine.
func WithPostHook(hook gotemplatepkg.PostHook) Option {
	return func(cfg *config) {
		if hook != nil {
			cfg.postHooks = append(cfg.postHooks, hook)
		}
	}
}

func newConfig(options []Option) *config {
	cfg := &config{
		extension: DefaultExtension,
		setName:   "fieldset",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}
	return cfg
}

// NewRenderer returns the go-template engine when hooks or go-template
// options are configured, the pongo2 Engine otherwise. Both read the same
// sources and filters.
func NewRenderer(options ...Option) (template.TemplateRenderer, error) {
	if newConfig(options).hooked() {
		engine, err := NewGoTemplate(options...)
		if err != nil {
			return nil, err
		}
		return engine, nil
	}
	engine, err := New(options...)
	if err != nil {
		return nil, err
	}
	return engine, nil
}

// NewGoTemplate builds a github.com/goliatone/go-template engine from the
// same options as New. Options given through WithGoTemplateOptions run last.
func NewGoTemplate(options ...Option) (*gotemplatepkg.Engine, error) {
	cfg := newConfig(options)
	if cfg.baseDir == "" && cfg.templates == nil {
		return nil, errors.New("gotemplate: need to provide either base dir or fs.FS")
	}

	opts := []gotemplatepkg.Option{gotemplatepkg.WithExtension(cfg.extension)}
	if cfg.baseDir != "" {
		opts = append(opts, gotemplatepkg.WithBaseDir(cfg.baseDir))
	}
	if cfg.templates != nil {
		opts = append(opts, gotemplatepkg.WithFS(cfg.templates))
	}
	if len(cfg.templateFn) > 0 {
		opts = append(opts, gotemplatepkg.WithTemplateFunc(cfg.templateFn))
	}
	if len(cfg.globalData) > 0 {
		opts = append(opts, gotemplatepkg.WithGlobalData(cfg.globalData))
	}
	opts = append(opts, cfg.goTemplate...)

	registerDefaultFilters()
	engine, err := gotemplatepkg.NewRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: configure go-template engine: %w", err)
	}
	for _, hook := range cfg.preHooks {
		engine.RegisterPreHook(hook)
	}
	for _, hook := range cfg.postHooks {
		engine.RegisterPostHook(hook)
	}
	return engine, nil
}

// Engine satisfies template.TemplateRenderer with a pongo2 template set.
// Parsed templates are cached by path.
type Engine struct {
	mu sync.RWMutex

	templateSet *pongo2.TemplateSet
	templates   map[string]*pongo2.Template
	tplExt      string
}

var (
	_ template.TemplateRenderer = (*Engine)(nil)
	_ template.TemplateRenderer = (*gotemplatepkg.Engine)(nil)
)

// New constructs an Engine using the provided configuration options.
func New(options ...Option) (*Engine, error) {
	cfg := newConfig(options)
	if cfg.baseDir == "" && cfg.templates == nil {
		return nil, errors.New("gotemplate: need to provide either base dir or fs.FS")
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}

	engine := &Engine{
		templateSet: pongo2.NewSet(cfg.setName, loaders...),
		templates:   make(map[string]*pongo2.Template),
		tplExt:      cfg.extension,
	}
	registerDefaultFilters()

	if err := engine.GlobalContext(cfg.globalData); err != nil {
		return nil, fmt.Errorf("gotemplate: apply global data: %w", err)
	}
	for name, fn := range cfg.templateFn {
		if err := engine.registerTemplateFunc(name, fn); err != nil {
			return nil, fmt.Errorf("gotemplate: register template func %q: %w", name, err)
		}
	}

	return engine, nil
}

// Render treats name as inline template content when it contains template
// tags and as a template path otherwise.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if isTemplateContent(name) {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate executes the named template file.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	templatePath := name
	if !strings.HasSuffix(templatePath, e.tplExt) {
		templatePath += e.tplExt
	}

	tmpl, err := e.getTemplate(templatePath)
	if err != nil {
		return "", err
	}
	rendered, err := e.execute(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute template %q: %w", templatePath, err)
	}
	return rendered, writeOut(rendered, out)
}

// RenderString parses and executes inline template content.
func (e *Engine) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("gotemplate: engine is nil")
	}

	tmpl, err := e.templateSet.FromString(templateContent)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse template string: %w", err)
	}
	rendered, err := e.execute(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute template string: %w", err)
	}
	return rendered, writeOut(rendered, out)
}

func (e *Engine) execute(tmpl *pongo2.Template, data any) (string, error) {
	viewContext, err := convertToContext(data)
	if err != nil {
		return "", fmt.Errorf("convert data: %w", err)
	}

	var buf bytes.Buffer
	e.mu.RLock()
	err = tmpl.ExecuteWriter(viewContext, &buf)
	e.mu.RUnlock()
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func writeOut(rendered string, out []io.Writer) error {
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return err
		}
	}
	return nil
}

// RegisterFilter registers a pongo2 filter. pongo2 filters are process-wide,
// so registering an existing name fails.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("gotemplate: filter name and function required")
	}

	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}

	if pongo2.FilterExists(name) {
		return fmt.Errorf("gotemplate: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, filter)
}

// GlobalContext merges data into the values every template sees.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.templateSet == nil {
		return errors.New("gotemplate: engine is nil")
	}
	if data == nil {
		return nil
	}

	globalCtx, err := convertToContext(data)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.templateSet.Globals == nil {
		e.templateSet.Globals = make(pongo2.Context)
	}
	e.templateSet.Globals.Update(globalCtx)
	return nil
}

func (e *Engine) registerTemplateFunc(name string, fn any) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || fn == nil {
		return nil
	}

	if filter, ok := fn.(pongo2.FilterFunction); ok {
		if pongo2.FilterExists(trimmed) {
			return nil
		}
		return pongo2.RegisterFilter(trimmed, filter)
	}

	if !isCallable(fn) {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.templateSet.Globals == nil {
		e.templateSet.Globals = make(pongo2.Context)
	}
	e.templateSet.Globals[trimmed] = fn
	return nil
}

func (e *Engine) getTemplate(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[path]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}

	tmpl, err := e.templateSet.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load template %q: %w", path, err)
	}

	e.templates[path] = tmpl
	return tmpl, nil
}

func isTemplateContent(s string) bool {
	return strings.Contains(s, "{{") || strings.Contains(s, "{%")
}

func isCallable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Kind() == reflect.Func
}

// convertToContext flattens data into JSON-shaped values so templates address
// struct fields by their json tags.
func convertToContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return convertMapToContext(map[string]any(v))
	case map[string]any:
		return convertMapToContext(v)
	default:
		decoded, err := jsonToAny(v)
		if err != nil {
			return nil, err
		}
		m, ok := decoded.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("template data must be an object, got %T", data)
		}
		return convertMapToContext(m)
	}
}

func convertMapToContext(in map[string]any) (pongo2.Context, error) {
	out := make(pongo2.Context, len(in))
	for key, value := range in {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

func convertValue(value any) (any, error) {
	if value == nil || isCallable(value) {
		return value, nil
	}
	switch v := value.(type) {
	case string, bool, float64, int:
		return v, nil
	case pongo2.Context:
		return convertMapToContext(map[string]any(v))
	case map[string]any:
		return convertMapToContext(v)
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			converted, err := convertValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	default:
		decoded, err := jsonToAny(v)
		if err != nil {
			return nil, err
		}
		return convertValue(decoded)
	}
}

func jsonToAny(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func registerDefaultFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
	if !pongo2.FilterExists("classlist") {
		_ = pongo2.RegisterFilter("classlist", filterClassList)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterClassList normalises a space separated class attribute, dropping
// duplicates while keeping order.
func filterClassList(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	tokens := strings.Fields(in.String())
	seen := make(map[string]struct{}, len(tokens))
	keep := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		keep = append(keep, token)
	}
	return pongo2.AsValue(strings.Join(keep, " ")), nil
}
