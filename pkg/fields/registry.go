package fields

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-fieldset/pkg/model"
)

// Matcher decides whether a renderer should handle the supplied field.
type Matcher func(f *Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	renderer Renderer
	order    int
}

// Registry selects default renderers for fields. Matchers registered with a
// priority are evaluated first (higher priority wins, ties fall back to
// the latest registration); the semantic type table is the fallback.
type Registry struct {
	mu    sync.RWMutex
	types map[model.FieldType]Renderer
	rules []rule
}

var defaultRegistry = NewRegistry()

// NewRegistry constructs a registry with the built-in type renderers.
func NewRegistry() *Registry {
	reg := &Registry{types: make(map[model.FieldType]Renderer)}
	reg.registerBuiltins()
	return reg
}

func (r *Registry) registerBuiltins() {
	r.types[model.FieldTypeString] = TextRenderer{}
	r.types[model.FieldTypeText] = TextRenderer{}
	r.types[model.FieldTypeInteger] = IntegerRenderer{}
	r.types[model.FieldTypeNumber] = TextRenderer{}
	r.types[model.FieldTypeBoolean] = CheckBoxRenderer{}
	r.types[model.FieldTypeDate] = DateRenderer{InputType: "date"}
	r.types[model.FieldTypeDateTime] = DateRenderer{InputType: "datetime-local"}
	r.types[model.FieldTypeTime] = DateRenderer{InputType: "time"}
	r.types[model.FieldTypeBinary] = FileRenderer{}
	r.types[model.FieldTypeRelation] = SelectRenderer{}
}

// Register sets the default renderer for a semantic type.
func (r *Registry) Register(typ model.FieldType, renderer Renderer) {
	if r == nil || renderer == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[typ] = renderer
}

// RegisterMatcher adds a renderer chosen when matcher accepts a field.
// Callers should avoid duplicate names; the latest registration wins ties.
func (r *Registry) RegisterMatcher(name string, priority int, matcher Matcher, renderer Renderer) {
	if r == nil || matcher == nil || renderer == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		renderer: renderer,
		order:    len(r.rules),
	})
}

// Lookup returns the renderer registered for typ.
func (r *Registry) Lookup(typ model.FieldType) (Renderer, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	renderer, ok := r.types[typ]
	return renderer, ok
}

// Resolve returns the renderer for f: the best matching rule, then the type
// table.
func (r *Registry) Resolve(f *Field) (Renderer, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order > rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(f) {
			return entry.renderer, true
		}
	}
	return r.Lookup(f.attr.Type)
}

// Clone copies the registry so per-FieldSet overrides do not leak.
func (r *Registry) Clone() *Registry {
	out := &Registry{types: make(map[model.FieldType]Renderer)}
	if r == nil {
		out.registerBuiltins()
		return out
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for typ, renderer := range r.types {
		out.types[typ] = renderer
	}
	out.rules = append([]rule(nil), r.rules...)
	return out
}

// Names lists registered matcher names in evaluation order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order > rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	names := make([]string, len(rules))
	for i, entry := range rules {
		names[i] = entry.name
	}
	return names
}

// DefaultRegistry returns a copy of the built-in registry.
func DefaultRegistry() *Registry {
	return defaultRegistry.Clone()
}
