package forms

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/goliatone/go-fieldset/pkg/config"
	"github.com/goliatone/go-fieldset/pkg/fields"
	"github.com/goliatone/go-fieldset/pkg/model"
)

// defaultFields builds the base sequence of schema: scalar attributes
// (without foreign key columns a to-one relation renders under), then
// relations, each group ordered by order.
func defaultFields(schema *model.Schema, order config.Order) []*fields.Field {
	var scalars, relations []*fields.Field
	for _, attr := range schema.Attributes {
		if attr.IsRelation() {
			relations = append(relations, fields.FromAttribute(schema, attr))
			continue
		}
		if _, replaced := schema.RelationForColumn(attr.Name); replaced {
			continue
		}
		scalars = append(scalars, fields.FromAttribute(schema, attr))
	}
	if order != config.OrderDeclared {
		byKey := func(list []*fields.Field) {
			sort.SliceStable(list, func(i, j int) bool { return list[i].Key() < list[j].Key() })
		}
		byKey(scalars)
		byKey(relations)
	}
	return append(scalars, relations...)
}

// sameField compares identities. Manual fields that were never bound carry no
// model type and match by key.
func sameField(a, b *fields.Field) bool {
	if a.Key() != b.Key() {
		return false
	}
	return a.ModelType() == "" || b.ModelType() == "" || a.ModelType() == b.ModelType()
}

func indexOf(list []*fields.Field, f *fields.Field) int {
	for i, item := range list {
		if sameField(item, f) {
			return i
		}
	}
	return -1
}

func indexOfKey(list []*fields.Field, key string) int {
	for i, item := range list {
		if item.Key() == key {
			return i
		}
	}
	return -1
}

func (fs *FieldSet) checkFields(param string, list []*fields.Field) error {
	for i, f := range list {
		if f == nil {
			return fmt.Errorf("%w: %s parameter should be a list of fields; entry %d is nil", ErrConfiguration, param, i)
		}
		if typ := f.ModelType(); typ != "" && typ != fs.schema.Name {
			return fmt.Errorf("%w: %s parameter should be a list of %s fields; %s belongs to %s", ErrConfiguration, param, fs.schema.Name, f.Key(), typ)
		}
	}
	return nil
}

// resolve applies s to the default sequence, followed by the manual fields
// in the order they were added, and returns the unbound render set.
func (fs *FieldSet) resolve(s settings) ([]*fields.Field, error) {
	if len(s.include) > 0 && len(s.exclude) > 0 {
		return nil, fmt.Errorf("%w: specify at most one of include, exclude", ErrConfiguration)
	}
	for _, param := range []struct {
		name string
		list []*fields.Field
	}{{"include", s.include}, {"exclude", s.exclude}, {"options", s.overlays}} {
		if err := fs.checkFields(param.name, param.list); err != nil {
			return nil, err
		}
	}

	var sequence []*fields.Field
	if len(s.include) > 0 {
		sequence = append(sequence, s.include...)
	} else {
		base := append(append([]*fields.Field(nil), fs.defaults...), fs.manual...)
		var ignored []string
		for _, f := range base {
			switch {
			case indexOf(s.exclude, f) >= 0:
			case !s.pk && f.Attribute().PrimaryKey:
			default:
				sequence = append(sequence, f)
				continue
			}
			ignored = append(ignored, f.Key())
		}
		if len(ignored) > 0 {
			fs.cfg.Logger.Debug("fieldset attributes ignored",
				zap.String("model", fs.schema.Name),
				zap.Strings("fields", ignored),
			)
		}
	}

	for _, overlay := range s.overlays {
		if i := indexOf(sequence, overlay); i >= 0 {
			sequence[i] = overlay
		}
	}
	for _, f := range sequence {
		if f.Multiple() && !f.IsManual() && !f.Attribute().IsCollection() {
			return nil, fmt.Errorf("%w: %s holds a single value; multiple choice needs a to-many attribute or a manual field", ErrConfiguration, f.Key())
		}
	}
	return sequence, nil
}
