package model

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

const structTag = "fieldset"

var (
	timeType     = reflect.TypeOf(time.Time{})
	bytesType    = reflect.TypeOf([]byte(nil))
	structsCache sync.Map // reflect.Type -> *StructClass
)

// Initializer is implemented by struct models that need more than a zero value
// to be usable. StructClass.New calls Init and reports failures as
// ErrInstantiation.
type Initializer interface {
	Init() error
}

// StructClass adapts a Go struct type into a Class. Attributes come from
// exported fields, annotated with `fieldset` tags:
//
//	type Order struct {
//		ID       int    `fieldset:"id,pk"`
//		UserID   int    `fieldset:"user_id,required,fk=User"`
//		User     *User  `fieldset:"user,relation=User,column=user_id"`
//		Quantity int    `fieldset:"quantity,required"`
//		Note     string `fieldset:"note,type=text,maxlength=200"`
//	}
//
// Fields tagged "-" are skipped. Untagged struct values other than time.Time
// and untagged non-byte slices are skipped.
type StructClass struct {
	typ    reflect.Type
	schema *Schema
	fields map[string][]int
}

// ClassOf returns the cached class for the struct (or pointer to struct) type
// of prototype.
func ClassOf(prototype any) (*StructClass, error) {
	typ := reflect.TypeOf(prototype)
	for typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model: %T is not a struct", prototype)
	}
	if cached, ok := structsCache.Load(typ); ok {
		return cached.(*StructClass), nil
	}
	class, err := buildStructClass(typ)
	if err != nil {
		return nil, err
	}
	actual, _ := structsCache.LoadOrStore(typ, class)
	return actual.(*StructClass), nil
}

// MustClassOf panics when ClassOf fails.
func MustClassOf(prototype any) *StructClass {
	class, err := ClassOf(prototype)
	if err != nil {
		panic(err)
	}
	return class
}

// Wrap adapts a pointer to a struct into an Instance.
func Wrap(ptr any) (*StructInstance, error) {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, fmt.Errorf("model: Wrap needs a non-nil struct pointer, got %T", ptr)
	}
	class, err := ClassOf(ptr)
	if err != nil {
		return nil, err
	}
	return &StructInstance{class: class, value: rv}, nil
}

// MustWrap panics when Wrap fails.
func MustWrap(ptr any) *StructInstance {
	inst, err := Wrap(ptr)
	if err != nil {
		panic(err)
	}
	return inst
}

func (c *StructClass) Schema() *Schema { return c.schema }

// New allocates a zero value and runs Init when the type provides it.
func (c *StructClass) New() (Instance, error) {
	rv := reflect.New(c.typ)
	if initializer, ok := rv.Interface().(Initializer); ok {
		if err := initializer.Init(); err != nil {
			return nil, fmt.Errorf("%w %s: %v", ErrInstantiation, c.schema.Name, err)
		}
	}
	return &StructInstance{class: c, value: rv}, nil
}

func buildStructClass(typ reflect.Type) (*StructClass, error) {
	class := &StructClass{
		typ:    typ,
		schema: &Schema{Name: typ.Name()},
		fields: make(map[string][]int),
	}
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		tag, tagged := field.Tag.Lookup(structTag)
		if tag == "-" {
			continue
		}
		attr, ok, err := attributeFromField(field, tag, tagged)
		if err != nil {
			return nil, fmt.Errorf("model: %s.%s: %w", typ.Name(), field.Name, err)
		}
		if !ok {
			continue
		}
		class.schema.Attributes = append(class.schema.Attributes, attr)
		class.fields[attr.Name] = field.Index
	}
	if err := class.schema.Validate(); err != nil {
		return nil, err
	}
	return class, nil
}

func attributeFromField(field reflect.StructField, tag string, tagged bool) (Attribute, bool, error) {
	parts := strings.Split(tag, ",")
	attr := Attribute{Name: strings.TrimSpace(parts[0])}
	if attr.Name == "" {
		attr.Name = SnakeCase(field.Name)
	}

	required := false
	many := false
	for _, part := range parts[1:] {
		key, value, _ := strings.Cut(strings.TrimSpace(part), "=")
		switch key {
		case "pk":
			attr.PrimaryKey = true
		case "required":
			required = true
		case "fk":
			attr.ForeignKey = value
		case "maxlength":
			n, err := strconv.Atoi(value)
			if err != nil {
				return Attribute{}, false, fmt.Errorf("invalid maxlength %q", value)
			}
			attr.MaxLength = n
		case "type":
			attr.Type = FieldType(value)
		case "relation":
			attr.Relation = &Relation{Target: value, Cardinality: ToOne}
		case "column":
			if attr.Relation == nil {
				attr.Relation = &Relation{Cardinality: ToOne}
			}
			attr.Relation.Column = value
		case "many":
			many = true
		case "default":
			attr.Default = value
		case "":
		default:
			return Attribute{}, false, fmt.Errorf("unknown tag option %q", key)
		}
	}
	attr.Nullable = !required && !attr.PrimaryKey

	typ := field.Type
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	if attr.Relation != nil {
		attr.Type = FieldTypeRelation
		if many || typ.Kind() == reflect.Slice {
			attr.Relation.Cardinality = ToMany
		}
		return attr, true, nil
	}

	inferred, ok := inferType(typ)
	if !ok && !tagged {
		return Attribute{}, false, nil
	}
	if attr.Type == "" {
		if !ok {
			return Attribute{}, false, fmt.Errorf("cannot infer type of %s", field.Type)
		}
		attr.Type = inferred
	}
	return attr, true, nil
}

func inferType(typ reflect.Type) (FieldType, bool) {
	if typ == timeType {
		return FieldTypeDateTime, true
	}
	if typ == bytesType {
		return FieldTypeBinary, true
	}
	switch typ.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return FieldTypeInteger, true
	case reflect.Float32, reflect.Float64:
		return FieldTypeNumber, true
	case reflect.Bool:
		return FieldTypeBoolean, true
	case reflect.String:
		return FieldTypeString, true
	default:
		return "", false
	}
}

// StructInstance is an Instance backed by a struct pointer.
type StructInstance struct {
	class   *StructClass
	value   reflect.Value
	session Session
}

func (s *StructInstance) Schema() *Schema { return s.class.schema }

func (s *StructInstance) Class() Class { return s.class }

// Unwrap returns the wrapped struct pointer.
func (s *StructInstance) Unwrap() any { return s.value.Interface() }

// Session implements SessionCarrier once the instance is attached.
func (s *StructInstance) Session() Session { return s.session }

// Attach records the session the instance belongs to.
func (s *StructInstance) Attach(session Session) { s.session = session }

// Get returns the attribute value with pointers dereferenced. Relations are
// returned as Instances ([]Instance for collections).
func (s *StructInstance) Get(name string) any {
	index, ok := s.class.fields[name]
	if !ok {
		return nil
	}
	fv := s.value.Elem().FieldByIndex(index)
	attr, _ := s.class.schema.Attribute(name)
	if attr.IsRelation() {
		return relationValue(fv)
	}
	for fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return nil
		}
		fv = fv.Elem()
	}
	return fv.Interface()
}

func relationValue(fv reflect.Value) any {
	if fv.Kind() == reflect.Slice {
		out := make([]Instance, 0, fv.Len())
		for i := 0; i < fv.Len(); i++ {
			if inst := wrapValue(fv.Index(i)); inst != nil {
				out = append(out, inst)
			}
		}
		return out
	}
	if inst := wrapValue(fv); inst != nil {
		return inst
	}
	return nil
}

func wrapValue(v reflect.Value) Instance {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
	case reflect.Struct:
		if !v.CanAddr() {
			return nil
		}
		v = v.Addr()
	default:
		return nil
	}
	inst, err := Wrap(v.Interface())
	if err != nil {
		return nil
	}
	return inst
}

// Set assigns value, converting numeric kinds and allocating pointers.
// Numbers the field cannot hold fail with ErrOutOfRange and leave the field
// untouched.
func (s *StructInstance) Set(name string, value any) error {
	fv, err := s.field(name)
	if err != nil {
		return err
	}
	if err := s.CheckValue(name, value); err != nil {
		return err
	}
	return s.set(fv, value)
}

// CheckValue assigns value to a scratch copy of the field.
func (s *StructInstance) CheckValue(name string, value any) error {
	fv, err := s.field(name)
	if err != nil {
		return err
	}
	switch value.(type) {
	case nil, Instance, []Instance:
		return nil
	}
	return assign(reflect.New(fv.Type()).Elem(), reflect.ValueOf(value))
}

func (s *StructInstance) field(name string) (reflect.Value, error) {
	index, ok := s.class.fields[name]
	if !ok {
		return reflect.Value{}, fmt.Errorf("model: %s has no attribute %q", s.class.schema.Name, name)
	}
	return s.value.Elem().FieldByIndex(index), nil
}

func (s *StructInstance) set(fv reflect.Value, value any) error {
	if value == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}
	switch v := value.(type) {
	case []Instance:
		return assignInstances(fv, v)
	case Instance:
		return assignInstance(fv, v)
	}
	return assign(fv, reflect.ValueOf(value))
}

func assign(dst reflect.Value, src reflect.Value) error {
	if dst.Kind() == reflect.Pointer && src.Type() != dst.Type() {
		elem := reflect.New(dst.Type().Elem())
		if err := assign(elem.Elem(), src); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}
	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case src.Type().ConvertibleTo(dst.Type()) && src.Kind() != reflect.String && dst.Kind() != reflect.String:
		if err := checkRange(dst, src); err != nil {
			return err
		}
		dst.Set(src.Convert(dst.Type()))
	case src.Kind() == reflect.String && dst.Kind() == reflect.String:
		dst.SetString(src.String())
	default:
		return fmt.Errorf("model: cannot assign %s to %s", src.Type(), dst.Type())
	}
	return nil
}

// checkRange rejects numeric conversions that would wrap or truncate.
func checkRange(dst, src reflect.Value) error {
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch src.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if dst.OverflowInt(src.Int()) {
				return fmt.Errorf("%w: %d does not fit %s", ErrOutOfRange, src.Int(), dst.Type())
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			if src.Uint() > math.MaxInt64 || dst.OverflowInt(int64(src.Uint())) {
				return fmt.Errorf("%w: %d does not fit %s", ErrOutOfRange, src.Uint(), dst.Type())
			}
		case reflect.Float32, reflect.Float64:
			f := src.Float()
			if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 || dst.OverflowInt(int64(f)) {
				return fmt.Errorf("%w: %g does not fit %s", ErrOutOfRange, f, dst.Type())
			}
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		switch src.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if src.Int() < 0 || dst.OverflowUint(uint64(src.Int())) {
				return fmt.Errorf("%w: %d does not fit %s", ErrOutOfRange, src.Int(), dst.Type())
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			if dst.OverflowUint(src.Uint()) {
				return fmt.Errorf("%w: %d does not fit %s", ErrOutOfRange, src.Uint(), dst.Type())
			}
		case reflect.Float32, reflect.Float64:
			f := src.Float()
			if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 || dst.OverflowUint(uint64(f)) {
				return fmt.Errorf("%w: %g does not fit %s", ErrOutOfRange, f, dst.Type())
			}
		}
	case reflect.Float32:
		switch src.Kind() {
		case reflect.Float32, reflect.Float64:
			if dst.OverflowFloat(src.Float()) {
				return fmt.Errorf("%w: %g does not fit %s", ErrOutOfRange, src.Float(), dst.Type())
			}
		}
	}
	return nil
}

func unwrapInstance(inst Instance) (reflect.Value, error) {
	u, ok := inst.(interface{ Unwrap() any })
	if !ok {
		return reflect.Value{}, fmt.Errorf("model: %T is not a struct instance", inst)
	}
	return reflect.ValueOf(u.Unwrap()), nil
}

func assignInstance(dst reflect.Value, inst Instance) error {
	src, err := unwrapInstance(inst)
	if err != nil {
		return err
	}
	if dst.Kind() != reflect.Pointer {
		src = src.Elem()
	}
	return assign(dst, src)
}

func assignInstances(dst reflect.Value, items []Instance) error {
	if dst.Kind() != reflect.Slice {
		return fmt.Errorf("model: cannot assign a collection to %s", dst.Type())
	}
	slice := reflect.MakeSlice(dst.Type(), 0, len(items))
	elemType := dst.Type().Elem()
	for _, item := range items {
		src, err := unwrapInstance(item)
		if err != nil {
			return err
		}
		if elemType.Kind() != reflect.Pointer {
			src = src.Elem()
		}
		if !src.Type().AssignableTo(elemType) {
			return fmt.Errorf("model: cannot add %s to %s", src.Type(), dst.Type())
		}
		slice = reflect.Append(slice, src)
	}
	dst.Set(slice)
	return nil
}
