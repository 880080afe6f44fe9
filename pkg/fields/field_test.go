package fields_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-fieldset/pkg/fields"
	"github.com/goliatone/go-fieldset/pkg/model"
	"github.com/goliatone/go-fieldset/pkg/validators"
)

type thing struct {
	ID     int       `fieldset:"id,pk"`
	Title  string    `fieldset:"title,required,maxlength=10"`
	Count  int       `fieldset:"count"`
	Price  float64   `fieldset:"price"`
	Active bool      `fieldset:"active"`
	Day    time.Time `fieldset:"day,type=date"`
	Body   string    `fieldset:"body,type=text"`
	File   []byte    `fieldset:"file"`
}

type values map[string][]string

func (v values) GetAll(key string) []string { return v[key] }

func (v values) GetOne(key string) (string, bool) {
	if len(v[key]) == 0 {
		return "", false
	}
	return v[key][0], true
}

// parent is a minimal FieldSet stand-in.
type parent struct {
	inst     model.Instance
	data     fields.Data
	registry *fields.Registry
	errors   map[string][]string
	readonly bool
	manual   map[string]any
}

func (p *parent) Schema() *model.Schema           { return p.inst.Schema() }
func (p *parent) Model() model.Instance           { return p.inst }
func (p *parent) Session() model.Session          { return nil }
func (p *parent) Data() fields.Data               { return p.data }
func (p *parent) Name(column string) string       { return p.inst.Schema().Name + "--" + column }
func (p *parent) Prettify(text string) string     { return model.Prettify(text) }
func (p *parent) Registry() *fields.Registry      { return p.registry }
func (p *parent) FieldErrors(key string) []string { return p.errors[key] }
func (p *parent) SelectSize() int                 { return 0 }
func (p *parent) Readonly() bool                  { return p.readonly }

func (p *parent) ManualValue(key string) (any, bool) {
	value, ok := p.manual[key]
	return value, ok
}

func (p *parent) SetManualValue(key string, value any) {
	if p.manual == nil {
		p.manual = make(map[string]any)
	}
	p.manual[key] = value
}

func newThing() *thing {
	return &thing{
		Title:  "Hi",
		Count:  3,
		Price:  2.5,
		Active: true,
		Day:    time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Body:   "a <b>",
	}
}

// bound returns a lookup of fields of value bound to a parent carrying data.
func bound(t *testing.T, value *thing, data fields.Data) (*parent, func(string) *fields.Field) {
	t.Helper()
	inst := model.MustWrap(value)
	p := &parent{inst: inst, data: data, registry: fields.DefaultRegistry()}
	return p, func(name string) *fields.Field {
		attr, ok := inst.Schema().Attribute(name)
		if !ok {
			t.Fatalf("unknown attribute %q", name)
		}
		return fields.FromAttribute(inst.Schema(), attr).Bind(p)
	}
}

func mustRender(t *testing.T, f *fields.Field) string {
	t.Helper()
	out, err := f.Render()
	if err != nil {
		t.Fatalf("render %s: %v", f.Key(), err)
	}
	return out
}

func TestDefaultRenderers(t *testing.T) {
	_, field := bound(t, newThing(), nil)

	cases := map[string]string{
		"title":  `<input id="thing--title" maxlength="10" name="thing--title" type="text" value="Hi" />`,
		"count":  `<input id="thing--count" name="thing--count" type="text" value="3" />`,
		"price":  `<input id="thing--price" name="thing--price" type="text" value="2.5" />`,
		"active": `<input checked="checked" id="thing--active" name="thing--active" type="checkbox" value="True" />`,
		"day":    `<input id="thing--day" name="thing--day" type="date" value="2024-05-01" />`,
		"body":   `<input id="thing--body" name="thing--body" type="text" value="a &lt;b&gt;" />`,
		"file":   `<input id="thing--file" name="thing--file" type="file" />`,
	}
	for name, want := range cases {
		if got := mustRender(t, field(name)); got != want {
			t.Fatalf("%s:\nwant %s\ngot  %s", name, want, got)
		}
	}
}

func TestOverlayRenderers(t *testing.T) {
	_, field := bound(t, newThing(), nil)

	cases := []struct {
		name string
		f    *fields.Field
		want string
	}{
		{"password", field("title").Password(), `<input id="thing--title" maxlength="10" name="thing--title" type="password" value="Hi" />`},
		{"hidden", field("count").Hidden(), `<input id="thing--count" name="thing--count" type="hidden" value="3" />`},
		{"textarea", field("body").Textarea("20x5"), `<textarea cols="20" id="thing--body" name="thing--body" rows="5">a &lt;b&gt;</textarea>`},
		{"disabled", field("title").Disabled(), `<input disabled="disabled" id="thing--title" maxlength="10" name="thing--title" type="text" value="Hi" />`},
		{"attrs", field("count").WithAttrs(map[string]string{"class": "narrow"}), `<input class="narrow" id="thing--count" name="thing--count" type="text" value="3" />`},
		{"readonly", field("title").Readonly(), `Hi`},
		{
			"radio",
			field("count").Radio(fields.Choices("1", "3")),
			`<input id="thing--count_1" name="thing--count" type="radio" value="1" />1<br /><input checked="checked" id="thing--count_3" name="thing--count" type="radio" value="3" />3`,
		},
		{
			"checkbox set",
			field("count").Checkbox(fields.Pairs("One", "1", "Three", "3")),
			`<input id="thing--count" name="thing--count" type="checkbox" value="1" />One<br /><input checked="checked" id="thing--count" name="thing--count" type="checkbox" value="3" />Three`,
		},
		{
			"boolean dropdown",
			field("active").Dropdown(nil, false),
			"<select id=\"thing--active\" name=\"thing--active\"><option value=\"True\" selected=\"selected\">Yes</option>\n<option value=\"False\">No</option></select>",
		},
		{
			"multiple dropdown",
			field("count").Dropdown(fields.Choices("1", "3"), true),
			"<select id=\"thing--count\" multiple=\"multiple\" name=\"thing--count\" size=\"5\"><option value=\"1\">1</option>\n<option value=\"3\" selected=\"selected\">3</option></select>",
		},
		{"readonly option label", field("count").Dropdown(fields.Pairs("One", "1", "Three", "3"), false).Readonly(), `Three`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := mustRender(t, tc.f); got != tc.want {
				t.Fatalf("\nwant %s\ngot  %s", tc.want, got)
			}
		})
	}
}

func TestRenderWith_Attributes(t *testing.T) {
	_, field := bound(t, newThing(), nil)
	title := field("title")

	out, err := title.RenderWith(map[string]string{"readonly": "true"})
	if err != nil || out != "Hi" {
		t.Fatalf("expected read-only text, got %q (err %v)", out, err)
	}
	out, err = title.RenderWith(map[string]string{"disabled": "false"})
	if err != nil || strings.Contains(out, "disabled") {
		t.Fatalf("expected a falsy disabled attribute to be dropped, got %q (err %v)", out, err)
	}
}

func TestParentReadonly(t *testing.T) {
	p, field := bound(t, newThing(), nil)
	p.readonly = true
	if got := mustRender(t, field("day")); got != "2024-05-01" {
		t.Fatalf("expected display text, got %q", got)
	}
}

func TestOverlaysReturnCopies(t *testing.T) {
	_, field := bound(t, newThing(), nil)
	title := field("title")
	hidden := title.Hidden().WithLabel("Heading")

	if title.IsHidden() || title.Label() != "Title" {
		t.Fatalf("overlay mutated the receiver: hidden=%v label=%q", title.IsHidden(), title.Label())
	}
	if !hidden.IsHidden() || hidden.Label() != "Heading" {
		t.Fatalf("unexpected overlay hidden=%v label=%q", hidden.IsHidden(), hidden.Label())
	}
	if !title.Equal(hidden) {
		t.Fatal("expected overlays to keep field identity")
	}
	if reset := hidden.Reset(); reset.IsHidden() || reset.Label() != "Heading" {
		t.Fatalf("unexpected reset hidden=%v label=%q", reset.IsHidden(), reset.Label())
	}
	if title.Equal(field("count")) {
		t.Fatal("expected different keys to differ")
	}
}

func TestHelpIsSanitised(t *testing.T) {
	f := fields.New("note", "", nil).Help(`<em>careful</em><script>alert(1)</script>`)
	if got := f.HelpText(); got != "<em>careful</em>" {
		t.Fatalf("unexpected help %q", got)
	}
}

func TestDeserialize(t *testing.T) {
	data := values{
		"thing--title":  {"New"},
		"thing--count":  {"12"},
		"thing--price":  {"0.75"},
		"thing--day":    {"2024-06-02"},
		"thing--body":   {""},
		"thing--active": {},
	}
	_, field := bound(t, newThing(), data)

	cases := map[string]any{
		"title":  "New",
		"count":  int64(12),
		"price":  0.75,
		"day":    time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
		"body":   nil,
		"active": false,
	}
	for name, want := range cases {
		got, err := field(name).Deserialize()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}

	if got := field("body").Value(); got != "a <b>" {
		t.Fatalf("expected empty submissions to fall back to the model, got %#v", got)
	}
	if got := field("count").RawValue(); got != "12" {
		t.Fatalf("expected submitted raw value, got %q", got)
	}
}

func TestDeserialize_Multiple(t *testing.T) {
	_, field := bound(t, newThing(), values{"thing--count": {"1", "", "3"}})
	got, err := field("count").Dropdown(fields.Choices("1", "3"), true).Deserialize()
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if diff := cmp.Diff([]any{int64(1), int64(3)}, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestDeserialize_WithoutData(t *testing.T) {
	_, field := bound(t, newThing(), nil)
	if _, err := field("title").Deserialize(); err != fields.ErrNoData {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestCheck(t *testing.T) {
	data := values{
		"thing--title": {""},
		"thing--count": {"many"},
		"thing--price": {"1.5"},
		"thing--body":  {"ab"},
	}
	_, field := bound(t, newThing(), data)

	cases := []struct {
		name string
		f    *fields.Field
		want []string
	}{
		{"required", field("title"), []string{"Please enter a value"}},
		{"integer", field("count"), []string{"Value is not an integer"}},
		{"no validators", field("price"), nil},
		{"optional empty", field("day"), nil},
		{"chain", field("body").Validate(validators.MinLength(3)), []string{"Value must be at least 3 characters long"}},
		{"readonly skipped", field("title").Readonly(), nil},
		{"required overlay", field("day").Required(), []string{"Please enter a value"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.f.Check()
			if err != nil {
				t.Fatalf("check: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("messages mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSync(t *testing.T) {
	value := newThing()
	_, field := bound(t, value, values{
		"thing--title": {"New"},
		"thing--count": {"7"},
		"thing--day":   {"2024-06-02"},
	})
	for _, name := range []string{"title", "count", "day", "active", "file"} {
		if err := field(name).Sync(); err != nil {
			t.Fatalf("sync %s: %v", name, err)
		}
	}
	if value.Title != "New" || value.Count != 7 || value.Active {
		t.Fatalf("unexpected synced value %+v", value)
	}
	if !value.Day.Equal(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected day %v", value.Day)
	}
	if err := field("body").Readonly().Sync(); err != nil || value.Body != "a <b>" {
		t.Fatalf("expected read-only fields to be skipped, body=%q err=%v", value.Body, err)
	}
}

func TestManualField(t *testing.T) {
	p, _ := bound(t, newThing(), values{"thing--confirm": {"yes"}})
	f := fields.New("confirm", model.FieldTypeString, "initial").Bind(p)

	if got := f.ModelValue(); got != "initial" {
		t.Fatalf("expected initial value, got %#v", got)
	}
	if f.ModelType() != "thing" {
		t.Fatalf("expected manual fields to adopt the parent type, got %q", f.ModelType())
	}
	if err := f.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if got := f.ModelValue(); got != "yes" {
		t.Fatalf("expected synced value, got %#v", got)
	}
	if err := fields.New("loose", "", nil).Sync(); err == nil {
		t.Fatal("expected unbound manual fields to fail sync")
	}
}

func TestCompositeRenderer(t *testing.T) {
	clock := fields.CompositeRenderer{
		Parts: []string{"h", "m"},
		Split: func(value any) []string { return strings.SplitN(value.(string), ":", 2) },
		Join:  func(parts []string) (any, error) { return strings.Join(parts, ":"), nil },
	}
	p, _ := bound(t, newThing(), nil)
	f := fields.New("alarm", "", "07:30").WithRenderer(clock).Bind(p)

	want := `<input id="thing--alarm-h" name="thing--alarm-h" type="text" value="07" /><input id="thing--alarm-m" name="thing--alarm-m" type="text" value="30" />`
	if got := mustRender(t, f); got != want {
		t.Fatalf("\nwant %s\ngot  %s", want, got)
	}

	p.data = values{"thing--alarm-h": {"08"}, "thing--alarm-m": {"15"}}
	got, err := f.Deserialize()
	if err != nil || got != "08:15" {
		t.Fatalf("expected joined value, got %#v (err %v)", got, err)
	}
}

func TestErrorsFromParent(t *testing.T) {
	p, field := bound(t, newThing(), nil)
	p.errors = map[string][]string{"title": {"taken"}}
	if diff := cmp.Diff([]string{"taken"}, field("title").Errors()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryMatchers(t *testing.T) {
	p, field := bound(t, newThing(), nil)
	isText := func(f *fields.Field) bool { return f.Attribute().Type == model.FieldTypeText }
	p.registry.RegisterMatcher("long text", 10, isText, fields.TextareaRenderer{})
	p.registry.RegisterMatcher("everything", 1, func(*fields.Field) bool { return true }, fields.HiddenRenderer{})

	if got, want := mustRender(t, field("body")), `<textarea id="thing--body" name="thing--body">a &lt;b&gt;</textarea>`; got != want {
		t.Fatalf("\nwant %s\ngot  %s", want, got)
	}
	if got, want := mustRender(t, field("title")), `<input id="thing--title" name="thing--title" type="hidden" value="Hi" />`; got != want {
		t.Fatalf("\nwant %s\ngot  %s", want, got)
	}
	if diff := cmp.Diff([]string{"long text", "everything"}, p.registry.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if names := fields.DefaultRegistry().Names(); len(names) != 0 {
		t.Fatalf("expected registrations to stay local, got %v", names)
	}
}
