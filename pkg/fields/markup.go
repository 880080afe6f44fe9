package fields

import (
	"html"
	"sort"
	"strings"
)

// Attrs is a set of HTML attributes. Rendering sorts keys alphabetically so
// output is stable.
type Attrs map[string]string

// Merge returns a copy of a overlaid with b.
func (a Attrs) Merge(b map[string]string) Attrs {
	out := make(Attrs, len(a)+len(b))
	for key, value := range a {
		out[key] = value
	}
	for key, value := range b {
		out[key] = value
	}
	return out
}

func writeAttrs(b *strings.Builder, attrs Attrs) {
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(attrs[key]))
		b.WriteByte('"')
	}
}

// VoidTag renders a self-closing element: <input a="1" b="2" />.
func VoidTag(name string, attrs Attrs) string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(name)
	writeAttrs(&b, attrs)
	b.WriteString(" />")
	return b.String()
}

// Tag renders an element around body, which must already be escaped.
func Tag(name string, attrs Attrs, body string) string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(name)
	writeAttrs(&b, attrs)
	b.WriteByte('>')
	b.WriteString(body)
	b.WriteString("</")
	b.WriteString(name)
	b.WriteByte('>')
	return b.String()
}

// optionTag keeps value before selected, unlike sorted attributes.
func optionTag(value, label string, selected bool) string {
	var b strings.Builder
	b.WriteString(`<option value="`)
	b.WriteString(html.EscapeString(value))
	b.WriteByte('"')
	if selected {
		b.WriteString(` selected="selected"`)
	}
	b.WriteByte('>')
	b.WriteString(html.EscapeString(label))
	b.WriteString("</option>")
	return b.String()
}

// Escape escapes text for an HTML body.
func Escape(text string) string {
	return html.EscapeString(text)
}
