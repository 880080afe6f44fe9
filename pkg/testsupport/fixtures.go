package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-fieldset/pkg/model"
)

// MustLoadSchemas decodes an inline YAML schema document. Testing helpers
// fail the test on error to keep fixtures concise.
func MustLoadSchemas(t *testing.T, doc string) map[string]*model.Schema {
	t.Helper()

	schemas, err := model.LoadSchemas(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("load schemas: %v", err)
	}
	out := make(map[string]*model.Schema, len(schemas))
	for _, schema := range schemas {
		out[schema.Name] = schema
	}
	return out
}

// MustRecordClass returns the record class for the named schema of doc.
func MustRecordClass(t *testing.T, doc, name string) *model.RecordClass {
	t.Helper()

	schema, ok := MustLoadSchemas(t, doc)[name]
	if !ok {
		t.Fatalf("schema %q not found in fixture", name)
	}
	class, err := model.NewRecordClass(schema)
	if err != nil {
		t.Fatalf("record class %s: %v", name, err)
	}
	return class
}

// MustRecord builds a record of class populated with values.
func MustRecord(t *testing.T, class *model.RecordClass, values map[string]any) *model.Record {
	t.Helper()

	rec, err := class.NewRecord(values)
	if err != nil {
		t.Fatalf("new record: %v", err)
	}
	return rec
}

// NormalizeHTML trims every line and drops blank ones so template
// indentation does not leak into markup assertions.
func NormalizeHTML(markup string) string {
	lines := strings.Split(markup, "\n")
	keep := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			keep = append(keep, trimmed)
		}
	}
	return strings.Join(keep, "\n")
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// CompareHTML diffs two markup fragments after NormalizeHTML.
func CompareHTML(want, got string) string {
	return cmp.Diff(NormalizeHTML(want), NormalizeHTML(got))
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
