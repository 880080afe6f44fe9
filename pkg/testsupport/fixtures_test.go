package testsupport

import "testing"

func TestNormalizeHTML(t *testing.T) {
	got := NormalizeHTML("\n  <div>\n\n    <span>x</span>  \n</div>\n")
	want := "<div>\n<span>x</span>\n</div>"
	if got != want {
		t.Fatalf("NormalizeHTML = %q, want %q", got, want)
	}
}

func TestMustRecordClass(t *testing.T) {
	class := MustRecordClass(t, `
schemas:
  - name: Note
    attributes:
      - name: id
        type: integer
        primary_key: true
      - name: body
        type: text
`, "Note")
	rec := MustRecord(t, class, map[string]any{"id": 3, "body": "hi"})
	if rec.Get("body") != "hi" {
		t.Fatalf("unexpected body %v", rec.Get("body"))
	}
}
