package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-fieldset/pkg/render"
)

func TestSortedHiddenFields(t *testing.T) {
	sorted := render.SortedHiddenFields([]render.HiddenField{
		render.VersionField("version", 3),
		render.CSRFToken("_csrf", "token123"),
		render.Hidden("  ", "skip"),
		render.VersionField(" version ", 4),
	})

	want := []render.HiddenField{
		{Name: "_csrf", Value: "token123"},
		{Name: "version", Value: "4"},
	}
	if diff := cmp.Diff(want, sorted); diff != "" {
		t.Fatalf("sorted hidden fields mismatch (-want +got):\n%s", diff)
	}
}

func TestSortedHiddenFields_Empty(t *testing.T) {
	if got := render.SortedHiddenFields(nil); got != nil {
		t.Fatalf("expected nil, got %#v", got)
	}
}
