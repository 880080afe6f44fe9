package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-fieldset/pkg/render"
)

func TestMapErrorPayload_KeysAndNames(t *testing.T) {
	known := map[string]string{
		"name":          "name",
		"User-1-name":   "name",
		"email":         "email",
		"User-1-email":  "email",
		"orders":        "orders",
		"User-1-orders": "orders",
	}

	payload := map[string][]string{
		"/body/name":          {"Name is required"},
		"User-1-email":        {"Email invalid"},
		"$.body.orders[0]":    {"Order closed"},
		"non_field_errors":    {"Form level error"},
		"request/body/absent": {"Should fall back to form errors"},
		"":                    {"Unscoped form error"},
		"email":               {"  ", "Email invalid"},
	}

	mapped := render.MapErrorPayload(known, payload)

	wantFields := map[string][]string{
		"name":   {"Name is required"},
		"email":  {"Email invalid", "Email invalid"},
		"orders": {"Order closed"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Form level error", "Should fall back to form errors", "Unscoped form error"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestChromeClassesMerge(t *testing.T) {
	merged := render.DefaultChromeClasses().Merge(render.FromTokens(map[string]string{
		"fieldset.class.required": "is-required",
		"fieldset.class.doc":      " ",
	}))

	want := render.DefaultChromeClasses()
	want.Required = "is-required"
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("classes mismatch (-want +got):\n%s", diff)
	}
}
