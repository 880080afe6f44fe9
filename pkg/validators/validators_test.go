package validators_test

import (
	"errors"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-fieldset/pkg/validators"
)

func message(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		return ""
	}
	verr, ok := validators.AsValidationError(err)
	if !ok {
		t.Fatalf("expected a ValidationError, got %T: %v", err, err)
	}
	if len(verr.Messages) != 1 {
		t.Fatalf("expected one message, got %v", verr.Messages)
	}
	return verr.Messages[0]
}

func TestValidators(t *testing.T) {
	cases := []struct {
		name     string
		validate validators.Validator
		value    any
		want     string
	}{
		{"required empty", validators.Required, "", "Please enter a value"},
		{"required nil", validators.Required, nil, "Please enter a value"},
		{"required ok", validators.Required, "x", ""},
		{"integer ok", validators.Integer, " 42 ", ""},
		{"integer bad", validators.Integer, "4.2", "Value is not an integer"},
		{"float ok", validators.Float, "4.2", ""},
		{"float bad", validators.Float, "four", "Value is not a number"},
		{"currency ok", validators.Currency, "12.34", ""},
		{"currency no cents", validators.Currency, "12", "Please specify full currency value, including cents (e.g., 12.34)"},
		{"currency not a number", validators.Currency, "abc", "Value is not a number"},
		{"minlength short", validators.MinLength(3), "ab", "Value must be at least 3 characters long"},
		{"minlength ok", validators.MinLength(3), "abc", ""},
		{"maxlength long", validators.MaxLength(2), "abc", "Value must be no more than 2 characters long"},
		{"maxlength runes", validators.MaxLength(2), "éé", ""},
		{"regex ok", validators.Regex(`[a-z]+`), "abc1", ""},
		{"regex anchored", validators.Regex(`[a-z]+`), "1abc", "Invalid input"},
		{"regex compiled", validators.Regex(regexp.MustCompile(`\d{3}`)), "123", ""},
		{"oneof ok", validators.OneOf("a", "b"), "b", ""},
		{"oneof bad", validators.OneOf("a", "b"), "c", "Invalid selection"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := message(t, tc.validate(tc.value)); got != tc.want {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestValidators_ProgrammingErrors(t *testing.T) {
	for name, validate := range map[string]validators.Validator{
		"minlength": validators.MinLength(0),
		"maxlength": validators.MaxLength(-1),
		"regex":     validators.Regex(42),
	} {
		err := validate("x")
		if err == nil {
			t.Fatalf("%s: expected an error", name)
		}
		if _, ok := validators.AsValidationError(err); ok {
			t.Fatalf("%s: expected a plain error, got a ValidationError", name)
		}
	}
}

func TestChain_StopsAtFirstFailure(t *testing.T) {
	calls := 0
	counting := func(any) error {
		calls++
		return nil
	}
	validate := validators.Chain(counting, validators.MaxLength(1), counting)
	if got := message(t, validate("abc")); got != "Value must be no more than 1 characters long" {
		t.Fatalf("unexpected message %q", got)
	}
	if calls != 1 {
		t.Fatalf("expected the chain to stop, got %d calls", calls)
	}
}

func TestParseInteger(t *testing.T) {
	got, err := validators.ParseInteger("17")
	if err != nil || got != 17 {
		t.Fatalf("expected 17, got %d (err %v)", got, err)
	}
	if _, err := validators.ParseInteger(1.5); err == nil {
		t.Fatal("expected floats to be rejected")
	}
}

func TestIsEmpty(t *testing.T) {
	for _, value := range []any{nil, "", []string{}, []any{}, []byte{}} {
		if !validators.IsEmpty(value) {
			t.Fatalf("expected %#v to be empty", value)
		}
	}
	for _, value := range []any{0, false, " ", []any{nil}} {
		if validators.IsEmpty(value) {
			t.Fatalf("expected %#v to be non-empty", value)
		}
	}
}

func TestValidationError(t *testing.T) {
	err := validators.NewError("a", "b")
	if err.Error() != "a; b" {
		t.Fatalf("unexpected error text %q", err.Error())
	}
	wrapped := errors.Join(errors.New("context"), validators.Errorf("value %d", 3))
	verr, ok := validators.AsValidationError(wrapped)
	if !ok {
		t.Fatal("expected to unwrap a joined ValidationError")
	}
	if diff := cmp.Diff([]string{"value 3"}, verr.Messages); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestEmail(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"bill@example.com", ""},
		{`"odd name"@example.com`, ""},
		{"no-at-sign.example.com", "Missing @ sign"},
		{"@example.com", "Recipient must be non-empty"},
		{"bill@", "Domain must be non-empty"},
		{"bill@example.com.", "Domain must not end with '.'"},
		{"bill@example..com", "Domain must not contain '..'"},
		{"bill@exa(mple).com", "Reserved character present in domain"},
		{"bi,ll@example.com", "Reserved character present in recipient"},
		{"bïll@example.com", "Non-ASCII characters present"},
		{"bill\x01@example.com", "Control characters present"},
		{`"unterminated@example.com`, "Unterminated quoted section in recipient"},
	}
	for _, tc := range cases {
		if got := message(t, validators.Email(tc.input)); got != tc.want {
			t.Fatalf("%q: want %q, got %q", tc.input, tc.want, got)
		}
	}
}
