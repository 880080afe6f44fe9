// Package validators provides composable predicate functions for FieldSet
// fields. A Validator inspects a deserialized value and returns a
// *ValidationError describing why the value is unacceptable, or nil.
// Any other error is treated by FieldSets as a programming mistake and
// aborts validation.
package validators

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Validator checks a deserialized value.
type Validator func(value any) error

// ValidationError carries one or more user-facing messages.
type ValidationError struct {
	Messages []string
}

// NewError builds a ValidationError from messages.
func NewError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

// Errorf builds a single-message ValidationError.
func Errorf(format string, args ...any) *ValidationError {
	return &ValidationError{Messages: []string{fmt.Sprintf(format, args...)}}
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Messages) == 0 {
		return "validation failed"
	}
	return strings.Join(e.Messages, "; ")
}

// AsValidationError unwraps err into a ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// Chain runs validators in order and stops at the first failure.
func Chain(validators ...Validator) Validator {
	return func(value any) error {
		for _, validate := range validators {
			if validate == nil {
				continue
			}
			if err := validate(value); err != nil {
				return err
			}
		}
		return nil
	}
}

// IsEmpty reports whether value counts as "nothing submitted".
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case []byte:
		return len(v) == 0
	default:
		return false
	}
}

// Required rejects empty values.
func Required(value any) error {
	if IsEmpty(value) {
		return NewError("Please enter a value")
	}
	return nil
}

// Integer rejects values that do not parse as base-10 integers.
func Integer(value any) error {
	_, err := ParseInteger(value)
	return err
}

// ParseInteger converts value to an int64.
func ParseInteger(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, NewError("Value is not an integer")
		}
		return n, nil
	default:
		return 0, NewError("Value is not an integer")
	}
}

// Float rejects values that do not parse as numbers.
func Float(value any) error {
	_, err := ParseFloat(value)
	return err
}

// ParseFloat converts value to a float64.
func ParseFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, NewError("Value is not a number")
		}
		return f, nil
	default:
		return 0, NewError("Value is not a number")
	}
}

// Currency requires a number written with exactly two decimals.
func Currency(value any) error {
	if err := Float(value); err != nil {
		return err
	}
	text := strings.TrimSpace(fmt.Sprint(value))
	dot := strings.LastIndexByte(text, '.')
	if dot < 0 || len(text)-dot-1 != 2 {
		return NewError("Please specify full currency value, including cents (e.g., 12.34)")
	}
	return nil
}

// MinLength rejects strings shorter than n characters. n must be positive.
func MinLength(n int) Validator {
	return func(value any) error {
		if n <= 0 {
			return errors.New("validators: invalid minimum length")
		}
		if len([]rune(fmt.Sprint(value))) < n {
			return Errorf("Value must be at least %d characters long", n)
		}
		return nil
	}
}

// MaxLength rejects strings longer than n characters. n must be positive.
func MaxLength(n int) Validator {
	return func(value any) error {
		if n <= 0 {
			return errors.New("validators: invalid maximum length")
		}
		if len([]rune(fmt.Sprint(value))) > n {
			return Errorf("Value must be no more than %d characters long", n)
		}
		return nil
	}
}

// Regex rejects values the pattern does not match at their start. pattern is
// either a string or a compiled *regexp.Regexp.
func Regex(pattern any) Validator {
	var (
		re  *regexp.Regexp
		err error
	)
	switch p := pattern.(type) {
	case *regexp.Regexp:
		re = p
	case string:
		re, err = regexp.Compile(p)
	default:
		err = fmt.Errorf("validators: unsupported pattern %T", pattern)
	}
	return func(value any) error {
		if err != nil {
			return err
		}
		loc := re.FindStringIndex(fmt.Sprint(value))
		if loc == nil || loc[0] != 0 {
			return NewError("Invalid input")
		}
		return nil
	}
}

// OneOf rejects values outside the allowed set.
func OneOf(allowed ...string) Validator {
	set := make(map[string]struct{}, len(allowed))
	for _, item := range allowed {
		set[item] = struct{}{}
	}
	return func(value any) error {
		if _, ok := set[fmt.Sprint(value)]; !ok {
			return NewError("Invalid selection")
		}
		return nil
	}
}
