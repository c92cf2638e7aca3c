package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// formats handles format-level checks (email and friends) so rule descriptors
// stay declarative.
var formats = validator.New()

// Rule is a single typed constraint on one field value. Validate returns every
// violation message for the value, not just the first: a client should be able
// to fix all problems from one response.
type Rule interface {
	Validate(field string, value any) []string
}

// Field binds an ordered rule list to one payload key. Rules only run when the
// key is present; a missing optional field is skipped entirely.
type Field struct {
	Name     string
	Required bool
	Rules    []Rule
}

// Schema is the declarative shape of one request payload.
type Schema []Field

// Validate evaluates the schema against a decoded JSON payload and returns the
// ordered list of violations. An empty slice means the payload is accepted.
func (s Schema) Validate(payload map[string]any) []string {
	var out []string
	for _, f := range s {
		v, ok := payload[f.Name]
		if !ok || v == nil {
			if f.Required {
				out = append(out, f.Name+" is required")
			}
			continue
		}
		for _, r := range f.Rules {
			out = append(out, r.Validate(f.Name, v)...)
		}
	}
	return out
}

// LengthBounds constrains string length. Max <= 0 means unbounded above.
type LengthBounds struct {
	Min int
	Max int
}

func (r LengthBounds) Validate(field string, value any) []string {
	s, ok := value.(string)
	if !ok {
		return []string{field + " must be a string"}
	}
	var out []string
	n := len([]rune(s))
	if n < r.Min {
		out = append(out, fmt.Sprintf("%s must be at least %d characters long", field, r.Min))
	}
	if r.Max > 0 && n > r.Max {
		out = append(out, fmt.Sprintf("%s must be at most %d characters long", field, r.Max))
	}
	return out
}

// EmailFormat checks RFC-shaped email addresses.
type EmailFormat struct{}

func (EmailFormat) Validate(field string, value any) []string {
	s, ok := value.(string)
	if !ok {
		return []string{field + " must be a string"}
	}
	if err := formats.Var(s, "email"); err != nil {
		return []string{field + " must be a valid email"}
	}
	return nil
}

// Password applies composition rules in a fixed order: non-empty, minimum
// length, then each enabled character-class requirement. One message per
// unmet rule.
type Password struct {
	MinLength int
	Upper     bool
	Lower     bool
	Digit     bool
	Special   bool
}

func (r Password) Validate(field string, value any) []string {
	s, ok := value.(string)
	if !ok {
		return []string{field + " must be a string"}
	}
	var out []string
	if s == "" {
		out = append(out, field+" must not be empty")
	}
	if r.MinLength > 0 && len([]rune(s)) < r.MinLength {
		out = append(out, fmt.Sprintf("%s must be at least %d characters long", field, r.MinLength))
	}
	if r.Upper && !strings.ContainsFunc(s, unicode.IsUpper) {
		out = append(out, field+" must contain an uppercase letter")
	}
	if r.Lower && !strings.ContainsFunc(s, unicode.IsLower) {
		out = append(out, field+" must contain a lowercase letter")
	}
	if r.Digit && !strings.ContainsFunc(s, unicode.IsDigit) {
		out = append(out, field+" must contain a digit")
	}
	if r.Special && !strings.ContainsAny(s, "!@#$%^&*()-_=+[]{};:'\",.<>/?\\|`~") {
		out = append(out, field+" must contain a special character")
	}
	return out
}

// NumericBounds constrains a JSON number. Nil bounds are open.
type NumericBounds struct {
	Min *float64
	Max *float64
}

func (r NumericBounds) Validate(field string, value any) []string {
	n, ok := value.(float64)
	if !ok {
		return []string{field + " must be a number"}
	}
	var out []string
	if r.Min != nil && n < *r.Min {
		out = append(out, fmt.Sprintf("%s must be at least %v", field, *r.Min))
	}
	if r.Max != nil && n > *r.Max {
		out = append(out, fmt.Sprintf("%s must be at most %v", field, *r.Max))
	}
	return out
}

// Enum restricts a string to a closed value set.
type Enum struct {
	Values []string
}

func (r Enum) Validate(field string, value any) []string {
	s, ok := value.(string)
	if !ok {
		return []string{field + " must be a string"}
	}
	for _, v := range r.Values {
		if s == v {
			return nil
		}
	}
	return []string{field + " must be one of: " + strings.Join(r.Values, ", ")}
}

// ArrayBounds constrains array element count. Max <= 0 means unbounded above.
type ArrayBounds struct {
	Min int
	Max int
}

func (r ArrayBounds) Validate(field string, value any) []string {
	arr, ok := value.([]any)
	if !ok {
		return []string{field + " must be an array"}
	}
	var out []string
	if len(arr) < r.Min {
		out = append(out, fmt.Sprintf("%s must contain at least %d items", field, r.Min))
	}
	if r.Max > 0 && len(arr) > r.Max {
		out = append(out, fmt.Sprintf("%s must contain at most %d items", field, r.Max))
	}
	return out
}

// Custom wraps an arbitrary predicate. Check returns an empty string when the
// value is acceptable, otherwise the violation message (without field prefix).
type Custom struct {
	Check func(value any) string
}

func (r Custom) Validate(field string, value any) []string {
	if r.Check == nil {
		return nil
	}
	if msg := r.Check(value); msg != "" {
		return []string{field + " " + msg}
	}
	return nil
}
