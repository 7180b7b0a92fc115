// Package validation evaluates declarative form rules against submitted fields.
//
// A form is a list of Rule values. Validate checks presence and field equality
// using go-playground/validator primitives and returns either the cleaned values
// or the error messages keyed by field name, in the style of server-side form
// libraries.
package validation

import (
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MsgRequired is the message reported for a missing or blank required field.
const MsgRequired = "This field is required."

// Rule describes the constraints for one form field.
type Rule struct {
	// Field is the submitted field name (the HTML input name).
	Field string
	// Label is the human-readable name used in templates.
	Label string
	// Required rejects empty and whitespace-only input.
	Required bool
	// EqualTo names another field whose value must match exactly.
	EqualTo string
	// Message overrides the EqualTo failure message.
	Message string
}

// Form is an ordered rule list.
type Form []Rule

// Errors maps a field name to its error messages.
type Errors map[string][]string

// Has reports whether field has at least one error.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// Fields returns the names of the failing fields in sorted order.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for f := range e {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func (e Errors) add(field, msg string) {
	e[field] = append(e[field], msg)
}

var validate = validator.New()

// Fields returns the field names declared by the form, in order.
func (f Form) Fields() []string {
	out := make([]string, 0, len(f))
	for _, r := range f {
		out = append(out, r.Field)
	}
	return out
}

// Validate checks fields against the form's rules.
// On success it returns the declared fields with their submitted values
// (no trimming or case folding) and nil Errors.
// Undeclared fields are dropped. Missing fields count as empty strings.
func (f Form) Validate(fields map[string]string) (map[string]string, Errors) {
	errs := Errors{}
	for _, r := range f {
		value := fields[r.Field]

		if r.Required {
			// blank input counts as missing, but the stored value is not trimmed
			if err := validate.Var(strings.TrimSpace(value), "required"); err != nil {
				errs.add(r.Field, MsgRequired)
				continue
			}
		}

		if r.EqualTo != "" {
			if err := validate.VarWithValue(value, fields[r.EqualTo], "eqfield"); err != nil {
				errs.add(r.Field, r.equalMessage())
			}
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	cleaned := make(map[string]string, len(f))
	for _, r := range f {
		cleaned[r.Field] = fields[r.Field]
	}
	return cleaned, nil
}

func (r Rule) equalMessage() string {
	if r.Message != "" {
		return r.Message
	}
	return "Field must be equal to " + r.EqualTo + "."
}
