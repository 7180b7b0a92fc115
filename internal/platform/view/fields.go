package view

import (
	"strings"

	"user_registry/internal/platform/validation"
)

// Field is the template model of one form input.
type Field struct {
	Name   string
	Label  string
	Type   string
	Value  string
	Errors []string
}

// Fields builds the input models for every field of form, keyed by field name.
// Password inputs are never echoed back.
func Fields(form validation.Form, values map[string]string, errs validation.Errors) map[string]Field {
	out := make(map[string]Field, len(form))
	for _, r := range form {
		f := Field{
			Name:   r.Field,
			Label:  r.Label,
			Type:   "text",
			Value:  values[r.Field],
			Errors: errs[r.Field],
		}
		switch {
		case strings.HasPrefix(r.Field, "password"):
			f.Type = "password"
			f.Value = ""
		case r.Field == "email":
			f.Type = "email"
		}
		out[r.Field] = f
	}
	return out
}
