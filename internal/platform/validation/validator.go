// Package validation checks decoded request payloads against their `validate` tags.
package validation

// Validator reports the invalid fields of s keyed by their json name, or nil
// when s is valid.
type Validator interface {
	ValidateStruct(s any) map[string]string
}
