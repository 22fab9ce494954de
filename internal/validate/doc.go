// Package validate checks dashboard form submissions before any backend call.
//
// Forms are plain structs tagged for github.com/go-playground/validator.
// Check runs the tags and reduces the result to one Kind per form field,
// keyed by the field's HTML name, so templates can show a message beside
// each input. An empty Errors means the submission may proceed.
//
// Email addresses are matched against the backend's own pattern rather
// than the library's RFC 5322 check, so the dashboard never rejects an
// address the backend would accept or the reverse.
package validate
