// ABOUTME: Form validation built on go-playground/validator struct tags
// ABOUTME: Reduces validator failures to one Kind per field with a display message

package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind classifies a field failure.
type Kind string

const (
	Required      Kind = "required"
	InvalidEmail  Kind = "invalid_email"
	TooShort      Kind = "too_short"
	Mismatch      Kind = "mismatch"
	InvalidChoice Kind = "invalid_choice"
	Invalid       Kind = "invalid"
)

// emailPattern is the address pattern the backend accepts.
var emailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)

// IsEmail reports whether s looks like an address the backend accepts.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// FieldError is a failure on one field.
type FieldError struct {
	Kind    Kind
	Message string
}

// Errors maps a form field name to its first failure.
type Errors map[string]FieldError

// Has reports whether field failed.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Message returns the message for field, or "".
func (e Errors) Message(field string) string {
	return e[field].Message
}

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their form name so Errors keys match <input name=...>.
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := val.RegisterValidation("backend_email", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("registering email validation: %v", err))
	}
	return val
}

// Check validates form, which must be a struct or pointer to one. It returns
// nil when every field passes.
func Check(form any) Errors {
	err := v.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Errors{"": {Kind: Invalid, Message: err.Error()}}
	}

	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = describe(fe)
	}
	return out
}

func describe(fe validator.FieldError) FieldError {
	label := labelFor(fe.Field())
	switch fe.Tag() {
	case "required":
		return FieldError{Kind: Required, Message: label + " is required"}
	case "backend_email":
		return FieldError{Kind: InvalidEmail, Message: "Invalid email address"}
	case "min":
		return FieldError{Kind: TooShort, Message: fmt.Sprintf("%s must be at least %s characters", label, fe.Param())}
	case "eqfield":
		return FieldError{Kind: Mismatch, Message: "Passwords do not match"}
	case "oneof":
		return FieldError{Kind: InvalidChoice, Message: fmt.Sprintf("%s must be one of: %s", label, fe.Param())}
	default:
		return FieldError{Kind: Invalid, Message: label + " is invalid"}
	}
}

var labels = map[string]string{
	"email":            "Email",
	"password":         "Password",
	"username":         "Username",
	"phone_number":     "Phone number",
	"role":             "Role",
	"current_password": "Current password",
	"new_password":     "New password",
	"confirm_password": "Password confirmation",
}

func labelFor(field string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	return field
}
