// Package validation decodes request bodies and checks them against the
// JSON schema and struct tags of the target type.
//
// Failures come back as *errs.HTTPError values with field-level details
// the client can act on.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/deppfellow/go-kv-crud/internal/errs"
)

// Validatable is implemented by payload types that know how to validate
// themselves, usually by running validator.Struct on the receiver.
type Validatable interface {
	Validate() error
}

// Payload constrains a type parameter to a pointer-to-T that validates.
// It lets generic handlers allocate a T and still call Validate on it.
type Payload[T any] interface {
	*T
	Validatable
}

// SchemaProvider is implemented by payloads that describe their JSON
// shape. The schema is checked against the raw document before it is
// decoded, so type mismatches are reported per field.
type SchemaProvider interface {
	Schema() *jsonschema.Schema
}

// CustomValidationError is a field issue that a struct tag cannot express.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors satisfies error so Validate can return it.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "validation failed"
}

// fieldErrors converts validator and custom errors into client-facing
// field errors. Unknown error types yield none.
func fieldErrors(err error) []errs.FieldError {
	var out []errs.FieldError

	var custom CustomValidationErrors
	if errors.As(err, &custom) {
		for _, e := range custom {
			out = append(out, errs.FieldError{Field: e.Field, Error: e.Message})
		}
		return out
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	for _, e := range validationErrors {
		var msg string

		switch e.Tag() {
		case "required":
			msg = "is required"
		case "min":
			if e.Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", e.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", e.Param())
			}
		case "max":
			if e.Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", e.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", e.Param())
			}
		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", e.Param())
		default:
			if e.Param() != "" {
				msg = fmt.Sprintf("%s:%s", e.Tag(), e.Param())
			} else {
				msg = e.Tag()
			}
		}

		out = append(out, errs.FieldError{Field: e.Field(), Error: msg})
	}

	return out
}

// schemaErrors flattens a schema failure into its leaf causes. The field
// is the instance location as a dotted path, or "body" for the document
// itself.
func schemaErrors(err error) []errs.FieldError {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil
	}

	var out []errs.FieldError
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, errs.FieldError{Field: fieldFromPointer(e.InstanceLocation), Error: e.Message})
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(ve)

	return out
}

func fieldFromPointer(ptr string) string {
	ptr = strings.TrimPrefix(strings.TrimPrefix(ptr, "#"), "/")
	if ptr == "" {
		return "body"
	}
	return strings.ReplaceAll(ptr, "/", ".")
}
