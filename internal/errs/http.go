// Package errs defines the error types returned to API clients.
//
// Handlers return *HTTPError values; the global error handler renders
// them as `{"error": "..."}` bodies with the matching status code, so every
// failure reaches the client in the same shape.
package errs

import "strings"

// FieldError represents a field-level validation error.
// Example:
//
//	{ "field": "completed", "error": "is required" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// HTTPError is the error type for API responses.
//
// Fields:
//   - Code: machine-friendly error code (e.g. "BAD_REQUEST"), logged only.
//   - Message: human-friendly message, sent as the "error" field.
//   - Status: HTTP status code.
//   - Errors: per-field validation errors (optional).
type HTTPError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Status  int          `json:"status"`
	Errors  []FieldError `json:"errors"`
}

// Body is the JSON shape written to the client for any error.
type Body struct {
	Error  string       `json:"error"`
	Errors []FieldError `json:"errors,omitempty"`
}

// Error makes *HTTPError satisfy the built-in error interface.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is also an *HTTPError with the same status,
// so errors.Is(err, errs.NewNotFoundError("")) matches any 404.
func (e *HTTPError) Is(target error) bool {
	t, ok := target.(*HTTPError)
	if !ok {
		return false
	}
	return t.Status == e.Status
}

// Body converts the error into the client-facing response body.
func (e *HTTPError) Body() Body {
	return Body{
		Error:  e.Message,
		Errors: e.Errors,
	}
}

// MakeUpperCaseWithUnderscores converts a string into UPPER_CASE_WITH_UNDERSCORES.
//
//	"Bad Request" -> "BAD_REQUEST"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
