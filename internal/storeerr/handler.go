package storeerr

import (
	"errors"

	"github.com/deppfellow/go-kv-crud/internal/errs"
)

// HandleError converts a store error into an application-level error.
//
// Output:
//   - *errs.HTTPError: returned unchanged
//   - NotFound: 404 "resource not found"
//   - Timeout or Unavailable: 503
//   - anything else: 500
//
// Driver details never reach the client; callers log the original error.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	switch Classify(err) {
	case NotFound:
		return errs.NewNotFoundError("resource not found", nil)
	case Timeout, Unavailable:
		return errs.NewServiceUnavailableError()
	default:
		return errs.NewInternalServerError()
	}
}
