package assist

import (
	"errors"
	"fmt"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
)

// StatusError is a non-2xx reply from a provider's REST endpoint.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.Message)
}

// StatusOf extracts the HTTP status carried by err, if any.
func StatusOf(err error) (int, bool) {
	if err == nil {
		return 0, false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	var ae *apierror.APIError
	if errors.As(err, &ae) {
		if code := ae.HTTPCode(); code > 0 {
			return code, true
		}
	}
	var ge *googleapi.Error
	if errors.As(err, &ge) && ge.Code > 0 {
		return ge.Code, true
	}
	var pe *Error
	if errors.As(err, &pe) && pe.Status > 0 {
		return pe.Status, true
	}
	return 0, false
}

// IsServerError reports whether status is in the 500–599 range.
func IsServerError(status int) bool {
	return status >= 500 && status <= 599
}
