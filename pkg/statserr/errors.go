package statserr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuth is returned when a credential is rejected by a service.
	ErrAuth = errors.New("invalid or expired credential")

	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUpstreamUnavailable is returned on service outages. It is the only
	// provider error that is retried.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrMalformedData is returned when a response lacks expected fields.
	ErrMalformedData = errors.New("malformed response data")

	// ErrConflict is returned when the document version token is stale.
	ErrConflict = errors.New("document version conflict")

	ErrInvalidEntry  = errors.New("invalid stat entry")
	ErrSentinel      = errors.New("sentinel marker must appear exactly twice")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// StatusError is an unsuccessful HTTP response from one of the external services.
type StatusError struct {
	Service string
	Code    int
	Body    string
	Err     error
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s responded with status %d", e.Service, e.Code)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	return msg
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// FromStatus categorizes an HTTP status code. Err stays nil for codes
// without a category.
func FromStatus(service string, code int, body string) *StatusError {
	return &StatusError{
		Service: service,
		Code:    code,
		Body:    body,
		Err:     category(code),
	}
}

func category(code int) error {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return ErrAuth
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusConflict:
		return ErrConflict
	case code == http.StatusAccepted, code >= http.StatusInternalServerError:
		return ErrUpstreamUnavailable
	default:
		return nil
	}
}

// EntryError describes a stat entry that cannot be charted.
type EntryError struct {
	Label   string
	Percent float64
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%v: %q has percent %v", ErrInvalidEntry, e.Label, e.Percent)
}

func (e *EntryError) Unwrap() error {
	return ErrInvalidEntry
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInvalidConfig):
		return 2
	case errors.Is(err, ErrAuth):
		return 3
	case errors.Is(err, ErrNotFound):
		return 4
	case errors.Is(err, ErrUpstreamUnavailable):
		return 5
	case errors.Is(err, ErrMalformedData), errors.Is(err, ErrInvalidEntry), errors.Is(err, ErrSentinel):
		return 6
	case errors.Is(err, ErrConflict):
		return 7
	default:
		return 1
	}
}
