package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the sync engine's failure taxonomy.
var (
	// ErrConfigInvalid means the remote credentials are missing or
	// malformed. No network call may be attempted.
	ErrConfigInvalid = errors.New("api config invalid")

	// ErrRemoteUnavailable marks transport-level failures: the caller
	// may retry with the same parameters.
	ErrRemoteUnavailable = errors.New("remote api unavailable")

	// ErrRemoteRejected marks structured server-side rejections (e.g.
	// an invalid status parameter): retrying unmodified is pointless.
	ErrRemoteRejected = errors.New("remote api rejected request")

	ErrNotFound = errors.New("not found")
)

// APIError carries the detail of a failed remote call.
type APIError struct {
	Kind       error // ErrRemoteUnavailable or ErrRemoteRejected
	StatusCode int   // HTTP status, 0 for transport failures
	Code       string
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("remote api error %s (http %d): %s", e.Code, e.StatusCode, e.Message)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote api error (http %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote api error: %s", e.Message)
}

func (e *APIError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

func (e *APIError) Is(target error) bool {
	return target == e.Kind
}

// NewAPIRejection builds an APIError for a structured server response.
func NewAPIRejection(statusCode int, code, message string) *APIError {
	return &APIError{Kind: ErrRemoteRejected, StatusCode: statusCode, Code: code, Message: message}
}

// NewAPIUnavailable wraps a transport failure.
func NewAPIUnavailable(err error) *APIError {
	return &APIError{Kind: ErrRemoteUnavailable, Message: err.Error(), Err: err}
}
