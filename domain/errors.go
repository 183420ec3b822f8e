package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures coming back from the model backends.
type ErrorKind string

const (
	KindParseFailure     ErrorKind = "parse_failure"
	KindEmptyResponse    ErrorKind = "empty_response"
	KindRateLimited      ErrorKind = "rate_limited"
	KindInvalidRequest   ErrorKind = "invalid_request"
	KindModelUnavailable ErrorKind = "model_unavailable"
	KindUnknown          ErrorKind = "unknown"
)

// Validation errors returned before any backend is called.
var (
	ErrNoURLs              = errors.New("at least one url is required")
	ErrEmptyURL            = errors.New("url cannot be empty")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrUnsupportedStyle    = errors.New("unsupported summary style")
	ErrNoCredential        = errors.New("no credential selected")
	ErrNoTeaserSource      = errors.New("a batch result or text is required")
)

// ErrTeaserFailed wraps every video generation failure.
var ErrTeaserFailed = errors.New("video generation failed, check your credential")

// ServiceError is a classified backend failure. Err keeps the original error
// so callers can still inspect it.
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil && e.Kind == KindUnknown {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError builds a classified error.
func NewServiceError(kind ErrorKind, message string, err error) *ServiceError {
	return &ServiceError{Kind: kind, Message: message, Err: err}
}

// KindOf returns the classification carried by err, or KindUnknown.
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// IsValidation reports whether err is one of the request validation errors.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNoURLs) ||
		errors.Is(err, ErrEmptyURL) ||
		errors.Is(err, ErrUnsupportedLanguage) ||
		errors.Is(err, ErrUnsupportedStyle) ||
		errors.Is(err, ErrNoTeaserSource)
}
