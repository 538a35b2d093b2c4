package utils

import (
	"fmt"
	"net/http"
)

// CustomError represents a classified application error with an HTTP-style
// status code for callers that want to bucket failures without inspecting
// strings.
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *CustomError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// NewBadRequestError returns a caller-input classified error.
func NewBadRequestError(message string) *CustomError {
	return &CustomError{Code: http.StatusBadRequest, Message: message}
}

// NewInternalServerError returns an unclassified internal failure.
func NewInternalServerError(message string) *CustomError {
	return &CustomError{Code: http.StatusInternalServerError, Message: message}
}

// NewTimeoutError returns a classified navigation/selector timeout error.
func NewTimeoutError(message string) *CustomError {
	return &CustomError{Code: http.StatusRequestTimeout, Message: message}
}

// NewValidationError returns a gate-1 validation failure.
func NewValidationError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: "validation failed",
		Detail:  detail,
	}
}

// NewExpiredListingError classifies a detail fetch that resolved to an
// expired/removed listing (§4.3 Expired state).
func NewExpiredListingError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusGone,
		Message: "listing expired",
		Detail:  detail,
	}
}

// NewLoginWallError classifies a batch-fatal authentication wall.
func NewLoginWallError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusUnauthorized,
		Message: "login wall encountered",
		Detail:  detail,
	}
}

// NewNonEnglishError classifies a description that failed the
// English-language heuristic.
func NewNonEnglishError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusUnprocessableEntity,
		Message: "non-English content",
		Detail:  detail,
	}
}

// NewRateLimitedError classifies an outcome the controller should count
// against the AIMD/circuit-breaker pacing state.
func NewRateLimitedError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusTooManyRequests,
		Message: "rate limited",
		Detail:  detail,
	}
}

// NewNotJobPostingError returns an error when a URL doesn't resolve to a
// job-detail page at all.
func NewNotJobPostingError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusUnprocessableEntity,
		Message: "content is not a job posting",
		Detail:  detail,
	}
}
