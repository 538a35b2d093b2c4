package utils

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomErrorMessageWithoutDetail(t *testing.T) {
	err := NewBadRequestError("bad input")
	assert.Equal(t, "bad input", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.Code)
}

func TestCustomErrorMessageWithDetail(t *testing.T) {
	err := NewValidationError("job_id too short")
	assert.Equal(t, "validation failed: job_id too short", err.Error())
}

func TestClassifiedErrorConstructorsCarryExpectedStatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  *CustomError
		code int
	}{
		{"expired", NewExpiredListingError("removed"), http.StatusGone},
		{"login_wall", NewLoginWallError("authwall"), http.StatusUnauthorized},
		{"non_english", NewNonEnglishError("too few english words"), http.StatusUnprocessableEntity},
		{"rate_limited", NewRateLimitedError("429"), http.StatusTooManyRequests},
		{"not_job_posting", NewNotJobPostingError("profile page"), http.StatusUnprocessableEntity},
		{"timeout", NewTimeoutError("nav timeout"), http.StatusRequestTimeout},
		{"internal", NewInternalServerError("panic recovered"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, tc.err.Code)
		})
	}
}
