package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := Extractionf("no text in %q", "broken.epub")
	if !Is(err, ErrExtraction) {
		t.Error("expected extraction error to match ErrExtraction")
	}
	if Is(err, ErrTimeout) {
		t.Error("extraction error should not match ErrTimeout")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(cause, CodePersistence, "commit book")

	if !Is(err, ErrPersistence) {
		t.Error("wrapped error should match ErrPersistence")
	}
	if Unwrap(err) != cause {
		t.Error("expected Unwrap to return the cause")
	}
	if got := err.Error(); got != "commit book: disk full" {
		t.Errorf("Error() = %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeValidation, http.StatusBadRequest},
		{CodeExtraction, http.StatusUnprocessableEntity},
		{CodeTimeout, http.StatusInternalServerError},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := tt.code.HTTPStatus(); got != tt.want {
			t.Errorf("%s.HTTPStatus() = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestWithDetails(t *testing.T) {
	err := Validation("bad worker count").WithDetails(map[string]any{"workers": -1})
	var domainErr *Error
	if !As(err, &domainErr) {
		t.Fatal("expected *Error")
	}
	if domainErr.Details == nil {
		t.Error("expected details to be set")
	}
}
