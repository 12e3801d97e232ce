//go:build !integration

package client

import (
	"errors"
	"testing"
)

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{StatusText: "Resource not found.", Kind: "NOT_FOUND", HTTPStatusCode: 404}

	if got := err.Error(); got != "Resource not found. (NOT_FOUND)" {
		t.Fatalf("unexpected message %q", got)
	}

	var apiErr *APIError
	if !errors.As(error(err), &apiErr) {
		t.Fatal("APIError should unwrap with errors.As")
	}
}
