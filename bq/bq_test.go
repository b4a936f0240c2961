package bq

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/api/googleapi"
)

func TestTransient(t *testing.T) {
	for code, expected := range map[int]bool{
		429: true,
		500: true,
		503: true,
		400: false,
		403: false,
		404: false,
	} {
		got := transient(&googleapi.Error{Code: code})
		if got != expected {
			t.Errorf("transient(code %d) = %v, expected %v", code, got, expected)
		}
	}
}

func TestTransientUnwrapsAndRejectsPlainErrors(t *testing.T) {
	wrapped := fmt.Errorf("query attempt: %w", &googleapi.Error{Code: 503})
	if !transient(wrapped) {
		t.Error("a wrapped 503 should be transient")
	}

	if transient(errors.New("syntax error at line 1")) {
		t.Error("a non-googleapi error should not be transient")
	}
	if transient(nil) {
		t.Error("nil should not be transient")
	}
}
