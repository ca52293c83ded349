package utils

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerateUniqueReferenceSkipsTakenCodes(t *testing.T) {
	calls := 0
	code, err := GenerateUniqueReference(func(string) (bool, error) {
		calls++
		return calls < 3, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 lookups, got %d", calls)
	}
	if len(code) != referenceCodeLength {
		t.Fatalf("code %q has length %d", code, len(code))
	}
	for _, r := range code {
		if !strings.ContainsRune(letterBytes, r) {
			t.Fatalf("code %q contains %q", code, r)
		}
	}
}

func TestGenerateUniqueReferencePropagatesLookupError(t *testing.T) {
	boom := errors.New("boom")
	if _, err := GenerateUniqueReference(func(string) (bool, error) { return false, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected lookup error, got %v", err)
	}
}
