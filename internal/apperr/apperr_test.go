package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{name: "NotFound", err: NotFound("missing"), expected: KindNotFound},
		{name: "Conflict", err: Conflict("taken"), expected: KindConflict},
		{name: "Validation", err: Validation("bad input"), expected: KindValidation},
		{name: "PermissionDenied", err: PermissionDenied("no"), expected: KindPermissionDenied},
		{name: "PlainError", err: errors.New("boom"), expected: ""},
		{name: "Nil", err: nil, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.expected {
				t.Errorf("expected kind %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestKindOfWrapped(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Conflict("slug taken"))
	if !IsKind(wrapped, KindConflict) {
		t.Error("expected wrapped conflict to keep its kind")
	}
	if IsKind(wrapped, KindNotFound) {
		t.Error("wrapped conflict must not match not_found")
	}
}

func TestErrorMessage(t *testing.T) {
	err := Validation("slug may only contain letters")
	if err.Error() != "slug may only contain letters" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}
