package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeChecks(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		notFound   bool
		validation bool
		conflict   bool
		status     int
	}{
		{"not found", NewNotFound("patient", nil), true, false, false, http.StatusNotFound},
		{"validation", NewValidationError("bad", nil), false, true, false, http.StatusBadRequest},
		{"conflict", NewConflict("taken", nil), false, false, true, http.StatusConflict},
		{"wrapped conflict", fmt.Errorf("assign: %w", NewConflict("taken", nil)), false, false, true, http.StatusConflict},
		{"unauthorized", NewUnauthorized("no"), false, false, false, http.StatusUnauthorized},
		{"plain", errors.New("disk full"), false, false, false, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if IsNotFound(tt.err) != tt.notFound || IsValidation(tt.err) != tt.validation || IsConflict(tt.err) != tt.conflict {
				t.Errorf("unexpected classification for %v", tt.err)
			}
			if got := ToDomainError(tt.err).HTTPStatus; got != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, got)
			}
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	err := NewNotFound("alert", map[string]any{"id": "A1"})
	var de *DomainError
	if !errors.As(err, &de) {
		t.Fatal("expected a DomainError")
	}
	if de.Message != "alert not found" || de.Details["id"] != "A1" {
		t.Errorf("unexpected error %+v", de)
	}
}

func TestInternalErrorUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternalError(cause)
	if !errors.Is(err, cause) {
		t.Error("expected the cause to be reachable")
	}
	if ToDomainError(nil) != nil {
		t.Error("expected nil for nil")
	}
}
