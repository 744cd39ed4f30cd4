package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "validation", err: ErrValidation, want: http.StatusBadRequest},
		{name: "conflict", err: New(ErrConflict, "already in favorites"), want: http.StatusBadRequest},
		{name: "unauthorized wrapped", err: fmt.Errorf("op: %w", ErrUnauthorized), want: http.StatusUnauthorized},
		{name: "forbidden", err: New(ErrForbidden, "premium subscription required"), want: http.StatusForbidden},
		{name: "not found deep wrap", err: fmt.Errorf("a: %w", fmt.Errorf("b: %w", ErrNotFound)), want: http.StatusNotFound},
		{name: "unknown", err: errors.New("connection refused"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "technique not found", Message(fmt.Errorf("op: %w", New(ErrNotFound, "technique not found"))))
	assert.Equal(t, "not found", Message(fmt.Errorf("op: %w", ErrNotFound)))
	assert.Equal(t, "conflict", Message(ErrConflict))
	assert.Equal(t, "internal server error", Message(errors.New("dial tcp 10.0.0.1:5432: connection refused")))
}
