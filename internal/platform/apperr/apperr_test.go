package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", Validation("first_name is required"), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("create: %w", Validation("bad")), http.StatusBadRequest},
		{"not found", NotFound("patient"), http.StatusNotFound},
		{"credentials", ErrInvalidCredentials, http.StatusUnauthorized},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("create user: %w", ErrForbidden), http.StatusForbidden},
		{"conflict", Conflict("username already exists"), http.StatusConflict},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestNotFound_Message(t *testing.T) {
	err := NotFound("appointment")
	assert.Equal(t, "appointment not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConflict_Message(t *testing.T) {
	err := Conflict("username already exists")
	assert.Equal(t, "username already exists", err.Error())
	assert.ErrorIs(t, err, ErrConflict)
}
