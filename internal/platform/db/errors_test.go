package db

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hospital/hms/internal/platform/apperr"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"no rows", pgx.ErrNoRows, http.StatusNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), http.StatusNotFound},
		{"unique", &pgconn.PgError{Code: "23505"}, http.StatusConflict},
		{"foreign key", &pgconn.PgError{Code: "23503"}, http.StatusBadRequest},
		{"check", &pgconn.PgError{Code: "23514", Message: "fee must be non-negative"}, http.StatusBadRequest},
		{"other pg", &pgconn.PgError{Code: "57014"}, http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apperr.StatusCode(MapError("patient", tt.err))
			if got != tt.code {
				t.Errorf("MapError(%v) status = %d, want %d", tt.err, got, tt.code)
			}
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	if MapError("patient", nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestMapError_NotFoundMessage(t *testing.T) {
	err := MapError("billing record", pgx.ErrNoRows)
	if err.Error() != "billing record not found" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})) {
		t.Error("expected wrapped unique violation to be detected")
	}
	if IsUniqueViolation(errors.New("other")) {
		t.Error("expected plain error not to be a unique violation")
	}
}

func TestTxFromContext_Nil(t *testing.T) {
	tx := TxFromContext(context.Background())
	if tx != nil {
		t.Error("expected nil tx from empty context")
	}
}

func TestTxFromContext_WithWrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), DBTxKey, "not-a-tx")
	tx := TxFromContext(ctx)
	if tx != nil {
		t.Error("expected nil when context value is wrong type")
	}
}
