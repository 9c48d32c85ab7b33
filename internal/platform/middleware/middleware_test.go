package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hospital/hms/internal/platform/apperr"
	"github.com/hospital/hms/internal/platform/auth"
)

func TestRequestID_GeneratesNew(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		rid := c.Get("request_id").(string)
		if rid == "" {
			t.Error("expected request_id to be generated")
		}
		return c.String(http.StatusOK, "ok")
	}

	if err := RequestID()(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected X-Request-ID response header")
	}
}

func TestRequestID_PreservesExisting(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "my-custom-id")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		rid := c.Get("request_id").(string)
		if rid != "my-custom-id" {
			t.Errorf("expected my-custom-id, got %s", rid)
		}
		return c.String(http.StatusOK, "ok")
	}

	RequestID()(handler)(c)

	if rec.Header().Get(RequestIDHeader) != "my-custom-id" {
		t.Errorf("expected my-custom-id in response header, got %s", rec.Header().Get(RequestIDHeader))
	}
}

func TestRequestID_ReplacesOversized(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLen+1))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	RequestID()(func(c echo.Context) error { return nil })(c)

	if got := rec.Header().Get(RequestIDHeader); len(got) > maxRequestIDLen {
		t.Errorf("expected oversized id to be replaced, got %d bytes", len(got))
	}
}

func decodeLogLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var line map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	return line
}

func TestLogger_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("request_id", "req-1")

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	if err := Logger(logger)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	line := decodeLogLine(t, &buf)
	if line["level"] != "info" || line["request_id"] != "req-1" || line["status"] != float64(200) {
		t.Errorf("unexpected log line: %v", line)
	}
}

func TestLogger_UsesErrorStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/patients/9", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		return apperr.NotFound("patient")
	}

	if err := Logger(logger)(handler)(c); err == nil {
		t.Fatal("expected handler error to be returned")
	}

	line := decodeLogLine(t, &buf)
	if line["level"] != "warn" || line["status"] != float64(404) {
		t.Errorf("expected warn/404, got %v", line)
	}
}

func TestLogger_ServerErrorIsError(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	Logger(logger)(func(c echo.Context) error { return errors.New("db down") })(c)

	line := decodeLogLine(t, &buf)
	if line["level"] != "error" || line["status"] != float64(500) {
		t.Errorf("expected error/500, got %v", line)
	}
}

func TestRecovery_CatchesPanic(t *testing.T) {
	logger := zerolog.New(os.Stderr).With().Logger()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		panic("test panic")
	}

	err := Recovery(logger)(handler)(c)

	if err == nil {
		t.Fatal("expected error from recovered panic")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", httpErr.Code)
	}
}

func TestRecovery_PassesThrough(t *testing.T) {
	logger := zerolog.New(os.Stderr).With().Logger()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	if err := Recovery(logger)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAudit_LogsMutation(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/patients/5", nil)
	req = req.WithContext(auth.WithClaims(req.Context(), &auth.Claims{UserID: 3, Username: "admin", Role: "admin"}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")
	c.Set("request_id", "req-123")

	handler := func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}

	if err := Audit(logger)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	line := decodeLogLine(t, &buf)
	if line["action"] != "delete" || line["resource"] != "patients" || line["resource_id"] != "5" {
		t.Errorf("unexpected audit line: %v", line)
	}
	if line["username"] != "admin" || line["user_id"] != float64(3) {
		t.Errorf("expected caller in audit line, got %v", line)
	}
}

func TestAudit_SkipsReads(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/patients", nil), httptest.NewRecorder())

	Audit(logger)(func(c echo.Context) error { return nil })(c)

	if buf.Len() != 0 {
		t.Errorf("expected no audit output for GET, got %s", buf.String())
	}
}

func TestExtractResource(t *testing.T) {
	tests := map[string]string{
		"/api/patients":            "patients",
		"/api/patients/4/doctors":  "patients",
		"/api/medical-records/1":   "medical-records",
		"/api/":                    "",
	}
	for path, want := range tests {
		if got := extractResource(path); got != want {
			t.Errorf("extractResource(%q) = %q, want %q", path, got, want)
		}
	}
}
