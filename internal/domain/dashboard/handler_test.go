package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHandler_Summary(t *testing.T) {
	svc := newTestService(&fakeEvaluator{
		values: map[string]float64{MeasurePatients: 2, MeasureRevenue: 50},
		errs:   map[string]error{MeasureAppointments: errors.New("down")},
	})
	h := NewHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/summary", nil)
	rec := httptest.NewRecorder()
	if err := h.Summary(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Status string         `json:"status"`
		Data   map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "success" {
		t.Errorf("expected success envelope, got %q", body.Status)
	}
	if body.Data["totalPatients"] != float64(2) || body.Data["totalAppointments"] != float64(0) || body.Data["totalRevenue"] != float64(50) {
		t.Errorf("unexpected data %v", body.Data)
	}
	errs, ok := body.Data["errors"].([]any)
	if !ok || len(errs) != 1 || errs[0] != MeasureAppointments {
		t.Errorf("expected errors [%s], got %v", MeasureAppointments, body.Data["errors"])
	}
}

func TestHandler_SummaryOmitsEmptyErrors(t *testing.T) {
	h := NewHandler(newTestService(&fakeEvaluator{}))

	e := echo.New()
	rec := httptest.NewRecorder()
	if err := h.Summary(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, present := body.Data["errors"]; present {
		t.Errorf("errors should be omitted when every measure succeeds: %v", body.Data)
	}
}

func TestRegisterRoutes(t *testing.T) {
	e := echo.New()
	NewHandler(newTestService(&fakeEvaluator{})).RegisterRoutes(e.Group("/api"))

	for _, r := range e.Routes() {
		if r.Method == http.MethodGet && r.Path == "/api/dashboard/summary" {
			return
		}
	}
	t.Error("missing GET /api/dashboard/summary")
}
