package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newRoleContext(role string, withClaims bool) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/users", nil)
	if withClaims {
		req = req.WithContext(WithClaims(req.Context(), &Claims{Username: "u", Role: role}))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRequireRole_Allowed(t *testing.T) {
	c, rec := newRoleContext("admin", true)

	if err := RequireRole(RoleAdmin)(okHandler)(c); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_CaseInsensitive(t *testing.T) {
	c, _ := newRoleContext("Admin", true)

	if err := RequireRole(RoleAdmin)(okHandler)(c); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestRequireRole_Denied(t *testing.T) {
	for _, role := range []string{"doctor", "receptionist", "", "administrator"} {
		t.Run(role, func(t *testing.T) {
			c, _ := newRoleContext(role, true)

			err := RequireRole(RoleAdmin)(okHandler)(c)
			httpErr, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("expected echo.HTTPError, got %T", err)
			}
			if httpErr.Code != http.StatusForbidden {
				t.Errorf("expected 403, got %d", httpErr.Code)
			}
		})
	}
}

func TestRequireRole_Anonymous(t *testing.T) {
	c, _ := newRoleContext("", false)

	err := RequireRole(RoleAdmin)(okHandler)(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", httpErr.Code)
	}
}

func TestRequireRole_MultipleRoles(t *testing.T) {
	c, _ := newRoleContext("nurse", true)

	if err := RequireRole(RoleDoctor, RoleNurse)(okHandler)(c); err != nil {
		t.Errorf("expected nurse to pass doctor-or-nurse gate, got %v", err)
	}
}

func TestHasRole(t *testing.T) {
	tests := []struct {
		role    string
		allowed []string
		want    bool
	}{
		{"admin", []string{"admin"}, true},
		{" admin ", []string{"admin"}, true},
		{"ADMIN", []string{"admin"}, true},
		{"doctor", []string{"admin"}, false},
		{"", []string{""}, false},
		{"nurse", nil, false},
	}
	for _, tt := range tests {
		if got := HasRole(tt.role, tt.allowed...); got != tt.want {
			t.Errorf("HasRole(%q, %v) = %v, want %v", tt.role, tt.allowed, got, tt.want)
		}
	}
}
