package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	RoleAdmin        = "admin"
	RoleDoctor       = "doctor"
	RoleNurse        = "nurse"
	RoleReceptionist = "receptionist"
)

// RequireRole returns middleware that admits the caller only when its role
// claim equals one of roles. Matching ignores case.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFromContext(c.Request().Context())
			if claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if HasRole(claims.Role, roles...) {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// HasRole reports whether role is one of allowed.
func HasRole(role string, allowed ...string) bool {
	role = strings.TrimSpace(role)
	for _, a := range allowed {
		if role != "" && strings.EqualFold(role, a) {
			return true
		}
	}
	return false
}
