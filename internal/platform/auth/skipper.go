package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// publicRoutes are reachable without a bearer token, keyed by method and
// route template.
var publicRoutes = map[string]bool{
	routeKey(http.MethodGet, "/health"):         true,
	routeKey(http.MethodGet, "/health/db"):      true,
	routeKey(http.MethodGet, "/metrics"):        true,
	routeKey(http.MethodPost, "/api/auth/login"): true,
}

func routeKey(method, path string) string {
	return method + " " + path
}

// AuthSkipper returns true for requests whose matched route is public.
func AuthSkipper(c echo.Context) bool {
	return IsPublicRoute(c.Request().Method, c.Path())
}

// IsPublicRoute reports whether method and route template bypass
// authentication. CORS preflights are always public.
func IsPublicRoute(method, path string) bool {
	if method == http.MethodOptions {
		return true
	}
	return publicRoutes[routeKey(method, path)]
}
