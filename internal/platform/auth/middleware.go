package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type contextKey string

const ClaimsKey contextKey = "auth_claims"

type JWTConfig struct {
	Tokens *TokenManager
	// Skipper bypasses authentication; AuthSkipper when nil.
	Skipper func(echo.Context) bool
}

// JWTMiddleware requires a valid "Authorization: Bearer <token>" header and
// stores the verified claims on the request context.
func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	skip := cfg.Skipper
	if skip == nil {
		skip = AuthSkipper
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skip(c) {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims, err := cfg.Tokens.Parse(strings.TrimSpace(parts[1]))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			setClaims(c, claims)
			return next(c)
		}
	}
}

// DevAuthMiddleware treats a request without an Authorization header as the
// development admin. Requests that do carry a token are still verified.
func DevAuthMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	verify := JWTMiddleware(cfg)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		verified := verify(next)
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") == "" {
				setClaims(c, &Claims{Username: "dev-user", Role: RoleAdmin})
				return next(c)
			}
			return verified(c)
		}
	}
}

func setClaims(c echo.Context, claims *Claims) {
	c.Set("user_id", claims.UserID)
	ctx := WithClaims(c.Request().Context(), claims)
	c.SetRequest(c.Request().WithContext(ctx))
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// ClaimsFromContext returns the verified claims, or nil for anonymous requests.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(ClaimsKey).(*Claims)
	return claims
}

func RoleFromContext(ctx context.Context) string {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.Role
	}
	return ""
}
