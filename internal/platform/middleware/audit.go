package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hospital/hms/internal/platform/auth"
)

// AuditEntry describes one state-changing API call.
type AuditEntry struct {
	UserID     int64
	Username   string
	Role       string
	Resource   string
	ResourceID string
	Action     string // create, update, delete
	IPAddress  string
	Path       string
	Method     string
	Timestamp  time.Time
	RequestID  string
	StatusCode int
}

// Audit logs every POST, PUT, PATCH and DELETE under /api with the caller
// taken from the verified token. Reads are not audited.
func Audit(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			action := httpMethodToAction(req.Method)
			if action == "" || !strings.HasPrefix(req.URL.Path, "/api/") {
				return next(c)
			}

			err := next(c)

			entry := AuditEntry{
				Timestamp:  time.Now().UTC(),
				Path:       req.URL.Path,
				Method:     req.Method,
				IPAddress:  c.RealIP(),
				StatusCode: responseStatus(c, err),
				Action:     action,
				Resource:   extractResource(req.URL.Path),
				ResourceID: c.Param("id"),
			}
			entry.RequestID, _ = c.Get("request_id").(string)
			if claims := auth.ClaimsFromContext(req.Context()); claims != nil {
				entry.UserID = claims.UserID
				entry.Username = claims.Username
				entry.Role = claims.Role
			}

			logger.Info().
				Str("type", "audit").
				Str("request_id", entry.RequestID).
				Int64("user_id", entry.UserID).
				Str("username", entry.Username).
				Str("role", entry.Role).
				Str("action", entry.Action).
				Str("resource", entry.Resource).
				Str("resource_id", entry.ResourceID).
				Int("status", entry.StatusCode).
				Str("ip", entry.IPAddress).
				Time("at", entry.Timestamp).
				Msg("audit")

			return err
		}
	}
}

func httpMethodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return ""
	}
}

// extractResource returns the first segment after /api/, e.g. "patients".
func extractResource(path string) string {
	rest := strings.TrimPrefix(path, "/api/")
	if i := strings.Index(rest, "/"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
