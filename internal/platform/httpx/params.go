package httpx

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hospital/hms/internal/platform/apperr"
)

// ParamID parses a positive integer path parameter.
func ParamID(c echo.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.Validation("invalid %s %q", name, raw)
	}
	return id, nil
}

// Bind decodes the request body into v, reporting malformed input as a
// validation error.
func Bind(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return apperr.Validation("invalid request body")
	}
	return nil
}
