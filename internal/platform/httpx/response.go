// Package httpx renders the uniform response envelope used by every API
// endpoint: {status:"success", data} on success and {status:"error", message}
// on failure.
package httpx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hospital/hms/internal/platform/apperr"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope wraps every non-paginated response body.
type Envelope struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Success writes data inside a success envelope.
func Success(c echo.Context, code int, data interface{}) error {
	return c.JSON(code, Envelope{Status: StatusSuccess, Data: data})
}

// Message writes a success envelope carrying only a message, used for deletes.
func Message(c echo.Context, code int, msg string) error {
	return c.JSON(code, Envelope{Status: StatusSuccess, Message: msg})
}

// ErrorHandler returns an echo.HTTPErrorHandler that maps service errors to
// status codes through apperr.StatusCode and echo errors to their own codes.
// The cause of a 5xx is logged and never sent to the client.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolve(err)
		if code >= http.StatusInternalServerError {
			rid, _ := c.Get("request_id").(string)
			logger.Error().Err(err).
				Str("request_id", rid).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
			msg = http.StatusText(code)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(code)
		} else {
			writeErr = c.JSON(code, Envelope{Status: StatusError, Message: msg})
		}
		if writeErr != nil {
			logger.Error().Err(writeErr).Msg("write error response")
		}
	}
}

func resolve(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if he.Message != nil {
			msg = fmt.Sprintf("%v", he.Message)
		}
		return he.Code, msg
	}
	return apperr.StatusCode(err), err.Error()
}
