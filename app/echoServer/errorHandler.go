package echoServer

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jinzhengdong/booklib/app/echoServer/respond"
)

// ErrorHandler renders every error echo sees itself (unknown routes, panics
// surfaced by Recover, handler errors) as the uniform envelope.
func ErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := "internal server error"

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			}
		}
		if status == http.StatusNotFound {
			msg = "resource not found"
		}

		if status >= http.StatusInternalServerError {
			log.Error("unhandled error",
				"err", err,
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
			)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = respond.Fail(c, status, msg)
	}
}
