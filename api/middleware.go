package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
)

// RequestIDMiddleware tags every request with a uuid, echoed back in the
// X-Request-Id header unless the client already supplied one.
func RequestIDMiddleware() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	})
}

// RequestLoggerMiddleware writes one structured log line per request.
func RequestLoggerMiddleware(logger *log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			start := time.Now()
			if err = next(c); err != nil {
				c.Error(err)
			}

			fields := log.Fields{
				"method":     c.Request().Method,
				"path":       c.Request().URL.Path,
				"status":     c.Response().Status,
				"latency_ms": durationToMillis(time.Since(start)),
			}
			if rid := c.Response().Header().Get(echo.HeaderXRequestID); rid != "" {
				fields["request_id"] = rid
			}
			if err != nil {
				fields["error"] = err.Error()
			}

			entry := logger.WithFields(fields)
			switch {
			case c.Response().Status >= 500:
				entry.Error("request")
			case c.Response().Status >= 400:
				entry.Warn("request")
			default:
				entry.Info("request")
			}
			return err
		}
	}
}
