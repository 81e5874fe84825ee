package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDKey is the fiber Locals key holding the request id.
const RequestIDKey = "requestid"

const requestIDHeader = "X-Request-ID"

// RequestLogger creates a middleware handler for structured request logging
// with logrus. A valid uuid in X-Request-ID is reused, otherwise a new one is
// generated; either way the canonical lowercase form is stored in Locals
// and echoed back.
func RequestLogger(log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// never keep c.Get's result: fasthttp reuses the header buffer
		requestID := uuid.NewString()
		if parsed, err := uuid.Parse(c.Get(requestIDHeader)); err == nil {
			requestID = parsed.String()
		}
		c.Locals(RequestIDKey, requestID)
		c.Set(requestIDHeader, requestID)

		err := c.Next()

		statusCode := c.Response().StatusCode()
		logEntry := log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"http_method": c.Method(),
			"uri":         c.OriginalURL(),
			"status_code": statusCode,
			"latency_ms":  time.Since(start).Milliseconds(),
			"client_ip":   c.IP(),
			"user_agent":  string(c.Request().Header.UserAgent()),
		})

		// err still goes to the app's error handler
		switch {
		case err != nil:
			logEntry.WithField("error", err.Error()).Error("Request processing failed")
		case statusCode >= 500:
			logEntry.Error("Request completed with server error")
		case statusCode >= 400:
			logEntry.Warn("Request completed with client error")
		default:
			logEntry.Info("Request completed successfully")
		}
		return err
	}
}

// RequestID returns the id stored by RequestLogger, or a fresh uuid when the
// middleware is not installed.
func RequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(RequestIDKey).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}
