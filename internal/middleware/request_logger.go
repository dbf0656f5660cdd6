package middleware

import (
	"time"

	"smartstudy/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDKey is the Locals key holding the request id.
const RequestIDKey = "request_id"

const requestIDHeader = "X-Request-ID"

// RequestLogger tags each request with an id and logs it once it completes.
// An incoming X-Request-ID header is reused.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		requestID := c.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals(RequestIDKey, requestID)
		c.Set(requestIDHeader, requestID)

		// Process request
		err := c.Next()

		// The error handler has not run yet; take the status from the error.
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		logger.Get().Info("HTTP Request",
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
			zap.Bool("failed", err != nil),
		)

		return err
	}
}
