package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/focoapp/foco-backend/utils"
)

// LoggingMiddleware logs HTTP requests in a structured format
func LoggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start)

		// Log level based on status code
		statusCode := c.Response().StatusCode()
		logLevel := slog.LevelInfo
		if statusCode >= 400 && statusCode < 500 {
			logLevel = slog.LevelWarn
		} else if statusCode >= 500 {
			logLevel = slog.LevelError
		}

		logger := slog.With(
			slog.String("type", "http"),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("query", c.Request().URI().QueryArgs().String()),
			slog.Int("status", statusCode),
			slog.Duration("duration", duration),
			slog.String("ip", utils.GetIPAddress(c)),
			slog.String("user_agent", utils.GetUserAgent(c)),
			slog.Int("size", len(c.Response().Body())),
		)

		if err != nil {
			logger = logger.With(slog.String("error", err.Error()))
		}

		message := "HTTP request processed"
		if err != nil {
			message = "HTTP request failed"
		}

		logger.Log(c.Context(), logLevel, message)

		return err
	}
}
