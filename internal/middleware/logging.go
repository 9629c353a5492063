package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

type loggingMiddleware struct {
	logger *logrus.Logger
}

func newLoggingMiddleware(logger *logrus.Logger) *loggingMiddleware {
	return &loggingMiddleware{
		logger: logger,
	}
}

// NewLoggingMiddleware writes one access log line per request.
func (m *middleware) NewLoggingMiddleware(c *fiber.Ctx) error {
	start := time.Now()
	requestID := m.GetRequestID(c)

	err := c.Next()

	latency := time.Since(start)
	status := c.Response().StatusCode()

	fields := logrus.Fields{
		"request_id":    requestID,
		"user_id":       m.GetUserID(c),
		"method":        c.Method(),
		"path":          c.Path(),
		"status":        status,
		"latency_ms":    latency.Milliseconds(),
		"ip":            c.IP(),
		"user_agent":    c.Get("User-Agent"),
		"response_size": len(c.Response().Body()),
	}

	if body := c.Request().Body(); len(body) > 0 {
		fields["request_body"] = sanitizeRequestBody(body)
	}

	entry := m.loggingMiddleware.logger.WithFields(fields)
	switch {
	case err != nil || status >= fiber.StatusInternalServerError:
		entry.Error("Server error")
	case status >= fiber.StatusBadRequest:
		entry.Warn("Client error")
	default:
		entry.Info("Success")
	}

	return err
}

var sensitiveFields = []string{
	"password", "token", "secret", "authorization",
	"credit_card_number", "card_number", "cvv",
}

func sanitizeRequestBody(body []byte) string {
	var jsonBody map[string]interface{}
	if err := jsoniter.Unmarshal(body, &jsonBody); err != nil {
		return "[non-JSON body]"
	}

	for key := range jsonBody {
		for _, field := range sensitiveFields {
			if strings.EqualFold(key, field) {
				jsonBody[key] = "[SECRET]"
			}
		}
	}

	sanitized, err := jsoniter.Marshal(jsonBody)
	if err != nil {
		return "[sanitization-failed]"
	}

	return string(sanitized)
}
