package middleware

import (
	"ExpenseChat/pkg/utils"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	RequestIDKey = "X-Request-ID"

	maxRequestIDLength = 128
)

// newRequestIDMiddleware echoes a caller supplied X-Request-ID and mints a
// ULID for requests that come without a usable one.
func newRequestIDMiddleware(ids utils.IUtils) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDKey)

		if requestID == "" || len(requestID) > maxRequestIDLength {
			id, err := ids.NewULIDFromTimestamp(time.Now())
			if err != nil {
				id = ids.NewUUID()
			}
			requestID = id
		}

		c.Locals(RequestIDKey, requestID)
		c.Set(RequestIDKey, requestID)

		return c.Next()
	}
}
