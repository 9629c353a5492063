package middleware

import (
	contextPkg "ExpenseChat/pkg/context"
	"regexp"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const UserIDHeader = "X-User-ID"

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9._@-]{1,64}$`)

// NewUserMiddleware scopes the request to the ledger named by the X-User-ID
// header. Requests without the header share the default ledger.
func (m *middleware) NewUserMiddleware(ctx *fiber.Ctx) error {
	userID := ctx.Get(UserIDHeader)
	if userID == "" {
		userID = contextPkg.DefaultUserID
	}

	if !userIDPattern.MatchString(userID) {
		m.log.WithFields(logrus.Fields{
			"request_id": m.GetRequestID(ctx),
			"path":       ctx.Path(),
		}).Warn("Rejected malformed user id")
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid user id",
			"code":  "INVALID_USER_ID",
		})
	}

	ctx.Locals(contextPkg.UserIDKey, userID)

	return ctx.Next()
}

func (m *middleware) GetUserID(ctx *fiber.Ctx) string {
	userID, ok := ctx.Locals(contextPkg.UserIDKey).(string)
	if !ok || userID == "" {
		return contextPkg.DefaultUserID
	}
	return userID
}
