package handlerUtil

import (
	"ExpenseChat/internal/api/analytics"
	"ExpenseChat/internal/api/chat"
	"ExpenseChat/internal/api/ledger"
	"ExpenseChat/pkg/calendar"
	"ExpenseChat/pkg/log"
	"ExpenseChat/pkg/response"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

var errorCodes = []struct {
	err  error
	code string
}{
	{ledger.ErrTransactionNotFound, "TRANSACTION_NOT_FOUND"},
	{ledger.ErrInvalidTransaction, "INVALID_TRANSACTION"},
	{ledger.ErrInvalidUserID, "INVALID_USER_ID"},
	{ledger.ErrInvalidFilter, "INVALID_FILTER"},
	{analytics.ErrInvalidRange, "INVALID_RANGE"},
	{analytics.ErrRangeTooLarge, "RANGE_TOO_LARGE"},
	{analytics.ErrInvalidBucketSize, "INVALID_BUCKET_SIZE"},
	{chat.ErrConversationExpired, "CONVERSATION_EXPIRED"},
	{chat.ErrPendingNotFound, "PENDING_NOT_FOUND"},
	{chat.ErrEmptyUtterance, "EMPTY_UTTERANCE"},
	{chat.ErrInvalidConversationID, "INVALID_CONVERSATION_ID"},
	{chat.ErrPendingStore, "PENDING_STORE_ERROR"},
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	fields := log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}

	if errors.Is(err, calendar.ErrInvalidRange) {
		h.logger.WithFields(fields).Warn("Invalid date range")
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_RANGE",
		})
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		fields["code"] = respErr.Code

		if respErr.Code >= fiber.StatusInternalServerError {
			h.logger.WithFields(fields).Error("Operation failed with error response")
			return c.Status(respErr.Code).JSON(ErrorResponse{
				Error: respErr.Err.Error(),
				Code:  codeFor(err),
			})
		}

		h.logger.WithFields(fields).Warn("Operation failed with error response")
		return c.Status(respErr.Code).JSON(ErrorResponse{
			Error: err.Error(),
			Code:  codeFor(err),
		})
	}

	traceID := uuid.NewString()
	fields["trace_id"] = traceID
	h.logger.WithFields(fields).Error("Unexpected error")

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "An unexpected error occurred",
		Code:    "INTERNAL_ERROR",
		Details: "trace id " + traceID,
	})
}

func codeFor(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return ""
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error: "Validation failed: " + err.Error(),
		Code:  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(utils.StatusMessage(fiber.StatusRequestTimeout))
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
