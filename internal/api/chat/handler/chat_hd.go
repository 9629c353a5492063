package chatHandler

import (
	"ExpenseChat/internal/api/chat"
	contextPkg "ExpenseChat/pkg/context"
	"ExpenseChat/pkg/handlerUtil"
	"ExpenseChat/pkg/log"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *ChatHandler) SendMessage(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	conversationID := ctx.Params("conversationId")

	h.log.WithFields(log.Fields{
		"request_id":      requestID,
		"conversation_id": conversationID,
		"path":            ctx.Path(),
	}).Debug("Processing chat message")

	var req chat.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	reply, err := h.chatService.SendUtterance(c, h.middleware.GetUserID(ctx), conversationID, req.Text, h.clock(req.Now))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "send_message")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, h.toReplyResponse(reply))
	}
}

func (h *ChatHandler) CancelConversation(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	reply, err := h.chatService.Cancel(c, h.middleware.GetUserID(ctx), ctx.Params("conversationId"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "cancel_conversation")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, h.toReplyResponse(reply))
	}
}

// ParseUtterance shows what the parser makes of a sentence without touching
// any conversation.
func (h *ChatHandler) ParseUtterance(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	var req chat.ParseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	result, intent, description := h.chatService.Parse(req.Text, h.clock(req.Now))

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, toParseResponse(result, intent, description))
}
