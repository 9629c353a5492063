package chatHandler

import (
	chatService "ExpenseChat/internal/api/chat/service"
	"ExpenseChat/internal/middleware"
	"ExpenseChat/pkg/taxonomy"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type ChatHandler struct {
	log         *logrus.Logger
	validator   *validator.Validate
	middleware  middleware.Middleware
	chatService chatService.IChatService
	registry    *taxonomy.Registry
	now         func() time.Time
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	cs chatService.IChatService,
	registry *taxonomy.Registry,
) *ChatHandler {
	if registry == nil {
		registry = taxonomy.DefaultRegistry()
	}
	return &ChatHandler{
		log:         log,
		validator:   validate,
		middleware:  middleware,
		chatService: cs,
		registry:    registry,
		now:         time.Now,
	}
}

func (h *ChatHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	srv.Post("/chat/parse", h.middleware.NewRateLimiter, h.ParseUtterance)
	srv.Post("/chat/:conversationId/messages", h.middleware.NewRateLimiter, h.middleware.NewUserMiddleware, h.SendMessage)
	srv.Delete("/chat/:conversationId", h.middleware.NewRateLimiter, h.middleware.NewUserMiddleware, h.CancelConversation)
	srv.Get("/chat/:conversationId/ws", h.middleware.NewRateLimiter, h.middleware.NewUserMiddleware, wsMiddleware,
		websocket.New(h.handleChatWebSocket))
}
