package ledgerHandler

import (
	ledgerService "ExpenseChat/internal/api/ledger/service"
	"ExpenseChat/internal/middleware"
	"ExpenseChat/pkg/taxonomy"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type LedgerHandler struct {
	log           *logrus.Logger
	validator     *validator.Validate
	middleware    middleware.Middleware
	ledgerService ledgerService.ILedgerService
	registry      *taxonomy.Registry
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	ledgerService ledgerService.ILedgerService,
	registry *taxonomy.Registry,
) *LedgerHandler {
	return &LedgerHandler{
		log:           log,
		validator:     validate,
		middleware:    middleware,
		ledgerService: ledgerService,
		registry:      registry,
	}
}

func (h *LedgerHandler) Start(srv fiber.Router) {
	srv.Post("/transactions", h.middleware.NewRateLimiter, h.middleware.NewUserMiddleware, h.CreateTransaction)
	srv.Get("/transactions", h.middleware.NewRateLimiter, h.middleware.NewUserMiddleware, h.ListTransactions)
	srv.Get("/transactions/:id", h.middleware.NewRateLimiter, h.middleware.NewUserMiddleware, h.GetTransaction)
	srv.Patch("/transactions/:id", h.middleware.NewRateLimiter, h.middleware.NewUserMiddleware, h.UpdateTransaction)
	srv.Delete("/transactions/:id", h.middleware.NewRateLimiter, h.middleware.NewUserMiddleware, h.DeleteTransaction)
}
