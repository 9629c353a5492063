package analyticsHandler

import (
	analyticsService "ExpenseChat/internal/api/analytics/service"
	"ExpenseChat/internal/middleware"
	"ExpenseChat/pkg/taxonomy"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AnalyticsHandler struct {
	log              *logrus.Logger
	validator        *validator.Validate
	middleware       middleware.Middleware
	analyticsService analyticsService.IAnalyticsService
	registry         *taxonomy.Registry
	location         *time.Location
	now              func() time.Time
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	analyticsService analyticsService.IAnalyticsService,
	registry *taxonomy.Registry,
	location *time.Location,
) *AnalyticsHandler {
	if location == nil {
		location = time.UTC
	}

	return &AnalyticsHandler{
		log:              log,
		validator:        validate,
		middleware:       middleware,
		analyticsService: analyticsService,
		registry:         registry,
		location:         location,
		now:              time.Now,
	}
}

func (h *AnalyticsHandler) Start(srv fiber.Router) {
	srv.Get("/dashboard", h.middleware.NewRateLimiter, h.middleware.NewUserMiddleware, h.GetDashboard)
}
