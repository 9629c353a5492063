package config

import (
	"ExpenseChat/database/migration"
	"ExpenseChat/database/postgres"
	"ExpenseChat/database/sqlite"
	analyticsHandler "ExpenseChat/internal/api/analytics/handler"
	analyticsService "ExpenseChat/internal/api/analytics/service"
	chatHandler "ExpenseChat/internal/api/chat/handler"
	chatRepository "ExpenseChat/internal/api/chat/repository"
	chatService "ExpenseChat/internal/api/chat/service"
	ledgerHandler "ExpenseChat/internal/api/ledger/handler"
	ledgerRepository "ExpenseChat/internal/api/ledger/repository"
	ledgerService "ExpenseChat/internal/api/ledger/service"
	"ExpenseChat/internal/middleware"
	"ExpenseChat/pkg/amqp"
	"ExpenseChat/pkg/nlp"
	"ExpenseChat/pkg/redis"
	"ExpenseChat/pkg/taxonomy"
	"ExpenseChat/pkg/utils"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine      *fiber.App
	db          *sqlx.DB
	log         *logrus.Logger
	env         *Env
	middleware  middleware.Middleware
	validator   *validator.Validate
	utils       utils.IUtils
	registry    *taxonomy.Registry
	handlers    []handler
	redisServer redis.IRedis
	publisher   amqp.IPublisher
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.env == nil {
		server.env = Load()
	}
	if server.validator == nil {
		server.validator = NewValidator()
	}
	if server.utils == nil {
		server.utils = utils.New()
	}
	if server.registry == nil {
		server.registry = taxonomy.DefaultRegistry()
	}
	if server.publisher == nil {
		server.publisher = amqp.NewNoop()
	}
	if server.middleware == nil {
		server.middleware = middleware.New(server.log, middleware.Config{
			RateLimitRPS:   server.env.RateLimitRPS,
			RateLimitBurst: server.env.RateLimitBurst,
		})
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithEnv(env *Env) ServerOption {
	return func(s *Server) error {
		if err := env.Validate(); err != nil {
			return err
		}
		s.env = env
		return nil
	}
}

// WithDatabase opens and migrates the ledger database named by the env. The
// memory backend needs neither.
func WithDatabase() ServerOption {
	return func(s *Server) error {
		if s.env == nil {
			return fmt.Errorf("env must be loaded before the database")
		}

		var (
			db      *sqlx.DB
			dialect migration.Dialect
			dsn     string
			err     error
		)

		switch s.env.LedgerBackend {
		case BackendPostgres:
			dialect, dsn = migration.DialectPostgres, s.env.Postgres.DSN()
			db, err = postgres.New(s.env.Postgres)
		case BackendSqlite:
			dialect, dsn = migration.DialectSqlite, s.env.SqlitePath
			db, err = sqlite.New(s.env.SqlitePath)
		default:
			return nil
		}
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}

		if err := migration.Up(dialect, dsn); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to migrate database: %w", err)
		}

		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithPublisher(publisher amqp.IPublisher) ServerOption {
	return func(s *Server) error {
		s.publisher = publisher
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}

		cfg := middleware.Config{}
		if s.env != nil {
			cfg.RateLimitRPS = s.env.RateLimitRPS
			cfg.RateLimitBurst = s.env.RateLimitBurst
		}
		s.middleware = middleware.New(s.log, cfg)
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func WithRegistry(registry *taxonomy.Registry) ServerOption {
	return func(s *Server) error {
		s.registry = registry
		return nil
	}
}

func (s *Server) RegisterHandler() {
	location := s.env.Location()

	// Ledger Domain
	var ledgerRepo ledgerRepository.Repository
	if s.db != nil {
		ledgerRepo = ledgerRepository.New(s.db, s.log)
	}
	ledgerServices := ledgerService.NewLedgerService(s.log, ledgerRepo, s.publisher, s.utils, s.registry, ledgerService.Options{
		ReportingCurrency: s.env.ReportingCurrency,
		Location:          location,
	})
	ledgerHandlers := ledgerHandler.New(s.log, s.validator, s.middleware, ledgerServices, s.registry)

	// Analytics Domain
	analyticsServices := analyticsService.NewAnalyticsService(s.log, ledgerServices, s.registry, analyticsService.Options{
		ReportingCurrency: s.env.ReportingCurrency,
		Location:          location,
	})
	analyticsHandlers := analyticsHandler.New(s.log, s.validator, s.middleware, analyticsServices, s.registry, location)

	// Chat Domain
	pendingRepo := chatRepository.NewMemory()
	if s.env.PendingStore == BackendRedis && s.redisServer != nil {
		pendingRepo = chatRepository.NewRedis(s.redisServer, s.env.PendingTTL)
	}
	parser := nlp.NewParser(s.registry, nlp.Options{
		ReportingCurrency: s.env.ReportingCurrency,
		Location:          location,
	})
	chatServices := chatService.NewChatService(s.log, parser, ledgerServices, analyticsServices, pendingRepo, s.utils, s.registry, chatService.Options{
		MaxClarificationTurns: s.env.MaxClarificationTurns,
		PendingTTL:            s.env.PendingTTL,
		RequirePaymentMethod:  s.env.RequirePaymentMethod,
		RequireDate:           s.env.RequireDate,
		Location:              location,
	})
	chatHandlers := chatHandler.New(s.log, s.validator, s.middleware, chatServices, s.registry)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, ledgerHandlers, analyticsHandlers, chatHandlers)
}

func (s *Server) Run() error {
	s.mount()
	return s.engine.Listen(fmt.Sprintf(":%s", s.env.AppPort))
}

func (s *Server) mount() {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware)
	router := s.engine.Group("/api/v1")

	for _, h := range s.handlers {
		h.Start(router)
	}
}

// Shutdown stops accepting requests, then releases the database, the broker
// channel and the redis pool.
func (s *Server) Shutdown() error {
	err := s.engine.Shutdown()

	if s.db != nil {
		if dbErr := s.db.Close(); dbErr != nil {
			s.log.Errorf("Failed to close database: %v", dbErr)
		}
	}
	if s.publisher != nil {
		if pubErr := s.publisher.Close(); pubErr != nil {
			s.log.Errorf("Failed to close publisher: %v", pubErr)
		}
	}
	if s.redisServer != nil {
		if redisErr := s.redisServer.Close(); redisErr != nil {
			s.log.Errorf("Failed to close redis: %v", redisErr)
		}
	}

	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
