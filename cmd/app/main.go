package main

import (
	"ExpenseChat/internal/config"
	"ExpenseChat/pkg/amqp"
	"ExpenseChat/pkg/log"
	"ExpenseChat/pkg/redis"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	dotenvErr := godotenv.Load()

	logger := log.NewLogger()
	if dotenvErr != nil {
		logger.Warnf("No .env file loaded: %v", dotenvErr)
	}

	env := config.Load()
	if err := env.Validate(); err != nil {
		logger.Fatal(err)
	}

	fiberApp := config.NewFiber(logger)
	validator := config.NewValidator()

	options := []config.ServerOption{
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithEnv(env),
		config.WithDatabase(),
		config.WithMiddleware(),
		config.WithUtils(),
	}

	if env.PendingStore == config.BackendRedis {
		redisServer := redis.New(redis.Config{
			Address:  env.RedisAddress,
			Password: env.RedisPassword,
			DB:       env.RedisDB,
		}, logger)
		options = append(options, config.WithRedisServer(redisServer))
	}

	if env.AMQPURL != "" {
		publisher, err := amqp.New(env.AMQPURL, env.AMQPExchange, logger)
		if err != nil {
			logger.Fatalf("Failed to connect to AMQP broker: %v", err)
		}
		options = append(options, config.WithPublisher(publisher))
	}

	server, err := config.NewServer(options...)
	if err != nil {
		logger.Fatal(err)
	}

	server.RegisterHandler()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.Info("Server started successfully")

	<-sigChan
	logger.Info("Shutting down server...")

	if err := server.Shutdown(); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
}
