package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/halcyonlabs/identity-service/internal/config"
	"github.com/halcyonlabs/identity-service/internal/logging"
	"github.com/halcyonlabs/identity-service/internal/mailer"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting mailer",
		"env", cfg.Server.Env,
		"stream", cfg.Mail.Stream,
	)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}

	sender := mailer.NewService(
		cfg.Mail.SMTPHost,
		cfg.Mail.SMTPPort,
		cfg.Mail.SMTPUser,
		cfg.Mail.SMTPPassword,
		cfg.Mail.FrontendURL,
	)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "mailer"
	}

	dispatcher := mailer.NewDispatcher(
		redisClient,
		sender,
		logger,
		cfg.Mail.Stream,
		cfg.Mail.Group,
		hostname,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := dispatcher.Run(ctx); err != nil {
		return fmt.Errorf("dispatcher error: %w", err)
	}

	logger.Info("mailer stopped")
	return nil
}
