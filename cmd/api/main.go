package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/halcyonlabs/identity-service/internal/account"
	"github.com/halcyonlabs/identity-service/internal/auth"
	"github.com/halcyonlabs/identity-service/internal/config"
	"github.com/halcyonlabs/identity-service/internal/database"
	httpServer "github.com/halcyonlabs/identity-service/internal/http"
	"github.com/halcyonlabs/identity-service/internal/logging"
	"github.com/halcyonlabs/identity-service/internal/notify"
)

// @title           Identity Service
// @version         1.0
// @description     Identity and credential service: registration, login, session tokens, email verification, password recovery.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

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
	logger.Info("starting api",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"token_backend", cfg.Auth.TokenBackend,
	)

	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	signer, err := newTokenSigner(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token signer: %w", err)
	}

	accountStore := account.NewBunStore(db)
	publisher := notify.NewRedisPublisher(redisClient, cfg.Mail.Stream)

	authService, err := auth.NewService(
		accountStore,
		auth.NewArgon2Hasher(),
		signer,
		logger,
		cfg.Auth.AccessTokenDuration,
		cfg.Auth.RefreshTokenDuration,
		cfg.Auth.ResetTokenDuration,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize auth service: %w", err)
	}

	authHandler := auth.NewHandler(authService, publisher, logger)
	authMiddleware := auth.NewMiddleware(signer)

	router := httpServer.NewRouter(cfg, authHandler, authMiddleware, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

func newTokenSigner(cfg config.AuthConfig) (auth.TokenSigner, error) {
	switch cfg.TokenBackend {
	case config.TokenBackendJWT:
		return auth.NewJWTSigner(cfg.JWTSecret), nil
	default:
		return auth.NewPasetoSigner(cfg.PasetoKey)
	}
}

func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return database.NewBunDB(sqlDB), nil
}

func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
