package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tontiva/tontine-backend/api/routes"
	"github.com/tontiva/tontine-backend/internal/config"
	"github.com/tontiva/tontine-backend/internal/handlers"
	"github.com/tontiva/tontine-backend/internal/repositories"
	mongorepo "github.com/tontiva/tontine-backend/internal/repositories/mongodb"
	"github.com/tontiva/tontine-backend/internal/services"
	"github.com/tontiva/tontine-backend/pkg/events"
	"github.com/tontiva/tontine-backend/pkg/logging"
	"github.com/tontiva/tontine-backend/pkg/mongodb"
)

func main() {
	// .env is optional; real deployments set environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	if cfg.JWT.Secret == "" {
		slog.Error("JWT secret is not configured")
		os.Exit(1)
	}

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		slog.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("error disconnecting from MongoDB", "error", err)
		}
	}()
	db := mongoClient.Database(cfg.MongoDB.Database)

	// Change-notification channel; no-op unless a broker is configured.
	var publisher events.Publisher = events.Noop{}
	if cfg.NATS.URL != "" {
		natsPub, err := events.ConnectNATS(cfg.NATS.URL)
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer natsPub.Close()
		publisher = natsPub
	}

	// Repositories
	var userRepo repositories.UserRepository = mongorepo.NewUserRepository(db)
	var tontineRepo repositories.TontineRepository = mongorepo.NewTontineRepository(db)
	var participantRepo repositories.ParticipantRepository = mongorepo.NewParticipantRepository(db)
	var paymentRepo repositories.PaymentRepository = mongorepo.NewPaymentRepository(db)

	// Services
	authService := services.NewAuthService(userRepo, cfg)
	userService := services.NewUserService(userRepo)
	tontineService := services.NewTontineService(tontineRepo, participantRepo, publisher, cfg)
	paymentService := services.NewPaymentService(paymentRepo, tontineRepo, participantRepo, publisher)

	// Handlers
	handlerDeps := routes.HandlerDependencies{
		AuthHandler:    handlers.NewAuthHandler(authService),
		UserHandler:    handlers.NewUserHandler(userService),
		TontineHandler: handlers.NewTontineHandler(tontineService, userService),
		PaymentHandler: handlers.NewPaymentHandler(paymentService, userService),
	}

	router := routes.SetupRouter(cfg, handlerDeps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exiting")
}
