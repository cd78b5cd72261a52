package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialite/internal/api"
	"socialite/internal/audit"
	"socialite/internal/authz"
	"socialite/internal/comment"
	"socialite/internal/config"
	"socialite/internal/database"
	"socialite/internal/database/migrations"
	"socialite/internal/group"
	"socialite/internal/post"
	"socialite/internal/session"
	"socialite/internal/telemetry"
	"socialite/internal/user"
	"socialite/internal/validator"

	"github.com/gofiber/fiber/v2"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.NewConfig()

	tel, err := telemetry.New(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("Telemetry shutdown failed", "error", err)
		}
	}()

	logger := tel.Logger()
	slog.SetDefault(logger)

	if err := migrations.Up(cfg.Database.DSN()); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	logger.Info("Migrations applied")

	db, err := database.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	sessions := session.New(session.Config{
		Addr:      cfg.Redis.Addr,
		Password:  cfg.Redis.Password,
		DB:        cfg.Redis.DB,
		ExpiresIn: cfg.Redis.SessionTTL,
	})
	defer sessions.Close()

	if err := sessions.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	auditor := audit.NewAuditor(logger, db)
	authzEngine := authz.NewEngine(logger, db)
	userManager := user.NewManager(logger, db, &auditor)
	postManager := post.NewManager(logger, db, &auditor)
	commentManager := comment.NewManager(logger, db, &auditor)
	groupManager := group.NewManager(logger, db, &auditor)

	app := fiber.New(fiber.Config{
		AppName:      "socialite",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})
	app.Use(api.RequestLogger(logger))

	handler := api.NewHandler(
		logger,
		db,
		validator.New(),
		&sessions,
		&authzEngine,
		&userManager,
		&postManager,
		&commentManager,
		&groupManager,
	)
	handler.RegisterRoutes(app)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		logger.Info("Server listening", "addr", addr)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}
