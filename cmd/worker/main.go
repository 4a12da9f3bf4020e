package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	notificationApp "skillforge/internal/application/notification"
	"skillforge/internal/infrastructure/config"
	"skillforge/internal/infrastructure/database"
	"skillforge/internal/infrastructure/email"
	"skillforge/internal/infrastructure/repository"
	"skillforge/internal/shared/logger"
)

func main() {
	env := "development"
	if len(os.Args) > 1 {
		env = os.Args[1]
	}
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.NewLogger()
	log.Infow("starting notification outbox worker", "environment", env)

	if err := database.Init(&cfg.Database); err != nil {
		log.Errorw("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	notificationRepo := repository.NewNotificationRepository(database.Get(), log)

	emailService := email.NewSMTPEmailService(email.SMTPConfig{
		Host:        cfg.Email.SMTPHost,
		Port:        cfg.Email.SMTPPort,
		Username:    cfg.Email.SMTPUser,
		Password:    cfg.Email.SMTPPassword,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
	})

	dispatcher := notificationApp.NewDispatcher(
		notificationRepo,
		emailService,
		cfg.Worker.BatchSize,
		cfg.Worker.MaxAttempts,
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Infow("received signal, shutting down", "signal", sig)
		cancel()
	}()

	interval := time.Duration(cfg.Worker.PollIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 15 * time.Second
	}

	log.Infow("outbox worker started",
		"poll_interval", interval,
		"batch_size", cfg.Worker.BatchSize,
		"max_attempts", cfg.Worker.MaxAttempts)

	dispatcher.Run(ctx, interval)

	log.Infow("outbox worker stopped")
}
