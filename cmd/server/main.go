package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/expenseflow/expense-approval/internal/config"
	"github.com/expenseflow/expense-approval/internal/container"
	httpiface "github.com/expenseflow/expense-approval/internal/interfaces/http"
	"github.com/expenseflow/expense-approval/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting expense approval service",
		zap.Int("port", cfg.Server.Port),
		zap.String("database", cfg.Database.Path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := container.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer app.Close()

	if err := app.StartWorkers(ctx); err != nil {
		logger.Fatal("Failed to start background workers", zap.Error(err))
	}

	server := httpiface.NewServer(
		httpiface.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		app.ExpenseService(),
		app.UserService(),
		app.RuleService(),
		app.NotificationService(),
		app.Exporter(),
		app.ServiceLogger(),
	)

	// Cancel the root context on SIGINT/SIGTERM; Start returns after a
	// graceful shutdown.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("Shutdown signal received")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.Error("HTTP server exited with error", zap.Error(err))
	}

	logger.Info("Server exited")
}
