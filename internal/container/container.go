// Package container wires application dependencies with ordered
// initialization and reverse-order teardown.
package container

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/expenseflow/expense-approval/internal/application/dispatcher"
	"github.com/expenseflow/expense-approval/internal/application/service"
	"github.com/expenseflow/expense-approval/internal/config"
	"github.com/expenseflow/expense-approval/internal/currency"
	"github.com/expenseflow/expense-approval/internal/domain/approval"
	"github.com/expenseflow/expense-approval/internal/report"
	"github.com/expenseflow/expense-approval/internal/repository"
	"github.com/expenseflow/expense-approval/internal/worker"
	"github.com/expenseflow/expense-approval/pkg/database"
)

// Container holds the application's wired dependencies
type Container struct {
	config *config.Config
	logger *zap.Logger

	db         *database.DB
	dispatcher dispatcher.Dispatcher
	workers    *worker.Manager

	expenseService      service.ExpenseService
	userService         service.UserService
	ruleService         service.RuleService
	notificationService service.NotificationService
	exporter            *report.Exporter

	closed atomic.Bool
}

// New builds the full dependency graph: database and migrations,
// repositories, domain collaborators, services, event subscriptions, and
// background workers. Workers are registered but not started.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(ctx, cfg.Database.MigrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	userRepo := repository.NewUserRepository(db, logger)
	companyRepo := repository.NewCompanyRepository(db, logger)
	ruleRepo := repository.NewRuleRepository(db, logger)
	expenseRepo := repository.NewExpenseRepository(db, logger)
	notificationRepo := repository.NewNotificationRepository(db, logger)

	converter := currency.NewConverter(cfg.Currency.Base, cfg.Currency.Rates)
	serviceLogger := &zapLoggerAdapter{logger: logger}

	d := dispatcher.New(serviceLogger)

	expenseService := service.NewExpenseService(
		expenseRepo,
		userRepo,
		companyRepo,
		ruleRepo,
		db,
		approval.NewSelector(converter, logger),
		approval.NewChainBuilder(service.NewDirectory(userRepo), logger),
		converter,
		d,
		serviceLogger,
	)
	userService := service.NewUserService(userRepo, companyRepo, db, serviceLogger)
	ruleService := service.NewRuleService(ruleRepo, userRepo, serviceLogger)
	notificationService := service.NewNotificationService(notificationRepo, serviceLogger)
	notificationService.Register(d)

	workers := worker.NewManager(logger)
	workers.Register(worker.NewNotificationSender(
		notificationRepo,
		worker.NewLogSink(logger),
		cfg.Worker.NotificationInterval,
		cfg.Worker.NotificationBatchSize,
		logger,
	))

	return &Container{
		config:              cfg,
		logger:              logger,
		db:                  db,
		dispatcher:          d,
		workers:             workers,
		expenseService:      expenseService,
		userService:         userService,
		ruleService:         ruleService,
		notificationService: notificationService,
		exporter:            report.NewExporter(expenseRepo, cfg.Reports.OutputDir, logger),
	}, nil
}

// StartWorkers starts all registered background workers
func (c *Container) StartWorkers(ctx context.Context) error {
	return c.workers.StartAll(ctx)
}

// Close tears down in reverse initialization order: workers first so no
// new events are produced, then the dispatcher drains, then the database
// closes.
func (c *Container) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.workers.StopAll()

	if err := c.dispatcher.Close(); err != nil {
		c.logger.Error("Failed to close dispatcher", zap.Error(err))
	}

	if err := c.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// ExpenseService returns the expense workflow service
func (c *Container) ExpenseService() service.ExpenseService { return c.expenseService }

// UserService returns the user directory service
func (c *Container) UserService() service.UserService { return c.userService }

// RuleService returns the approval rule service
func (c *Container) RuleService() service.RuleService { return c.ruleService }

// NotificationService returns the notification service
func (c *Container) NotificationService() service.NotificationService {
	return c.notificationService
}

// Exporter returns the report exporter
func (c *Container) Exporter() *report.Exporter { return c.exporter }

// Logger returns the container's logger
func (c *Container) Logger() *zap.Logger { return c.logger }

// ServiceLogger returns a key-value logger backed by the container's
// zap logger, for components that take the minimal Logger interface.
func (c *Container) ServiceLogger() *zapLoggerAdapter {
	return &zapLoggerAdapter{logger: c.logger}
}

// zapLoggerAdapter adapts zap.Logger to the minimal key-value Logger
// interface used by the application layer.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
