package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "customer-registry/docs"
	"customer-registry/internal/api"
	mw "customer-registry/internal/api/middleware"
	"customer-registry/internal/batch"
	"customer-registry/internal/config"
	"customer-registry/internal/domain/customer"
	"customer-registry/internal/domain/user"
	"customer-registry/internal/event"
	"customer-registry/internal/infrastructure/database/postgres"
	"customer-registry/internal/infrastructure/logging"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

const dependencyTimeout = 5 * time.Second

// closer releases a resource during shutdown.
type closer struct {
	name  string
	close func() error
}

// @title Customer Registry API
// @version 1.0
// @description CRUD API for customers and users with uniqueness-checked writes.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, logger := initializeApp()

	dbPool := initializeDatabase(cfg, logger)
	defer closeDatabase(dbPool, logger)

	publisher, publisherCloser := initializeEventPublisher(cfg.RabbitMQ, logger)
	limiter, limiterCloser := initializeRateLimiter(cfg, logger)

	customerService, userService := initializeServices(dbPool, publisher, logger)

	statsJob := batch.NewRecordStatsJob(customerService, userService, logger)
	cronScheduler := startBatchJobs(cfg, logger, statsJob)

	router := api.SetupRouter(customerService, userService, limiter, cfg, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	handleShutdown(srv, cronScheduler, shutdownChan, serverErrors, logger, publisherCloser, limiterCloser)
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger)
	logger.Info("Application starting...", "port", cfg.Server.Port, "auth_enabled", cfg.Server.Auth.Enabled)

	return cfg, logger
}

func initializeDatabase(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	logger.Info("Initializing database connection pool...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbPool, err := postgres.NewConnectionPool(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}

	if cfg.Database.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, dbPool, logger); err != nil {
			logger.Error("Failed to ensure database schema", "error", err)
			dbPool.Close()
			os.Exit(1)
		}
	}
	return dbPool
}

func closeDatabase(dbPool *pgxpool.Pool, logger *slog.Logger) {
	logger.Info("Closing database connection pool...")
	dbPool.Close()
}

// initializeEventPublisher falls back to a no-op publisher when RabbitMQ is
// disabled or unreachable.
func initializeEventPublisher(cfg config.RabbitMQConfig, logger *slog.Logger) (event.EventPublisher, closer) {
	noop := closer{name: "event publisher", close: func() error { return nil }}
	if !cfg.Enabled {
		logger.Info("RabbitMQ disabled; domain events will not be published")
		return event.NewNoopPublisher(logger), noop
	}

	conn, err := amqp.DialConfig(cfg.URL(), amqp.Config{Dial: amqp.DefaultDial(dependencyTimeout)})
	if err != nil {
		logger.Warn("Failed to connect to RabbitMQ; domain events will not be published", "host", cfg.Host, "error", err)
		return event.NewNoopPublisher(logger), noop
	}

	publisher, err := event.NewRabbitMQEventPublisher(conn, cfg.ExchangeName, logger)
	if err != nil {
		logger.Warn("Failed to set up RabbitMQ publisher; domain events will not be published", "error", err)
		_ = conn.Close()
		return event.NewNoopPublisher(logger), noop
	}

	logger.Info("RabbitMQ event publisher ready", "exchange", cfg.ExchangeName)
	return publisher, closer{name: "rabbitmq connection", close: conn.Close}
}

// initializeRateLimiter shares limits through Redis when redis.addr is set and
// reachable, and keeps them in process memory otherwise.
func initializeRateLimiter(cfg *config.Config, logger *slog.Logger) (mw.Limiter, closer) {
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: dependencyTimeout,
		})

		ctx, cancel := context.WithTimeout(context.Background(), dependencyTimeout)
		defer cancel()
		err := client.Ping(ctx).Err()
		if err == nil {
			limiter := mw.NewRedisLimiter(client, cfg.Server.RateLimit)
			logger.Info("Rate limiter configured", "limiter", fmt.Sprint(limiter))
			return limiter, closer{name: "redis client", close: client.Close}
		}
		logger.Warn("Redis unreachable; falling back to in-memory rate limiting", "addr", cfg.Redis.Addr, "error", err)
		_ = client.Close()
	}

	limiter := mw.NewMemoryLimiter(cfg.Server.RateLimit)
	logger.Info("Rate limiter configured", "limiter", fmt.Sprint(limiter))
	return limiter, closer{name: "memory rate limiter", close: func() error {
		limiter.Stop()
		return nil
	}}
}

func initializeServices(dbPool *pgxpool.Pool, publisher event.EventPublisher, logger *slog.Logger) (customer.CustomerService, user.UserService) {
	logger.Info("Initializing application components...")
	customerRepo := postgres.NewCustomerRepository(dbPool, logger)
	userRepo := postgres.NewUserRepository(dbPool, logger)
	return customer.NewCustomerService(customerRepo, publisher, logger),
		user.NewUserService(userRepo, publisher, logger)
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server listening on port %d", cfg.Server.Port))
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serverErrors <- err
		} else {
			logger.Info("Server closed gracefully.")
			serverErrors <- nil
		}
	}()
	return srv, serverErrors, shutdownChan
}

func handleShutdown(srv *http.Server, cronScheduler *cron.Cron, shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger, closers ...closer) {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	var triggerReason string
	select {
	case sig := <-shutdownChan:
		triggerReason = "signal: " + sig.String()
		logger.Info("Shutdown signal received.", "signal", sig.String())
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			os.Exit(1)
		}
		triggerReason = "server exited"
		logger.Info("Server goroutine finished before signal.", "error", err)
	}

	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)

	logger.Info("Stopping cron scheduler...")
	cronCtx := cronScheduler.Stop()
	select {
	case <-cronCtx.Done():
		logger.Info("Cron scheduler stopped gracefully.")
	case <-time.After(15 * time.Second):
		logger.Warn("Cron scheduler shutdown timed out.")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", "error", err)
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	logger.Info("Waiting for server goroutine to confirm exit...")
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
		} else {
			logger.Info("Server goroutine confirmed exit.")
		}
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for server goroutine confirmation.")
	}

	for _, c := range closers {
		if err := c.close(); err != nil {
			logger.Warn("Failed to release resource", "resource", c.name, "error", err)
		} else {
			logger.Info("Released resource", "resource", c.name)
		}
	}

	logger.Info("Application shutdown process complete.")
}

func startBatchJobs(cfg *config.Config, logger *slog.Logger, statsJob *batch.RecordStatsJob) *cron.Cron {
	logger.Info("Initializing batch job scheduler...")
	c := cron.New()

	scheduleSpec := cfg.Batch.StatsSchedule
	if scheduleSpec == "" {
		scheduleSpec = "*/5 * * * *"
		logger.Warn("Record stats schedule not configured, using default", "schedule", scheduleSpec)
	}
	jobTimeout := cfg.Batch.StatsTimeout
	if jobTimeout <= 0 {
		jobTimeout = 30 * time.Second
	}

	if err := statsJob.Schedule(c, scheduleSpec, jobTimeout); err != nil {
		logger.Error("Failed to schedule record stats job", "schedule", scheduleSpec, slog.Any("error", err))
	} else {
		logger.Info("Scheduled record stats job", "schedule", scheduleSpec)
	}

	c.Start()
	logger.Info("Cron scheduler started.")
	return c
}
