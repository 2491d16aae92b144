package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riteshkumar/credit-ledger/internal/config"
	"github.com/riteshkumar/credit-ledger/internal/handler"
	"github.com/riteshkumar/credit-ledger/internal/repository"
	"github.com/riteshkumar/credit-ledger/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialise logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// Audit trail goes to Postgres when enabled, otherwise it stays in memory
	var auditRepo repository.AuditRepository = repository.NewMemoryAuditRepository()
	if cfg.AuditEnabled {
		db, err := connectDB(cfg)
		if err != nil {
			logger.Error("failed to connect to audit database", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()

		pgAudit := repository.NewAuditRepository(db)
		if err := pgAudit.EnsureSchema(context.Background()); err != nil {
			logger.Error("failed to prepare audit schema", "error", err.Error())
			os.Exit(1)
		}
		auditRepo = pgAudit
		logger.Info("connected to audit database successfully")
	}

	// Initialise repo
	accountRepo := repository.NewAccountRepository()

	// Initialise services
	defaults := service.AccountDefaults{CreditLimit: cfg.DefaultCreditLimit, APR: cfg.DefaultAPR}
	accountService := service.NewAccountService(accountRepo, auditRepo, defaults, logger)
	transactionService := service.NewTransactionService(accountRepo, auditRepo, logger)

	// Initialise handlers and router
	router := handler.NewRouter(
		handler.NewAccountHandler(accountService, logger),
		handler.NewTransactionHandler(transactionService, logger),
		logger,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a go routine
	go func() {
		logger.Info("starting server on port " + cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", "error", err.Error())
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err.Error())
	}

	logger.Info("server exited gracefully")
}

// connectDB opens the Postgres connection used by the audit trail
func connectDB(cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(10 * time.Minute)

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
