package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finbank/ledger-service/internal/config"
	"github.com/finbank/ledger-service/internal/db"
	"github.com/finbank/ledger-service/internal/domain"
	"github.com/finbank/ledger-service/internal/events"
	"github.com/finbank/ledger-service/internal/httpapi"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()

	// Initialize database connection pool
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to create database pool: %v", err)
	}
	defer pool.Close()
	log.Println("database connection pool initialized")

	if err := db.Migrate(ctx, pool.Pool); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	log.Println("database schema up to date")

	// Create repositories
	accountRepo := db.NewAccountRepository(pool.Pool)
	transactionRepo := db.NewTransactionRepository(pool.Pool)
	userRepo := db.NewUserRepository(pool.Pool)
	txManager := db.NewTransactionManager(pool.Pool)

	// Events are optional; the ledger runs fine without a broker.
	var publisher domain.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		rabbitPublisher, err := events.NewRabbitMQPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatalf("failed to create event publisher: %v", err)
		}
		defer rabbitPublisher.Close()
		publisher = rabbitPublisher
		log.Println("event publisher initialized")
	}

	// Create domain services
	refs := domain.RandomReferenceGenerator{}
	accountService := domain.NewAccountService(accountRepo, refs)
	transactionService := domain.NewTransactionService(accountRepo, transactionRepo, txManager, refs, publisher)
	transferService := domain.NewTransferService(userRepo, accountRepo, transactionRepo, txManager, refs, publisher)
	log.Println("domain services initialized")

	// Create HTTP server
	server := httpapi.NewServer(accountService, transactionService, transferService)
	httpServer := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: server.Router(),
	}

	// Start server in a goroutine
	go func() {
		log.Printf("ledger-service HTTP server starting on :%s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
