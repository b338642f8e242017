// File: pos-terminal-service/cmd/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pos-terminal-service/internal/api"
	"pos-terminal-service/internal/auth"
	"pos-terminal-service/internal/config"
	"pos-terminal-service/internal/pos"
	"pos-terminal-service/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"pos-terminal-service/internal/domain"
)

const (
	defaultAppName = "PosTerminalService" // App name for logger
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: No .env file found or failed to load, relying on system environment")
	}
	logger := log.New(os.Stdout, fmt.Sprintf("[%s] ", defaultAppName), log.LstdFlags|log.Lshortfile|log.Lmicroseconds)
	logger.Println("INFO: Starting service...")

	// --- Configuration Loading ---
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("FATAL: Error loading configuration: %v", err)
	}
	logger.Printf("INFO: Configuration loaded for APP_ENV: %s, LogLevel: %s", cfg.AppEnv, cfg.LogLevel)
	if cfg.Auth.JWTSecret == "dev-secret-change-me" {
		logger.Println("WARN: Using default JWT secret. Set JWT_SECRET in production.")
	}

	// --- Store Initialization ---
	// All state is in-memory: there is no durable backend, by design. The
	// audit ledger is its own component so the stock history survives
	// product deletion independently of the catalog.
	auditLog := store.NewAuditLog()
	memStore := store.NewMemoryStore(auditLog)

	if _, err := memStore.UpdateSettings(context.Background(), domain.Settings{
		StoreName:         cfg.Store.Name,
		TaxRate:           decimal.NewFromFloat(cfg.Store.TaxRate),
		Currency:          cfg.Store.Currency,
		ReceiptHeader:     "Thank you for shopping with us!",
		ReceiptFooter:     "Please come again!",
		LowStockThreshold: cfg.Store.LowStockThreshold,
	}); err != nil {
		logger.Fatalf("FATAL: Failed to initialize settings: %v", err)
	}
	if err := memStore.Seed(context.Background(), cfg.Auth.SeedPassword); err != nil {
		logger.Fatalf("FATAL: Failed to seed demo data: %v", err)
	}
	logger.Println("INFO: In-memory stores initialized and seeded.")

	// --- Core Services ---
	// The cart and the checkout recorder share one tax policy backed by the
	// live settings, so the running cart total and the recorded receipt can
	// never disagree on tax.
	taxPolicy := pos.TaxPolicyFunc(func() decimal.Decimal {
		settings, err := memStore.GetSettings(context.Background())
		if err != nil {
			return decimal.NewFromFloat(cfg.Store.TaxRate)
		}
		return settings.TaxRate
	})
	cart := pos.NewCart(taxPolicy)
	recorder := pos.NewRecorder(memStore, taxPolicy)
	authService := auth.NewService(memStore, []byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)

	// --- Initialize API Handler ---
	httpAPIHandler := api.NewHTTPHandler(api.Deps{
		Catalog:      memStore,
		Transactions: memStore,
		Inventory:    auditLog,
		Users:        memStore,
		Settings:     memStore,
		Cart:         cart,
		Recorder:     recorder,
		Auth:         authService,
	})

	// --- Setup & Start HTTP Server ---
	httpRouter := chi.NewRouter()
	setupBaseMiddleware(httpRouter, logger)
	registerHealthCheck(httpRouter, logger)
	httpAPIHandler.RegisterRoutes(httpRouter)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HttpServer.Port,
		Handler:      httpRouter,
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}

	go func() {
		logger.Printf("INFO: HTTP server listening on port %s", cfg.HttpServer.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("FATAL: HTTP server ListenAndServe error: %v", err)
		}
		logger.Println("INFO: HTTP server has stopped.")
	}()

	// --- Graceful Shutdown ---
	shutdownComplete := make(chan struct{})
	go waitForShutdown(logger, httpServer, shutdownComplete)

	<-shutdownComplete
	logger.Println("INFO: Service shutdown sequence finished.")
}

func setupBaseMiddleware(router *chi.Mux, logger *log.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger) // Chi's request logger
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second)) // Default timeout for requests
	logger.Println("INFO: Base HTTP middleware registered.")
}

func registerHealthCheck(router *chi.Mux, logger *log.Logger) {
	healthPath := "/api/v1/healthz"
	router.Get(healthPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":      "healthy",
			"serviceName": defaultAppName,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		})
	})
	logger.Printf("INFO: HTTP health check registered at %s", healthPath)
}

func waitForShutdown(
	logger *log.Logger,
	httpServer *http.Server,
	shutdownComplete chan struct{},
) {
	defer close(shutdownComplete)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-sigChan
	logger.Printf("INFO: Received signal: %s. Starting graceful shutdown...", receivedSignal)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	logger.Println("INFO: Attempting to gracefully shut down HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("WARN: HTTP server graceful shutdown failed: %v", err)
	} else {
		logger.Println("INFO: HTTP server gracefully shut down.")
	}

	// State is in-memory only; nothing else to flush or close.
	logger.Println("INFO: Graceful shutdown sequence completed.")
}
