package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"docbot/internal/auth"
	"docbot/internal/config"
	"docbot/internal/db"
	"docbot/internal/docs"
	"docbot/internal/erp"
	"docbot/internal/invoices"
	mcpserver "docbot/internal/mcp"
	"docbot/internal/metrics"
	"docbot/internal/ocr"
	"docbot/internal/storage"
	"docbot/internal/vendors"
	"docbot/internal/web"

	"github.com/mark3labs/mcp-go/server"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()

	// Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))

	// Context for startup
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Connect to MongoDB
	logger.Info("connecting to MongoDB", "uri", cfg.MongoURI)
	database, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	logger.Info("connected to MongoDB")

	// File storage
	store, err := storage.New(cfg.UploadDirectory, cfg.MaxUploadSize, cfg.AllowedTypes, logger)
	if err != nil {
		log.Fatalf("failed to initialize storage: %v", err)
	}

	// OCR pipeline
	ocrSvc := ocr.NewService(ocr.Options{
		AzureEndpoint: cfg.AzureOCREndpoint,
		AzureKey:      cfg.AzureOCRKey,
		TesseractPath: cfg.TesseractPath,
		Timeout:       cfg.OCRTimeout,
	}, logger)

	// Wire dependencies
	userRepo := auth.NewRepo(database)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		logger.Warn("failed to ensure user indexes", "error", err)
	}
	authSvc := auth.NewService(userRepo, cfg.SecretKey, cfg.AccessTokenTTL)
	if err := authSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Warn("failed to ensure admin account", "error", err)
	}
	authHandler := auth.NewHandler(authSvc, logger)

	vendorRepo := vendors.NewRepo(database)
	if err := vendorRepo.EnsureIndexes(ctx); err != nil {
		logger.Warn("failed to ensure vendor indexes", "error", err)
	}
	vendorHandler := vendors.NewHandler(vendorRepo, logger)

	invoiceRepo := invoices.NewRepo(database)
	if err := invoiceRepo.EnsureIndexes(ctx); err != nil {
		logger.Warn("failed to ensure invoice indexes", "error", err)
	}
	invoiceSvc := invoices.NewService(invoiceRepo, store, ocrSvc, vendorRepo, cfg.MinConfidence, logger)
	invoiceHandler := invoices.NewHandler(invoiceSvc, logger)

	erpSvc := erp.NewService(logger,
		erp.NewQuickBooks(cfg.QuickBooksClientID, cfg.QuickBooksClientSecret),
		erp.NewXero(cfg.XeroClientID, cfg.XeroClientSecret),
	)
	erpSvc.Initialize(ctx)
	erpHandler := erp.NewHandler(erpSvc, invoiceSvc, logger)

	// Create MCP server
	mcpSrv := mcpserver.NewServer(invoiceSvc, vendorRepo)

	// API docs
	docsHandler, err := docs.Handler()
	if err != nil {
		log.Fatalf("failed to render API docs: %v", err)
	}

	// HTTP router
	mux := http.NewServeMux()
	authed := func(h http.HandlerFunc) http.Handler {
		return authSvc.Middleware(h)
	}

	// Public endpoints
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		web.JSON(w, map[string]string{
			"message": "DocBot Enterprise API",
			"version": version,
			"status":  "active",
		}, http.StatusOK)
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		web.JSON(w, map[string]string{
			"status":  "healthy",
			"service": "docbot-backend",
			"version": version,
		}, http.StatusOK)
	})
	mux.HandleFunc("GET /docs", docsHandler)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	// Authenticated REST API
	mux.Handle("GET /api/v1/users/me", authed(authHandler.Me))
	mux.Handle("POST /api/v1/invoices/upload", authed(invoiceHandler.Upload))
	mux.Handle("GET /api/v1/invoices", authed(invoiceHandler.List))
	mux.Handle("GET /api/v1/invoices/{id}", authed(invoiceHandler.Get))
	mux.Handle("PUT /api/v1/invoices/{id}/approve", authed(invoiceHandler.Approve))
	mux.Handle("PUT /api/v1/invoices/{id}/reject", authed(invoiceHandler.Reject))
	mux.Handle("POST /api/v1/invoices/{id}/sync", authed(erpHandler.SyncInvoice))
	mux.Handle("GET /api/v1/erp/status", authed(erpHandler.Status))
	mux.Handle("GET /api/v1/vendors", authed(vendorHandler.List))
	mux.Handle("POST /api/v1/vendors", authed(vendorHandler.Create))
	mux.Handle("GET /api/v1/stats/dashboard", authed(invoiceHandler.DashboardStats))

	// MCP endpoint (HTTP transport)
	// MCP uses POST for requests and GET for SSE streams
	mcpHTTP := server.NewStreamableHTTPServer(mcpSrv)
	mux.Handle("POST /mcp", mcpHTTP)
	mux.Handle("GET /mcp", mcpHTTP)
	mux.Handle("DELETE /mcp", mcpHTTP)

	handler := web.CORS(cfg.CORSOrigins)(metrics.Middleware(mux))

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("server starting", "port", cfg.Port)
	logger.Info("endpoints available",
		"api", "http://localhost:"+cfg.Port+"/api/v1",
		"docs", "http://localhost:"+cfg.Port+"/docs",
		"mcp", "http://localhost:"+cfg.Port+"/mcp",
	)

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}

	logger.Info("server stopped")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
