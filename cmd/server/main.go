package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadcrm-backend/auth"
	"leadcrm-backend/config"
	"leadcrm-backend/handlers"
	"leadcrm-backend/logger"
	"leadcrm-backend/metrics"
	"leadcrm-backend/models"
	"leadcrm-backend/repository"
	"leadcrm-backend/rowstore"
	"leadcrm-backend/service"
	"leadcrm-backend/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Server.Env, cfg.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting service", cfg.LogFields()...)

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize row store
	store, closeStore, err := rowstore.Open(ctx, rowstore.OpenConfig{
		Type:        cfg.Store.Type,
		DatabaseURL: cfg.Store.DatabaseURL,
		Sheets: rowstore.SheetsConfig{
			SpreadsheetID:   cfg.Sheets.SpreadsheetID,
			CredentialsJSON: cfg.Sheets.CredentialsJSON,
			CredentialsFile: cfg.Sheets.CredentialsFile,
		},
		MemorySheets: models.SheetNames(),
	})
	if err != nil {
		log.Fatal("Failed to initialize row store", zap.Error(err))
	}
	defer closeStore()

	if cfg.Store.Type == rowstore.TypeMemory {
		if err := repository.WriteHeaders(ctx, store); err != nil {
			log.Fatal("Failed to write sheet headers", zap.Error(err))
		}
		log.Warn("Using the in-memory row store, data is lost on restart")
	}
	store = rowstore.NewInstrumented(store, log)
	log.Info("Row store initialized", zap.String("type", cfg.Store.Type))

	// Initialize deletion archive
	archive, err := storage.NewStorage(storage.StorageConfig{
		Type:         storage.StorageType(cfg.Archive.Type),
		LocalPath:    cfg.Archive.LocalPath,
		S3Bucket:     cfg.Archive.S3Bucket,
		S3Region:     cfg.Archive.S3Region,
		AWSAccessKey: cfg.Archive.AWSAccessKey,
		AWSSecretKey: cfg.Archive.AWSSecretKey,
	})
	if err != nil {
		log.Fatal("Failed to initialize archive storage", zap.Error(err))
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	if err != nil {
		log.Fatal("Failed to initialize sessions", zap.Error(err))
	}

	limiter := auth.NewLoginLimiter(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst)
	go limiter.Cleanup(ctx)

	// Initialize repositories
	clientRepo := repository.NewClientRepository(store)
	userRepo := repository.NewUserRepository(store)
	invoiceRepo := repository.NewInvoiceRepository(store)
	auditRepo := repository.NewAuditRepository(store)
	paymentRepo := repository.NewPaymentRepository(store)
	pricingRepo := repository.NewPricingRepository(store)

	// Initialize services
	pricingService := service.NewPricingService(pricingRepo)

	clientService := service.NewClientService(
		service.WithClientRepository(clientRepo),
		service.WithUserRepository(userRepo),
		service.WithInvoiceRepository(invoiceRepo),
		service.WithAuditRepository(auditRepo),
		service.WithPricingService(pricingService),
		service.WithArchive(archive),
		service.WithLogger(log),
	)

	authService := service.NewAuthService(
		service.AuthWithUserRepository(userRepo),
		service.AuthWithTokenManager(tokens),
		service.AuthWithDevLogin(service.DevLogin{
			Enabled:  cfg.Auth.DevLogin.Enabled,
			Username: cfg.Auth.DevLogin.Username,
			Password: cfg.Auth.DevLogin.Password,
		}),
		service.AuthWithLogger(log),
	)

	reportService := service.NewReportService(clientRepo, invoiceRepo, paymentRepo, log)
	invoiceService := service.NewInvoiceService(invoiceRepo, clientRepo)
	exportService := service.NewExportService(clientService)

	registry := metrics.NewRegistry(rowstore.Collectors()...)

	router := handlers.NewRouter(handlers.RouterConfig{
		Log:          log,
		Metrics:      metrics.NewHTTPMetrics(cfg.ServiceName, registry),
		Gatherer:     registry,
		Tokens:       tokens,
		CookieName:   cfg.Auth.CookieName,
		CookieSecure: cfg.Auth.CookieSecure,
		LoginLimiter: limiter,
		Auth:         authService,
		Clients:      clientService,
		Pricing:      pricingService,
		Reports:      reportService,
		Invoices:     invoiceService,
		Export:       exportService,
		Archive:      archive,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
