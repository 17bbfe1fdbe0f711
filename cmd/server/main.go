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

	catalogapp "github.com/aquagest/backend/internal/application/catalog"
	identityapp "github.com/aquagest/backend/internal/application/identity"
	"github.com/aquagest/backend/internal/application/notification"
	orderapp "github.com/aquagest/backend/internal/application/order"
	partnerapp "github.com/aquagest/backend/internal/application/partner"
	reportapp "github.com/aquagest/backend/internal/application/report"
	saleapp "github.com/aquagest/backend/internal/application/sale"
	stockapp "github.com/aquagest/backend/internal/application/stock"
	"github.com/aquagest/backend/internal/infrastructure/auth"
	"github.com/aquagest/backend/internal/infrastructure/cache"
	"github.com/aquagest/backend/internal/infrastructure/config"
	"github.com/aquagest/backend/internal/infrastructure/logger"
	infranotify "github.com/aquagest/backend/internal/infrastructure/notification"
	"github.com/aquagest/backend/internal/infrastructure/persistence"
	"github.com/aquagest/backend/internal/interfaces/http/handler"
	"github.com/aquagest/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close() }()

	// Redis is optional: without it reports go uncached and notifications
	// only land in the log.
	var reportCache reportapp.Cache = reportapp.NoOpCache{}
	var notifier notification.Notifier = infranotify.NewLogNotifier(log)
	if cfg.Redis.Host != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, falling back to log notifier and uncached reports", zap.Error(err))
		} else {
			defer func() { _ = redisClient.Close() }()
			reportCache = cache.NewRedisReportCache(redisClient, log)
			notifier = infranotify.NewRedisNotifier(redisClient, log)
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	productRepo := persistence.NewGormProductRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	policy := orderapp.DeliveryPolicy{
		HomeDeliveryFeeRate: cfg.Delivery.HomeDeliveryFeeRate,
		LatePenaltyRate:     cfg.Delivery.LatePenaltyRate,
	}

	converter := orderapp.NewConverter(txScope, notifier)
	orderService := orderapp.NewService(txScope, clientRepo, converter, policy, notifier)
	saleService := saleapp.NewService(txScope, clientRepo, notifier)
	catalogService := catalogapp.NewService(productRepo)
	stockService := stockapp.NewService(txScope, notifier)
	partnerService := partnerapp.NewService(clientRepo)
	identityService := identityapp.NewService(userRepo, jwtService)
	reportService := reportapp.NewService(reportRepo, reportCache, cfg.Report.CacheTTL)

	engine := router.New(cfg, log, jwtService, router.Handlers{
		System:  handler.NewSystemHandler(db.DB, version),
		Auth:    handler.NewAuthHandler(identityService),
		Product: handler.NewProductHandler(catalogService),
		Stock:   handler.NewStockHandler(stockService),
		Client:  handler.NewClientHandler(partnerService),
		Order:   handler.NewOrderHandler(orderService),
		Sale:    handler.NewSaleHandler(saleService),
		Report:  handler.NewReportHandler(reportService),
	})

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", server.Addr),
			zap.String("env", cfg.App.Env),
			zap.String("version", version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}
