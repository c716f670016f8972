package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"copytrade/internal/alert"
	"copytrade/internal/audit"
	"copytrade/internal/client/broker"
	"copytrade/internal/client/feed"
	"copytrade/internal/config"
	cronrunner "copytrade/internal/cron"
	"copytrade/internal/db"
	"copytrade/internal/handler"
	"copytrade/internal/logger"
	gormrepository "copytrade/internal/repository/gorm"
	"copytrade/internal/service"
)

func main() {
	cfgPath := os.Getenv("CT_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("CT_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gateway, err := broker.Dial(ctx, cfg.Broker, cfg.Trading.Environment, cfg.Trading.Market)
	if err != nil {
		logger.Fatal("broker gateway dial failed", zap.Error(err))
	}
	defer gateway.Close()
	logger.Info("broker gateway connected",
		zap.String("market", gateway.Market()),
		zap.String("environment", gateway.Environment()),
		zap.Uint64("account_id", gateway.AccountID()),
	)

	store := gormrepository.New(dbConn.Gorm)
	auditLog := audit.New(cfg.Audit.Path, logger)
	notifier := alert.Multi{
		&alert.LogNotifier{Logger: logger},
		&alert.JournalNotifier{Repo: store, Logger: logger},
	}

	feedHTTP := &http.Client{Timeout: cfg.Feed.Timeout}
	feedClient := feed.NewClient(feedHTTP, cfg.Feed.URLFor(cfg.Trading.Market))

	positions := &service.PositionService{
		Gateway:       gateway,
		Repo:          store,
		Logger:        logger,
		BaselineFloor: decimal.NewFromFloat(cfg.Trading.BaselineFloor),
	}
	executor := &service.OrderExecutor{
		Gateway:  gateway,
		Repo:     store,
		Audit:    auditLog,
		Notifier: notifier,
		Logger:   logger,
		Config: service.ExecutorConfig{
			CashReserve: decimal.NewFromFloat(cfg.Trading.CashReserve),
		},
	}
	trader := &service.Trader{
		Feed:      feedClient,
		Positions: positions,
		Executor:  executor,
		Repo:      store,
		Notifier:  notifier,
		Logger:    logger,
		Config:    cfg.Trading,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	statusHandler := &handler.StatusHandler{Trading: cfg.Trading, Started: time.Now()}
	statusHandler.Register(engine)
	orderHandler := &handler.OrderHandler{Repo: store, Logger: logger}
	orderHandler.Register(engine)
	portfolioHandler := &handler.PortfolioHandler{Positions: positions, Repo: store, Logger: logger}
	portfolioHandler.Register(engine)
	targetHandler := &handler.TargetChangeHandler{Repo: store, Logger: logger}
	targetHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	if cfg.Cron.Enabled {
		cronRunner := cronrunner.New(logger, ctx)
		if _, err := cronRunner.Add("portfolio_snapshot", cfg.Cron.PortfolioSnapshot, positions.SnapshotPortfolio); err != nil {
			logger.Warn("cron register portfolio snapshot failed", zap.Error(err))
		}
		if _, err := cronRunner.Add("journal_cleanup", cfg.Cron.Cleanup, func(ctx context.Context) error {
			cutoff := time.Now().UTC().AddDate(0, 0, -cfg.Cron.RetentionDays)
			feeds, err := store.DeleteFeedSnapshotsBefore(ctx, cutoff)
			if err != nil {
				return err
			}
			alerts, err := store.DeleteAlertEventsBefore(ctx, cutoff)
			if err != nil {
				return err
			}
			if feeds > 0 || alerts > 0 {
				logger.Info("journal cleanup done",
					zap.Int64("feed_snapshots", feeds),
					zap.Int64("alert_events", alerts),
				)
			}
			return nil
		}); err != nil {
			logger.Warn("cron register cleanup failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	go func() {
		if err := trader.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("trader stopped", zap.Error(err))
		}
	}()

	if cfg.Monitor.Enabled {
		watcher := &service.FeedWatcher{
			Feed:     feed.NewClient(feedHTTP, cfg.Feed.URLFor(cfg.Trading.Market)),
			Repo:     store,
			Notifier: notifier,
			Logger:   logger,
			Config:   cfg.Monitor,
			Market:   cfg.Trading.Market,
		}
		go func() {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("feed watcher stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
