package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"jard/internal/amqp"
	"jard/internal/backend"
	"jard/internal/cache"
	"jard/internal/cli"
	"jard/internal/core"
	apphttp "jard/internal/http"
	"jard/internal/services"
	"jard/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	localCache := cli.OpenLocalCache(logger, cfg.SQLiteDBPath)
	defer localCache.Close()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer res.Close()

	// The sync message is a hint for cmd/jard-worker; saves never depend on it.
	var publisher services.SyncPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, sync messages disabled", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
		}
	}

	conn := services.NewConnectivity(false)
	inventory := services.NewInventoryService(
		storage.NewRecords(localCache),
		res.Backend,
		res.Categories,
		conn,
		services.InventoryConfig{RemoteTimeout: cfg.RemoteTimeout, Publisher: publisher},
	)

	summaries := cache.NewLRUCache[core.PeriodSummary](64, cfg.ReportCacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(summaries)
	cacheManager.StartCleanup(cfg.ReportCacheTTL)
	defer cacheManager.Stop()

	reports := services.NewReportService(inventory, summaries, cfg.CurrencyLabel)
	if res.Sheets != nil {
		reports = reports.WithSheets(res.Sheets, res.SheetTitle)
	}

	notifier := services.NewNotifier(res.Backend, inventory, reports, services.NotifierConfig{
		TrendDropThreshold: cfg.TrendDropThreshold,
		CurrencyLabel:      cfg.CurrencyLabel,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	autoSaver := services.NewAutoSaver(ctx, cfg.AutosaveDelay, inventory.Save)
	defer autoSaver.Close()

	syncProcessor := services.NewSyncProcessor(inventory, services.SyncProcessorConfig{
		PollInterval: cfg.SyncInterval,
		BatchSize:    cfg.SyncBatchSize,
	})
	conn.OnChange(func(ctx context.Context, online bool) {
		logger.Info("Connectivity changed", "online", online)
		if online {
			syncProcessor.Trigger()
		}
	})

	// Categories come from the local copy when the backend is unreachable.
	if n, err := inventory.RefreshCategories(ctx); err != nil {
		logger.Warn("Category refresh failed", "error", err)
	} else {
		logger.Info("Categories loaded", "count", n)
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Inventory:     inventory,
		Reports:       reports,
		AutoSaver:     autoSaver,
		Sync:          syncProcessor,
		Notifier:      notifier,
		Pinger:        res.Backend,
		Logger:        logger,
		AutosaveGrace: cfg.AutosaveGrace,
		SyncBatchSize: cfg.SyncBatchSize,
		ProbeTimeout:  cfg.RemoteTimeout,
	})

	if err := syncProcessor.Start(ctx); err != nil {
		logger.Error("Failed to start sync processor", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		conn.RunProbe(gctx, res.Backend, cfg.ConnectivityProbeInterval, cfg.RemoteTimeout)
		return nil
	})
	g.Go(func() error {
		notifier.Run(gctx, cfg.DigestInterval)
		return nil
	})
	g.Go(func() error {
		logger.Info("Starting jard server", "port", cfg.Port, "backend", cfg.DataBackend,
			"sheets", res.Sheets != nil, "amqp", publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := syncProcessor.Stop(shutdownCtx); err != nil {
			logger.Warn("Sync processor stop", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
	<-done
	logger.Info("Server stopped gracefully")
}
