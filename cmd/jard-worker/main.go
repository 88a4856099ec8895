package main

import (
	"context"
	"errors"
	"os"
	"time"

	"jard/internal/amqp"
	"jard/internal/backend"
	"jard/internal/cli"
	"jard/internal/services"
	"jard/internal/storage"
	"jard/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting jard-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the sync worker")
		os.Exit(1)
	}

	// Shares the local cache file with cmd/jard on the same device.
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

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	conn := services.NewConnectivity(false)
	inventory := services.NewInventoryService(
		storage.NewRecords(localCache),
		res.Backend,
		res.Categories,
		conn,
		services.InventoryConfig{RemoteTimeout: cfg.RemoteTimeout},
	)
	conn.Probe(ctx, res.Backend, cfg.RemoteTimeout)
	go conn.RunProbe(ctx, res.Backend, cfg.ConnectivityProbeInterval, cfg.RemoteTimeout)

	syncWorker := worker.NewSyncWorker(inventory, cfg.SyncBatchSize)

	// On startup, process any pending records that might have been missed
	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", "error", err)
		// Don't exit - continue with normal operation
	}

	go syncWorker.Run(ctx, cfg.SyncInterval)

	go func() {
		if err := amqpClient.ConsumeInventorySync(ctx, syncWorker.HandleSyncMessage); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
		}
	}()

	<-ctx.Done()
	<-done
	logger.Info("Worker stopped gracefully")
}
