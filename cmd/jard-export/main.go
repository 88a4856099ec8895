// Command jard-export writes one month of inventory records as a workbook,
// a CSV file or a Google Sheets tab.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"jard/internal/backend"
	"jard/internal/cli"
	"jard/internal/report"
	"jard/internal/services"
	"jard/internal/storage"
)

func main() {
	now := time.Now()
	year := flag.Int("year", now.Year(), "year of the month to export")
	month := flag.Int("month", int(now.Month()), "month to export (1-12)")
	format := flag.String("format", "xlsx", "file format: xlsx or csv")
	out := flag.String("out", "", "output file (default inventory-YYYY-MM.<format>)")
	toSheets := flag.Bool("sheets", false, "publish to the configured Google spreadsheet instead of a file")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	if *month < 1 || *month > 12 {
		logger.Error("Invalid month", "month", *month)
		os.Exit(2)
	}
	f, err := report.ParseFormat(*format)
	if err != nil && !*toSheets {
		logger.Error("Invalid format", "error", err)
		os.Exit(2)
	}

	localCache := cli.OpenLocalCache(logger, cfg.SQLiteDBPath)
	defer localCache.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer res.Close()

	conn := services.NewConnectivity(false)
	inventory := services.NewInventoryService(
		storage.NewRecords(localCache),
		res.Backend,
		res.Categories,
		conn,
		services.InventoryConfig{RemoteTimeout: cfg.RemoteTimeout},
	)
	// Offline runs export what the local cache holds.
	if !conn.Probe(ctx, res.Backend, cfg.RemoteTimeout) {
		logger.Warn("Remote store unreachable, exporting local records only")
	}
	if _, err := inventory.RefreshCategories(ctx); err != nil {
		logger.Warn("Category refresh failed", "error", err)
	}

	reports := services.NewReportService(inventory, nil, cfg.CurrencyLabel)
	if res.Sheets != nil {
		reports = reports.WithSheets(res.Sheets, res.SheetTitle)
	}

	if *toSheets {
		ref, err := reports.PublishMonthly(ctx, *year, *month)
		if err != nil {
			logger.Error("Publish to Google Sheets failed", "error", err)
			os.Exit(1)
		}
		logger.Info("Published month", "year", *year, "month", *month, "sheets_ref", ref)
		return
	}

	var buf bytes.Buffer
	if err := reports.ExportMonthly(ctx, &buf, *year, *month, f); err != nil {
		logger.Error("Export failed", "error", err)
		os.Exit(1)
	}
	path := *out
	if path == "" {
		path = fmt.Sprintf("inventory-%04d-%02d.%s", *year, *month, f)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		logger.Error("Write export file failed", "error", err, "path", path)
		os.Exit(1)
	}
	logger.Info("Exported month", "year", *year, "month", *month, "format", string(f), "path", path, "bytes", buf.Len())
}
