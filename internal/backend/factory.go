package backend

import (
	"context"
	"fmt"

	applog "jard/internal/log"
	"jard/internal/remote"
	"jard/internal/remote/memory"
	"jard/internal/remote/postgres"
	gsheets "jard/internal/sheets/google"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
	// newSheets is swapped in tests; it defaults to the Google client.
	newSheets func(ctx context.Context, opts gsheets.Options) (*gsheets.Client, error)
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) *DefaultFactory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger:    logger.WithComponent(applog.ComponentBackend),
		newSheets: gsheets.New,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *Result
		err error
	)
	switch config.Type {
	case PostgresBackend:
		res, err = f.createPostgresBackend(ctx, config)
	case MemoryBackend:
		res, err = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}
	res.Categories = res.Backend

	if config.SheetsEnabled() {
		client, err := f.newSheets(ctx, config.Sheets)
		if err != nil {
			_ = res.Close()
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		res.Sheets = client
		res.SheetTitle = client.SheetTitle
		if config.CategorySource == CategoriesFromSheets {
			res.Categories = client
		}
		f.logger.Info("Initialized Google Sheets export",
			"spreadsheet_id", config.Sheets.SpreadsheetID,
			"category_source", string(config.CategorySource))
	}
	return res, nil
}

func (f *DefaultFactory) createPostgresBackend(ctx context.Context, config Config) (*Result, error) {
	store, err := postgres.Open(ctx, config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres backend: %w", err)
	}
	f.logger.Info("Initialized postgres backend")
	return &Result{Backend: store, Cleanup: store.Close}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*Result, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}
	store := memory.NewFromFiles(dataDir)
	f.logger.Info("Initialized memory backend", "data_directory", dataDir)
	return &Result{Backend: store, Cleanup: store.Close}, nil
}

var _ remote.CategorySource = (*gsheets.Client)(nil)
