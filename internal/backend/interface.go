package backend

import (
	"context"

	"jard/internal/remote"
	"jard/internal/sheets"
	gsheets "jard/internal/sheets/google"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result holds everything the factory wired for one configuration.
type Result struct {
	// Backend is the hosted store for records and notifications.
	Backend remote.Backend
	// Categories is where the category table is read from. It is Backend
	// unless categories are maintained in a spreadsheet.
	Categories remote.CategorySource
	// Sheets is nil when no spreadsheet export target is configured.
	Sheets sheets.MatrixWriter
	// SheetTitle names the monthly sheet; nil without Sheets.
	SheetTitle func(year, month int) string
	Cleanup    CleanupFunc
}

// Close runs Cleanup once it is set.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Postgres
	DatabaseURL string

	// Memory: directory holding seed_categories.txt
	DataDirectory string

	// CategorySource selects where categories come from.
	CategorySource CategorySource

	// Sheets is used when Sheets.SpreadsheetID is set.
	Sheets gsheets.Options
}

// BackendType represents the type of backend
type BackendType string

const (
	PostgresBackend BackendType = "postgres"
	MemoryBackend   BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case PostgresBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

type CategorySource string

const (
	CategoriesFromBackend CategorySource = "backend"
	CategoriesFromSheets  CategorySource = "sheets"
)
