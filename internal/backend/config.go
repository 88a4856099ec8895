package backend

import (
	"fmt"
	"strings"

	"jard/internal/config"
	gsheets "jard/internal/sheets/google"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	source := CategorySource(appConfig.CategorySource)
	if source == "" {
		source = CategoriesFromBackend
	}

	return Config{
		Type:           backendType,
		DatabaseURL:    appConfig.DatabaseURL,
		DataDirectory:  appConfig.SeedDir,
		CategorySource: source,
		Sheets: gsheets.Options{
			SpreadsheetID:   appConfig.GoogleSpreadsheetID,
			SheetName:       appConfig.GoogleSheetName,
			CategoriesSheet: appConfig.GoogleCategoriesSheet,
			ClientJSON:      appConfig.GoogleOAuthClientJSON,
			ClientFile:      appConfig.GoogleOAuthClientFile,
			TokenJSON:       appConfig.GoogleOAuthTokenJSON,
			TokenFile:       appConfig.GoogleOAuthTokenFile,
		},
	}, nil
}

// SheetsEnabled reports whether a spreadsheet is configured.
func (c Config) SheetsEnabled() bool {
	return strings.TrimSpace(c.Sheets.SpreadsheetID) != ""
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case PostgresBackend:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database URL is required for postgres backend")
		}
	case MemoryBackend:
		// DataDirectory defaults to "data" when empty.
	}

	switch c.CategorySource {
	case "", CategoriesFromBackend:
	case CategoriesFromSheets:
		if !c.SheetsEnabled() {
			return fmt.Errorf("spreadsheet ID is required to read categories from sheets")
		}
	default:
		return fmt.Errorf("invalid category source: %s", c.CategorySource)
	}

	if c.SheetsEnabled() {
		if c.Sheets.ClientFile == "" && c.Sheets.ClientJSON == "" {
			return fmt.Errorf("either an OAuth client file or client JSON must be provided for sheets")
		}
		if c.Sheets.TokenFile == "" && c.Sheets.TokenJSON == "" {
			return fmt.Errorf("either an OAuth token file or token JSON must be provided for sheets")
		}
	}
	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{PostgresBackend, MemoryBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
