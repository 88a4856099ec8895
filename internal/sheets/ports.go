// Package sheets holds the ports for publishing reports to a spreadsheet
// service.
package sheets

import (
	"context"

	"jard/internal/core"
)

// Ports for outbound adapters.
type (
	// MatrixWriter replaces the content of one sheet with rows, creating the
	// sheet when it does not exist. It returns a reference to the written
	// range.
	MatrixWriter interface {
		WriteMatrix(ctx context.Context, sheetTitle string, rows [][]string) (ref string, err error)
	}

	// CategoryReader reads a category table maintained in a sheet.
	CategoryReader interface {
		FetchCategories(ctx context.Context) ([]core.CategoryEntry, error)
	}
)
