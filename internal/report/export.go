package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// utf8BOM makes spreadsheet apps detect UTF-8, which the Arabic item names
// need.
const utf8BOM = "\ufeff"

var ErrUnsupportedFormat = errors.New("unsupported export format")

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnsupportedFormat, s)
}

func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (f Format) FileName(m Matrix) string {
	return m.Title() + "." + string(f)
}

// Write renders m in format f.
func Write(w io.Writer, f Format, m Matrix) error {
	if f == FormatCSV {
		return WriteCSV(w, m)
	}
	return WriteXLSX(w, m)
}

func WriteCSV(w io.Writer, m Matrix) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(m.Rows()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteXLSX renders m as a single-sheet workbook. Amounts are numeric cells
// with two decimals; blank item cells stay empty.
func WriteXLSX(w io.Writer, m Matrix) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := m.Title()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("create amount style: %w", err)
	}
	summaryStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2, Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create summary style: %w", err)
	}

	for i, h := range m.Header() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(m.Days + 2)
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	row := 2
	writeRow := func(r Row, blankZero bool, style int) error {
		label, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellValue(sheet, label, r.Label); err != nil {
			return err
		}
		for i, c := range r.Cells {
			if blankZero && c.IsZero() {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(i+2, row)
			if err := f.SetCellFloat(sheet, cell, c.InexactFloat64(), 2, 64); err != nil {
				return err
			}
		}
		total, _ := excelize.CoordinatesToCellName(m.Days+2, row)
		if err := f.SetCellFloat(sheet, total, r.Total.InexactFloat64(), 2, 64); err != nil {
			return err
		}
		first, _ := excelize.CoordinatesToCellName(2, row)
		if err := f.SetCellStyle(sheet, first, total, style); err != nil {
			return err
		}
		row++
		return nil
	}

	for _, r := range m.Items {
		if err := writeRow(r, true, amountStyle); err != nil {
			return fmt.Errorf("write item %q: %w", r.Label, err)
		}
	}
	row++
	for _, r := range m.Summary {
		if err := writeRow(r, false, summaryStyle); err != nil {
			return fmt.Errorf("write summary %q: %w", r.Label, err)
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 24); err != nil {
		return fmt.Errorf("size columns: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
