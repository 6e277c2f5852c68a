package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"airbnb-dashboard/models"
)

const (
	summarySheet = "Summary"
	// Excel rejects longer sheet names.
	maxSheetName = 31
)

// XLSXWriter writes dashboard view results into a workbook, one sheet per
// chart plus a summary sheet.
type XLSXWriter struct {
	path string
	file *excelize.File
	// next free row on the summary sheet
	summaryRow int
}

// NewXLSXWriter prepares a workbook that Close saves to path.
func NewXLSXWriter(path string) (*XLSXWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("xlsx: create output dir: %w", err)
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("xlsx: rename summary sheet: %w", err)
	}
	return &XLSXWriter{path: path, file: f, summaryRow: 1}, nil
}

// WriteView adds the view's charts to the workbook.
func (x *XLSXWriter) WriteView(v *models.ViewResult) error {
	rows := [][]any{
		{"view", v.View},
		{"title", v.Title},
		{"country", v.Selection.Country},
		{"room_type", v.Selection.RoomType},
		{"market", v.Selection.Market},
		{"property_type", v.Selection.PropertyType},
		{"year", v.Selection.Year},
		{"matched_listings", v.Matched},
	}
	if err := x.writeRows(summarySheet, x.summaryRow, rows); err != nil {
		return err
	}
	x.summaryRow += len(rows) + 1

	for _, ch := range v.Charts {
		name := x.sheetName(v.View, ch.ID)
		if _, err := x.file.NewSheet(name); err != nil {
			return fmt.Errorf("xlsx: new sheet %q: %w", name, err)
		}
		if err := x.writeRows(name, 1, Tabulate(ch)); err != nil {
			return err
		}
	}
	return nil
}

// sheetName picks a free sheet name for a chart, qualifying it with the view
// when another view already used the chart id.
func (x *XLSXWriter) sheetName(view, id string) string {
	name := truncateSheet(id)
	base := truncateSheet(view + "." + id)
	for n := 1; x.hasSheet(name); n++ {
		if n == 1 {
			name = base
			continue
		}
		suffix := fmt.Sprintf("~%d", n)
		name = base[:min(len(base), maxSheetName-len(suffix))] + suffix
	}
	return name
}

func (x *XLSXWriter) hasSheet(name string) bool {
	idx, _ := x.file.GetSheetIndex(name)
	return idx != -1
}

func truncateSheet(name string) string {
	if len(name) > maxSheetName {
		return name[:maxSheetName]
	}
	return name
}

func (x *XLSXWriter) writeRows(sheet string, first int, rows [][]any) error {
	for r, row := range rows {
		for c, v := range row {
			ref, err := excelize.CoordinatesToCellName(c+1, first+r)
			if err != nil {
				return fmt.Errorf("xlsx: cell ref: %w", err)
			}
			if err := x.file.SetCellValue(sheet, ref, v); err != nil {
				return fmt.Errorf("xlsx: set %s!%s: %w", sheet, ref, err)
			}
		}
	}
	return nil
}

// Close saves the workbook and releases it.
func (x *XLSXWriter) Close() error {
	if err := x.file.SaveAs(x.path); err != nil {
		_ = x.file.Close()
		return fmt.Errorf("xlsx: save %q: %w", x.path, err)
	}
	return x.file.Close()
}
