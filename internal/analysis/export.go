package analysis

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/Coder-God2901/UiPath-Hackathon-AiChef/internal/classify"
)

// Export artifact suffixes; the base name comes from the upload filename.
const (
	csvSuffix  = "_analysis.csv"
	jsonSuffix = "_analysis.json"
	xlsxSuffix = "_analysis.xlsx"
)

var exportHeader = []string{"item_name", "quantity"}

// formatQuantity renders a quantity without trailing zeros (1 not 1.00,
// 2.5 stays 2.5) so exports round-trip cleanly.
func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// csvExport renders the items as a delimited tabular file, one row per
// item, header row first.
func csvExport(items []classify.Item) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	for _, item := range items {
		if err := w.Write([]string{item.ItemName, formatQuantity(item.Quantity)}); err != nil {
			return nil, fmt.Errorf("writing csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

// jsonExport renders the items as an indented JSON array.
func jsonExport(items []classify.Item) ([]byte, error) {
	if items == nil {
		items = []classify.Item{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling items: %w", err)
	}
	return data, nil
}

// xlsxExport renders the items as a single-sheet workbook.
func xlsxExport(items []classify.Item) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Items"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("removing default sheet: %w", err)
	}

	for i, h := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("writing header: %w", err)
		}
	}

	for row, item := range items {
		nameCell, _ := excelize.CoordinatesToCellName(1, row+2)
		qtyCell, _ := excelize.CoordinatesToCellName(2, row+2)
		if err := f.SetCellValue(sheet, nameCell, item.ItemName); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", row+1, err)
		}
		if err := f.SetCellValue(sheet, qtyCell, item.Quantity); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", row+1, err)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 32)
	_ = f.SetColWidth(sheet, "B", "B", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
