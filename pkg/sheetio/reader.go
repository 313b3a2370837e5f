package sheetio

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// OpenWorkbook opens an in-memory workbook. The caller owns the returned
// file and must Close it.
func OpenWorkbook(data []byte) (*excelize.File, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	return f, nil
}

// OpenWorkbookFile opens a workbook from disk.
func OpenWorkbookFile(path string) (*excelize.File, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	return f, nil
}

// SheetNames lists the sheets of a workbook in stored order.
func SheetNames(f *excelize.File) []string {
	return f.GetSheetList()
}

// ReadGrid extracts the raw 2-D grid of one worksheet: row 0 is the first
// stored row, cells are the raw display strings, nothing is pre-stripped.
func ReadGrid(f *excelize.File, sheet string) ([][]string, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return rows, nil
}
