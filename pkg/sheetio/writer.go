package sheetio

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/locvowork/exposure_sheet_service/internal/domain"
)

// Writer turns rendered row instructions into styled worksheets. One
// Writer builds one workbook; sheets are added one at a time and the
// workbook is serialized at the end.
type Writer struct {
	f      *excelize.File
	cfg    StyleConfig
	styles *styleSet
	sheets int
}

// NewWriter creates a workbook writer with the given style configuration.
func NewWriter(cfg StyleConfig) (*Writer, error) {
	f := excelize.NewFile()
	styles, err := newStyleSet(f, cfg)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("registering styles: %w", err)
	}
	return &Writer{f: f, cfg: cfg, styles: styles}, nil
}

// WriteSheet writes one sheet of row instructions. The first sheet renames
// the default Sheet1; later sheets are appended.
func (w *Writer) WriteSheet(name string, rows []domain.RowInstruction) error {
	if w.sheets == 0 {
		if err := w.f.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("naming sheet: %w", err)
		}
	} else {
		if _, err := w.f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %q: %w", name, err)
		}
	}
	w.sheets++

	if err := w.setColumnWidths(name); err != nil {
		return err
	}

	for i, row := range rows {
		if err := w.writeRow(name, i+1, row); err != nil {
			return fmt.Errorf("writing row %d of sheet %q: %w", i+1, name, err)
		}
	}
	return nil
}

// Bytes serializes the workbook.
func (w *Writer) Bytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	if _, err := w.f.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveAs writes the workbook to disk.
func (w *Writer) SaveAs(path string) error {
	return w.f.SaveAs(path)
}

// Close releases the underlying workbook.
func (w *Writer) Close() error {
	return w.f.Close()
}

// File exposes the underlying workbook, mainly for test read-back.
func (w *Writer) File() *excelize.File {
	return w.f
}

func (w *Writer) setColumnWidths(sheet string) error {
	if err := w.f.SetColWidth(sheet, "A", "A", w.cfg.NameColWidth); err != nil {
		return fmt.Errorf("setting column width: %w", err)
	}
	if err := w.f.SetColWidth(sheet, "B", "B", w.cfg.LGDColWidth); err != nil {
		return fmt.Errorf("setting column width: %w", err)
	}
	if err := w.f.SetColWidth(sheet, "C", "I", w.cfg.MetricColWidth); err != nil {
		return fmt.Errorf("setting column width: %w", err)
	}
	return nil
}

func (w *Writer) writeRow(sheet string, rowNum int, row domain.RowInstruction) error {
	for col, cell := range row.Cells {
		name, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return err
		}

		if cell.IsNumber {
			if err := w.f.SetCellValue(sheet, name, cell.Number); err != nil {
				return err
			}
		} else if cell.Text != "" {
			text := cell.Text
			if col == 0 && row.Indented {
				text = w.cfg.IndentPrefix + text
			}
			if err := w.f.SetCellValue(sheet, name, text); err != nil {
				return err
			}
		}

		if err := w.f.SetCellStyle(sheet, name, name, w.cellStyle(row, col)); err != nil {
			return err
		}
	}
	return nil
}

// cellStyle picks the style ID for a cell from the row's style tag and the
// column position. Percent and amount formats only apply to detail rows;
// title-style rows are styled across all nine columns so fills span the
// sheet.
func (w *Writer) cellStyle(row domain.RowInstruction, col int) int {
	switch row.Style {
	case domain.RowStyleCategory:
		return w.styles.bold
	case domain.RowStyleHeader:
		return w.styles.headerBold
	case domain.RowStyleGroup:
		return w.styles.groupFill
	case domain.RowStyleSubgroup:
		return w.styles.subgroupFill
	case domain.RowStyleDetail:
		switch {
		case col == 0:
			return w.styles.term
		case col == 1:
			return w.styles.lgd
		case col == 2, col == 3, col == 7, col == 8:
			return w.styles.percent
		default:
			return w.styles.amount
		}
	}
	return w.styles.term
}
