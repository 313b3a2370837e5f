package sheet

import (
	"fmt"

	"github.com/locvowork/exposure_sheet_service/internal/domain"
)

// Percentage columns among the metric columns (0-indexed grid positions).
// The remaining metric columns carry plain amounts.
var percentCols = map[int]bool{2: true, 3: true, 7: true, 8: true}

// ExtractMetrics maps the fixed metric columns of a detail row into a
// MetricsRecord. Displayed percentages are converted to fractions of 1
// here and nowhere else. Empty or textual cells yield nil fields plus a
// warning naming the offending cell; extraction itself never fails.
func ExtractMetrics(row []Cell, rowIdx int) (domain.MetricsRecord, []domain.Warning) {
	var warnings []domain.Warning

	field := func(col int) *float64 {
		c := cellAt(row, col)
		switch c.Kind {
		case CellNumber:
			v := c.Number
			if percentCols[col] {
				v /= 100
			}
			return &v
		case CellText:
			warnings = append(warnings, domain.Warning{
				Row:     rowIdx + 1,
				Col:     col + 1,
				Message: fmt.Sprintf("unparseable metric value %q", c.Text),
			})
			return nil
		default:
			return nil
		}
	}

	rec := domain.MetricsRecord{
		PercentRRUsed:  field(2),
		PercentAGGUsed: field(3),
		Used:           field(4),
		Available:      field(5),
		TotalExposure:  field(6),
		PercentTERR:    field(7),
		PercentTEAGG:   field(8),
	}
	return rec, warnings
}

func textOf(c Cell) string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return fmt.Sprintf("%v", c.Number)
	default:
		return ""
	}
}
