package sheet

import (
	"github.com/locvowork/exposure_sheet_service/internal/domain"
)

// ColumnHeaders are the nine fixed output column labels, in order.
var ColumnHeaders = []string{
	"Name/Term",
	"LGD",
	"% RR Used",
	"% AGG Used",
	"Used",
	"Available",
	"Total Exposure",
	"% TE of RR",
	"% TE of AGG",
}

// Render walks the tree and emits the flat, ordered row instructions the
// spreadsheet writer consumes. Rendering reads the tree only; calling it
// twice on the same tree yields identical output.
func Render(cat *domain.Category) []domain.RowInstruction {
	var rows []domain.RowInstruction

	rows = append(rows, titleRow(domain.RowStyleCategory, cat.Label))

	header := make([]domain.CellValue, len(ColumnHeaders))
	for i, h := range ColumnHeaders {
		header[i] = domain.CellValue{Text: h}
	}
	rows = append(rows, domain.RowInstruction{Style: domain.RowStyleHeader, Cells: header})

	for _, g := range cat.Groups {
		if g.Name != "" {
			rows = append(rows, titleRow(domain.RowStyleGroup, g.Name))
		}
		for _, e := range g.Entries {
			rows = append(rows, detailRow(e, false))
		}
		for _, sg := range g.Subgroups {
			rows = append(rows, titleRow(domain.RowStyleSubgroup, subgroupLabel(g.Name, sg.Label)))
			for _, e := range sg.Entries {
				rows = append(rows, detailRow(e, true))
			}
		}
	}

	return rows
}

// subgroupLabel combines the owning group name with the facility label when
// both are present, so a subgroup row still names its obligor.
func subgroupLabel(groupName, label string) string {
	if groupName == "" || label == "" {
		if label != "" {
			return label
		}
		return groupName
	}
	return groupName + " - " + label
}

func titleRow(style domain.RowStyle, label string) domain.RowInstruction {
	cells := make([]domain.CellValue, len(ColumnHeaders))
	cells[0] = domain.CellValue{Text: label}
	return domain.RowInstruction{Style: style, Cells: cells}
}

func detailRow(e domain.DetailEntry, indented bool) domain.RowInstruction {
	cells := make([]domain.CellValue, len(ColumnHeaders))
	cells[0] = domain.CellValue{Text: e.Term}
	cells[1] = domain.CellValue{Text: e.LGD}

	metrics := []*float64{
		e.Metrics.PercentRRUsed,
		e.Metrics.PercentAGGUsed,
		e.Metrics.Used,
		e.Metrics.Available,
		e.Metrics.TotalExposure,
		e.Metrics.PercentTERR,
		e.Metrics.PercentTEAGG,
	}
	for i, m := range metrics {
		if m != nil {
			cells[2+i] = domain.CellValue{Number: *m, IsNumber: true}
		}
	}

	return domain.RowInstruction{Style: domain.RowStyleDetail, Cells: cells, Indented: indented}
}
