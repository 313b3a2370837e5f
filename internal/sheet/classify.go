package sheet

import "strings"

// RowKind is the classification assigned to one normalized row.
type RowKind int

const (
	RowNoise RowKind = iota
	RowCategoryHeader
	RowGroupStart
	RowSubgroupMarker
	RowDetail
)

func (k RowKind) String() string {
	switch k {
	case RowCategoryHeader:
		return "category-header"
	case RowGroupStart:
		return "group-start"
	case RowSubgroupMarker:
		return "subgroup-marker"
	case RowDetail:
		return "detail"
	default:
		return "noise"
	}
}

// Fixed column layout of the source worksheets (0-indexed): column 0 is the
// name/term, column 1 the LGD grade, columns 2..8 the seven metric columns.
const (
	colName      = 0
	colLGD       = 1
	metricsFirst = 2
	metricsLast  = 8
	// GridWidth is the column count every classified row is padded to.
	GridWidth = 9
)

// Vocabulary markers. Matching is case-insensitive containment throughout,
// mirroring how the source sheets spell them inconsistently.
var (
	categoryMarkers = []string{"quality"}
	subtotalMarkers = []string{"sub total", "subtotal"}
	subgroupMarkers = []string{"revolver", "term loan", "facility"}
)

// subtotalRow matches aggregate rows. A bare "total"/"grand total" label
// must match exactly so obligor names containing the word survive.
func subtotalRow(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "total" || lower == "grand total" {
		return true
	}
	return matchesAny(lower, subtotalMarkers)
}

// headerRow detects the worksheet's own column-header row (and any
// duplicated copies of it further down), which would otherwise look like a
// detail row since its LGD column holds the literal text "LGD".
func headerRow(row []Cell) bool {
	name := cellAt(row, colName)
	lgd := cellAt(row, colLGD)
	if lgd.Kind == CellText && strings.EqualFold(lgd.Text, "lgd") {
		return true
	}
	return name.Kind == CellText && strings.Contains(strings.ToLower(name.Text), "name/term")
}

func matchesAny(text string, markers []string) bool {
	lower := strings.ToLower(text)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// ClassifyState carries the little positional context classification needs:
// whether a category header was already seen in this sheet.
type ClassifyState struct {
	CategorySeen bool
}

// Classify assigns a row kind to one normalized row. The decision order is
// fixed; the first matching rule wins:
//
//  1. all cells empty                      -> noise
//  2. name and LGD both empty              -> noise (stray formatting row)
//  3. column-header row (incl. duplicates) -> noise
//  4. category marker in the name column   -> category header
//  5. subtotal marker in the name column   -> noise, regardless of metrics
//  6. subgroup marker in the name column   -> subgroup marker
//  7. LGD empty, no numeric metric column  -> group start
//  8. LGD non-empty                        -> detail
//  9. anything else                        -> noise
func Classify(row []Cell, st *ClassifyState) RowKind {
	if allEmpty(row) {
		return RowNoise
	}

	name := cellAt(row, colName)
	lgd := cellAt(row, colLGD)

	if name.IsEmpty() && lgd.IsEmpty() {
		return RowNoise
	}

	if headerRow(row) {
		return RowNoise
	}

	if name.Kind == CellText {
		if matchesAny(name.Text, categoryMarkers) {
			// Every marker match is reported; the tree builder rejects a
			// second one as a duplicate-category structural error.
			st.CategorySeen = true
			return RowCategoryHeader
		}
		if subtotalRow(name.Text) {
			return RowNoise
		}
		if matchesAny(name.Text, subgroupMarkers) && lgd.IsEmpty() && !anyMetricNumber(row) {
			return RowSubgroupMarker
		}
	}

	if lgd.IsEmpty() {
		if !anyMetricNumber(row) && !name.IsEmpty() {
			return RowGroupStart
		}
		return RowNoise
	}

	return RowDetail
}

func cellAt(row []Cell, i int) Cell {
	if i < len(row) {
		return row[i]
	}
	return Cell{Kind: CellEmpty}
}

func allEmpty(row []Cell) bool {
	for _, c := range row {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

func anyMetricNumber(row []Cell) bool {
	for i := metricsFirst; i <= metricsLast; i++ {
		if cellAt(row, i).Kind == CellNumber {
			return true
		}
	}
	return false
}
