package domain

import "time"

// ==================== EXPOSURE TREE ====================

// MetricsRecord holds the seven risk metrics of one detail line.
// Percentage fields are stored as fractions of 1 (displayed value / 100).
// A nil field means the source cell was empty or unparseable.
type MetricsRecord struct {
	PercentRRUsed  *float64 `json:"percentRRUsed"`
	PercentAGGUsed *float64 `json:"percentAGGUsed"`
	Used           *float64 `json:"used"`
	Available      *float64 `json:"available"`
	TotalExposure  *float64 `json:"totalExposure"`
	PercentTERR    *float64 `json:"percentTERR"`
	PercentTEAGG   *float64 `json:"percentTEAGG"`
}

// DetailEntry is one term/risk-grade line under a group or subgroup.
type DetailEntry struct {
	Term    string        `json:"term"`
	LGD     string        `json:"lgd"`
	Metrics MetricsRecord `json:"metrics"`
}

// Subgroup is a facility-type subdivision within a Group.
type Subgroup struct {
	Label   string        `json:"label"`
	Entries []DetailEntry `json:"entries"`
}

// Group is an obligor/company-level record. A group may carry direct
// entries, subgroups, or both; a bare company name with no detail lines is
// kept as an empty group.
type Group struct {
	Name      string        `json:"name"`
	Entries   []DetailEntry `json:"entries"`
	Subgroups []Subgroup    `json:"subgroups"`
}

// Category is the root of one processed sheet: the quality/rating band
// label and the groups underneath it.
type Category struct {
	Label  string  `json:"category"`
	Groups []Group `json:"groups"`
}

// ==================== ROW INSTRUCTIONS ====================

// RowStyle tags a rendered row so the spreadsheet writer can pick styling.
type RowStyle string

const (
	RowStyleCategory RowStyle = "category" // bold category label row
	RowStyleHeader   RowStyle = "header"   // bold, centered column header row
	RowStyleGroup    RowStyle = "group"    // fill-highlighted, bold obligor row
	RowStyleSubgroup RowStyle = "subgroup" // fill-highlighted subgroup marker row
	RowStyleDetail   RowStyle = "detail"   // metric-formatted detail row
)

// CellValue is one cell of a row instruction. Number is meaningful only
// when IsNumber is set; empty cells have IsNumber=false and Text "".
type CellValue struct {
	Text     string
	Number   float64
	IsNumber bool
}

// RowInstruction is one formatted output row: the cell values plus the row
// style tag and an indentation marker for subgroup detail lines.
type RowInstruction struct {
	Style    RowStyle
	Cells    []CellValue
	Indented bool
}

// ==================== PROCESSING RESULTS ====================

// Warning records a recovered, non-fatal problem found while processing a
// sheet. Row and Col are 1-indexed; Col 0 means the whole row.
type Warning struct {
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// SheetResult is the outcome of processing one sheet of a workbook. Err is
// set for sheet-structural failures (missing or duplicate category); Tree
// and Warnings are populated on success.
type SheetResult struct {
	SheetName string    `json:"sheet_name"`
	Tree      *Category `json:"tree,omitempty"`
	Warnings  []Warning `json:"warnings,omitempty"`
	Err       error     `json:"-"`
	Error     string    `json:"error,omitempty"`
}

// Failed reports whether the sheet could not be processed at all. The
// string form matters too: results reloaded from storage carry only it.
func (r *SheetResult) Failed() bool {
	return r.Err != nil || r.Error != ""
}

// ProcessingRun is the audit record of one workbook processing invocation,
// persisted to Datastore.
type ProcessingRun struct {
	ID           string    `datastore:"-" json:"id"`
	Workbook     string    `datastore:"Workbook" json:"workbook"`
	Sheets       []string  `datastore:"Sheets" json:"sheets"`
	SheetsOK     int       `datastore:"SheetsOK" json:"sheets_ok"`
	SheetsFailed int       `datastore:"SheetsFailed" json:"sheets_failed"`
	StartedAt    time.Time `datastore:"StartedAt" json:"started_at"`
	FinishedAt   time.Time `datastore:"FinishedAt" json:"finished_at"`
}
