package sheet

import (
	"errors"
	"fmt"

	"github.com/locvowork/exposure_sheet_service/internal/domain"
)

// ErrMissingCategory is returned when no row in the sheet matched the
// category-header vocabulary. The sheet is skipped; no partial tree is
// produced.
var ErrMissingCategory = errors.New("no category header row found in sheet")

// DuplicateCategoryError is the one fatal structural error: a second
// category header inside one sheet means an unsupported multi-block layout.
type DuplicateCategoryError struct {
	Row   int
	Label string
}

func (e *DuplicateCategoryError) Error() string {
	return fmt.Sprintf("duplicate category header %q at row %d", e.Label, e.Row)
}

// treeBuilder holds the cursor state threaded through one forward pass.
// Cursors index into the tree under construction; the builder owns the
// tree exclusively until Build returns.
type treeBuilder struct {
	category   *domain.Category
	headerSeen bool
	warnings   []domain.Warning

	curGroup    int // index into category.Groups, -1 if none
	curSubgroup int // index into current group's Subgroups, -1 if none
}

// BuildTree runs the full single-pass pipeline over a raw grid: normalize
// each row, classify it, and fold the classified stream into the exposure
// tree. Malformed rows degrade to noise or anonymous containers and are
// reported as warnings; only missing and duplicate category headers are
// errors.
func BuildTree(grid [][]string) (*domain.Category, []domain.Warning, error) {
	b := &treeBuilder{curGroup: -1, curSubgroup: -1}
	st := &ClassifyState{}

	for i, raw := range grid {
		row := NormalizeRow(raw, GridWidth)
		switch Classify(row, st) {
		case RowCategoryHeader:
			if err := b.onCategory(row, i); err != nil {
				return nil, nil, err
			}
		case RowGroupStart:
			b.onGroupStart(row, i)
		case RowSubgroupMarker:
			b.onSubgroup(row, i)
		case RowDetail:
			b.onDetail(row, i)
		case RowNoise:
			// ignored, no state change
		}
	}

	// An anonymous fallback category is only a stopgap while waiting for
	// the real header; a sheet that never produced one is rejected whole.
	if !b.headerSeen {
		return nil, nil, ErrMissingCategory
	}
	return b.category, b.warnings, nil
}

func (b *treeBuilder) onCategory(row []Cell, idx int) error {
	label := textOf(cellAt(row, colName))
	if b.headerSeen {
		return &DuplicateCategoryError{Row: idx + 1, Label: label}
	}
	b.headerSeen = true
	if b.category == nil {
		b.category = &domain.Category{Label: label}
		return nil
	}
	// An anonymous category was created earlier by a stray group/detail
	// row; adopt the real label now.
	b.category.Label = label
	return nil
}

func (b *treeBuilder) onGroupStart(row []Cell, idx int) {
	b.ensureCategory(idx)
	name := textOf(cellAt(row, colName))
	b.category.Groups = append(b.category.Groups, domain.Group{Name: name})
	b.curGroup = len(b.category.Groups) - 1
	b.curSubgroup = -1
}

func (b *treeBuilder) onSubgroup(row []Cell, idx int) {
	g := b.ensureGroup(idx)
	label := textOf(cellAt(row, colName))
	g.Subgroups = append(g.Subgroups, domain.Subgroup{Label: label})
	b.curSubgroup = len(g.Subgroups) - 1
}

func (b *treeBuilder) onDetail(row []Cell, idx int) {
	g := b.ensureGroup(idx)

	metrics, warns := ExtractMetrics(row, idx)
	b.warnings = append(b.warnings, warns...)

	entry := domain.DetailEntry{
		Term:    textOf(cellAt(row, colName)),
		LGD:     textOf(cellAt(row, colLGD)),
		Metrics: metrics,
	}

	if b.curSubgroup >= 0 {
		sg := &g.Subgroups[b.curSubgroup]
		sg.Entries = append(sg.Entries, entry)
		return
	}
	g.Entries = append(g.Entries, entry)
}

// ensureCategory creates the anonymous fallback category when structural
// rows arrive before the header. Tolerated, warned, never fatal.
func (b *treeBuilder) ensureCategory(idx int) {
	if b.category != nil {
		return
	}
	b.category = &domain.Category{}
	b.warnings = append(b.warnings, domain.Warning{
		Row:     idx + 1,
		Message: "row precedes category header; created anonymous category",
	})
}

// ensureGroup returns the current group, creating an anonymous one first
// if a detail or subgroup row arrived before any group-start row.
func (b *treeBuilder) ensureGroup(idx int) *domain.Group {
	b.ensureCategory(idx)
	if b.curGroup < 0 {
		b.category.Groups = append(b.category.Groups, domain.Group{})
		b.curGroup = len(b.category.Groups) - 1
		b.curSubgroup = -1
		b.warnings = append(b.warnings, domain.Warning{
			Row:     idx + 1,
			Message: "row precedes any group row; created anonymous group",
		})
	}
	return &b.category.Groups[b.curGroup]
}
