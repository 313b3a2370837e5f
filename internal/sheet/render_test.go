package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/exposure_sheet_service/internal/domain"
)

func TestRender_RowOrderAndStyles(t *testing.T) {
	tree, _, err := BuildTree(typicalGrid())
	require.NoError(t, err)

	rows := Render(tree)

	// category, header, ACME + 2 details, Globex + 2 subgroups with 1
	// detail each.
	require.Len(t, rows, 10)

	assert.Equal(t, domain.RowStyleCategory, rows[0].Style)
	assert.Equal(t, "Medium Quality", rows[0].Cells[0].Text)

	assert.Equal(t, domain.RowStyleHeader, rows[1].Style)
	for i, h := range ColumnHeaders {
		assert.Equal(t, h, rows[1].Cells[i].Text)
	}

	assert.Equal(t, domain.RowStyleGroup, rows[2].Style)
	assert.Equal(t, "ACME Corp", rows[2].Cells[0].Text)

	assert.Equal(t, domain.RowStyleDetail, rows[3].Style)
	assert.Equal(t, "5yr term", rows[3].Cells[0].Text)
	assert.Equal(t, "AA", rows[3].Cells[1].Text)
	assert.False(t, rows[3].Indented)
	require.True(t, rows[3].Cells[2].IsNumber)
	assert.InDelta(t, 0.625, rows[3].Cells[2].Number, 1e-9)

	assert.Equal(t, domain.RowStyleGroup, rows[5].Style)
	assert.Equal(t, "Globex Inc", rows[5].Cells[0].Text)

	// Subgroup rows combine the obligor name with the facility label.
	assert.Equal(t, domain.RowStyleSubgroup, rows[6].Style)
	assert.Equal(t, "Globex Inc - Revolver", rows[6].Cells[0].Text)
	assert.True(t, rows[7].Indented)
	assert.Equal(t, "364-day", rows[7].Cells[0].Text)

	assert.Equal(t, "Globex Inc - Term Loan", rows[8].Cells[0].Text)
	assert.True(t, rows[9].Indented)
}

func TestRender_GroupAndTitleRowsHaveBlankMetrics(t *testing.T) {
	tree, _, err := BuildTree(typicalGrid())
	require.NoError(t, err)

	for _, row := range Render(tree) {
		if row.Style == domain.RowStyleDetail || row.Style == domain.RowStyleHeader {
			continue
		}
		for col := 1; col < len(row.Cells); col++ {
			assert.False(t, row.Cells[col].IsNumber)
			assert.Empty(t, row.Cells[col].Text)
		}
	}
}

func TestRender_AnonymousGroupEmitsNoGroupRow(t *testing.T) {
	tree := &domain.Category{
		Label: "Low Quality",
		Groups: []domain.Group{
			{Entries: []domain.DetailEntry{{Term: "stray", LGD: "C"}}},
		},
	}

	rows := Render(tree)

	require.Len(t, rows, 3)
	assert.Equal(t, domain.RowStyleDetail, rows[2].Style)
	assert.Equal(t, "stray", rows[2].Cells[0].Text)
}

func TestRender_AnonymousGroupSubgroupKeepsBareLabel(t *testing.T) {
	tree := &domain.Category{
		Label: "Low Quality",
		Groups: []domain.Group{
			{Subgroups: []domain.Subgroup{{Label: "Revolver"}}},
		},
	}

	rows := Render(tree)

	require.Len(t, rows, 3)
	assert.Equal(t, domain.RowStyleSubgroup, rows[2].Style)
	assert.Equal(t, "Revolver", rows[2].Cells[0].Text)
}

func TestRender_Idempotent(t *testing.T) {
	tree, _, err := BuildTree(typicalGrid())
	require.NoError(t, err)

	assert.Equal(t, Render(tree), Render(tree))
}

func TestRender_EmptyGroupStillNamed(t *testing.T) {
	tree := &domain.Category{
		Label:  "High Quality",
		Groups: []domain.Group{{Name: "Paid Down Corp"}},
	}

	rows := Render(tree)

	require.Len(t, rows, 3)
	assert.Equal(t, domain.RowStyleGroup, rows[2].Style)
	assert.Equal(t, "Paid Down Corp", rows[2].Cells[0].Text)
}
