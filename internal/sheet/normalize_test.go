package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Cell
	}{
		{"empty string", "", Cell{Kind: CellEmpty}},
		{"whitespace only", "   \t ", Cell{Kind: CellEmpty}},
		{"plain text", "ACME Corp", Cell{Kind: CellText, Text: "ACME Corp"}},
		{"text trimmed", "  Revolver  ", Cell{Kind: CellText, Text: "Revolver"}},
		{"integer", "42", Cell{Kind: CellNumber, Number: 42}},
		{"decimal", "45.2", Cell{Kind: CellNumber, Number: 45.2}},
		{"negative", "-3.5", Cell{Kind: CellNumber, Number: -3.5}},
		{"thousands separators", "1,250,000", Cell{Kind: CellNumber, Number: 1250000}},
		{"trailing percent", "62.5%", Cell{Kind: CellNumber, Number: 62.5}},
		{"percent with space", "62.5 %", Cell{Kind: CellNumber, Number: 62.5}},
		{"lone percent sign", "%", Cell{Kind: CellText, Text: "%"}},
		{"mixed alphanumeric", "5yr term", Cell{Kind: CellText, Text: "5yr term"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestNormalizeRow_PadsShortRows(t *testing.T) {
	row := NormalizeRow([]string{"ACME", "AA"}, GridWidth)

	assert.Len(t, row, GridWidth)
	assert.Equal(t, CellText, row[0].Kind)
	assert.Equal(t, CellText, row[1].Kind)
	for i := 2; i < GridWidth; i++ {
		assert.True(t, row[i].IsEmpty(), "padded cell %d should be empty", i)
	}
}

func TestNormalizeRow_KeepsLongRows(t *testing.T) {
	raw := make([]string, 12)
	raw[11] = "extra"

	row := NormalizeRow(raw, GridWidth)

	assert.Len(t, row, 12)
	assert.Equal(t, "extra", row[11].Text)
}
