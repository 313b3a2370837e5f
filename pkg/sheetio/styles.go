package sheetio

import (
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v2"
)

// StyleConfig holds the visual literals of the rendered workbook. The zero
// value is unusable; start from DefaultStyleConfig and override via YAML.
type StyleConfig struct {
	GroupFillColor string  `yaml:"group_fill_color"`
	PercentFormat  string  `yaml:"percent_format"`
	AmountFormat   string  `yaml:"amount_format"`
	BorderStyle    string  `yaml:"border_style"`
	NameColWidth   float64 `yaml:"name_col_width"`
	LGDColWidth    float64 `yaml:"lgd_col_width"`
	MetricColWidth float64 `yaml:"metric_col_width"`
	IndentPrefix   string  `yaml:"indent_prefix"`
}

// DefaultStyleConfig returns the formatting the source worksheets use.
func DefaultStyleConfig() StyleConfig {
	return StyleConfig{
		GroupFillColor: "FFEB9C",
		PercentFormat:  "0.00%",
		AmountFormat:   "#,##0",
		BorderStyle:    "thin",
		NameColWidth:   40,
		LGDColWidth:    10,
		MetricColWidth: 15,
		IndentPrefix:   "    ",
	}
}

// LoadStyleConfig reads a YAML style template, filling unset fields from
// the defaults. An empty path means the defaults unchanged.
func LoadStyleConfig(path string) (StyleConfig, error) {
	cfg := DefaultStyleConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading style template: %w", err)
	}
	var overrides StyleConfig
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return cfg, fmt.Errorf("decode style template: %w", err)
	}
	cfg.merge(overrides)
	return cfg, nil
}

func (c *StyleConfig) merge(o StyleConfig) {
	if o.GroupFillColor != "" {
		c.GroupFillColor = o.GroupFillColor
	}
	if o.PercentFormat != "" {
		c.PercentFormat = o.PercentFormat
	}
	if o.AmountFormat != "" {
		c.AmountFormat = o.AmountFormat
	}
	if o.BorderStyle != "" {
		c.BorderStyle = o.BorderStyle
	}
	if o.NameColWidth > 0 {
		c.NameColWidth = o.NameColWidth
	}
	if o.LGDColWidth > 0 {
		c.LGDColWidth = o.LGDColWidth
	}
	if o.MetricColWidth > 0 {
		c.MetricColWidth = o.MetricColWidth
	}
	if o.IndentPrefix != "" {
		c.IndentPrefix = o.IndentPrefix
	}
}

// styleSet caches the excelize style IDs one writer needs. Styles are
// registered once per file; cell writes reference the IDs.
type styleSet struct {
	bold         int
	headerBold   int
	groupFill    int
	subgroupFill int
	term         int
	lgd          int
	percent      int
	amount       int
}

func newStyleSet(f *excelize.File, cfg StyleConfig) (*styleSet, error) {
	border := borderAll(cfg.BorderStyle)
	fill := excelize.Fill{
		Type:    "pattern",
		Pattern: 1,
		Color:   []string{strings.TrimPrefix(cfg.GroupFillColor, "#")},
	}

	s := &styleSet{}
	var err error

	if s.bold, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: border,
	}); err != nil {
		return nil, err
	}

	if s.headerBold, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	}); err != nil {
		return nil, err
	}

	if s.groupFill, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   fill,
		Border: border,
	}); err != nil {
		return nil, err
	}

	if s.subgroupFill, err = f.NewStyle(&excelize.Style{
		Fill:   fill,
		Border: border,
	}); err != nil {
		return nil, err
	}

	if s.term, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		Border:    border,
	}); err != nil {
		return nil, err
	}

	if s.lgd, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	}); err != nil {
		return nil, err
	}

	pctFmt := cfg.PercentFormat
	if s.percent, err = f.NewStyle(&excelize.Style{
		Alignment:    &excelize.Alignment{Horizontal: "right", Vertical: "center"},
		Border:       border,
		CustomNumFmt: &pctFmt,
	}); err != nil {
		return nil, err
	}

	amtFmt := cfg.AmountFormat
	if s.amount, err = f.NewStyle(&excelize.Style{
		Alignment:    &excelize.Alignment{Horizontal: "right", Vertical: "center"},
		Border:       border,
		CustomNumFmt: &amtFmt,
	}); err != nil {
		return nil, err
	}

	return s, nil
}

func borderAll(style string) []excelize.Border {
	var weight int
	switch style {
	case "":
		return nil
	case "medium":
		weight = 2
	case "thick":
		weight = 5
	default: // thin
		weight = 1
	}
	sides := []string{"left", "right", "top", "bottom"}
	borders := make([]excelize.Border, 0, len(sides))
	for _, side := range sides {
		borders = append(borders, excelize.Border{Type: side, Style: weight, Color: "000000"})
	}
	return borders
}
