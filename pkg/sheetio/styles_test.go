package sheetio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStyleConfig_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadStyleConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultStyleConfig(), cfg)
}

func TestLoadStyleConfig_MergesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "style.yaml")
	tpl := `
group_fill_color: "C6EFCE"
name_col_width: 55
`
	require.NoError(t, os.WriteFile(path, []byte(tpl), 0644))

	cfg, err := LoadStyleConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "C6EFCE", cfg.GroupFillColor)
	assert.Equal(t, 55.0, cfg.NameColWidth)
	// Unset fields keep their defaults.
	assert.Equal(t, DefaultStyleConfig().PercentFormat, cfg.PercentFormat)
	assert.Equal(t, DefaultStyleConfig().IndentPrefix, cfg.IndentPrefix)
}

func TestLoadStyleConfig_MissingFile(t *testing.T) {
	_, err := LoadStyleConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadStyleConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "style.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0644))

	_, err := LoadStyleConfig(path)
	assert.Error(t, err)
}
