package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"burnrate/internal/config"
	"burnrate/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeFile(t, "scenario.toml", `
[[expense]]
name = "Two engineers"
amount = "24000"
start = "2025-01"
end = "2025-12"
averaged = true

[[expense]]
name = "Offsite"
amount = "8000.50"
start = "2025-06"
end = "2025-06"
`)

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	require.Len(t, sc.Expenses, 2)

	first := sc.Expenses[0]
	assert.Equal(t, "Two engineers", first.Name)
	assert.Equal(t, "24000", first.Amount.String())
	assert.Equal(t, core.Month("2025-01"), first.StartDate)
	assert.True(t, first.IsAveraged)
	assert.False(t, sc.Expenses[1].IsAveraged)
}

func TestLoadScenario_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "reversed range",
			content: "[[expense]]\nname = \"x\"\namount = \"10\"\nstart = \"2025-06\"\nend = \"2025-01\"\n",
			want:    "start month after end month",
		},
		{
			name:    "zero amount",
			content: "[[expense]]\nname = \"x\"\namount = \"0\"\nstart = \"2025-01\"\nend = \"2025-01\"\n",
			want:    "invalid amount",
		},
		{
			name:    "unknown key",
			content: "[[expense]]\nname = \"x\"\namount = \"10\"\nstart = \"2025-01\"\nend = \"2025-01\"\ncolour = \"red\"\n",
			want:    "unknown keys",
		},
		{
			name:    "not toml",
			content: "[[expense",
			want:    "parsing scenario",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeFile(t, "s.toml", tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFileConfig(t *testing.T) {
	fc, err := LoadFileConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	cfg := &config.Config{DataBackend: config.BackendSQLite, SQLiteDBPath: "a.db", RunwayAlertMonths: 6}
	fc.Apply(cfg)
	assert.Equal(t, "a.db", cfg.SQLiteDBPath)

	fc, err = LoadFileConfig(writeFile(t, "burnctl.toml", `
[ledger]
sqlite_db_path = "/srv/ledger.db"

[alerts]
runway_months = 9
`))
	require.NoError(t, err)
	fc.Apply(cfg)
	assert.Equal(t, "/srv/ledger.db", cfg.SQLiteDBPath)
	assert.Equal(t, config.BackendSQLite, cfg.DataBackend)
	assert.Equal(t, 9, cfg.RunwayAlertMonths)
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, "/tmp/xdg/burnrate/burnctl.toml", ConfigPath())
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Series",
		Headers: []string{"Month", "Assets"},
		Rows: [][]string{
			{"Jan 2024", "$9,000.00"},
			{"---"},
			{"Feb 2024", "$8,000.00"},
		},
		Dim: map[int]bool{2: true},
	})

	assert.Contains(t, out, "Series")
	assert.Contains(t, out, "Jan 2024")
	assert.Contains(t, out, "$8,000.00")
	assert.Equal(t, 8, strings.Count(out, "\n"))

	assert.Empty(t, RenderTable(Table{}))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "n/a", FormatPercent(nil))
	v := -12.345
	assert.Equal(t, "-12.3%", FormatPercent(&v))
}
