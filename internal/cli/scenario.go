package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"burnrate/internal/config"
	"burnrate/internal/core"

	"github.com/BurntSushi/toml"
)

// Scenario is a set of predicted expenses kept in a TOML file:
//
//	[[expense]]
//	name = "Two engineers"
//	amount = "24000"
//	start = "2025-01"
//	end = "2025-12"
//	averaged = false
//
// Amounts are strings so they keep exact decimal values.
type Scenario struct {
	Expenses []core.PredictedExpense `toml:"expense"`
}

// LoadScenario reads a scenario file and validates every expense.
func LoadScenario(path string) (Scenario, error) {
	var sc Scenario
	md, err := toml.DecodeFile(path, &sc)
	if err != nil {
		return Scenario{}, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Scenario{}, fmt.Errorf("parsing scenario %s: unknown keys %v", path, undecoded)
	}
	for i, e := range sc.Expenses {
		if err := e.Validate(); err != nil {
			return Scenario{}, fmt.Errorf("scenario expense %d (%q): %w", i+1, e.Name, err)
		}
	}
	return sc, nil
}

// FileConfig is burnctl's optional config file. Values set there apply
// on top of the environment.
type FileConfig struct {
	Ledger struct {
		Backend      string `toml:"backend"`
		SQLiteDBPath string `toml:"sqlite_db_path"`
	} `toml:"ledger"`
	Alerts struct {
		RunwayMonths int `toml:"runway_months"`
	} `toml:"alerts"`
}

// ConfigPath returns the XDG location of burnctl's config file.
func ConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "burnrate", "burnctl.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "burnrate", "burnctl.toml")
}

// LoadFileConfig reads path. A missing file yields an empty config.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fc, nil
		}
		return fc, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parsing config: %w", err)
	}
	return fc, nil
}

func (fc FileConfig) Apply(cfg *config.Config) {
	if fc.Ledger.Backend != "" {
		cfg.DataBackend = fc.Ledger.Backend
	}
	if fc.Ledger.SQLiteDBPath != "" {
		cfg.SQLiteDBPath = fc.Ledger.SQLiteDBPath
	}
	if fc.Alerts.RunwayMonths > 0 {
		cfg.RunwayAlertMonths = fc.Alerts.RunwayMonths
	}
}
