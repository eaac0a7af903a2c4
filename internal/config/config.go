// Package config loads, validates, and persists cashburn configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v8"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"cashburn/internal/model"
)

// Config holds all cashburn configuration.
type Config struct {
	General  GeneralConfig  `toml:"general"`
	Budget   BudgetConfig   `toml:"budget"`
	Pace     PaceConfig     `toml:"pace"`
	Import   ImportConfig   `toml:"import"`
	Telegram TelegramConfig `toml:"telegram"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DefaultMonths int    `toml:"default_months" env:"CASHBURN_MONTHS"`
	DataDir       string `toml:"data_dir,omitempty" env:"CASHBURN_DATA_DIR"`
	DBPath        string `toml:"db_path,omitempty" env:"CASHBURN_DB"`
}

// BudgetConfig holds the overall monthly budget.
type BudgetConfig struct {
	// MonthlyTotal is a decimal string; empty means no overall budget.
	MonthlyTotal string `toml:"monthly_total,omitempty" env:"CASHBURN_BUDGET"`
}

// PaceConfig holds the spending velocity thresholds.
type PaceConfig struct {
	UnderRatio    float64 `toml:"under_ratio" env:"CASHBURN_PACE_UNDER"`
	OverRatio     float64 `toml:"over_ratio" env:"CASHBURN_PACE_OVER"`
	CriticalRatio float64 `toml:"critical_ratio" env:"CASHBURN_PACE_CRITICAL"`
}

// ImportConfig holds statement import preferences.
type ImportConfig struct {
	Dir     string `toml:"dir,omitempty" env:"CASHBURN_IMPORT_DIR"`
	Negate  bool   `toml:"negate" env:"CASHBURN_IMPORT_NEGATE"`
	Account string `toml:"account,omitempty"`
}

// TelegramConfig holds notifier credentials.
type TelegramConfig struct {
	Token  string `toml:"token,omitempty" env:"CASHBURN_TG_TOKEN"`
	ChatID int64  `toml:"chat_id,omitempty" env:"CASHBURN_TG_CHAT"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	th := model.DefaultPaceThresholds()
	return Config{
		General: GeneralConfig{
			DefaultMonths: 6,
		},
		Pace: PaceConfig{
			UnderRatio:    th.Under,
			OverRatio:     th.Over,
			CriticalRatio: th.Critical,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cashburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cashburn")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "cashburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "cashburn")
}

// Load reads the config file and applies environment overrides on top.
// A missing file just means defaults.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err == nil {
		if terr := toml.Unmarshal(data, &cfg); terr != nil {
			return cfg, fmt.Errorf("parsing config: %w", terr)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	// .env is a local development convenience; absence is fine.
	_ = godotenv.Load()
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("applying environment: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, "# cashburn configuration"); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// Validate checks the configuration, collecting every fault rather than
// stopping at the first.
func (c Config) Validate() error {
	var errs []error

	if c.General.DefaultMonths < 1 || c.General.DefaultMonths > 12 {
		errs = append(errs, fmt.Errorf("general.default_months %d outside 1..12", c.General.DefaultMonths))
	}
	if c.Pace.UnderRatio <= 0 || c.Pace.UnderRatio >= c.Pace.OverRatio || c.Pace.OverRatio >= c.Pace.CriticalRatio {
		errs = append(errs, fmt.Errorf("pace thresholds must satisfy 0 < under < over < critical, got %.2f/%.2f/%.2f",
			c.Pace.UnderRatio, c.Pace.OverRatio, c.Pace.CriticalRatio))
	}
	if c.Budget.MonthlyTotal != "" {
		d, err := decimal.NewFromString(c.Budget.MonthlyTotal)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("budget.monthly_total %q is not a decimal", c.Budget.MonthlyTotal))
		case d.IsNegative():
			errs = append(errs, fmt.Errorf("budget.monthly_total %s is negative", d))
		}
	}
	if (c.Telegram.Token == "") != (c.Telegram.ChatID == 0) {
		errs = append(errs, errors.New("telegram needs both token and chat_id"))
	}

	return errors.Join(errs...)
}

// DBPath resolves the ledger database location.
func (c Config) DBPath() string {
	if c.General.DBPath != "" {
		return c.General.DBPath
	}
	dir := c.General.DataDir
	if dir == "" {
		dir = DataDir()
	}
	return filepath.Join(dir, "cashburn.db")
}

// Thresholds converts the pace section to model thresholds.
func (c Config) Thresholds() model.PaceThresholds {
	return model.PaceThresholds{
		Under:    c.Pace.UnderRatio,
		Over:     c.Pace.OverRatio,
		Critical: c.Pace.CriticalRatio,
	}
}

// MonthlyBudget returns the overall monthly budget when one is set and
// parseable.
func (c Config) MonthlyBudget() (decimal.Decimal, bool) {
	if c.Budget.MonthlyTotal == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(c.Budget.MonthlyTotal)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
