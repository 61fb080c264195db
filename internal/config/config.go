package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level recon.yaml configuration.
type Config struct {
	Ledger    LedgerConfig    `yaml:"ledger"`
	Matching  MatchingConfig  `yaml:"matching"`
	Import    ImportConfig    `yaml:"import"`
	Session   SessionConfig   `yaml:"session"`
	Adjusting AdjustingConfig `yaml:"adjusting"`
}

// LedgerConfig locates the ledger database and the data directory for logs.
type LedgerConfig struct {
	DatabasePath string `yaml:"database_path"`
	DataDir      string `yaml:"data_dir"`
}

// MatchingConfig controls automatic match acceptance.
type MatchingConfig struct {
	AutoThreshold float64 `yaml:"auto_threshold"`
}

// ImportConfig bounds statement import batches.
type ImportConfig struct {
	BatchLimit int `yaml:"batch_limit"`
}

// SessionConfig bounds reconciliation periods.
type SessionConfig struct {
	MaxPeriodDays int `yaml:"max_period_days"`
}

// AdjustingConfig designates the counter-accounts for auto-generated
// adjusting entries.
type AdjustingConfig struct {
	BankChargeAccount     int `yaml:"bank_charge_account"`
	InterestIncomeAccount int `yaml:"interest_income_account"`
}

// Load reads a recon.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(dataDir string) *Config {
	return &Config{
		Ledger: LedgerConfig{
			DatabasePath: "ledger.db",
			DataDir:      dataDir,
		},
		Matching: MatchingConfig{
			AutoThreshold: 0.7,
		},
		Import: ImportConfig{
			BatchLimit: 10000,
		},
		Session: SessionConfig{
			MaxPeriodDays: 90,
		},
		Adjusting: AdjustingConfig{
			BankChargeAccount:     5060,
			InterestIncomeAccount: 4030,
		},
	}
}
