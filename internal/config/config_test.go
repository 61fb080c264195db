package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("/data/recon")
	cfg.Ledger.DatabasePath = "/data/recon/ledger.db"
	cfg.Matching.AutoThreshold = 0.85

	path := filepath.Join(t.TempDir(), "recon.yaml")
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Ledger.DatabasePath, got.Ledger.DatabasePath)
	assert.Equal(t, cfg.Ledger.DataDir, got.Ledger.DataDir)
	assert.InDelta(t, 0.85, got.Matching.AutoThreshold, 0.001)
	assert.Equal(t, cfg.Import.BatchLimit, got.Import.BatchLimit)
	assert.Equal(t, cfg.Session.MaxPeriodDays, got.Session.MaxPeriodDays)
	assert.Equal(t, cfg.Adjusting.BankChargeAccount, got.Adjusting.BankChargeAccount)
	assert.Equal(t, cfg.Adjusting.InterestIncomeAccount, got.Adjusting.InterestIncomeAccount)
}

func TestDefaults(t *testing.T) {
	cfg := Default("/data/recon")

	assert.Equal(t, "ledger.db", cfg.Ledger.DatabasePath)
	assert.Equal(t, "/data/recon", cfg.Ledger.DataDir)
	assert.InDelta(t, 0.70, cfg.Matching.AutoThreshold, 0.001)
	assert.Equal(t, 10000, cfg.Import.BatchLimit)
	assert.Equal(t, 90, cfg.Session.MaxPeriodDays)
	assert.Equal(t, 5060, cfg.Adjusting.BankChargeAccount)
	assert.Equal(t, 4030, cfg.Adjusting.InterestIncomeAccount)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestYAMLFormat(t *testing.T) {
	cfg := Default("/data/recon")
	path := filepath.Join(t.TempDir(), "recon.yaml")
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "ledger:")
	assert.Contains(t, text, "matching:")
	assert.Contains(t, text, "auto_threshold:")
	assert.Contains(t, text, "bank_charge_account:")
}
