package config_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zokasta/bank/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("LEDGER_SETTLEMENT_ACCOUNT_ID", "0e3b9a1f-4c8e-4a53-9d2e-6f1b2c3d4e5f")

	cfg, err := config.Load("does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Ledger.LockTimeout)
	assert.Equal(t, "4", cfg.Ledger.CardPrefix)
	assert.Equal(t, 16, cfg.Ledger.CardLength)
	assert.Equal(t, int64(3000000), cfg.Ledger.DefaultCreditLimit)
	assert.Equal(t,
		uuid.MustParse("0e3b9a1f-4c8e-4a53-9d2e-6f1b2c3d4e5f"),
		cfg.Ledger.SettlementAccountID)
}

func TestLoad_MissingSettlementAccount(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("LEDGER_SETTLEMENT_ACCOUNT_ID", "")

	_, err := config.Load("does-not-exist.env")
	require.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("LEDGER_SETTLEMENT_ACCOUNT_ID", uuid.New().String())
	t.Setenv("LEDGER_LOCK_TIMEOUT", "500ms")
	t.Setenv("SERVER_PORT", "8080")

	cfg, err := config.Load("does-not-exist.env")
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.Ledger.LockTimeout)
	assert.Equal(t, 8080, cfg.Server.Port)
}
