package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "8090", cfg.Server.Port)
	assert.Equal(t, int64(1000), cfg.Withdrawal.MinAmountCents)
	assert.InDelta(t, 0.09, cfg.Withdrawal.CommissionRate, 1e-9)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("WITHDRAWAL_MIN_CENTS", "2500")
	t.Setenv("WITHDRAWAL_COMMISSION_RATE", "0.12")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, int64(2500), cfg.Withdrawal.MinAmountCents)
	assert.InDelta(t, 0.12, cfg.Withdrawal.CommissionRate, 1e-9)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("WITHDRAWAL_MIN_CENTS", "lots")
	cfg := Load()
	assert.Equal(t, int64(1000), cfg.Withdrawal.MinAmountCents)
}
