package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, 30, cfg.Remote.TimeoutSeconds)
	assert.Equal(t, "KES", cfg.Billing.DefaultCurrency)
	assert.Equal(t, "paid-only", cfg.Billing.TaxRecognitionPolicy)
	assert.Equal(t, 300, cfg.Metrics.CacheTTLSeconds)
	assert.Equal(t, 50, cfg.Metrics.ListPageSize)
}

func TestLoad_FromFile(t *testing.T) {
	content := `
[server]
listen_addr = ":9090"

[remote]
base_url = "http://cashier.local/ws/rest/v1"
api_token = "secret"

[billing]
facility_name = "Nairobi West Clinic"
default_currency = "USD"
excluded_payment_modes = ["mode-waiver"]
reference_code_required_modes = ["mode-mpesa"]

[metrics]
window_days = 7
`
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.ListenAddr)
	assert.Equal(t, "http://cashier.local/ws/rest/v1", cfg.Remote.BaseURL)
	assert.Equal(t, "Nairobi West Clinic", cfg.Billing.FacilityName)
	assert.Equal(t, "USD", cfg.Billing.DefaultCurrency)
	assert.Equal(t, 7, cfg.Metrics.WindowDays)
	assert.True(t, cfg.Billing.ExcludedPaymentModeSet()["mode-waiver"])
	assert.True(t, cfg.Billing.ReferenceCodeRequiredSet()["mode-mpesa"])
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":7070")
	t.Setenv("CASHIER_API_URL", "http://env-host/ws/rest/v1")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.ListenAddr)
	assert.Equal(t, "http://env-host/ws/rest/v1", cfg.Remote.BaseURL)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	assert.Error(t, err)
}
