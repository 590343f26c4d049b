package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config represents the complete service configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Remote  RemoteConfig  `toml:"remote"`
	Redis   RedisConfig   `toml:"redis"`
	Billing BillingRules  `toml:"billing"`
	Metrics MetricsConfig `toml:"metrics"`
}

// ServerConfig contains the HTTP listen settings.
type ServerConfig struct {
	ListenAddr string `toml:"listen_addr"`
}

// RemoteConfig contains the settings for the remote cashier resource that
// owns all bill state.
type RemoteConfig struct {
	BaseURL        string `toml:"base_url"`
	APIToken       string `toml:"api_token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// RedisConfig contains the cache settings.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// BillingRules carries the business-rule configuration. It is threaded as an
// explicit value into the billing core, never read from ambient scope.
type BillingRules struct {
	FacilityName    string `toml:"facility_name"`
	DefaultCurrency string `toml:"default_currency"`
	CashPointUUID   string `toml:"cash_point_uuid"`
	CashierUUID     string `toml:"cashier_uuid"`

	// ExcludedPaymentModes are hidden from payment-mode listings, e.g. the
	// Waiver mode.
	ExcludedPaymentModes []string `toml:"excluded_payment_modes"`

	// ReferenceCodeRequiredModes must carry a reference code on every
	// payment, e.g. mobile money.
	ReferenceCodeRequiredModes []string `toml:"reference_code_required_modes"`

	// TaxRecognitionPolicy is "paid-only" or "all".
	TaxRecognitionPolicy string `toml:"tax_recognition_policy"`
}

// MetricsConfig contains dashboard metrics cache and refresh settings.
type MetricsConfig struct {
	CacheTTLSeconds int `toml:"cache_ttl_seconds"`
	RefreshMinutes  int `toml:"refresh_minutes"`
	WindowDays      int `toml:"window_days"`
	ListPageSize    int `toml:"list_page_size"`
}

// Load reads configuration from a TOML file and applies defaults.
func Load(filename string) (*Config, error) {
	cfg := &Config{}
	if filename != "" {
		if _, err := toml.DecodeFile(filename, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// applyEnv lets environment variables override file values for the settings
// that differ per deployment.
func (c *Config) applyEnv() {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.Server.ListenAddr = v
	}
	if v := os.Getenv("CASHIER_API_URL"); v != "" {
		c.Remote.BaseURL = v
	}
	if v := os.Getenv("CASHIER_API_TOKEN"); v != "" {
		c.Remote.APIToken = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = db
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
	if c.Remote.TimeoutSeconds <= 0 {
		c.Remote.TimeoutSeconds = 30
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Billing.FacilityName == "" {
		c.Billing.FacilityName = "Health Facility"
	}
	if c.Billing.DefaultCurrency == "" {
		c.Billing.DefaultCurrency = "KES"
	}
	if c.Billing.TaxRecognitionPolicy == "" {
		c.Billing.TaxRecognitionPolicy = "paid-only"
	}
	if c.Metrics.CacheTTLSeconds <= 0 {
		c.Metrics.CacheTTLSeconds = 300
	}
	if c.Metrics.RefreshMinutes <= 0 {
		c.Metrics.RefreshMinutes = 5
	}
	if c.Metrics.WindowDays <= 0 {
		c.Metrics.WindowDays = 1
	}
	if c.Metrics.ListPageSize <= 0 {
		c.Metrics.ListPageSize = 50
	}
}

// ReferenceCodeRequiredSet returns the reference-code-required modes as a
// lookup set for the payment validator.
func (b BillingRules) ReferenceCodeRequiredSet() map[string]bool {
	set := make(map[string]bool, len(b.ReferenceCodeRequiredModes))
	for _, uuid := range b.ReferenceCodeRequiredModes {
		set[uuid] = true
	}
	return set
}

// ExcludedPaymentModeSet returns the excluded modes as a lookup set.
func (b BillingRules) ExcludedPaymentModeSet() map[string]bool {
	set := make(map[string]bool, len(b.ExcludedPaymentModes))
	for _, uuid := range b.ExcludedPaymentModes {
		set[uuid] = true
	}
	return set
}
