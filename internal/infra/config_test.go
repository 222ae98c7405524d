package infra

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"crypto_dash/internal/domain"

	"github.com/shopspring/decimal"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "app:\n  name: test\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.API.CoinGecko.BaseURL != "https://api.coingecko.com/api/v3" {
		t.Errorf("unexpected base url %s", cfg.API.CoinGecko.BaseURL)
	}
	if cfg.API.CoinGecko.Currency != "usd" {
		t.Errorf("Expected usd, got %s", cfg.API.CoinGecko.Currency)
	}
	if cfg.History.Source != HistorySourceSynthetic {
		t.Errorf("Expected synthetic source, got %s", cfg.History.Source)
	}
	if !cfg.History.Volatility.Equal(decimal.RequireFromString("0.15")) {
		t.Errorf("Expected volatility 0.15, got %s", cfg.History.Volatility)
	}
	if cfg.TransitionDelay() != 200*time.Millisecond {
		t.Errorf("Expected 200ms transition, got %s", cfg.TransitionDelay())
	}
	if cfg.RetryDelay() != time.Second {
		t.Errorf("Expected 1s retry delay, got %s", cfg.RetryDelay())
	}
	if cfg.SettleDelay() != 100*time.Millisecond {
		t.Errorf("Expected 100ms settle, got %s", cfg.SettleDelay())
	}
	if cfg.Chart.MaxRetries != 3 || !cfg.Chart.AutoRetry {
		t.Errorf("Expected 3 retries with auto retry, got %d/%t", cfg.Chart.MaxRetries, cfg.Chart.AutoRetry)
	}
	if cfg.Chart.DefaultTimeframe != 7 {
		t.Errorf("Expected default timeframe 7, got %d", cfg.Chart.DefaultTimeframe)
	}
}

func TestLoadConfig_Values(t *testing.T) {
	path := writeConfig(t, `
api:
  coingecko:
    base_url: "http://localhost:9999"
    timeout_sec: 5
history:
  source: fallback
  volatility: "0.3"
chart:
  auto_retry: false
  max_retries: 5
  default_timeframe: 30
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.API.CoinGecko.TimeoutSec != 5 {
		t.Errorf("Expected timeout 5, got %d", cfg.API.CoinGecko.TimeoutSec)
	}
	if cfg.History.Source != HistorySourceFallback {
		t.Errorf("Expected fallback, got %s", cfg.History.Source)
	}
	if !cfg.History.Volatility.Equal(decimal.RequireFromString("0.3")) {
		t.Errorf("Expected volatility 0.3, got %s", cfg.History.Volatility)
	}
	if cfg.Chart.AutoRetry {
		t.Error("Expected auto retry disabled")
	}
	if cfg.Chart.MaxRetries != 5 || cfg.Chart.DefaultTimeframe != 30 {
		t.Errorf("unexpected chart config %+v", cfg.Chart)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("CRYPTO_COINGECKO_KEY", "secret-key")
	t.Setenv("CRYPTO_HISTORY_SOURCE", "REMOTE")

	cfg, err := LoadConfig(writeConfig(t, "history:\n  source: synthetic\n"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.API.CoinGecko.APIKey != "secret-key" {
		t.Errorf("Expected api key from env, got %q", cfg.API.CoinGecko.APIKey)
	}
	if cfg.History.Source != HistorySourceRemote {
		t.Errorf("Expected remote from env, got %s", cfg.History.Source)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, domain.ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"bad url", "api:\n  coingecko:\n    base_url: ftp://x\n", "api.coingecko.base_url"},
		{"bad source", "history:\n  source: magic\n", "history.source"},
		{"bad volatility", "history:\n  volatility: \"-1\"\n", "history.volatility"},
		{"bad timeframe", "chart:\n  default_timeframe: 14\n", "chart.default_timeframe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			var cfgErr *domain.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, cfgErr.Field)
			}
			if domain.IsRetriable(err) {
				t.Error("config errors must not be retriable")
			}
		})
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig should validate: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]string{"debug": "DEBUG", "WARN": "WARN", "error": "ERROR", "": "INFO", "verbose": "INFO"}
	for in, want := range cases {
		if got := ParseLevel(in).String(); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
