package infra

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"crypto_dash/internal/domain"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultUserAgent identifies the dashboard to the market data API
	DefaultUserAgent = "CryptoDash/1.0 (+https://www.coingecko.com/en/api)"

	// History sources
	HistorySourceSynthetic = "synthetic"
	HistorySourceRemote    = "remote"
	HistorySourceFallback  = "fallback"
)

// Config는 애플리케이션의 모든 설정을 담습니다.
// LoadConfig로 로드된 후에 환경 변수를 통해 민감 내용을 덮어씁니다.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	API struct {
		CoinGecko struct {
			BaseURL         string  `yaml:"base_url"`
			APIKey          string  `yaml:"api_key"`
			Currency        string  `yaml:"currency"`
			TimeoutSec      int     `yaml:"timeout_sec"`
			RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
			RateLimitBurst  int     `yaml:"rate_limit_burst"`
			MaxRetries      int     `yaml:"max_retries"`
		} `yaml:"coingecko"`
	} `yaml:"api"`

	History struct {
		Source     string          `yaml:"source"`
		Volatility decimal.Decimal `yaml:"volatility"`
	} `yaml:"history"`

	Chart struct {
		TransitionMS     int  `yaml:"transition_ms"`
		RetryDelayMS     int  `yaml:"retry_delay_ms"`
		SettleMS         int  `yaml:"settle_ms"`
		MaxRetries       int  `yaml:"max_retries"`
		AutoRetry        bool `yaml:"auto_retry"`
		DefaultTimeframe int  `yaml:"default_timeframe"`
	} `yaml:"chart"`

	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Icons struct {
		Enabled bool   `yaml:"enabled"`
		Dir     string `yaml:"dir"`
		Size    int    `yaml:"size"`
	} `yaml:"icons"`

	Logging struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
	} `yaml:"logging"`
}

// DefaultConfig returns the configuration used when no file is present.
// Environment overrides still apply.
func DefaultConfig() *Config {
	var cfg Config
	cfg.Chart.AutoRetry = true
	cfg.Icons.Enabled = true
	applyDefaults(&cfg)
	overrideWithEnv(&cfg)
	return &cfg
}

// LoadConfig는 설정 파일을 읽고 파싱합니다.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
		}
		return nil, err
	}

	cfg := Config{}
	cfg.Chart.AutoRetry = true
	cfg.Icons.Enabled = true
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &domain.ConfigError{Field: path, Err: err}
	}

	applyDefaults(&cfg)

	// API 키 등 민감 정보는 환경 변수로 덮어씁니다
	overrideWithEnv(&cfg)

	// 설정 유효성 검사
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "Crypto Dash"
	}
	cg := &cfg.API.CoinGecko
	if cg.BaseURL == "" {
		cg.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if cg.Currency == "" {
		cg.Currency = "usd"
	}
	if cg.TimeoutSec <= 0 {
		cg.TimeoutSec = 45
	}
	if cg.RateLimitPerSec <= 0 {
		cg.RateLimitPerSec = 0.5 // demo plan: 30 calls/min
	}
	if cg.RateLimitBurst <= 0 {
		cg.RateLimitBurst = 1
	}
	if cg.MaxRetries <= 0 {
		cg.MaxRetries = 3
	}

	if cfg.History.Source == "" {
		cfg.History.Source = HistorySourceSynthetic
	}
	if cfg.History.Volatility.IsZero() {
		cfg.History.Volatility = decimal.RequireFromString("0.15")
	}

	ch := &cfg.Chart
	if ch.TransitionMS <= 0 {
		ch.TransitionMS = 200
	}
	if ch.RetryDelayMS <= 0 {
		ch.RetryDelayMS = 1000
	}
	if ch.SettleMS <= 0 {
		ch.SettleMS = 100
	}
	if ch.MaxRetries <= 0 {
		ch.MaxRetries = 3
	}
	if ch.DefaultTimeframe == 0 {
		ch.DefaultTimeframe = int(domain.DefaultTimeframe)
	}

	if cfg.Icons.Size <= 0 {
		cfg.Icons.Size = 24
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = "logs"
	}
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	// CoinGecko
	base := c.API.CoinGecko.BaseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return &domain.ConfigError{Field: "api.coingecko.base_url", Err: fmt.Errorf("invalid URL: %q", base)}
	}

	// History
	switch c.History.Source {
	case HistorySourceSynthetic, HistorySourceRemote, HistorySourceFallback:
	default:
		return &domain.ConfigError{Field: "history.source", Err: fmt.Errorf("unknown source %q", c.History.Source)}
	}
	if c.History.Volatility.IsNegative() || c.History.Volatility.GreaterThan(decimal.NewFromInt(2)) {
		return &domain.ConfigError{Field: "history.volatility", Err: fmt.Errorf("must be within [0, 2], got %s", c.History.Volatility)}
	}

	// Chart
	if !domain.Timeframe(c.Chart.DefaultTimeframe).Valid() {
		return &domain.ConfigError{Field: "chart.default_timeframe", Err: fmt.Errorf("unsupported window %d", c.Chart.DefaultTimeframe)}
	}

	return nil
}

// TransitionDelay is the cosmetic pause before reloading a chart that has data.
func (c *Config) TransitionDelay() time.Duration {
	return time.Duration(c.Chart.TransitionMS) * time.Millisecond
}

// RetryDelay is the constant wait before a retried history fetch.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Chart.RetryDelayMS) * time.Millisecond
}

// SettleDelay is the pause before publishing a reloaded series.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Chart.SettleMS) * time.Millisecond
}

// overrideWithEnv는 환경 변수가 존재할 경우 설정 값을 덮어씁니다.
func overrideWithEnv(cfg *Config) {
	if key := os.Getenv("CRYPTO_COINGECKO_KEY"); key != "" {
		cfg.API.CoinGecko.APIKey = key
	}
	if src := os.Getenv("CRYPTO_HISTORY_SOURCE"); src != "" {
		cfg.History.Source = strings.ToLower(src)
	}
	if level := os.Getenv("CRYPTO_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
}
