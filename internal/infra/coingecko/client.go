package coingecko

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crypto_dash/internal/domain"
	"crypto_dash/internal/infra"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.coingecko.com/api/v3"
	apiKeyHeader   = "x-cg-demo-api-key"
)

// ErrCircuitOpen is returned while the breaker rejects requests.
var ErrCircuitOpen = errors.New("coingecko: circuit open")

// Options configures a Client.
type Options struct {
	BaseURL         string
	APIKey          string
	Timeout         time.Duration
	RateLimitPerSec float64
	RateLimitBurst  int
	MaxRetries      int // total attempts per request
	Metrics         *infra.Metrics
}

// OptionsFromConfig maps the api.coingecko section to client options.
func OptionsFromConfig(cfg *infra.Config, metrics *infra.Metrics) Options {
	cg := cfg.API.CoinGecko
	return Options{
		BaseURL:         cg.BaseURL,
		APIKey:          cg.APIKey,
		Timeout:         time.Duration(cg.TimeoutSec) * time.Second,
		RateLimitPerSec: cg.RateLimitPerSec,
		RateLimitBurst:  cg.RateLimitBurst,
		MaxRetries:      cg.MaxRetries,
		Metrics:         metrics,
	}
}

// Client is a rate-limited CoinGecko v3 REST client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *infra.CircuitBreaker
	metrics    *infra.Metrics
	validate   *validator.Validate
	maxRetries int
	logger     *slog.Logger

	// sleep waits between attempts; replaced in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a new Client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 45 * time.Second
	}
	if opts.RateLimitPerSec <= 0 {
		opts.RateLimitPerSec = 0.5
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = 1
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.Metrics == nil {
		opts.Metrics = infra.GlobalMetrics
	}

	breakerCfg := infra.DefaultCircuitBreakerConfig("coingecko")
	breakerCfg.Metrics = opts.Metrics

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimitPerSec), opts.RateLimitBurst),
		breaker:    infra.NewCircuitBreaker(breakerCfg),
		metrics:    opts.Metrics,
		validate:   validator.New(),
		maxRetries: opts.MaxRetries,
		logger:     slog.Default().With("module", "coingecko"),
		sleep:      sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// request performs GET endpoint and decodes the JSON body into result.
// 429 and 5xx responses and transport failures are retried with exponential backoff.
func (c *Client) request(ctx context.Context, endpoint string, params url.Values, result any) error {
	op := "GET " + endpoint
	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var lastErr error
	retryAfter := ""
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := infra.RetryAfter(retryAfter, attempt-1)
			c.metrics.RecordRetry()
			c.logger.Info("Retrying request",
				slog.String("op", op),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay))
			if err := c.sleep(ctx, delay); err != nil {
				return err
			}
		}

		if !c.breaker.Allow() {
			return domain.NewFatalNetworkError(op, ErrCircuitOpen)
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error for %s: %w", endpoint, err)
		}

		var err error
		retryAfter, err = c.do(ctx, op, reqURL, result)
		if err == nil {
			c.breaker.RecordSuccess()
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.metrics.RecordError()
		if !domain.IsRetriable(err) {
			return err
		}
		c.breaker.RecordFailure()
		lastErr = err
		c.logger.Warn("Request attempt failed",
			slog.String("op", op),
			slog.Int("attempt", attempt+1),
			slog.Any("error", err))
	}
	return lastErr
}

// do runs one attempt. It returns the Retry-After header of a throttled response.
func (c *Client) do(ctx context.Context, op, reqURL string, result any) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", domain.NewFatalNetworkError(op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", infra.DefaultUserAgent)
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.NewNetworkError(op, err)
	}
	defer resp.Body.Close()
	c.metrics.RecordRequest(time.Since(start))

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		io.Copy(io.Discard, resp.Body)
		return resp.Header.Get("Retry-After"), domain.NewNetworkError(op, fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	case resp.StatusCode == http.StatusNotFound:
		return "", domain.NewFatalNetworkError(op, domain.ErrAssetNotFound)
	default:
		return "", domain.NewFatalNetworkError(op, fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.NewNetworkError(op, err)
	}
	if err := json.Unmarshal(body, result); err != nil {
		return "", domain.NewFatalNetworkError(op, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err))
	}
	return "", nil
}
