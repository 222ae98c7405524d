package coingecko

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"crypto_dash/internal/domain"
)

var _ domain.MarketDataSource = (*Client)(nil)

// FetchPopularAssets fetches the top 100 markets by cap and returns the
// allow-listed entries in allow-list order.
func (c *Client) FetchPopularAssets(ctx context.Context, currency string) ([]domain.AssetSnapshot, error) {
	if currency == "" {
		currency = "usd"
	}
	params := url.Values{}
	params.Set("vs_currency", strings.ToLower(currency))
	params.Set("order", "market_cap_desc")
	params.Set("per_page", "100")
	params.Set("page", "1")
	params.Set("sparkline", "false")
	params.Set("price_change_percentage", "24h,7d")

	var raw []domain.AssetSnapshot
	if err := c.request(ctx, "/coins/markets", params, &raw); err != nil {
		return nil, &domain.GatewayError{Op: "fetch popular assets", Err: err}
	}

	return c.selectPopular(raw), nil
}

// selectPopular filters raw to the allow-list and reorders it canonically.
// Missing ids are logged, never fatal.
func (c *Client) selectPopular(raw []domain.AssetSnapshot) []domain.AssetSnapshot {
	byID := make(map[string]domain.AssetSnapshot, len(PopularAssets))
	for _, a := range raw {
		if !IsPopular(a.ID) {
			continue
		}
		if _, dup := byID[a.ID]; dup {
			continue
		}
		if err := c.validate.Struct(a); err != nil {
			c.logger.Warn("Dropping invalid market entry", slog.String("id", a.ID), slog.Any("error", err))
			continue
		}
		byID[a.ID] = a
	}

	out := make([]domain.AssetSnapshot, 0, len(byID))
	var missing []string
	for _, id := range PopularAssets {
		a, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		out = append(out, a)
	}
	if len(missing) > 0 {
		c.logger.Warn("Assets not found in market response", slog.Any("missing", missing))
	}
	return out
}

type globalResponse struct {
	Data struct {
		TotalMarketCap map[string]float64 `json:"total_market_cap"`
		TotalVolume    map[string]float64 `json:"total_volume"`
	} `json:"data"`
}

// FetchGlobalMarketCap returns the total market capitalization of all assets in currency.
func (c *Client) FetchGlobalMarketCap(ctx context.Context, currency string) (float64, error) {
	var resp globalResponse
	if err := c.request(ctx, "/global", nil, &resp); err != nil {
		return 0, &domain.GatewayError{Op: "fetch global market data", Err: err}
	}
	v, ok := resp.Data.TotalMarketCap[strings.ToLower(currency)]
	if !ok {
		return 0, &domain.GatewayError{
			Op:  "fetch global market data",
			Err: fmt.Errorf("%w: no total for %q", domain.ErrMalformedPayload, currency),
		}
	}
	return v, nil
}
