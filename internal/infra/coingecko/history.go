package coingecko

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"crypto_dash/internal/domain"
)

type marketChartResponse struct {
	Prices [][]float64 `json:"prices"`
}

// RemoteHistoryProvider reads price history from /coins/{id}/market_chart.
type RemoteHistoryProvider struct {
	client   *Client
	currency string
}

var _ domain.HistoryProvider = (*RemoteHistoryProvider)(nil)

// NewRemoteHistoryProvider creates a provider quoting prices in currency.
func NewRemoteHistoryProvider(client *Client, currency string) *RemoteHistoryProvider {
	if currency == "" {
		currency = "usd"
	}
	return &RemoteHistoryProvider{client: client, currency: strings.ToLower(currency)}
}

// FetchHistory returns the raw series for assetID. Rows that are not
// [timestamp, price] pairs are skipped; validity filtering is left to the caller.
func (p *RemoteHistoryProvider) FetchHistory(ctx context.Context, assetID string, days int) ([]domain.PricePoint, error) {
	params := url.Values{}
	params.Set("vs_currency", p.currency)
	params.Set("days", strconv.Itoa(days))

	var resp marketChartResponse
	endpoint := "/coins/" + url.PathEscape(assetID) + "/market_chart"
	if err := p.client.request(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}
	if resp.Prices == nil {
		return nil, domain.NewFatalNetworkError("GET "+endpoint, domain.ErrMalformedPayload)
	}

	points := make([]domain.PricePoint, 0, len(resp.Prices))
	for _, row := range resp.Prices {
		if len(row) < 2 {
			continue
		}
		points = append(points, domain.PricePoint{Timestamp: int64(row[0]), Price: row[1]})
	}
	return points, nil
}
