package service

import (
	"context"
	"errors"
	"log/slog"

	"crypto_dash/internal/domain"
)

// HistoryGateway produces plottable price series for the chart.
type HistoryGateway struct {
	provider domain.HistoryProvider
	logger   *slog.Logger
}

// NewHistoryGateway wraps a provider.
func NewHistoryGateway(provider domain.HistoryProvider) *HistoryGateway {
	return &HistoryGateway{
		provider: provider,
		logger:   slog.Default().With("module", "history"),
	}
}

// FetchHistory returns the valid points of the provider's series for tf.
// Any failure, including an empty filtered series, is a *domain.HistoryError.
func (g *HistoryGateway) FetchHistory(ctx context.Context, assetID string, tf domain.Timeframe) ([]domain.PricePoint, error) {
	days := tf.Days()
	raw, err := g.provider.FetchHistory(ctx, assetID, days)
	if err != nil {
		return nil, &domain.HistoryError{AssetID: assetID, Days: days, Err: err}
	}

	points := domain.FilterValidPoints(raw)
	if dropped := len(raw) - len(points); dropped > 0 {
		g.logger.Debug("Dropped invalid price points",
			slog.String("asset", assetID),
			slog.Int("dropped", dropped),
			slog.Int("kept", len(points)))
	}
	if len(points) == 0 {
		return nil, &domain.HistoryError{AssetID: assetID, Days: days, Err: domain.ErrEmptyHistory}
	}
	return points, nil
}

// FallbackHistoryProvider serves history from primary and switches to
// secondary whenever primary fails or yields nothing plottable.
type FallbackHistoryProvider struct {
	primary    domain.HistoryProvider
	secondary  domain.HistoryProvider
	onFallback func() // may be nil
	logger     *slog.Logger
}

var _ domain.HistoryProvider = (*FallbackHistoryProvider)(nil)

// NewFallbackHistoryProvider creates a FallbackHistoryProvider. onFallback is
// invoked each time secondary serves a request.
func NewFallbackHistoryProvider(primary, secondary domain.HistoryProvider, onFallback func()) *FallbackHistoryProvider {
	return &FallbackHistoryProvider{
		primary:    primary,
		secondary:  secondary,
		onFallback: onFallback,
		logger:     slog.Default().With("module", "history"),
	}
}

func (p *FallbackHistoryProvider) FetchHistory(ctx context.Context, assetID string, days int) ([]domain.PricePoint, error) {
	raw, err := p.primary.FetchHistory(ctx, assetID, days)
	if err == nil && len(domain.FilterValidPoints(raw)) > 0 {
		return raw, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	if err == nil {
		err = domain.ErrEmptyHistory
	}

	p.logger.Warn("History source unavailable, using synthetic series",
		slog.String("asset", assetID),
		slog.Int("days", days),
		slog.Any("error", err))
	if p.onFallback != nil {
		p.onFallback()
	}
	return p.secondary.FetchHistory(ctx, assetID, days)
}
