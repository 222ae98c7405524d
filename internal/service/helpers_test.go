package service

import (
	"context"
	"sync"

	"crypto_dash/internal/domain"
	"crypto_dash/internal/infra/storage"
)

func newMemoryStore() *storage.KV {
	return storage.NewKV(storage.NewMemoryBackend())
}

func pct(v float64) *float64 { return &v }

func testAssets() []domain.AssetSnapshot {
	return []domain.AssetSnapshot{
		{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc", CurrentPrice: 45000, MarketCap: 880e9, TotalVolume: 30e9, PriceChangePercentage24h: pct(2.5)},
		{ID: "ethereum", Name: "Ethereum", Symbol: "eth", CurrentPrice: 2800, MarketCap: 330e9, TotalVolume: 15e9, PriceChangePercentage24h: pct(-1.5)},
		{ID: "cardano", Name: "Cardano", Symbol: "ada", CurrentPrice: 0.45, MarketCap: 16e9, TotalVolume: 0.5e9},
	}
}

// fakeMarket is a scripted MarketDataSource.
type fakeMarket struct {
	mu        sync.Mutex
	assets    []domain.AssetSnapshot
	err       error
	calls     int
	globalCap float64
	globalErr error
}

func (f *fakeMarket) FetchPopularAssets(ctx context.Context, currency string) ([]domain.AssetSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.assets, nil
}

type fakeGlobalMarket struct {
	*fakeMarket
}

func (f fakeGlobalMarket) FetchGlobalMarketCap(ctx context.Context, currency string) (float64, error) {
	return f.globalCap, f.globalErr
}

// fakeHistory returns scripted results in order; the last one repeats.
type fakeHistory struct {
	mu      sync.Mutex
	results []historyResult
	calls   []string
}

type historyResult struct {
	points []domain.PricePoint
	err    error
}

func (f *fakeHistory) FetchHistory(ctx context.Context, assetID string, days int) ([]domain.PricePoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, assetID)
	i := len(f.calls) - 1
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	r := f.results[i]
	return r.points, r.err
}

func (f *fakeHistory) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func samplePoints() []domain.PricePoint {
	return []domain.PricePoint{
		{Timestamp: 1_000, Price: 10},
		{Timestamp: 2_000, Price: 12},
		{Timestamp: 3_000, Price: 11},
	}
}
