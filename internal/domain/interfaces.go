package domain

import "context"

// MarketDataSource fetches the curated asset list.
type MarketDataSource interface {
	FetchPopularAssets(ctx context.Context, currency string) ([]AssetSnapshot, error)
}

// HistoryProvider produces a raw price series for one asset.
// Implementations need not filter invalid points.
type HistoryProvider interface {
	FetchHistory(ctx context.Context, assetID string, days int) ([]PricePoint, error)
}

// KeyValueStore persists JSON-serializable values by key.
// Failures are handled inside the store; callers only learn whether a value was found.
type KeyValueStore interface {
	Save(key string, value any)
	Load(key string, dst any) bool
	Remove(key string)
}

// Storage keys
const (
	KeyFavorites = "crypto_favorites"
	KeySettings  = "crypto_settings"
)
