package domain

import "fmt"

// AssetSnapshot is one market entry as returned by /coins/markets.
// It is immutable once fetched; a new fetch replaces the whole list.
type AssetSnapshot struct {
	ID           string  `json:"id" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	Symbol       string  `json:"symbol" validate:"required"`
	Image        string  `json:"image"`
	CurrentPrice float64 `json:"current_price" validate:"gte=0"`
	MarketCap    float64 `json:"market_cap" validate:"gte=0"`
	TotalVolume  float64 `json:"total_volume" validate:"gte=0"`

	// Percentages may be null in the API response
	PriceChangePercentage24h          *float64 `json:"price_change_percentage_24h"`
	PriceChangePercentage7dInCurrency *float64 `json:"price_change_percentage_7d_in_currency"`
}

// Change24h returns the 24h change, treating an absent value as 0.
func (a AssetSnapshot) Change24h() float64 {
	if a.PriceChangePercentage24h == nil {
		return 0
	}
	return *a.PriceChangePercentage24h
}

// Change7d returns the 7d change, treating an absent value as 0.
func (a AssetSnapshot) Change7d() float64 {
	if a.PriceChangePercentage7dInCurrency == nil {
		return 0
	}
	return *a.PriceChangePercentage7dInCurrency
}

// SortKey selects the AssetSnapshot field the dashboard orders by.
type SortKey string

const (
	SortByMarketCap    SortKey = "market_cap"
	SortByCurrentPrice SortKey = "current_price"
	SortByChange24h    SortKey = "price_change_percentage_24h"
	SortByTotalVolume  SortKey = "total_volume"
	SortByName         SortKey = "name"
)

// SortKeys lists the keys in the order the filter bar presents them.
var SortKeys = []SortKey{SortByMarketCap, SortByCurrentPrice, SortByChange24h, SortByTotalVolume, SortByName}

// Label returns the display label of the sort key.
func (k SortKey) Label() string {
	switch k {
	case SortByMarketCap:
		return "Market Cap"
	case SortByCurrentPrice:
		return "Price"
	case SortByChange24h:
		return "24h Change"
	case SortByTotalVolume:
		return "Volume"
	case SortByName:
		return "Name"
	default:
		return string(k)
	}
}

// Valid reports whether k is one of the known sort keys.
func (k SortKey) Valid() bool {
	for _, known := range SortKeys {
		if k == known {
			return true
		}
	}
	return false
}

// Next cycles to the following sort key.
func (k SortKey) Next() SortKey {
	for i, known := range SortKeys {
		if k == known {
			return SortKeys[(i+1)%len(SortKeys)]
		}
	}
	return SortByMarketCap
}

// NumericValue returns the numeric field selected by k, with absent values as 0.
// It returns 0 for SortByName.
func (k SortKey) NumericValue(a AssetSnapshot) float64 {
	switch k {
	case SortByMarketCap:
		return a.MarketCap
	case SortByCurrentPrice:
		return a.CurrentPrice
	case SortByChange24h:
		return a.Change24h()
	case SortByTotalVolume:
		return a.TotalVolume
	default:
		return 0
	}
}

// SortOrder is the sort direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Toggle flips the direction.
func (o SortOrder) Toggle() SortOrder {
	if o == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// Label returns the display label of the direction.
func (o SortOrder) Label() string {
	if o == SortAsc {
		return "Ascending"
	}
	return "Descending"
}

// FilterState holds every input of the displayed-list derivation.
// All fields are always defined; the zero value is not the default, use DefaultFilterState.
type FilterState struct {
	SearchQuery   string    `json:"search_query"`
	SortKey       SortKey   `json:"sort_key"`
	SortOrder     SortOrder `json:"sort_order"`
	FavoritesOnly bool      `json:"favorites_only"`
}

// DefaultFilterState returns the initial dashboard filter: market cap, descending.
func DefaultFilterState() FilterState {
	return FilterState{
		SortKey:   SortByMarketCap,
		SortOrder: SortDesc,
	}
}

// Normalize replaces unknown sort values with defaults.
func (f FilterState) Normalize() FilterState {
	if !f.SortKey.Valid() {
		f.SortKey = SortByMarketCap
	}
	if f.SortOrder != SortAsc && f.SortOrder != SortDesc {
		f.SortOrder = SortDesc
	}
	return f
}

func (f FilterState) String() string {
	return fmt.Sprintf("query=%q sort=%s/%s favorites_only=%t", f.SearchQuery, f.SortKey, f.SortOrder, f.FavoritesOnly)
}

// MarketSummary aggregates the full asset list for the dashboard header.
type MarketSummary struct {
	TotalMarketCap float64
	TotalVolume    float64
	FavoritesCount int
	AssetCount     int
}
