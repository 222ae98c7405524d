package domain

import "testing"

func TestSortKey_NumericValue(t *testing.T) {
	change := -2.5
	a := AssetSnapshot{
		ID:                       "bitcoin",
		CurrentPrice:             45000,
		MarketCap:                900,
		TotalVolume:              30,
		PriceChangePercentage24h: &change,
	}

	tests := []struct {
		key  SortKey
		want float64
	}{
		{SortByMarketCap, 900},
		{SortByCurrentPrice, 45000},
		{SortByChange24h, -2.5},
		{SortByTotalVolume, 30},
		{SortByName, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			if got := tt.key.NumericValue(a); got != tt.want {
				t.Errorf("NumericValue() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("absent change is zero", func(t *testing.T) {
		if got := SortByChange24h.NumericValue(AssetSnapshot{ID: "x"}); got != 0 {
			t.Errorf("Expected 0, got %v", got)
		}
	})
}

func TestFilterState_Normalize(t *testing.T) {
	f := FilterState{SearchQuery: "eth", SortKey: "bogus", SortOrder: "sideways"}.Normalize()
	if f.SortKey != SortByMarketCap || f.SortOrder != SortDesc {
		t.Errorf("Expected defaults, got %s", f)
	}
	if f.SearchQuery != "eth" {
		t.Error("Normalize must not touch the query")
	}
}

func TestSortKey_NextCycles(t *testing.T) {
	k := SortByMarketCap
	for range SortKeys {
		k = k.Next()
	}
	if k != SortByMarketCap {
		t.Errorf("Expected full cycle back to market_cap, got %s", k)
	}
	if SortAsc.Toggle() != SortDesc || SortDesc.Toggle() != SortAsc {
		t.Error("Toggle should flip direction")
	}
}
