package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"crypto_dash/internal/domain"
)

func TestHistoryGateway_FetchHistory(t *testing.T) {
	tests := []struct {
		name      string
		result    historyResult
		wantLen   int
		wantEmpty bool
	}{
		{"valid series", historyResult{points: samplePoints()}, 3, false},
		{"invalid points dropped", historyResult{points: []domain.PricePoint{
			{Timestamp: 0, Price: 10},
			{Timestamp: 1_000, Price: math.NaN()},
			{Timestamp: 2_000, Price: -1},
			{Timestamp: 3_000, Price: 12},
		}}, 1, false},
		{"nothing plottable", historyResult{points: []domain.PricePoint{{Timestamp: 0, Price: 0}}}, 0, true},
		{"empty series", historyResult{}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := NewHistoryGateway(&fakeHistory{results: []historyResult{tt.result}})
			points, err := gw.FetchHistory(context.Background(), "bitcoin", domain.Timeframe7D)

			if tt.wantEmpty {
				var histErr *domain.HistoryError
				if !errors.As(err, &histErr) || !errors.Is(err, domain.ErrEmptyHistory) {
					t.Fatalf("Expected HistoryError wrapping ErrEmptyHistory, got %v", err)
				}
				if histErr.AssetID != "bitcoin" || histErr.Days != 7 {
					t.Errorf("Expected bitcoin/7, got %s/%d", histErr.AssetID, histErr.Days)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(points) != tt.wantLen {
				t.Errorf("Expected %d points, got %d", tt.wantLen, len(points))
			}
		})
	}
}

func TestHistoryGateway_ProviderError(t *testing.T) {
	gw := NewHistoryGateway(&fakeHistory{results: []historyResult{{err: domain.ErrAssetNotFound}}})
	_, err := gw.FetchHistory(context.Background(), "unknown", domain.Timeframe30D)
	if !errors.Is(err, domain.ErrAssetNotFound) {
		t.Errorf("Expected ErrAssetNotFound to be preserved, got %v", err)
	}
}

func TestFallbackHistoryProvider(t *testing.T) {
	secondaryPoints := []domain.PricePoint{{Timestamp: 9_000, Price: 99}}

	tests := []struct {
		name         string
		primary      historyResult
		wantFallback bool
	}{
		{"primary ok", historyResult{points: samplePoints()}, false},
		{"primary error", historyResult{err: errors.New("502")}, true},
		{"primary empty", historyResult{}, true},
		{"primary invalid only", historyResult{points: []domain.PricePoint{{Timestamp: 0, Price: 1}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := &fakeHistory{results: []historyResult{tt.primary}}
			secondary := &fakeHistory{results: []historyResult{{points: secondaryPoints}}}
			fallbacks := 0
			p := NewFallbackHistoryProvider(primary, secondary, func() { fallbacks++ })

			points, err := p.FetchHistory(context.Background(), "bitcoin", 7)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if tt.wantFallback {
				if fallbacks != 1 || secondary.callCount() != 1 {
					t.Errorf("Expected one fallback, got %d (secondary calls %d)", fallbacks, secondary.callCount())
				}
				if len(points) != 1 || points[0].Price != 99 {
					t.Errorf("Expected secondary series, got %+v", points)
				}
			} else if fallbacks != 0 || secondary.callCount() != 0 {
				t.Errorf("Expected no fallback, got %d", fallbacks)
			}
		})
	}
}

func TestFallbackHistoryProvider_ContextCancelled(t *testing.T) {
	primary := &fakeHistory{results: []historyResult{{err: context.Canceled}}}
	secondary := &fakeHistory{results: []historyResult{{points: samplePoints()}}}
	p := NewFallbackHistoryProvider(primary, secondary, nil)

	if _, err := p.FetchHistory(context.Background(), "bitcoin", 7); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if secondary.callCount() != 0 {
		t.Error("Expected no fallback on cancellation")
	}
}
