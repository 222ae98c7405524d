package synthetic

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"crypto_dash/internal/domain"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestFetchHistory_Bitcoin7D(t *testing.T) {
	p := NewProvider(0.15, WithClock(fixedClock), WithRand(rand.New(rand.NewPCG(42, 7))))

	points, err := p.FetchHistory(context.Background(), "bitcoin", 7)
	if err != nil {
		t.Fatalf("FetchHistory failed: %v", err)
	}
	if len(points) != 8 {
		t.Fatalf("Expected 8 points, got %d", len(points))
	}

	lo, hi := 45000*0.925, 45000*1.075
	for i, pt := range points {
		if pt.Price < lo || pt.Price > hi {
			t.Errorf("point %d price %f outside [%f, %f]", i, pt.Price, lo, hi)
		}
		if !pt.Valid() {
			t.Errorf("point %d invalid: %+v", i, pt)
		}
		if i > 0 {
			if d := pt.Timestamp - points[i-1].Timestamp; d != 86_400_000 {
				t.Errorf("point %d spacing %d, want 86400000", i, d)
			}
		}
	}
	if last := points[len(points)-1].Timestamp; last != fixedClock().UnixMilli() {
		t.Errorf("Expected series to end now, got %d", last)
	}
}

func TestFetchHistory_Timeframes(t *testing.T) {
	p := NewProvider(0, WithClock(fixedClock))

	for _, tf := range domain.Timeframes {
		t.Run(tf.Label(), func(t *testing.T) {
			points, err := p.FetchHistory(context.Background(), "solana", tf.Days())
			if err != nil {
				t.Fatalf("FetchHistory failed: %v", err)
			}
			if len(points) != tf.Days()+1 {
				t.Errorf("Expected %d points, got %d", tf.Days()+1, len(points))
			}
		})
	}
}

func TestFetchHistory_UnknownAssetUsesDefault(t *testing.T) {
	p := NewProvider(0.15, WithClock(fixedClock))

	points, _ := p.FetchHistory(context.Background(), "not-a-coin", 30)
	for _, pt := range points {
		if pt.Price < DefaultBasePrice*0.925 || pt.Price > DefaultBasePrice*1.075 {
			t.Fatalf("price %f outside default band", pt.Price)
		}
	}
}

func TestFetchHistory_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewProvider(0.15).FetchHistory(ctx, "bitcoin", 7); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestBasePrice(t *testing.T) {
	tests := []struct {
		id   string
		want float64
	}{
		{"bitcoin", 45000},
		{"ethereum", 2800},
		{"hedera-hashgraph", 0.075},
		{"unknown", 100},
	}
	for _, tt := range tests {
		if got := BasePrice(tt.id); got != tt.want {
			t.Errorf("BasePrice(%s) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
