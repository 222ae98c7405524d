package domain

import (
	"math"
	"testing"
)

func TestPricePoint_Valid(t *testing.T) {
	tests := []struct {
		name  string
		point PricePoint
		want  bool
	}{
		{"normal", PricePoint{Timestamp: 1700000000000, Price: 45000}, true},
		{"zero timestamp", PricePoint{Timestamp: 0, Price: 45000}, false},
		{"zero price", PricePoint{Timestamp: 1, Price: 0}, false},
		{"negative price", PricePoint{Timestamp: 1, Price: -3}, false},
		{"NaN price", PricePoint{Timestamp: 1, Price: math.NaN()}, false},
		{"tiny price", PricePoint{Timestamp: 1, Price: 0.000001}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.point.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterValidPoints_KeepsOrder(t *testing.T) {
	raw := []PricePoint{
		{Timestamp: 3, Price: 30},
		{Timestamp: 0, Price: 10},
		{Timestamp: 1, Price: 10},
		{Timestamp: 2, Price: math.NaN()},
		{Timestamp: 4, Price: 40},
	}

	got := FilterValidPoints(raw)
	if len(got) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(got))
	}
	if got[0].Timestamp != 3 || got[1].Timestamp != 1 || got[2].Timestamp != 4 {
		t.Errorf("Order not preserved: %+v", got)
	}
}

func TestComputeChartStats(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if _, ok := ComputeChartStats(nil); ok {
			t.Error("Expected no stats for empty series")
		}
	})

	t.Run("series", func(t *testing.T) {
		stats, ok := ComputeChartStats([]PricePoint{
			{Timestamp: 1, Price: 12},
			{Timestamp: 2, Price: 8},
			{Timestamp: 3, Price: 20},
			{Timestamp: 4, Price: 15},
		})
		if !ok {
			t.Fatal("Expected stats")
		}
		if stats.Lowest != 8 || stats.Highest != 20 || stats.Current != 15 {
			t.Errorf("Unexpected stats %+v", stats)
		}
	})
}

func TestChartSession_Attempts(t *testing.T) {
	s := ChartSession{Phase: PhaseError, RetryCount: 1, MaxRetries: 3}
	if s.AttemptsRemaining() != 2 || !s.RetryOffered() {
		t.Errorf("Expected 2 attempts remaining with retry offered, got %d/%v", s.AttemptsRemaining(), s.RetryOffered())
	}

	s.RetryCount = 3
	if s.AttemptsRemaining() != 0 {
		t.Errorf("Expected 0 attempts remaining, got %d", s.AttemptsRemaining())
	}
	if s.RetryOffered() {
		t.Error("Retry button should not be offered once attempts are exhausted")
	}

	if _, ok := s.Stats(); ok {
		t.Error("Stats must only exist in READY phase")
	}
}

func TestTimeframe(t *testing.T) {
	if !Timeframe30D.Valid() || Timeframe(14).Valid() {
		t.Error("Unexpected timeframe validity")
	}
	if Timeframe365D.Label() != "1Y" || Timeframe7D.Label() != "7D" {
		t.Errorf("Unexpected labels %s %s", Timeframe365D.Label(), Timeframe7D.Label())
	}
}
