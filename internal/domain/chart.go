package domain

import (
	"fmt"
	"math"
)

// DayMillis is the spacing of one daily price point.
const DayMillis int64 = 24 * 60 * 60 * 1000

// PricePoint is one sample of a price history series.
type PricePoint struct {
	Timestamp int64   `json:"timestamp"` // epoch ms
	Price     float64 `json:"price"`
}

// Valid reports whether the point can be plotted.
// Zero timestamps, NaN and non-positive prices are rejected.
func (p PricePoint) Valid() bool {
	return p.Timestamp != 0 && !math.IsNaN(p.Price) && !math.IsInf(p.Price, 0) && p.Price > 0
}

// FilterValidPoints returns the valid points of raw in their original order.
func FilterValidPoints(raw []PricePoint) []PricePoint {
	out := make([]PricePoint, 0, len(raw))
	for _, p := range raw {
		if p.Valid() {
			out = append(out, p)
		}
	}
	return out
}

// Timeframe is a chart window in days.
type Timeframe int

const (
	Timeframe1D   Timeframe = 1
	Timeframe7D   Timeframe = 7
	Timeframe30D  Timeframe = 30
	Timeframe90D  Timeframe = 90
	Timeframe365D Timeframe = 365
)

// Timeframes lists the selectable windows in display order.
var Timeframes = []Timeframe{Timeframe1D, Timeframe7D, Timeframe30D, Timeframe90D, Timeframe365D}

// DefaultTimeframe is the window a new chart session opens with.
const DefaultTimeframe = Timeframe7D

// Days returns the window length in days.
func (t Timeframe) Days() int { return int(t) }

// Valid reports whether t is a selectable window.
func (t Timeframe) Valid() bool {
	for _, tf := range Timeframes {
		if t == tf {
			return true
		}
	}
	return false
}

// Label returns the short button label ("7D", "1Y").
func (t Timeframe) Label() string {
	if t == Timeframe365D {
		return "1Y"
	}
	return fmt.Sprintf("%dD", int(t))
}

// ChartPhase is the state of a chart session.
type ChartPhase int

const (
	PhaseIdle ChartPhase = iota // no session
	PhaseLoading
	PhaseTransitioning
	PhaseReady
	PhaseError
	PhaseNoData
)

func (p ChartPhase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseLoading:
		return "LOADING"
	case PhaseTransitioning:
		return "TRANSITIONING"
	case PhaseReady:
		return "READY"
	case PhaseError:
		return "ERROR"
	case PhaseNoData:
		return "NO_DATA"
	default:
		return "UNKNOWN"
	}
}

// ChartStats are derived from the points of a ready session.
type ChartStats struct {
	Lowest  float64
	Highest float64
	Current float64
}

// ComputeChartStats returns lowest, highest and last price of points.
// ok is false for an empty series.
func ComputeChartStats(points []PricePoint) (stats ChartStats, ok bool) {
	if len(points) == 0 {
		return ChartStats{}, false
	}
	stats.Lowest = math.Inf(1)
	stats.Highest = math.Inf(-1)
	for _, p := range points {
		stats.Lowest = math.Min(stats.Lowest, p.Price)
		stats.Highest = math.Max(stats.Highest, p.Price)
	}
	stats.Current = points[len(points)-1].Price
	return stats, true
}

// ChartSession is the state of the chart for one selected asset.
// Controllers hand out copies; Points is never mutated after publication.
type ChartSession struct {
	AssetID    string
	AssetName  string
	Timeframe  Timeframe
	Points     []PricePoint
	Phase      ChartPhase
	RetryCount int
	MaxRetries int
	Err        error

	// Request identifies the trigger that produced this state. Later triggers
	// carry larger values.
	Request uint64
}

// AttemptsRemaining is the number of retries left before the session stops
// retrying on its own.
func (s ChartSession) AttemptsRemaining() int {
	if n := s.MaxRetries - s.RetryCount; n > 0 {
		return n
	}
	return 0
}

// RetryOffered reports whether the error view should show a retry button.
func (s ChartSession) RetryOffered() bool {
	return s.Phase == PhaseError && s.RetryCount < s.MaxRetries
}

// Stats returns the derived statistics. They exist only in the ready phase.
func (s ChartSession) Stats() (ChartStats, bool) {
	if s.Phase != PhaseReady {
		return ChartStats{}, false
	}
	return ComputeChartStats(s.Points)
}
