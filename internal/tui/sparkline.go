package tui

import (
	"strings"

	"crypto_dash/internal/domain"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders prices as block characters, resampled to at most width columns.
func Sparkline(points []domain.PricePoint, width int) string {
	if len(points) == 0 || width <= 0 {
		return ""
	}

	cols := resample(points, width)
	lo, hi := cols[0], cols[0]
	for _, v := range cols {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	var b strings.Builder
	for _, v := range cols {
		idx := len(sparkBlocks) / 2
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

// resample averages points into width buckets. Shorter series are returned as is.
func resample(points []domain.PricePoint, width int) []float64 {
	if len(points) <= width {
		out := make([]float64, len(points))
		for i, p := range points {
			out[i] = p.Price
		}
		return out
	}

	out := make([]float64, width)
	for i := range out {
		start := i * len(points) / width
		end := (i + 1) * len(points) / width
		var sum float64
		for _, p := range points[start:end] {
			sum += p.Price
		}
		out[i] = sum / float64(end-start)
	}
	return out
}
