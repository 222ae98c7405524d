// Package format converts market values into display strings.
package format

import (
	"math"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var (
	trillion = decimal.New(1, 12)
	billion  = decimal.New(1, 9)
	million  = decimal.New(1, 6)
)

// Price formats a USD price. Prices of 1 and above get 2 decimals, smaller
// prices get 6 so sub-cent assets stay readable. Zero and NaN render as "$0.00".
func Price(price float64) string {
	if price == 0 || math.IsNaN(price) {
		return "$0.00"
	}
	if price >= 1 {
		return currency(humanize.FormatFloat("#,###.##", price))
	}
	return currency(humanize.FormatFloat("#,###.######", price))
}

// MarketCap abbreviates with T/B/M suffixes.
func MarketCap(marketCap float64) string {
	if marketCap == 0 || math.IsNaN(marketCap) {
		return "$0"
	}
	d := decimal.NewFromFloat(marketCap)
	switch {
	case d.GreaterThanOrEqual(trillion):
		return "$" + d.Div(trillion).StringFixed(2) + "T"
	case d.GreaterThanOrEqual(billion):
		return "$" + d.Div(billion).StringFixed(2) + "B"
	case d.GreaterThanOrEqual(million):
		return "$" + d.Div(million).StringFixed(2) + "M"
	default:
		return "$" + grouped(d)
	}
}

// Volume abbreviates with B/M suffixes.
func Volume(volume float64) string {
	if volume == 0 || math.IsNaN(volume) {
		return "$0"
	}
	d := decimal.NewFromFloat(volume)
	switch {
	case d.GreaterThanOrEqual(billion):
		return "$" + d.Div(billion).StringFixed(2) + "B"
	case d.GreaterThanOrEqual(million):
		return "$" + d.Div(million).StringFixed(2) + "M"
	default:
		return "$" + grouped(d)
	}
}

// Percent renders a signed percentage with two decimals. nil renders as "--".
func Percent(change *float64) string {
	if change == nil || math.IsNaN(*change) {
		return "--"
	}
	d := decimal.NewFromFloat(*change)
	s := d.StringFixed(2) + "%"
	if !d.IsNegative() {
		s = "+" + s
	}
	return s
}

// Direction classifies a price change for coloring.
type Direction int

const (
	Neutral Direction = iota
	Positive
	Negative
)

// ChangeDirection returns Neutral for absent, zero or NaN changes.
func ChangeDirection(change *float64) Direction {
	if change == nil || *change == 0 || math.IsNaN(*change) {
		return Neutral
	}
	if *change > 0 {
		return Positive
	}
	return Negative
}

func currency(s string) string {
	if len(s) > 0 && s[0] == '-' {
		return "-$" + s[1:]
	}
	return "$" + s
}

// grouped renders up to 3 fraction digits with thousands separators.
func grouped(d decimal.Decimal) string {
	return humanize.Commaf(d.Round(3).InexactFloat64())
}
