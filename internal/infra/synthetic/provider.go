// Package synthetic generates demonstration price series when no real
// history source is configured.
package synthetic

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"crypto_dash/internal/domain"
)

// DefaultVolatility is the total width of the uniform price jitter.
const DefaultVolatility = 0.15

// DefaultBasePrice is used for assets missing from BasePrices.
const DefaultBasePrice = 100.0

// BasePrices are the reference prices the synthetic series oscillate around.
var BasePrices = map[string]float64{
	"bitcoin":           45000,
	"ethereum":          2800,
	"tether":            1,
	"binancecoin":       320,
	"solana":            95,
	"usd-coin":          1,
	"cardano":           0.45,
	"avalanche-2":       35,
	"dogecoin":          0.08,
	"chainlink":         15,
	"matic-network":     0.85,
	"internet-computer": 12,
	"stellar":           0.12,
	"monero":            165,
	"aptos":             8.5,
	"near":              5.2,
	"hedera-hashgraph":  0.075,
	"algorand":          0.18,
	"tezos":             0.95,
	"eos":               0.65,
}

// BasePrice returns the reference price for assetID.
func BasePrice(assetID string) float64 {
	if p, ok := BasePrices[assetID]; ok {
		return p
	}
	return DefaultBasePrice
}

// Provider produces days+1 daily points ending now with
// price = base * (1 + U), U uniform in [-volatility/2, volatility/2].
type Provider struct {
	volatility float64
	now        func() time.Time

	mu  sync.Mutex // rand.Rand is not safe for concurrent use
	rng *rand.Rand
}

var _ domain.HistoryProvider = (*Provider)(nil)

// Option customizes a Provider.
type Option func(*Provider)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// WithRand replaces the random source.
func WithRand(rng *rand.Rand) Option {
	return func(p *Provider) { p.rng = rng }
}

// NewProvider creates a Provider. A non-positive volatility selects DefaultVolatility.
func NewProvider(volatility float64, opts ...Option) *Provider {
	if volatility <= 0 {
		volatility = DefaultVolatility
	}
	p := &Provider{
		volatility: volatility,
		now:        time.Now,
		rng:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FetchHistory never fails except on a cancelled context.
func (p *Provider) FetchHistory(ctx context.Context, assetID string, days int) ([]domain.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if days < 0 {
		days = 0
	}

	base := BasePrice(assetID)
	end := p.now().UnixMilli()

	p.mu.Lock()
	defer p.mu.Unlock()

	points := make([]domain.PricePoint, 0, days+1)
	for i := days; i >= 0; i-- {
		change := (p.rng.Float64() - 0.5) * p.volatility
		points = append(points, domain.PricePoint{
			Timestamp: end - int64(i)*domain.DayMillis,
			Price:     base * (1 + change),
		})
	}
	return points, nil
}
