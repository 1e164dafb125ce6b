package adapters

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"portfolio_tracker/internal/feature/prices/domain"
	"portfolio_tracker/internal/feature/prices/domain/entity"
	"portfolio_tracker/internal/feature/prices/usecase"
	"portfolio_tracker/internal/platform/metrics"
)

const (
	// MockSourceName is the Source tag on quotes produced by MockPriceSource.
	MockSourceName = "mock"
	// DefaultMockDelay is the simulated upstream latency used by the services.
	DefaultMockDelay = 100 * time.Millisecond
	// mockBatchSize bounds how many tickers are fetched concurrently.
	mockBatchSize = 10
	// mockVariation is the maximum relative deviation from the base price.
	mockVariation = 0.02
)

// baseQuote is a reference price for a well-known ticker.
type baseQuote struct {
	price  float64
	change float64
	volume int64
}

var mockBaseQuotes = map[string]baseQuote{
	"AAPL":  {price: 175.25, change: 2.15, volume: 50_000_000},
	"GOOGL": {price: 2750.80, change: -15.30, volume: 25_000_000},
	"MSFT":  {price: 338.50, change: 5.75, volume: 35_000_000},
	"AMZN":  {price: 3285.04, change: -22.15, volume: 28_000_000},
	"TSLA":  {price: 850.25, change: 18.90, volume: 45_000_000},
	"NVDA":  {price: 450.75, change: 12.30, volume: 40_000_000},
	"META":  {price: 485.60, change: -8.45, volume: 30_000_000},
	"SPY":   {price: 445.20, change: 1.85, volume: 80_000_000},
	"QQQ":   {price: 375.30, change: 3.25, volume: 60_000_000},
	"VTI":   {price: 235.45, change: 0.85, volume: 15_000_000},
}

// MockPriceSource synthesizes plausible quotes without any network access.
// Known tickers vary within ±2% of a base price; unknown tickers get a random quote.
type MockPriceSource struct {
	delay   time.Duration
	now     func() time.Time
	metrics *metrics.Metrics

	mu  sync.Mutex
	rng *rand.Rand
}

var _ usecase.PriceSource = (*MockPriceSource)(nil)

// NewMockPriceSource creates a mock source that sleeps for delay before every quote.
func NewMockPriceSource(delay time.Duration, m *metrics.Metrics) *MockPriceSource {
	return &MockPriceSource{
		delay:   delay,
		now:     time.Now,
		metrics: m,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Fetch returns a synthesized quote for ticker.
func (s *MockPriceSource) Fetch(ctx context.Context, ticker string) (entity.PriceQuote, error) {
	t := entity.NormalizeTicker(ticker)
	if t == "" {
		return entity.PriceQuote{}, domain.ErrInvalidTicker
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			s.metrics.SourceFetch(MockSourceName, false)
			return entity.PriceQuote{}, ctx.Err()
		}
	}

	var price, change float64
	var volume int64
	s.mu.Lock()
	if base, ok := mockBaseQuotes[t]; ok {
		price = base.price * (1 + (s.rng.Float64()*2-1)*mockVariation)
		change = base.change
		volume = base.volume
	} else {
		price = 10 + s.rng.Float64()*490
		change = s.rng.Float64()*20 - 10
		volume = 100_000 + s.rng.Int64N(49_900_000)
	}
	s.mu.Unlock()

	q := buildMockQuote(t, price, change, volume, s.now().UTC())
	s.metrics.SourceFetch(MockSourceName, true)
	return q, nil
}

// FetchMany fetches tickers in batches of ten, each batch concurrently.
// Failed tickers are logged and left out of the result.
func (s *MockPriceSource) FetchMany(ctx context.Context, tickers []string) []entity.PriceQuote {
	ts := entity.NormalizeTickers(tickers)
	out := make([]entity.PriceQuote, 0, len(ts))

	for start := 0; start < len(ts); start += mockBatchSize {
		end := min(start+mockBatchSize, len(ts))
		batch := ts[start:end]
		results := make([]*entity.PriceQuote, len(batch))

		var g errgroup.Group
		for i, t := range batch {
			g.Go(func() error {
				q, err := s.Fetch(ctx, t)
				if err != nil {
					slog.Warn("mock price fetch failed", "ticker", t, "error", err)
					return nil
				}
				results[i] = &q
				return nil
			})
		}
		_ = g.Wait()

		for _, q := range results {
			if q != nil {
				out = append(out, *q)
			}
		}
	}
	return out
}

// buildMockQuote rounds the synthesized numbers to cents and derives the previous close.
func buildMockQuote(ticker string, price, change float64, volume int64, ts time.Time) entity.PriceQuote {
	cur := decimal.NewFromFloat(price).Round(2)
	chg := decimal.NewFromFloat(change).Round(2)
	prev := cur.Sub(chg)

	pct := decimal.Zero
	if prev.IsPositive() {
		pct = chg.Div(prev).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return entity.PriceQuote{
		Ticker:        ticker,
		CurrentPrice:  cur,
		PreviousClose: &prev,
		Change:        chg,
		ChangePercent: pct,
		Volume:        &volume,
		Timestamp:     ts,
		Source:        MockSourceName,
	}
}
