package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio_tracker/internal/feature/prices/domain"
)

// TestMockPriceSource_Fetch_KnownTicker は既知のティッカーが基準価格の±2%以内になることを検証します。
func TestMockPriceSource_Fetch_KnownTicker(t *testing.T) {
	t.Parallel()

	s := NewMockPriceSource(0, nil)
	lo := decimal.NewFromFloat(175.25 * 0.98).Round(2)
	hi := decimal.NewFromFloat(175.25 * 1.02).Round(2)

	for i := 0; i < 50; i++ {
		q, err := s.Fetch(context.Background(), "aapl")
		require.NoError(t, err)

		assert.Equal(t, "AAPL", q.Ticker)
		assert.Equal(t, MockSourceName, q.Source)
		assert.True(t, q.CurrentPrice.GreaterThanOrEqual(lo), "price %s below %s", q.CurrentPrice, lo)
		assert.True(t, q.CurrentPrice.LessThanOrEqual(hi), "price %s above %s", q.CurrentPrice, hi)
		assert.True(t, q.Change.Equal(decimal.RequireFromString("2.15")))
		require.NotNil(t, q.PreviousClose)
		assert.True(t, q.PreviousClose.Equal(q.CurrentPrice.Sub(q.Change)))
		require.NotNil(t, q.Volume)
		assert.Equal(t, int64(50_000_000), *q.Volume)
	}
}

// TestMockPriceSource_Fetch_UnknownTicker は未知のティッカーにもランダムなクォートを返すことを検証します。
func TestMockPriceSource_Fetch_UnknownTicker(t *testing.T) {
	t.Parallel()

	s := NewMockPriceSource(0, nil)

	q, err := s.Fetch(context.Background(), "ZZZZ")
	require.NoError(t, err)

	assert.Equal(t, "ZZZZ", q.Ticker)
	assert.True(t, q.CurrentPrice.GreaterThanOrEqual(decimal.NewFromInt(10)))
	assert.True(t, q.CurrentPrice.LessThanOrEqual(decimal.NewFromInt(500)))
	require.NotNil(t, q.Volume)
	assert.GreaterOrEqual(t, *q.Volume, int64(100_000))
}

// TestMockPriceSource_Fetch_EmptyTicker は空のティッカーがエラーになることを検証します。
func TestMockPriceSource_Fetch_EmptyTicker(t *testing.T) {
	t.Parallel()

	s := NewMockPriceSource(0, nil)

	_, err := s.Fetch(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidTicker)
}

// TestMockPriceSource_Fetch_ContextCanceled は遅延中のキャンセルでエラーになることを検証します。
func TestMockPriceSource_Fetch_ContextCanceled(t *testing.T) {
	t.Parallel()

	s := NewMockPriceSource(time.Second, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Fetch(ctx, "AAPL")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestMockPriceSource_FetchMany_Batches は11件が2バッチ（並行）で取得されることを検証します。
func TestMockPriceSource_FetchMany_Batches(t *testing.T) {
	t.Parallel()

	delay := 50 * time.Millisecond
	s := NewMockPriceSource(delay, nil)
	tickers := []string{"AAPL", "GOOGL", "MSFT", "AMZN", "TSLA", "NVDA", "META", "SPY", "QQQ", "VTI", "IBM"}

	start := time.Now()
	quotes := s.FetchMany(context.Background(), tickers)
	elapsed := time.Since(start)

	require.Len(t, quotes, len(tickers))
	got := make(map[string]bool, len(quotes))
	for _, q := range quotes {
		got[q.Ticker] = true
	}
	for _, tk := range tickers {
		assert.True(t, got[tk], "missing %s", tk)
	}

	// 2 バッチ分の遅延はかかるが、逐次実行（11回分）よりは十分速い
	assert.GreaterOrEqual(t, elapsed, 2*delay)
	assert.Less(t, elapsed, 6*delay)
}

// TestMockPriceSource_FetchMany_DropsFailures は失敗したティッカーを結果から除外することを検証します。
func TestMockPriceSource_FetchMany_DropsFailures(t *testing.T) {
	t.Parallel()

	s := NewMockPriceSource(time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	quotes := s.FetchMany(ctx, []string{"AAPL", "MSFT"})
	assert.Empty(t, quotes)
}

// TestMockPriceSource_FetchMany_Dedupes は重複と空白を取り除いて取得することを検証します。
func TestMockPriceSource_FetchMany_Dedupes(t *testing.T) {
	t.Parallel()

	s := NewMockPriceSource(0, nil)

	quotes := s.FetchMany(context.Background(), []string{"aapl", "AAPL", " ", "msft"})
	assert.Len(t, quotes, 2)
}

func TestBuildMockQuote(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	q := buildMockQuote("SPY", 445.2049, 1.85, 80_000_000, ts)

	assert.Equal(t, "445.2", q.CurrentPrice.String())
	assert.Equal(t, "443.35", q.PreviousClose.String())
	assert.Equal(t, "0.42", q.ChangePercent.String())
	assert.Equal(t, ts, q.Timestamp)
}
