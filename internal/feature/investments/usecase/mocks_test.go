package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"portfolio_tracker/internal/feature/investments/domain"
	"portfolio_tracker/internal/feature/investments/domain/entity"
	pricesentity "portfolio_tracker/internal/feature/prices/domain/entity"
)

// fakeRepo はInvestmentRepositoryのインメモリ実装です。
// *Func フィールドを設定すると該当メソッドの挙動を差し替えられます。
type fakeRepo struct {
	mu   sync.Mutex
	byID map[string]entity.Investment

	CreateFunc        func(ctx context.Context, inv entity.Investment) error
	UpdateFunc        func(ctx context.Context, inv entity.Investment) error
	UpdatePriceFunc   func(ctx context.Context, inv entity.Investment) error
	ListByTickerFunc  func(ctx context.Context, ticker string) ([]entity.Investment, error)
	UniqueTickersFunc func(ctx context.Context) ([]string, error)

	ListLimit        int
	UpdateCalls      int
	UpdatePriceCalls int
}

var _ InvestmentRepository = (*fakeRepo)(nil)

func newFakeRepo(invs ...entity.Investment) *fakeRepo {
	r := &fakeRepo{byID: make(map[string]entity.Investment)}
	for _, inv := range invs {
		r.byID[inv.ID] = inv
	}
	return r
}

func (r *fakeRepo) Create(ctx context.Context, inv entity.Investment) error {
	if r.CreateFunc != nil {
		return r.CreateFunc(ctx, inv)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[inv.ID]; ok {
		return domain.ErrInvestmentExists
	}
	r.byID[inv.ID] = inv
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (entity.Investment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.byID[id]
	if !ok {
		return entity.Investment{}, domain.ErrInvestmentNotFound
	}
	return inv, nil
}

func (r *fakeRepo) all() []entity.Investment {
	out := make([]entity.Investment, 0, len(r.byID))
	for _, inv := range r.byID {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeRepo) List(_ context.Context, limit int) ([]entity.Investment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ListLimit = limit
	out := r.all()
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepo) ListByPortfolio(_ context.Context, portfolioID string) ([]entity.Investment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Investment
	for _, inv := range r.all() {
		if inv.PortfolioID == portfolioID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListByTicker(ctx context.Context, ticker string) ([]entity.Investment, error) {
	if r.ListByTickerFunc != nil {
		return r.ListByTickerFunc(ctx, ticker)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Investment
	for _, inv := range r.all() {
		if inv.TickerSymbol == ticker {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *fakeRepo) UniqueTickers(ctx context.Context) ([]string, error) {
	if r.UniqueTickersFunc != nil {
		return r.UniqueTickersFunc(ctx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, inv := range r.all() {
		if !seen[inv.TickerSymbol] {
			seen[inv.TickerSymbol] = true
			out = append(out, inv.TickerSymbol)
		}
	}
	return out, nil
}

func (r *fakeRepo) Update(ctx context.Context, inv entity.Investment) error {
	r.mu.Lock()
	r.UpdateCalls++
	r.mu.Unlock()
	if r.UpdateFunc != nil {
		return r.UpdateFunc(ctx, inv)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[inv.ID]; !ok {
		return domain.ErrInvestmentNotFound
	}
	r.byID[inv.ID] = inv
	return nil
}

func (r *fakeRepo) UpdatePrice(ctx context.Context, inv entity.Investment) error {
	r.mu.Lock()
	r.UpdatePriceCalls++
	r.mu.Unlock()
	if r.UpdatePriceFunc != nil {
		if err := r.UpdatePriceFunc(ctx, inv); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[inv.ID]; !ok {
		return domain.ErrInvestmentNotFound
	}
	r.byID[inv.ID] = inv
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrInvestmentNotFound
	}
	delete(r.byID, id)
	return nil
}

// notification は通知内容の記録です。
type notification struct {
	PortfolioID string
	TotalValue  decimal.Decimal
	Count       int
}

// mockNotifier はPortfolioNotifierのモック実装です。
type mockNotifier struct {
	mu    sync.Mutex
	calls []notification
	err   error
}

func (m *mockNotifier) NotifyValue(_ context.Context, portfolioID string, totalValue decimal.Decimal, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, notification{PortfolioID: portfolioID, TotalValue: totalValue, Count: count})
	return m.err
}

func (m *mockNotifier) byPortfolio() map[string]notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]notification, len(m.calls))
	for _, c := range m.calls {
		out[c.PortfolioID] = c
	}
	return out
}

// tableSource は固定価格表から応答するQuoteSourceです。表にないティッカーは解決できません。
type tableSource struct {
	mu     sync.Mutex
	prices map[string]string
	asked  [][]string
}

func (s *tableSource) FetchMany(_ context.Context, tickers []string) []pricesentity.PriceQuote {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asked = append(s.asked, tickers)
	var out []pricesentity.PriceQuote
	for _, t := range tickers {
		p, ok := s.prices[t]
		if !ok {
			continue
		}
		out = append(out, pricesentity.PriceQuote{
			Ticker:       t,
			CurrentPrice: decimal.RequireFromString(p),
			Timestamp:    time.Date(2025, 1, 15, 14, 0, 0, 0, time.UTC),
			Source:       "test",
		})
	}
	return out
}

// recordingCache はSetされたクォートを記録するQuoteCacheです。
type recordingCache struct {
	mu  sync.Mutex
	set map[string]pricesentity.PriceQuote
	ttl time.Duration
}

func (c *recordingCache) Set(_ context.Context, q pricesentity.PriceQuote, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.set == nil {
		c.set = make(map[string]pricesentity.PriceQuote)
	}
	c.set[q.Ticker] = q
	c.ttl = ttl
	return true
}

// capturingRunner はバックグラウンドタスクを即時実行せずに保持するTaskRunnerです。
type capturingRunner struct {
	names []string
	tasks []func(ctx context.Context)
}

func (r *capturingRunner) Go(_ context.Context, name string, fn func(ctx context.Context)) {
	r.names = append(r.names, name)
	r.tasks = append(r.tasks, fn)
}

var errBoom = errors.New("boom")

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func holding(id, portfolioID, ticker, qty, purchase string) entity.Investment {
	return entity.Investment{
		ID:             id,
		PortfolioID:    portfolioID,
		TickerSymbol:   ticker,
		InstrumentType: entity.InstrumentStock,
		Quantity:       dec(qty),
		PurchasePrice:  dec(purchase),
		PurchaseDate:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}
