package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"portfolio_tracker/internal/feature/investments/domain/entity"
	pricesentity "portfolio_tracker/internal/feature/prices/domain/entity"
	"portfolio_tracker/internal/platform/metrics"
)

const (
	// SyncRepriceLimit is the largest ticker count repriced inside the request.
	SyncRepriceLimit = 10
	// repriceConcurrency bounds how many tickers are applied at once.
	repriceConcurrency = 10

	noTickersMessage = "No ticker symbols found"
)

// QuoteSource fetches fresh quotes, dropping tickers it cannot resolve.
type QuoteSource interface {
	FetchMany(ctx context.Context, tickers []string) []pricesentity.PriceQuote
}

// QuoteCache stores fetched quotes. Failures are the cache's concern.
type QuoteCache interface {
	Set(ctx context.Context, quote pricesentity.PriceQuote, ttl time.Duration) bool
}

// TaskRunner runs work after the triggering request has returned.
type TaskRunner interface {
	Go(ctx context.Context, name string, fn func(ctx context.Context))
}

// TickerError describes a ticker whose investments could not all be updated.
type TickerError struct {
	Ticker  string
	Message string
}

// String renders the error the way it is reported to clients.
func (e TickerError) String() string {
	if e.Ticker == "" {
		return e.Message
	}
	return fmt.Sprintf("Error updating %s: %s", e.Ticker, e.Message)
}

// RepriceResult reports the outcome of a reprice run.
// A background run returns immediately with Background set and nothing else filled in.
type RepriceResult struct {
	UpdatedPrices      []pricesentity.PriceQuote
	UpdatedInvestments int
	Errors             []TickerError
	Background         bool
	Message            string
}

// RepriceUsecase revalues held investments from fresh quotes.
type RepriceUsecase struct {
	repo     InvestmentRepository
	source   QuoteSource
	cache    QuoteCache
	notifier PortfolioNotifier
	runner   TaskRunner
	metrics  *metrics.Metrics
	ttl      time.Duration
	now      func() time.Time
}

// NewRepriceUsecase creates a RepriceUsecase. Quotes are cached for ttl.
func NewRepriceUsecase(
	repo InvestmentRepository,
	source QuoteSource,
	cache QuoteCache,
	notifier PortfolioNotifier,
	runner TaskRunner,
	m *metrics.Metrics,
	ttl time.Duration,
) *RepriceUsecase {
	return &RepriceUsecase{
		repo:     repo,
		source:   source,
		cache:    cache,
		notifier: notifier,
		runner:   runner,
		metrics:  m,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Reprice fetches fresh prices for tickers and applies them to every matching investment.
// With no tickers, every ticker currently held is repriced. Runs over SyncRepriceLimit
// tickers are handed to the task runner and reported as background runs.
func (u *RepriceUsecase) Reprice(ctx context.Context, tickers []string) (RepriceResult, error) {
	ts := pricesentity.NormalizeTickers(tickers)
	if len(ts) == 0 {
		held, err := u.repo.UniqueTickers(ctx)
		if err != nil {
			return RepriceResult{}, fmt.Errorf("list held tickers: %w", err)
		}
		ts = pricesentity.NormalizeTickers(held)
	}
	if len(ts) == 0 {
		return RepriceResult{Errors: []TickerError{{Message: noTickersMessage}}}, nil
	}

	if len(ts) > SyncRepriceLimit {
		u.runner.Go(ctx, "reprice", func(ctx context.Context) {
			res := u.Run(ctx, ts)
			slog.Info("background reprice finished",
				"tickers", len(ts),
				"prices", len(res.UpdatedPrices),
				"investments", res.UpdatedInvestments,
				"errors", len(res.Errors),
			)
		})
		return RepriceResult{
			Background: true,
			Message:    fmt.Sprintf("Processing %d tickers in background", len(ts)),
		}, nil
	}
	return u.Run(ctx, ts), nil
}

// Run reprices tickers synchronously. Tickers are processed concurrently and
// independently: a failure on one ticker never rolls back another.
func (u *RepriceUsecase) Run(ctx context.Context, tickers []string) RepriceResult {
	quotes := u.source.FetchMany(ctx, tickers)

	var (
		mu      sync.Mutex
		updated int
		errs    []TickerError
		touched = make(map[string]struct{})
	)

	var g errgroup.Group
	g.SetLimit(repriceConcurrency)
	for _, q := range quotes {
		g.Go(func() error {
			n, portfolios, err := u.applyQuote(ctx, q)

			// 価格は保有の有無に関わらずキャッシュする
			u.cache.Set(ctx, q, u.ttl)

			mu.Lock()
			defer mu.Unlock()
			updated += n
			for _, p := range portfolios {
				touched[p] = struct{}{}
			}
			if err != nil {
				slog.Error("reprice failed", "ticker", q.Ticker, "error", err)
				errs = append(errs, TickerError{Ticker: q.Ticker, Message: err.Error()})
			}
			return nil
		})
	}
	_ = g.Wait()

	u.metrics.Repriced(updated)
	u.notifyPortfolios(ctx, touched)

	sort.Slice(errs, func(i, j int) bool { return errs[i].Ticker < errs[j].Ticker })
	return RepriceResult{
		UpdatedPrices:      quotes,
		UpdatedInvestments: updated,
		Errors:             errs,
	}
}

// applyQuote updates every investment in q.Ticker and returns how many were written
// together with the portfolios they belong to. Investments of one ticker are updated in order.
func (u *RepriceUsecase) applyQuote(ctx context.Context, q pricesentity.PriceQuote) (int, []string, error) {
	invs, err := u.repo.ListByTicker(ctx, q.Ticker)
	if err != nil {
		return 0, nil, fmt.Errorf("list investments: %w", err)
	}

	at := u.now()
	n := 0
	var portfolios []string
	var firstErr error
	for _, inv := range invs {
		inv.ApplyPrice(q.CurrentPrice, at)
		if err := u.repo.UpdatePrice(ctx, inv); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("update investment %s: %w", inv.ID, err)
			}
			continue
		}
		n++
		portfolios = append(portfolios, inv.PortfolioID)
	}
	return n, portfolios, firstErr
}

// notifyPortfolios pushes fresh totals for each touched portfolio. Failures are logged only.
func (u *RepriceUsecase) notifyPortfolios(ctx context.Context, portfolios map[string]struct{}) {
	var g errgroup.Group
	g.SetLimit(repriceConcurrency)
	for id := range portfolios {
		g.Go(func() error {
			invs, err := u.repo.ListByPortfolio(ctx, id)
			if err != nil {
				slog.Warn("failed to summarize portfolio", "portfolio_id", id, "error", err)
				u.metrics.NotificationFailed()
				return nil
			}
			s := entity.Summarize(id, invs)
			if err := u.notifier.NotifyValue(ctx, id, s.TotalValue, s.TotalInvestments); err != nil {
				slog.Warn("failed to notify portfolio service", "portfolio_id", id, "error", err)
				return nil
			}
			slog.Info("portfolio value synced", "portfolio_id", id, "total_value", s.TotalValue.String())
			return nil
		})
	}
	_ = g.Wait()
}
