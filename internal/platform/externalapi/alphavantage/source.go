package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"portfolio_tracker/internal/feature/prices/domain"
	"portfolio_tracker/internal/feature/prices/domain/entity"
	"portfolio_tracker/internal/feature/prices/usecase"
	"portfolio_tracker/internal/platform/externalapi/alphavantage/dto"
	"portfolio_tracker/internal/platform/metrics"
	"portfolio_tracker/internal/shared/ratelimiter"
)

// SourceName is the Source tag on quotes produced by PriceSource.
const SourceName = "alphavantage"

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("alphavantage: api key not configured")

// PriceSource はAlpha Vantage外部APIから最新の株価を取得するPriceSource実装です。
type PriceSource struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.Limiter
	metrics *metrics.Metrics
	now     func() time.Time
}

// PriceSourceがusecase.PriceSourceを実装していることをコンパイル時に検証します。
var _ usecase.PriceSource = (*PriceSource)(nil)

// NewPriceSource は指定された設定・HTTPクライアント・レートリミッタでPriceSourceを生成します。
// limiter が nil の場合は cfg.RateLimit/cfg.RateInterval のローカルリミッタを使用します。
func NewPriceSource(cfg Config, client *http.Client, limiter ratelimiter.Limiter, m *metrics.Metrics) *PriceSource {
	if limiter == nil {
		limiter = ratelimiter.NewLocalLimiter(cfg.RateLimit, cfg.RateInterval)
	}
	return &PriceSource{
		cfg:     cfg,
		client:  client,
		limiter: limiter,
		metrics: m,
		now:     time.Now,
	}
}

// Fetch はGLOBAL_QUOTEを呼び出し、ticker の最新クォートを返します。
func (s *PriceSource) Fetch(ctx context.Context, ticker string) (entity.PriceQuote, error) {
	q, err := s.fetch(ctx, entity.NormalizeTicker(ticker))
	s.metrics.SourceFetch(SourceName, err == nil)
	return q, err
}

// FetchMany はレートリミッタの許す間隔で tickers を順に取得します。
// 取得に失敗したティッカーはログに記録して結果から除外します。
func (s *PriceSource) FetchMany(ctx context.Context, tickers []string) []entity.PriceQuote {
	ts := entity.NormalizeTickers(tickers)
	out := make([]entity.PriceQuote, 0, len(ts))
	for _, t := range ts {
		if ctx.Err() != nil {
			slog.Warn("alphavantage batch aborted", "remaining", len(ts)-len(out), "error", ctx.Err())
			break
		}
		q, err := s.Fetch(ctx, t)
		if err != nil {
			slog.Warn("alphavantage fetch failed", "ticker", t, "error", err)
			continue
		}
		out = append(out, q)
	}
	return out
}

func (s *PriceSource) fetch(ctx context.Context, ticker string) (entity.PriceQuote, error) {
	if ticker == "" {
		return entity.PriceQuote{}, domain.ErrInvalidTicker
	}
	if !s.cfg.Enabled() {
		return entity.PriceQuote{}, ErrMissingAPIKey
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return entity.PriceQuote{}, fmt.Errorf("alphavantage rate limit wait: %w", err)
	}

	q := url.Values{}
	// クエリパラメータを追加
	q.Set("function", "GLOBAL_QUOTE")
	q.Set("symbol", ticker)
	q.Set("apikey", s.cfg.APIKey)

	// URLを生成
	u := fmt.Sprintf("%s?%s", s.cfg.BaseURL, q.Encode())

	// リクエストオブジェクトを作成
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return entity.PriceQuote{}, err
	}

	// リクエストを実行
	res, err := s.client.Do(req)
	if err != nil {
		return entity.PriceQuote{}, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return entity.PriceQuote{}, fmt.Errorf("alphavantage http %d", res.StatusCode)
	}

	// JSONレスポンスをDTOにデコード
	var body dto.GlobalQuoteResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return entity.PriceQuote{}, fmt.Errorf("decode alphavantage response: %w", err)
	}
	switch {
	case body.ErrorMessage != "":
		return entity.PriceQuote{}, fmt.Errorf("alphavantage: %s", body.ErrorMessage)
	case body.Note != "":
		return entity.PriceQuote{}, fmt.Errorf("alphavantage rate limited: %s", body.Note)
	case body.Information != "":
		return entity.PriceQuote{}, fmt.Errorf("alphavantage: %s", body.Information)
	case body.GlobalQuote.Price == "":
		return entity.PriceQuote{}, fmt.Errorf("%w: alphavantage returned no quote for %s", domain.ErrPriceNotFound, ticker)
	}

	return s.toQuote(ticker, body.GlobalQuote)
}

// toQuote は文字列で表現されたクォートをドメインエンティティに変換します。
func (s *PriceSource) toQuote(ticker string, gq dto.GlobalQuote) (entity.PriceQuote, error) {
	// 現在値をパース
	price, err := decimal.NewFromString(gq.Price)
	if err != nil {
		return entity.PriceQuote{}, fmt.Errorf("parse price %q: %w", gq.Price, err)
	}

	// 前日終値をパース
	var prev *decimal.Decimal
	if gq.PreviousClose != "" {
		p, err := decimal.NewFromString(gq.PreviousClose)
		if err != nil {
			return entity.PriceQuote{}, fmt.Errorf("parse previous close %q: %w", gq.PreviousClose, err)
		}
		prev = &p
	}

	// 前日比をパース
	change := decimal.Zero
	if gq.Change != "" {
		change, err = decimal.NewFromString(gq.Change)
		if err != nil {
			return entity.PriceQuote{}, fmt.Errorf("parse change %q: %w", gq.Change, err)
		}
	}

	// 騰落率をパース（末尾の%を除去）
	pct := decimal.Zero
	if v := strings.TrimSuffix(gq.ChangePercent, "%"); v != "" {
		pct, err = decimal.NewFromString(v)
		if err != nil {
			return entity.PriceQuote{}, fmt.Errorf("parse change percent %q: %w", gq.ChangePercent, err)
		}
	}

	// 出来高をパース（0は不明として扱う）
	var volume *int64
	if gq.Volume != "" && gq.Volume != "0" {
		v, err := strconv.ParseInt(gq.Volume, 10, 64)
		if err != nil {
			return entity.PriceQuote{}, fmt.Errorf("parse volume %q: %w", gq.Volume, err)
		}
		volume = &v
	}

	return entity.PriceQuote{
		Ticker:        ticker,
		CurrentPrice:  price,
		PreviousClose: prev,
		Change:        change,
		ChangePercent: pct,
		Volume:        volume,
		Timestamp:     s.now().UTC(),
		Source:        SourceName,
	}, nil
}
