// Package ratelimiter paces calls to quota-limited upstream APIs.
package ratelimiter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter は、API呼び出しなどの操作の頻度を制限するインターフェースです。
// Wait は呼び出しが許可されるまでブロックし、ctx がキャンセルされた場合はエラーを返します。
type Limiter interface {
	Wait(ctx context.Context) error
}

// LocalLimiter はプロセス内のトークンバケットで呼び出し頻度を制限します。
type LocalLimiter struct {
	limit    int
	interval time.Duration
	lim      *rate.Limiter
}

var _ Limiter = (*LocalLimiter)(nil)

// NewLocalLimiter は interval あたり limit 回まで呼び出しを許可する LocalLimiter を生成します。
// 呼び出しは interval/limit ごとに均等に間隔を空けて許可されます。
func NewLocalLimiter(limit int, interval time.Duration) *LocalLimiter {
	if limit <= 0 {
		limit = 1
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &LocalLimiter{
		limit:    limit,
		interval: interval,
		lim:      rate.NewLimiter(rate.Every(interval/time.Duration(limit)), 1),
	}
}

// Wait はトークンが取得できるまで待機します。
func (l *LocalLimiter) Wait(ctx context.Context) error {
	if r := l.lim.Reserve(); r.OK() {
		delay := r.Delay()
		if delay == 0 {
			return nil
		}
		slog.Debug("rate limit reached, waiting", "limit", l.limit, "interval", l.interval, "delay", delay)
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-t.C:
			return nil
		case <-ctx.Done():
			r.Cancel()
			return ctx.Err()
		}
	}
	return fmt.Errorf("rate limiter: reservation not possible")
}

// RedisLimiter は Redis 上の GCRA で複数プロセス間の呼び出し枠を共有します。
// Redis が利用できない場合はローカルのリミッタにフォールバックします。
type RedisLimiter struct {
	limiter  *redis_rate.Limiter
	key      string
	limit    redis_rate.Limit
	fallback *LocalLimiter
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter は key で識別される共有枠を使う RedisLimiter を生成します。
func NewRedisLimiter(rdb *redis.Client, key string, limit int, interval time.Duration) *RedisLimiter {
	fallback := NewLocalLimiter(limit, interval)
	return &RedisLimiter{
		limiter: redis_rate.NewLimiter(rdb),
		key:     key,
		limit: redis_rate.Limit{
			Rate:   fallback.limit,
			Period: fallback.interval,
			Burst:  1,
		},
		fallback: fallback,
	}
}

// Wait は共有枠が空くまで RetryAfter ずつ待機します。
func (l *RedisLimiter) Wait(ctx context.Context) error {
	for {
		res, err := l.limiter.Allow(ctx, l.key, l.limit)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("redis rate limiter unavailable, using local limiter", "key", l.key, "error", err)
			return l.fallback.Wait(ctx)
		}
		if res.Allowed > 0 {
			return nil
		}

		slog.Debug("rate limit reached, waiting", "key", l.key, "retry_after", res.RetryAfter)
		t := time.NewTimer(res.RetryAfter)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}
	}
}

// Unlimited は待機しない Limiter です。
type Unlimited struct{}

// Wait は常に即座に戻ります。
func (Unlimited) Wait(ctx context.Context) error { return ctx.Err() }
