package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"portfolio_tracker/internal/app/di"
	"portfolio_tracker/internal/feature/investments/adapters"
	"portfolio_tracker/internal/platform/db"
	"portfolio_tracker/internal/shared/background"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := godotenv.Load(); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	err := run(ctx)
	cancel()
	if err != nil {
		slog.Error("reprice failed", "error", err)
		os.Exit(1)
	}
}

// run reprices every held ticker once, synchronously.
func run(ctx context.Context) error {
	cfg := di.LoadConfig("")

	database, err := db.OpenDB(db.LoadConfigFromEnv(), &adapters.InvestmentModel{})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	rdb := di.ConnectRedis(ctx)
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	m, _ := di.NewMetrics()
	svc := di.NewAssetService(cfg, database, rdb, background.NewRunner(), m)

	tickers, err := di.HeldTickers(ctx, database)
	if err != nil {
		return fmt.Errorf("load held tickers: %w", err)
	}
	if len(tickers) == 0 {
		slog.Info("no investments to reprice")
		return nil
	}

	res := svc.Reprice.Run(ctx, tickers)
	for _, e := range res.Errors {
		slog.Warn("reprice error", "ticker", e.Ticker, "message", e.Message)
	}
	slog.Info("reprice ok",
		"tickers", len(tickers),
		"prices", len(res.UpdatedPrices),
		"investments", res.UpdatedInvestments,
		"errors", len(res.Errors),
	)
	if len(res.Errors) > 0 {
		return fmt.Errorf("%d tickers failed", len(res.Errors))
	}
	return nil
}
