package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"portfolio_tracker/internal/app/di"
	"portfolio_tracker/internal/app/router"
	"portfolio_tracker/internal/app/server"
	"portfolio_tracker/internal/feature/investments/adapters"
	"portfolio_tracker/internal/platform/db"
	"portfolio_tracker/internal/platform/http/handler"
	"portfolio_tracker/internal/shared/background"
)

var info = handler.ServiceInfo{Name: "asset-service", Title: "Asset Service API", Version: "1.0.0"}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// .envを読み込む
	if err := godotenv.Load(); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	cfg := di.LoadConfig("8002")
	ctx := context.Background()

	// DB
	database, err := db.OpenDB(db.LoadConfigFromEnv(), &adapters.InvestmentModel{})
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	// Redis（未設定・接続不可ならインメモリキャッシュで動作）
	rdb := di.ConnectRedis(ctx)

	m, reg := di.NewMetrics()
	runner := background.NewRunner()
	svc := di.NewAssetService(cfg, database, rdb, runner, m)
	r := router.NewAssetRouter(info, m, reg, svc.Prices, svc.Investments)

	cleanups := []func(ctx context.Context) error{
		// 実行中のバックグラウンド価格更新を待つ
		runner.Wait,
	}
	if rdb != nil {
		cleanups = append(cleanups, func(context.Context) error { return rdb.Close() })
	}

	if err := server.Run(ctx, ":"+cfg.Port, r, cleanups...); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
