package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"portfolio_tracker/internal/app/di"
	"portfolio_tracker/internal/app/router"
	"portfolio_tracker/internal/app/server"
	"portfolio_tracker/internal/feature/portfolios/adapters"
	"portfolio_tracker/internal/platform/db"
	"portfolio_tracker/internal/platform/http/handler"
)

var info = handler.ServiceInfo{Name: "portfolio-service", Title: "Portfolio Service API", Version: "1.0.0"}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// .envを読み込む
	if err := godotenv.Load(); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	cfg := di.LoadConfig("8001")

	// DB
	database, err := db.OpenDB(db.LoadConfigFromEnv(), &adapters.PortfolioModel{})
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	m, reg := di.NewMetrics()
	r := router.NewPortfolioRouter(info, m, reg, di.NewPortfolioHandler(database))

	if err := server.Run(context.Background(), ":"+cfg.Port, r); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
