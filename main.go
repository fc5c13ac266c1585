package main

import (
	"context"
	"log" // Use standard log only for fatal errors before the logger is set up
	"time"

	"paperTrader/config"
	"paperTrader/internal/adapters/binanceclient"
	"paperTrader/internal/adapters/csvlog"
	"paperTrader/internal/adapters/logger"
	"paperTrader/internal/adapters/model"
	"paperTrader/internal/adapters/sqlite"
	"paperTrader/internal/adapters/upstoxclient"
	"paperTrader/internal/app"
	"paperTrader/internal/features"
	"paperTrader/internal/ports"
	"paperTrader/internal/risk"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()
	appLogger.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})
	if !cfg.ProfileKnown {
		appLogger.Warn(ctx, "Unknown risk profile, using balanced base parameters", map[string]interface{}{"profile": string(cfg.Profile)})
	}

	// 3. Load the model artifact (fatal when missing: no session without a
	// validated model and feature-column list)
	scorer, err := model.Load(cfg.ModelPath)
	if err != nil {
		log.Fatalf("FATAL: Failed to load model: %v", err)
	}
	appLogger.Info(ctx, "Model loaded", map[string]interface{}{
		"path":     cfg.ModelPath,
		"version":  scorer.Version(),
		"features": len(scorer.FeatureColumns()),
	})

	// 4. Initialize Quote Source
	var quotes ports.QuoteSource
	switch cfg.DataSource {
	case config.DataSourceBinance:
		quotes, err = binanceclient.New(binanceclient.Config{
			APIKey:          cfg.BinanceAPIKey,
			SecretKey:       cfg.BinanceSecretKey,
			UseTestnet:      cfg.BinanceTestnet,
			IntervalMinutes: cfg.BarIntervalMinutes,
			Logger:          appLogger,
		})
	default:
		quotes, err = upstoxclient.New(upstoxclient.Config{
			BaseURL:         cfg.UpstoxBaseURL,
			AccessTokenFile: cfg.UpstoxAccessTokenFile,
			Timeout:         cfg.RequestTimeout,
			IntervalMinutes: cfg.BarIntervalMinutes,
			Logger:          appLogger,
		})
	}
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize quote source: %v", err)
	}
	appLogger.Info(ctx, "Quote source initialized", map[string]interface{}{"source": string(cfg.DataSource)})

	// 5. Initialize trade sinks
	tradeLog, err := csvlog.New(cfg.TradesLogDir, time.Now(), appLogger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize trade log: %v", err)
	}
	appLogger.Info(ctx, "Trade log initialized", map[string]interface{}{"file": tradeLog.Path()})

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize trade repository: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(ctx, err, "Error closing trade repository")
		}
	}()

	// 6. Assemble the core
	session := app.NewSession()
	engine, err := app.NewEngine(app.EngineDeps{
		Params:      cfg.Params,
		HistoryBars: cfg.HistoryBars,
		Logger:      appLogger,
		Quotes:      quotes,
		Features:    features.NewEngine(cfg.Hours),
		Scorer:      scorer,
		TradeLog:    tradeLog,
		TradeRepo:   repo,
		Gate:        risk.NewGate(cfg.Limits),
		Session:     session,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize decision engine: %v", err)
	}

	service, err := app.NewTradingService(cfg, appLogger, engine, session, quotes, repo)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize trading service: %v", err)
	}

	// 7. Run the session
	if err := service.Start(ctx); err != nil {
		appLogger.Error(ctx, err, "Trading session exited with error")
		log.Fatalf("FATAL: Trading session exited with error: %v", err)
	}

	appLogger.Info(ctx, "Session finished gracefully.")
}
