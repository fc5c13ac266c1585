// Command fetch_bars dumps a symbol's recent bar history to CSV for
// offline inspection of what the feature engine will see.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"strconv"
	"time"

	"paperTrader/config"
	"paperTrader/internal/adapters/binanceclient"
	"paperTrader/internal/adapters/logger"
	"paperTrader/internal/adapters/upstoxclient"
	"paperTrader/internal/domain"
	"paperTrader/internal/ports"
)

func main() {
	symbol := flag.String("symbol", "", "symbol to fetch (required)")
	count := flag.Int("n", 200, "number of bars")
	out := flag.String("out", "bars.csv", "output CSV path")
	flag.Parse()

	if *symbol == "" {
		log.Fatal("FATAL: -symbol is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	appLogger := logger.NewStdLogger(cfg.LogLevel)

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

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	bars, err := quotes.GetLatestBars(ctx, *symbol, *count)
	if err != nil {
		log.Fatalf("FATAL: Failed to fetch bars: %v", err)
	}

	if err := writeBarsToCSV(bars, *out); err != nil {
		log.Fatalf("FATAL: Failed to write CSV: %v", err)
	}
	log.Printf("Wrote %d bars for %s to %s", len(bars), *symbol, *out)
}

func writeBarsToCSV(bars []*domain.Bar, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"timestamp", "symbol", "open", "high", "low", "close", "volume"})
	for _, b := range bars {
		writer.Write([]string{
			b.Timestamp.Format(time.RFC3339),
			b.Symbol,
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatFloat(b.Volume, 'f', -1, 64),
		})
	}
	return writer.Error()
}
