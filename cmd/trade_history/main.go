// Command trade_history lists a symbol's recent closed trades from the
// trade-history database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"paperTrader/config"
	"paperTrader/internal/adapters/logger"
	"paperTrader/internal/adapters/sqlite"
)

func main() {
	symbol := flag.String("symbol", "", "symbol to list trades for (required)")
	count := flag.Int("n", 20, "maximum trades to list")
	flag.Parse()

	if *symbol == "" {
		log.Fatal("FATAL: -symbol is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: logger.NewStdLogger(logger.LevelWarn),
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to open trade history: %v", err)
	}
	defer repo.Close()

	trades, err := repo.FindBySymbol(context.Background(), *symbol, *count)
	if err != nil {
		log.Fatalf("FATAL: Failed to query trades: %v", err)
	}
	if len(trades) == 0 {
		fmt.Printf("No trades recorded for %s\n", *symbol)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ENTRY TIME\tEXIT TIME\tENTRY\tEXIT\tPNL\tREASON\tCONF\tMIN")
	for _, tr := range trades {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%+.2f\t%s\t%.2f\t%.1f\n",
			tr.EntryTime, tr.ExitTime, tr.EntryPrice, tr.ExitPrice,
			tr.PNL, tr.ExitReason, tr.Confidence, tr.DurationMinutes)
	}
	w.Flush()
}
