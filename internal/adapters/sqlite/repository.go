// Package sqlite implements the durable trade-history repository.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"paperTrader/internal/domain"
	"paperTrader/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.TradeRepository using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository opens (creating if needed) the trade-history database.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/paper_trader.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", filepath.Dir(dbPath), err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbPath, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database %s: %w", dbPath, err)
	}

	// SQLite serializes writers internally; a single connection avoids
	// SQLITE_BUSY churn in the Go driver.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	cfg.Logger.Info(context.Background(), "Trade-history database ready", map[string]interface{}{"path": dbPath})
	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trade_history (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		entry_time TIMESTAMP NOT NULL,
		entry_price REAL NOT NULL,
		exit_time TIMESTAMP NOT NULL,
		exit_price REAL NOT NULL,
		confidence REAL NOT NULL,
		atr_pct REAL NOT NULL,
		stop_loss REAL NOT NULL,
		take_profit REAL NOT NULL,
		pnl REAL NOT NULL,
		exit_reason TEXT NOT NULL,
		duration_minutes REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trade_history_symbol_entry_time ON trade_history (symbol, entry_time);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: %v", ports.ErrQueryFailed, err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing trade-history database")
		return r.db.Close()
	}
	return nil
}

// CreateTrade saves a closed-trade record.
func (r *Repository) CreateTrade(ctx context.Context, rec domain.TradeRecord) error {
	const query = `
	INSERT INTO trade_history (id, symbol, entry_time, entry_price, exit_time, exit_price,
	                           confidence, atr_pct, stop_loss, take_profit, pnl,
	                           exit_reason, duration_minutes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Symbol, rec.EntryTime, rec.EntryPrice, rec.ExitTime, rec.ExitPrice,
		rec.Confidence, rec.ATRPct, rec.StopLoss, rec.TakeProfit, rec.PNL,
		rec.ExitReason, rec.DurationMinutes)
	if err != nil {
		return fmt.Errorf("insert trade %s: %w", rec.ID, err)
	}
	r.logger.Debug(ctx, "Trade history created", map[string]interface{}{"tradeID": rec.ID, "symbol": rec.Symbol, "pnl": rec.PNL})
	return nil
}

// CountToday counts trades entered today, across all symbols.
func (r *Repository) CountToday(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM trade_history WHERE date(entry_time) = date('now', 'localtime')`
	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count today's trades: %w", err)
	}
	return count, nil
}

// FindBySymbol retrieves the most recent trades for a symbol, newest first.
func (r *Repository) FindBySymbol(ctx context.Context, symbol string, limit int) ([]domain.TradeRecord, error) {
	const query = `
	SELECT id, symbol, entry_time, entry_price, exit_time, exit_price,
	       confidence, atr_pct, stop_loss, take_profit, pnl,
	       exit_reason, duration_minutes
	FROM trade_history
	WHERE symbol = ? ORDER BY entry_time DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query trades for %s: %w", symbol, err)
	}
	defer rows.Close()

	records := make([]domain.TradeRecord, 0)
	for rows.Next() {
		var rec domain.TradeRecord
		if err := rows.Scan(
			&rec.ID, &rec.Symbol, &rec.EntryTime, &rec.EntryPrice, &rec.ExitTime, &rec.ExitPrice,
			&rec.Confidence, &rec.ATRPct, &rec.StopLoss, &rec.TakeProfit, &rec.PNL,
			&rec.ExitReason, &rec.DurationMinutes); err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}
	return records, nil
}
