package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"paperTrader/internal/adapters/logger" // Import the logger package for LogLevel
)

// DataSource selects which quote-source adapter feeds the loop.
type DataSource string

const (
	DataSourceUpstox  DataSource = "upstox"
	DataSourceBinance DataSource = "binance"
)

// Config holds all application configuration. Resolved once at startup and
// treated as read-only afterwards.
type Config struct {
	// Data source
	DataSource DataSource

	// Upstox API
	UpstoxBaseURL         string
	UpstoxAccessTokenFile string

	// Binance API (alternative data source)
	BinanceAPIKey    string
	BinanceSecretKey string
	BinanceTestnet   bool

	// Universe
	Symbols       []string
	WatchlistPath string // Optional YAML watchlist; empty means defaults
	MaxSymbols    int

	// Risk profile and derived parameter sets
	Profile        Profile
	ProfileKnown   bool // False when RISK_PROFILE was unrecognized and fell back
	Params         TradingParams
	Limits         RiskLimits

	// Session timing
	Hours              TradingHours
	PollInterval       time.Duration // ~one bar period
	IdleInterval       time.Duration // Re-check cadence outside trading hours
	BarIntervalMinutes int

	// Data depth
	HistoryBars int // Bars requested per history fetch

	// Artifacts and storage
	ModelPath    string
	DBPath       string
	TradesLogDir string

	// Logging
	LogLevel logger.LogLevel

	// Network
	RequestTimeout time.Duration
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []string // Collect validation errors

	// Data source
	switch DataSource(strings.ToLower(getEnv("DATA_SOURCE", string(DataSourceUpstox)))) {
	case DataSourceUpstox:
		cfg.DataSource = DataSourceUpstox
	case DataSourceBinance:
		cfg.DataSource = DataSourceBinance
	default:
		errs = append(errs, "DATA_SOURCE must be 'upstox' or 'binance'")
	}

	cfg.UpstoxBaseURL = getEnv("UPSTOX_BASE_URL", "https://api.upstox.com/v2")
	cfg.UpstoxAccessTokenFile = getEnv("UPSTOX_ACCESS_TOKEN_FILE", "./access_token.txt")
	cfg.BinanceAPIKey = getEnv("BINANCE_API_KEY", "")
	cfg.BinanceSecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.BinanceTestnet = getEnvAsBool("BINANCE_TESTNET", true)

	if cfg.DataSource == DataSourceUpstox && cfg.UpstoxAccessTokenFile == "" {
		errs = append(errs, "UPSTOX_ACCESS_TOKEN_FILE must be set for the upstox data source")
	}

	// Universe
	cfg.WatchlistPath = getEnv("WATCHLIST_PATH", "")
	cfg.MaxSymbols = getEnvAsInt("MAX_SYMBOLS", 10)
	if cfg.MaxSymbols <= 0 {
		errs = append(errs, "MAX_SYMBOLS must be positive")
	}
	symbols, err := LoadWatchlist(cfg.WatchlistPath, cfg.MaxSymbols)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid watchlist: %v", err))
	}
	cfg.Symbols = symbols

	// Risk profile: overlay resolution, explicit fallback to the base set
	profileName := getEnv("RISK_PROFILE", string(ProfileBalanced))
	cfg.Profile, cfg.ProfileKnown = ParseProfile(profileName)
	cfg.Params = ResolveParams(cfg.Profile)
	cfg.Limits = ResolveLimits(cfg.Profile)

	// Trading hours (local wall clock)
	cfg.Hours, err = loadHours()
	if err != nil {
		errs = append(errs, err.Error())
	}

	// Session timing
	cfg.BarIntervalMinutes = getEnvAsInt("BAR_INTERVAL_MINUTES", 5)
	if cfg.BarIntervalMinutes <= 0 {
		errs = append(errs, "BAR_INTERVAL_MINUTES must be positive")
	}
	pollSeconds := getEnvAsInt("POLL_INTERVAL_SECONDS", cfg.BarIntervalMinutes*60)
	if pollSeconds <= 0 {
		errs = append(errs, "POLL_INTERVAL_SECONDS must be positive")
	}
	cfg.PollInterval = time.Duration(pollSeconds) * time.Second

	idleSeconds := getEnvAsInt("IDLE_INTERVAL_SECONDS", 60)
	if idleSeconds <= 0 {
		errs = append(errs, "IDLE_INTERVAL_SECONDS must be positive")
	}
	cfg.IdleInterval = time.Duration(idleSeconds) * time.Second

	// Data depth
	cfg.HistoryBars = getEnvAsInt("HISTORY_BARS", 200)
	if cfg.HistoryBars < 100 {
		errs = append(errs, "HISTORY_BARS must be at least 100 (feature minimum)")
	}

	// Artifacts and storage
	cfg.ModelPath = getEnv("MODEL_PATH", "./models/model_v3.json")
	if cfg.ModelPath == "" {
		errs = append(errs, "MODEL_PATH must be set")
	}
	cfg.DBPath = getEnv("DB_PATH", "./data/paper_trader.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}
	cfg.TradesLogDir = getEnv("TRADES_LOG_DIR", "./logs")
	if cfg.TradesLogDir == "" {
		errs = append(errs, "TRADES_LOG_DIR must be set")
	}

	// Logging
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))

	// Network
	timeoutSeconds := getEnvAsInt("REQUEST_TIMEOUT_SECONDS", 15)
	if timeoutSeconds <= 0 {
		errs = append(errs, "REQUEST_TIMEOUT_SECONDS must be positive")
	}
	cfg.RequestTimeout = time.Duration(timeoutSeconds) * time.Second

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

func loadHours() (TradingHours, error) {
	var h TradingHours
	var errs []string

	parse := func(key, def string) ClockTime {
		c, err := ParseClockTime(getEnv(key, def))
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid %s: %v", key, err))
		}
		return c
	}

	h.MarketOpen = parse("MARKET_OPEN", "09:15")
	h.TradingStart = parse("TRADING_START", "09:25")
	h.TradingEnd = parse("TRADING_END", "15:20")
	h.MarketClose = parse("MARKET_CLOSE", "15:30")

	if len(errs) > 0 {
		return h, fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	if !(h.MarketOpen <= h.TradingStart && h.TradingStart <= h.TradingEnd && h.TradingEnd <= h.MarketClose) {
		return h, fmt.Errorf("trading hours must be ordered: MARKET_OPEN <= TRADING_START <= TRADING_END <= MARKET_CLOSE")
	}
	return h, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
