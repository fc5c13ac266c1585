package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultSymbols is the built-in trading universe used when no watchlist
// file is configured.
var DefaultSymbols = []string{
	"SHRIRAMFIN", "BEL", "LT", "TRENT", "ADANIPORTS",
	"ADANIENT", "BHARTIARTL", "INDUSINDBK", "DRREDDY", "HEROMOTOCO",
}

type watchlistFile struct {
	Symbols []string `yaml:"symbols"`
}

// LoadWatchlist reads the symbol universe from a YAML watchlist file,
// truncated to maxSymbols. An empty path selects DefaultSymbols. A missing
// or malformed file is an error: trading an unintended universe is worse
// than failing startup.
func LoadWatchlist(path string, maxSymbols int) ([]string, error) {
	if path == "" {
		return truncate(DefaultSymbols, maxSymbols), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read watchlist %s: %w", path, err)
	}

	var wl watchlistFile
	if err := yaml.Unmarshal(data, &wl); err != nil {
		return nil, fmt.Errorf("parse watchlist %s: %w", path, err)
	}
	if len(wl.Symbols) == 0 {
		return nil, fmt.Errorf("watchlist %s contains no symbols", path)
	}

	return truncate(wl.Symbols, maxSymbols), nil
}

func truncate(symbols []string, max int) []string {
	if len(symbols) > max {
		return symbols[:max]
	}
	return symbols
}
