package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWatchlist(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "watchlist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadWatchlist_EmptyPathUsesDefaults(t *testing.T) {
	symbols, err := LoadWatchlist("", 10)

	require.NoError(t, err)
	assert.Equal(t, DefaultSymbols, symbols)
}

func TestLoadWatchlist_DefaultsTruncated(t *testing.T) {
	symbols, err := LoadWatchlist("", 3)

	require.NoError(t, err)
	assert.Equal(t, DefaultSymbols[:3], symbols)
}

func TestLoadWatchlist_FromFile(t *testing.T) {
	path := writeWatchlist(t, "symbols:\n  - TRENT\n  - BEL\n  - LT\n")

	symbols, err := LoadWatchlist(path, 10)

	require.NoError(t, err)
	assert.Equal(t, []string{"TRENT", "BEL", "LT"}, symbols)
}

func TestLoadWatchlist_FileTruncated(t *testing.T) {
	path := writeWatchlist(t, "symbols:\n  - TRENT\n  - BEL\n  - LT\n")

	symbols, err := LoadWatchlist(path, 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"TRENT", "BEL"}, symbols)
}

func TestLoadWatchlist_MissingFileIsAnError(t *testing.T) {
	_, err := LoadWatchlist(filepath.Join(t.TempDir(), "nope.yaml"), 10)

	assert.Error(t, err)
}

func TestLoadWatchlist_EmptySymbolListIsAnError(t *testing.T) {
	path := writeWatchlist(t, "symbols: []\n")

	_, err := LoadWatchlist(path, 10)

	assert.Error(t, err)
}

func TestLoadWatchlist_MalformedYAMLIsAnError(t *testing.T) {
	path := writeWatchlist(t, "symbols: [unterminated\n")

	_, err := LoadWatchlist(path, 10)

	assert.Error(t, err)
}
