package ports

import "errors"

// Standard application-level errors. Adapters wrap underlying
// infrastructure errors with these so the decision engine's "skip this
// symbol" policy is an explicit branch rather than a byproduct of a
// swallowed error.
var (
	// General
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Quote source
	// ErrUnavailable marks transient data unavailability: a failed quote
	// fetch, an empty response, a short history. The engine skips the
	// symbol for the tick; the next tick retries naturally.
	ErrUnavailable = errors.New("market data unavailable")

	// Feature engine
	ErrInsufficientData = errors.New("insufficient data for feature computation")

	// Scorer
	ErrModelNotLoaded = errors.New("model artifact not loaded")

	// Database
	ErrQueryFailed = errors.New("database query failed")
)
