// Package config holds infrastructure tuning constants shared by adapters.
package config

import "time"

const (
	// Process lifecycle.
	DefaultShutdownTimeout = 10 * time.Second

	// Postgres pool.
	DefaultPGMaxConns      = 5
	DefaultPGMinConns      = 1
	DefaultPGMaxConnIdle   = 2 * time.Minute
	DefaultMigrateAttempts = 30
	DefaultDBWriteTimeout  = 10 * time.Second

	// Outbound calls.
	DefaultHTTPTimeout    = 10 * time.Second
	DefaultPublishTimeout = 5 * time.Second
	DefaultBrowserUA      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)
