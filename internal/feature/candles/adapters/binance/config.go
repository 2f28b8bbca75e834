// Package binance provides a client for the Binance spot market data API.
package binance

import (
	"os"
	"time"
)

// DefaultBaseURL is the production Binance REST endpoint.
const DefaultBaseURL = "https://api.binance.com"

// Config holds configuration for the Binance API client.
type Config struct {
	APIKey  string        // API key sent as X-MBX-APIKEY; market data works without it
	BaseURL string        // Base URL for the API
	Timeout time.Duration // HTTP request timeout
}

// LoadConfig loads Binance configuration from environment variables.
func LoadConfig() Config {
	base := os.Getenv("BINANCE_BASE_URL")
	if base == "" {
		base = DefaultBaseURL
	}
	return Config{
		APIKey:  os.Getenv("BINANCE_API_KEY"),
		BaseURL: base,
		Timeout: 10 * time.Second,
	}
}
