package usecase

import (
	"os"
	"strconv"
	"time"
)

const (
	// DefaultSymbol is the series symbol synced when SYNC_SYMBOL is unset.
	DefaultSymbol = "BCHUSDT"
	// DefaultInterval is the candle interval synced when SYNC_INTERVAL is unset.
	DefaultInterval = "1m"
	// DefaultIntervalMs is the duration of one candle in milliseconds.
	DefaultIntervalMs = 60_000
	// DefaultEpochFloorMs is 2017-01-01T00:00:00Z, the start of history for a
	// first-ever sync of an empty series.
	DefaultEpochFloorMs = 1_483_228_800_000
	// DefaultDisplayOffsetHours is the fixed local offset applied to display
	// times. Intentionally a constant offset, not a calendar-aware timezone.
	DefaultDisplayOffsetHours = 2
)

// LoadSyncConfig loads the sync series configuration from environment
// variables, falling back to the defaults above.
func LoadSyncConfig() SyncConfig {
	cfg := SyncConfig{
		Symbol:        DefaultSymbol,
		Interval:      DefaultInterval,
		IntervalMs:    DefaultIntervalMs,
		EpochFloorMs:  DefaultEpochFloorMs,
		DisplayOffset: DefaultDisplayOffsetHours * time.Hour,
	}
	if v := os.Getenv("SYNC_SYMBOL"); v != "" {
		cfg.Symbol = v
	}
	if v := os.Getenv("SYNC_INTERVAL"); v != "" {
		cfg.Interval = v
	}
	if v := os.Getenv("SYNC_INTERVAL_MS"); v != "" {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil && ms > 0 {
			cfg.IntervalMs = ms
		}
	}
	if v := os.Getenv("SYNC_EPOCH_FLOOR_MS"); v != "" {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil && ms >= 0 {
			cfg.EpochFloorMs = ms
		}
	}
	if v := os.Getenv("DISPLAY_UTC_OFFSET_HOURS"); v != "" {
		if h, err := strconv.Atoi(v); err == nil {
			cfg.DisplayOffset = time.Duration(h) * time.Hour
		}
	}
	return cfg
}
