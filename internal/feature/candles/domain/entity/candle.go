// Package entity defines the domain models for the candles feature.
package entity

// Candle represents one OHLCV (Open, High, Low, Close, Volume) candlestick
// within a symbol+interval series.
//
// OpenTimeMs is the exchange-native open time in epoch milliseconds and is
// the identity key of a candle within its series. OpenTime is a display
// string derived from OpenTimeMs (shifted to a fixed local offset, minute
// precision) and must never be used for identity comparisons or joins.
type Candle struct {
	Symbol     string   // Trading pair symbol (e.g., "BCHUSDT")
	Interval   string   // Candle interval (e.g., "1m")
	OpenTimeMs int64    // Exchange-native open time, epoch milliseconds
	OpenTime   string   // Display time, "YYYY-MM-DD HH:MM" in the configured local offset
	Open       *float64 // Opening price, nil if the raw field failed to parse
	High       *float64 // Highest price
	Low        *float64 // Lowest price
	Close      *float64 // Closing price
	Volume     *float64 // Base asset volume
}

// ClosePoint is the (display time, close price) projection of a candle used
// by the target-ratio calculation.
type ClosePoint struct {
	OpenTime string
	Close    *float64
}
