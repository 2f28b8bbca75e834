// Package dto defines response DTOs for the candles feature.
package dto

// CandleResponse はロウソク足データのレスポンスDTOです。
// 価格・出来高はパース失敗でNULL保存された場合nullになります。
type CandleResponse struct {
	OpenTimeMs int64    `json:"open_time_ms"` // 取引所ネイティブの開始時刻（エポックミリ秒）
	OpenTime   string   `json:"open_time"`    // 表示時刻（固定オフセット、分精度）
	Open       *float64 `json:"open"`         // 始値
	High       *float64 `json:"high"`         // 高値
	Low        *float64 `json:"low"`          // 安値
	Close      *float64 `json:"close"`        // 終値
	Volume     *float64 `json:"volume"`       // 出来高
}

// SyncResponse は同期実行サマリーのレスポンスDTOです。
type SyncResponse struct {
	Status    string `json:"status"`
	Submitted int    `json:"submitted"`
	Inserted  int64  `json:"inserted"`
	FromTime  string `json:"from_time,omitempty"`
	ToTime    string `json:"to_time,omitempty"`
}

// ErrorResponse はエラーレスポンスDTOです。
type ErrorResponse struct {
	Error string `json:"error"`
}
