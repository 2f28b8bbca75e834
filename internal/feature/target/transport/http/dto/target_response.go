// Package dto defines response DTOs for the target feature.
package dto

// TargetPercentilesResponse はターゲット比率パーセンタイルのレスポンスDTOです。
type TargetPercentilesResponse struct {
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
}

// ErrorResponse はエラーレスポンスDTOです。
type ErrorResponse struct {
	Error string `json:"error"`
}
