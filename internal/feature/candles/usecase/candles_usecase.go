package usecase

import (
	"context"

	"candle_sync/internal/feature/candles/domain/entity"
)

const (
	// DefaultOutputSize はデフォルトのローソク足返却件数です。
	DefaultOutputSize = 1000
	// MaxOutputSize はローソク足の最大返却件数です。
	MaxOutputSize = 10000
)

// CandleRepository はローソク足データの読み取りレイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type CandleRepository interface {
	// FindRange は表示時刻 [fromTime, toTime]（両端含む）のローソク足を
	// open_time_ms昇順で検索します。
	FindRange(ctx context.Context, symbol, interval, fromTime, toTime string, limit int) ([]entity.Candle, error)
}

// candlesUsecase はローソク足データ読み取りのユースケースを定義します。
type candlesUsecase struct {
	candle   CandleRepository
	symbol   string
	interval string
}

// NewCandlesUsecase はcandlesUsecaseの新しいインスタンスを生成します。
// symbol と interval で対象シリーズを固定します。
func NewCandlesUsecase(candle CandleRepository, symbol, interval string) *candlesUsecase {
	return &candlesUsecase{candle: candle, symbol: symbol, interval: interval}
}

// GetCandles は指定された表示時刻範囲のローソク足データを取得します。
func (cu *candlesUsecase) GetCandles(ctx context.Context, fromTime, toTime string, limit int) ([]entity.Candle, error) {
	if limit <= 0 || limit > MaxOutputSize {
		limit = DefaultOutputSize
	}
	return cu.candle.FindRange(ctx, cu.symbol, cu.interval, fromTime, toTime, limit)
}
