// Package usecase はローソク足の終値からターゲット比率のパーセンタイルを計算します。
package usecase

import (
	"context"
	"errors"
	"math"
	"sort"

	"candle_sync/internal/feature/candles/domain/entity"
)

// ErrEmptyRange is returned when the requested time range contains no usable rows.
var ErrEmptyRange = errors.New("no data found for the given time range")

// DefaultWindow はローリング最大値のデフォルトの行数です（1分足で4時間分）。
const DefaultWindow = 240

// CandleReader はローソク足の (open_time, close) 読み取りレイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type CandleReader interface {
	// SelectClosePoints は表示時刻 [fromTime, toTime]（両端含む）の行を
	// 時刻昇順で返します。
	SelectClosePoints(ctx context.Context, symbol, interval, fromTime, toTime string) ([]entity.ClosePoint, error)
}

// TargetPercentiles は ratio = rolling_max(close) / close のパーセンタイル要約です。
type TargetPercentiles struct {
	P50 float64
	P75 float64
	P90 float64
}

// targetUsecase はターゲット比率計算のユースケースを定義します。
type targetUsecase struct {
	reader   CandleReader
	symbol   string
	interval string
}

// NewTargetUsecase はtargetUsecaseの新しいインスタンスを生成します。
// symbol と interval で対象シリーズを固定します。
func NewTargetUsecase(reader CandleReader, symbol, interval string) *targetUsecase {
	return &targetUsecase{reader: reader, symbol: symbol, interval: interval}
}

// CalculateTargetPercentiles は指定範囲の各行について、直近window行
// （範囲先頭では縮む）の終値の最大値と終値の比率を計算し、
// その系列のp50/p75/p90を返します。
//
// closeがNULLまたは0の行は比率が定義できないため系列から除外します。
// 範囲内に行が無い場合、または全行が除外された場合は ErrEmptyRange を返します。
func (tu *targetUsecase) CalculateTargetPercentiles(ctx context.Context, fromTime, toTime string, window int) (*TargetPercentiles, error) {
	if window <= 0 {
		window = DefaultWindow
	}

	points, err := tu.reader.SelectClosePoints(ctx, tu.symbol, tu.interval, fromTime, toTime)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, ErrEmptyRange
	}

	// NULLと0の終値を除外した終値系列を作る
	closes := make([]float64, 0, len(points))
	for _, p := range points {
		if p.Close == nil || *p.Close == 0 {
			continue
		}
		closes = append(closes, *p.Close)
	}
	if len(closes) == 0 {
		return nil, ErrEmptyRange
	}

	ratios := make([]float64, len(closes))
	for i, c := range closes {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		rollingMax := closes[lo]
		for j := lo + 1; j <= i; j++ {
			if closes[j] > rollingMax {
				rollingMax = closes[j]
			}
		}
		ratios[i] = rollingMax / c
	}

	sort.Float64s(ratios)
	return &TargetPercentiles{
		P50: percentile(ratios, 0.50),
		P75: percentile(ratios, 0.75),
		P90: percentile(ratios, 0.90),
	}, nil
}

// percentile は昇順ソート済みの系列に対して、最近接順位間の線形補間で
// q分位点を計算します（pandas/numpyのデフォルトと同じ定義）。
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := q * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
