package adapters

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"candle_sync/internal/feature/candles/domain/entity"
	"candle_sync/internal/feature/candles/usecase"
)

type candleGorm struct {
	db *gorm.DB
}

var (
	_ usecase.CandleStore      = (*candleGorm)(nil)
	_ usecase.CandleRepository = (*candleGorm)(nil)
)

func NewCandleRepository(db *gorm.DB) *candleGorm {
	return &candleGorm{db: db}
}

// CandleModel はcandlesテーブルのGORMモデルです。
// (symbol, interval, open_time_ms) のユニークインデックスが
// insert-if-absent の重複判定キーになります。
type CandleModel struct {
	ID         uint   `gorm:"primaryKey"`
	Symbol     string `gorm:"size:32;not null;uniqueIndex:candle_series_key,priority:1"`
	Interval   string `gorm:"size:16;not null;uniqueIndex:candle_series_key,priority:2"`
	OpenTimeMs int64  `gorm:"not null;uniqueIndex:candle_series_key,priority:3"`
	OpenTime   string `gorm:"size:16;not null;index"`

	Open   *float64
	High   *float64
	Low    *float64
	Close  *float64
	Volume *float64
}

func (CandleModel) TableName() string {
	return "candles"
}

func toModel(e entity.Candle) CandleModel {
	return CandleModel{
		Symbol:     e.Symbol,
		Interval:   e.Interval,
		OpenTimeMs: e.OpenTimeMs,
		OpenTime:   e.OpenTime,
		Open:       e.Open,
		High:       e.High,
		Low:        e.Low,
		Close:      e.Close,
		Volume:     e.Volume,
	}
}

func toEntity(m CandleModel) entity.Candle {
	return entity.Candle{
		Symbol:     m.Symbol,
		Interval:   m.Interval,
		OpenTimeMs: m.OpenTimeMs,
		OpenTime:   m.OpenTime,
		Open:       m.Open,
		High:       m.High,
		Low:        m.Low,
		Close:      m.Close,
		Volume:     m.Volume,
	}
}

// InsertIgnoreBatch はキー重複行をスキップしながら一括挿入し、
// 実際に新規書き込みされた行数を返します。既存行は更新しません。
func (r *candleGorm) InsertIgnoreBatch(ctx context.Context, candles []entity.Candle) (int64, error) {
	if len(candles) == 0 {
		return 0, nil
	}
	ms := make([]CandleModel, 0, len(candles))
	for _, e := range candles {
		ms = append(ms, toModel(e))
	}

	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "interval"}, {Name: "open_time_ms"}},
		DoNothing: true,
	}).Create(&ms)
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}

// MaxOpenTimeMs はシリーズ内の最大open_time_msを返します。
// シリーズが空の場合は found=false を返します。
func (r *candleGorm) MaxOpenTimeMs(ctx context.Context, symbol, interval string) (int64, bool, error) {
	var maxMs *int64
	err := r.db.WithContext(ctx).
		Model(&CandleModel{}).
		Where("symbol = ? AND `interval` = ?", symbol, interval).
		Select("MAX(open_time_ms)").
		Scan(&maxMs).Error
	if err != nil {
		return 0, false, err
	}
	if maxMs == nil {
		return 0, false, nil
	}
	return *maxMs, true, nil
}

// FindRange は表示時刻範囲（両端含む）のローソク足をopen_time_ms昇順で返します。
func (r *candleGorm) FindRange(ctx context.Context, symbol, interval, fromTime, toTime string, limit int) ([]entity.Candle, error) {
	var rows []CandleModel
	q := r.db.WithContext(ctx).
		Where("symbol = ? AND `interval` = ? AND open_time BETWEEN ? AND ?", symbol, interval, fromTime, toTime).
		Order("open_time_ms ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Candle, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

// SelectClosePoints は表示時刻範囲（両端含む）の (open_time, close) を
// open_time_ms昇順で返します。ターゲット比率計算の読み取り口です。
func (r *candleGorm) SelectClosePoints(ctx context.Context, symbol, interval, fromTime, toTime string) ([]entity.ClosePoint, error) {
	var rows []CandleModel
	err := r.db.WithContext(ctx).
		Model(&CandleModel{}).
		Select("open_time", "close").
		Where("symbol = ? AND `interval` = ? AND open_time BETWEEN ? AND ?", symbol, interval, fromTime, toTime).
		Order("open_time_ms ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]entity.ClosePoint, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.ClosePoint{OpenTime: m.OpenTime, Close: m.Close})
	}
	return out, nil
}
