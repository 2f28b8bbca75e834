// Package usecase はローソク足データ操作のビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"candle_sync/internal/feature/candles/domain/entity"
)

// DisplayTimeLayout はローソク足の表示用時刻フォーマットです。
// 固定幅・ゼロ埋めのため、辞書順の比較が時刻順の比較と一致します。
const DisplayTimeLayout = "2006-01-02 15:04"

// RawKline は取引所から取得した生のローソク足1本分のデータです。
// 数値フィールドは取引所ネイティブの文字列のまま保持し、
// 正規化（数値変換）はSyncUsecase側で行います。
type RawKline struct {
	OpenTimeMs int64
	Open       string
	High       string
	Low        string
	Close      string
	Volume     string
}

// MarketRepository は取引所からローソク足データを取得するリポジトリのインターフェイスです。
// 外部 API の実装を抽象化します。
type MarketRepository interface {
	// GetServerTime は取引所のサーバ時刻をエポックミリ秒で返します。
	GetServerTime(ctx context.Context) (int64, error)
	// GetKlines は [startMs, endMs) の範囲のローソク足を取得します。
	// ページングは実装側の責務です。
	GetKlines(ctx context.Context, symbol, interval string, startMs, endMs int64) ([]RawKline, error)
}

// CandleStore はローソク足データの永続化レイヤーを抽象化します。
type CandleStore interface {
	// MaxOpenTimeMs はシリーズ内の最大open_time_msを返します。
	// シリーズが空の場合は found=false を返します。
	MaxOpenTimeMs(ctx context.Context, symbol, interval string) (maxMs int64, found bool, err error)
	// InsertIgnoreBatch はopen_time_msをキーとした insert-if-absent で
	// ローソク足を一括挿入し、実際に書き込まれた行数を返します。
	// 既存キーの行には一切触れません。
	InsertIgnoreBatch(ctx context.Context, candles []entity.Candle) (int64, error)
}

// SyncStatus は同期実行の結果種別です。
type SyncStatus string

const (
	// StatusSynced は新しいローソク足が取り込まれたことを示します。
	StatusSynced SyncStatus = "synced"
	// StatusNoNewData は同期済みで取得すべき新しい期間が無いことを示します。
	StatusNoNewData SyncStatus = "no_new_data"
	// StatusNoExchangeData は期間はあるが取引所がデータを返さなかったことを示します。
	StatusNoExchangeData SyncStatus = "no_exchange_data"
)

// SyncResult は1回の同期実行のサマリーです。
// Submitted は挿入を試みた行数、Inserted は実際に新規書き込みされた行数です。
// 両者は再実行時に乖離します（insert-if-absent のため Inserted は 0 になる）。
type SyncResult struct {
	Status    SyncStatus
	Submitted int
	Inserted  int64
	FromTime  string // 挿入対象の最小表示時刻
	ToTime    string // 挿入対象の最大表示時刻
}

// SyncConfig は同期対象のシリーズと時刻変換の設定です。
type SyncConfig struct {
	Symbol        string        // 対象シンボル（例: "BCHUSDT"）
	Interval      string        // 対象時間足（例: "1m"）
	IntervalMs    int64         // 1本分の期間（ミリ秒、1分足なら60000）
	EpochFloorMs  int64         // シリーズが空のときの取得開始時刻（エポックミリ秒）
	DisplayOffset time.Duration // 表示時刻の固定オフセット（UTC基準、DSTなし）
}

// SyncUsecase は取引所からローソク足を取得しデータベースへ重複なく追記するユースケースです。
type SyncUsecase struct {
	market MarketRepository
	store  CandleStore
	cfg    SyncConfig
}

// NewSyncUsecase は新しい SyncUsecase を作成します。
func NewSyncUsecase(market MarketRepository, store CandleStore, cfg SyncConfig) *SyncUsecase {
	return &SyncUsecase{market: market, store: store, cfg: cfg}
}

// Sync はシリーズの最終保存時刻から取引所サーバ時刻までの差分を取得し、
// insert-if-absent でマージします。繰り返し実行しても保存内容は変わりません（冪等）。
//
// 正規化はすべてメモリ上で完了してから書き込みを開始するため、
// 途中で失敗しても部分的な書き込みは残りません。
func (su *SyncUsecase) Sync(ctx context.Context) (*SyncResult, error) {
	startMs, err := su.resolveStartMs(ctx)
	if err != nil {
		return nil, err
	}

	serverMs, err := su.market.GetServerTime(ctx)
	if err != nil {
		return nil, fmt.Errorf("get server time: %w", err)
	}
	// サーバ時刻を時間足の境界に切り捨てる（ローカル時計とのずれを避ける）
	endMs := serverMs - serverMs%su.cfg.IntervalMs

	if startMs >= endMs {
		slog.Info("no new data to sync", "symbol", su.cfg.Symbol, "interval", su.cfg.Interval)
		return &SyncResult{Status: StatusNoNewData}, nil
	}

	raws, err := su.market.GetKlines(ctx, su.cfg.Symbol, su.cfg.Interval, startMs, endMs)
	if err != nil {
		return nil, fmt.Errorf("get klines: %w", err)
	}
	if len(raws) == 0 {
		slog.Info("no data returned by exchange", "symbol", su.cfg.Symbol, "interval", su.cfg.Interval)
		return &SyncResult{Status: StatusNoExchangeData}, nil
	}

	candles := make([]entity.Candle, 0, len(raws))
	for _, r := range raws {
		candles = append(candles, su.normalize(r))
	}

	inserted, err := su.store.InsertIgnoreBatch(ctx, candles)
	if err != nil {
		return nil, fmt.Errorf("insert candles: %w", err)
	}

	res := &SyncResult{
		Status:    StatusSynced,
		Submitted: len(candles),
		Inserted:  inserted,
		FromTime:  candles[0].OpenTime,
		ToTime:    candles[len(candles)-1].OpenTime,
	}
	slog.Info("sync complete",
		"symbol", su.cfg.Symbol,
		"interval", su.cfg.Interval,
		"submitted", res.Submitted,
		"inserted", res.Inserted,
		"from", res.FromTime,
		"to", res.ToTime,
	)
	return res, nil
}

// resolveStartMs は次の取得開始時刻を決定します。
// カーソルはキャッシュせず毎回ストアから再計算するため、
// 常に実際の保存状態と一致します。
func (su *SyncUsecase) resolveStartMs(ctx context.Context) (int64, error) {
	maxMs, found, err := su.store.MaxOpenTimeMs(ctx, su.cfg.Symbol, su.cfg.Interval)
	if err != nil {
		return 0, fmt.Errorf("get max open time: %w", err)
	}
	if !found {
		return su.cfg.EpochFloorMs, nil
	}
	return maxMs + su.cfg.IntervalMs, nil
}

// normalize は生データをCandleに変換します。
// open_time_msはそのまま引き継ぎ、数値フィールドの変換失敗は
// nil（NULL）に置き換えます。1フィールドの不良でバッチ全体を
// 中断することはありません。
func (su *SyncUsecase) normalize(r RawKline) entity.Candle {
	return entity.Candle{
		Symbol:     su.cfg.Symbol,
		Interval:   su.cfg.Interval,
		OpenTimeMs: r.OpenTimeMs,
		OpenTime:   su.displayTime(r.OpenTimeMs),
		Open:       parseFloatOrNil(r.Open),
		High:       parseFloatOrNil(r.High),
		Low:        parseFloatOrNil(r.Low),
		Close:      parseFloatOrNil(r.Close),
		Volume:     parseFloatOrNil(r.Volume),
	}
}

// displayTime はエポックミリ秒を固定オフセット付きの表示文字列へ変換します。
func (su *SyncUsecase) displayTime(ms int64) string {
	return time.UnixMilli(ms).UTC().Add(su.cfg.DisplayOffset).Format(DisplayTimeLayout)
}

// parseFloatOrNil は数値文字列をパースし、失敗した場合はnilを返します。
func parseFloatOrNil(s string) *float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
