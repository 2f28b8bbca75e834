package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"candle_sync/internal/feature/candles/domain/entity"
)

// CandleStore はデコレート対象のローソク足ストアの全操作です。
type CandleStore interface {
	MaxOpenTimeMs(ctx context.Context, symbol, interval string) (int64, bool, error)
	InsertIgnoreBatch(ctx context.Context, candles []entity.Candle) (int64, error)
	FindRange(ctx context.Context, symbol, interval, fromTime, toTime string, limit int) ([]entity.Candle, error)
	SelectClosePoints(ctx context.Context, symbol, interval, fromTime, toTime string) ([]entity.ClosePoint, error)
}

type CachingCandleStore struct {
	inner     CandleStore
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingCandleStore は CandleStore を Redis キャッシュでデコレートします。
// ttl=0 の場合は 5分にフォールバックします。namespace が空なら "candles" を使います。
// 同期カーソル（MaxOpenTimeMs）は常に本体を読みます。
func NewCachingCandleStore(rdb *redis.Client, ttl time.Duration, inner CandleStore, namespace string) *CachingCandleStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "candles"
	}
	return &CachingCandleStore{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

func (c *CachingCandleStore) MaxOpenTimeMs(ctx context.Context, symbol, interval string) (int64, bool, error) {
	// カーソルはキャッシュしない
	return c.inner.MaxOpenTimeMs(ctx, symbol, interval)
}

func (c *CachingCandleStore) InsertIgnoreBatch(ctx context.Context, candles []entity.Candle) (int64, error) {
	// まず本体（DB）へ
	inserted, err := c.inner.InsertIgnoreBatch(ctx, candles)
	if err != nil {
		return 0, err
	}
	// Redis 未設定なら終了
	if c.rdb == nil || len(candles) == 0 {
		return inserted, nil
	}

	// 影響範囲のキャッシュを無効化（symbol+interval ごとのキー）
	seen := map[string]struct{}{}
	for _, cd := range candles {
		prefix := c.cacheKeyPrefix(cd.Symbol, cd.Interval)
		if _, ok := seen[prefix]; ok {
			continue
		}
		seen[prefix] = struct{}{}
		_ = c.deleteByPattern(ctx, prefix+"*") // 失敗しても本処理は成功させる
	}
	return inserted, nil
}

func (c *CachingCandleStore) FindRange(ctx context.Context, symbol, interval, fromTime, toTime string, limit int) ([]entity.Candle, error) {
	// Redis 未設定なら素通し
	if c.rdb == nil {
		return c.inner.FindRange(ctx, symbol, interval, fromTime, toTime, limit)
	}

	key := fmt.Sprintf("%srange:%s:%s:%d", c.cacheKeyPrefix(symbol, interval), safe(fromTime), safe(toTime), limit)

	// 1) キャッシュヒット確認
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Candle
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// 壊れていたら落とす
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) DB へフォールバック
	out, err := c.inner.FindRange(ctx, symbol, interval, fromTime, toTime, limit)
	if err != nil {
		return nil, err
	}

	// 3) キャッシュ保存（ベストエフォート）
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

func (c *CachingCandleStore) SelectClosePoints(ctx context.Context, symbol, interval, fromTime, toTime string) ([]entity.ClosePoint, error) {
	// Redis 未設定なら素通し
	if c.rdb == nil {
		return c.inner.SelectClosePoints(ctx, symbol, interval, fromTime, toTime)
	}

	key := fmt.Sprintf("%sclose:%s:%s", c.cacheKeyPrefix(symbol, interval), safe(fromTime), safe(toTime))

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.ClosePoint
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.SelectClosePoints(ctx, symbol, interval, fromTime, toTime)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// ---- 補助 ----

func (c *CachingCandleStore) cacheKeyPrefix(symbol, interval string) string {
	return fmt.Sprintf("%s:%s:%s:",
		c.namespace,
		safe(symbol),
		safe(interval),
	)
}

func (c *CachingCandleStore) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

func safe(s string) string {
	// Redis キーに使いづらい記号の簡易エスケープ
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
