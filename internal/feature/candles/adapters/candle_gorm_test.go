package adapters

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"candle_sync/internal/feature/candles/domain/entity"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(&CandleModel{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

func f(v float64) *float64 { return &v }

// candleAt builds a test candle n minutes after the fixed base time.
func candleAt(n int) entity.Candle {
	base := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	tm := base.Add(time.Duration(n) * time.Minute)
	return entity.Candle{
		Symbol:     "BCHUSDT",
		Interval:   "1m",
		OpenTimeMs: tm.UnixMilli(),
		OpenTime:   tm.Add(2 * time.Hour).Format("2006-01-02 15:04"),
		Open:       f(100 + float64(n)),
		High:       f(101 + float64(n)),
		Low:        f(99 + float64(n)),
		Close:      f(100.5 + float64(n)),
		Volume:     f(10),
	}
}

func TestNewCandleRepository(t *testing.T) {
	db := setupTestDB(t)

	repo := NewCandleRepository(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

func TestCandleGorm_InsertIgnoreBatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("success: insert new candles", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewCandleRepository(db)

		inserted, err := repo.InsertIgnoreBatch(ctx, []entity.Candle{candleAt(0), candleAt(1)})
		require.NoError(t, err)
		assert.Equal(t, int64(2), inserted, "inserted count does not match")

		var count int64
		db.Model(&CandleModel{}).Count(&count)
		assert.Equal(t, int64(2), count, "candle count does not match")
	})

	t.Run("success: empty batch is a no-op", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewCandleRepository(db)

		inserted, err := repo.InsertIgnoreBatch(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(0), inserted)
	})

	t.Run("success: existing keys are left untouched", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewCandleRepository(db)

		original := candleAt(0)
		_, err := repo.InsertIgnoreBatch(ctx, []entity.Candle{original})
		require.NoError(t, err)

		// 同じキーで別の価格を再挿入しても既存行は変わらない
		modified := original
		modified.Close = f(999)
		inserted, err := repo.InsertIgnoreBatch(ctx, []entity.Candle{modified, candleAt(1)})
		require.NoError(t, err)
		assert.Equal(t, int64(1), inserted, "only the new key should be written")

		var row CandleModel
		require.NoError(t, db.Where("open_time_ms = ?", original.OpenTimeMs).First(&row).Error)
		require.NotNil(t, row.Close)
		assert.Equal(t, *original.Close, *row.Close, "existing row must not be overwritten")
	})

	t.Run("success: rerun over the same range is idempotent", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewCandleRepository(db)

		batch := []entity.Candle{candleAt(0), candleAt(1), candleAt(2)}
		_, err := repo.InsertIgnoreBatch(ctx, batch)
		require.NoError(t, err)

		inserted, err := repo.InsertIgnoreBatch(ctx, batch)
		require.NoError(t, err)
		assert.Equal(t, int64(0), inserted, "rerun must write nothing")

		// キーごとに行はちょうど1つ
		var count int64
		db.Model(&CandleModel{}).Count(&count)
		assert.Equal(t, int64(3), count, "duplicate rows were created")
	})

	t.Run("success: nil numeric fields are stored as NULL", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewCandleRepository(db)

		c := candleAt(0)
		c.Close = nil
		inserted, err := repo.InsertIgnoreBatch(ctx, []entity.Candle{c})
		require.NoError(t, err)
		assert.Equal(t, int64(1), inserted)

		var row CandleModel
		require.NoError(t, db.Where("open_time_ms = ?", c.OpenTimeMs).First(&row).Error)
		assert.Nil(t, row.Close, "close must be NULL")
		require.NotNil(t, row.Open)
		assert.Equal(t, *c.Open, *row.Open)
	})
}

func TestCandleGorm_MaxOpenTimeMs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty series reports not found", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewCandleRepository(db)

		_, found, err := repo.MaxOpenTimeMs(ctx, "BCHUSDT", "1m")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("returns the maximum key of the series only", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewCandleRepository(db)

		_, err := repo.InsertIgnoreBatch(ctx, []entity.Candle{candleAt(0), candleAt(5), candleAt(2)})
		require.NoError(t, err)

		// 別シリーズのより新しい行はカーソルに影響しない
		other := candleAt(10)
		other.Symbol = "ETHUSDT"
		_, err = repo.InsertIgnoreBatch(ctx, []entity.Candle{other})
		require.NoError(t, err)

		maxMs, found, err := repo.MaxOpenTimeMs(ctx, "BCHUSDT", "1m")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, candleAt(5).OpenTimeMs, maxMs)
	})
}

func TestCandleGorm_FindRange(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewCandleRepository(db)

	batch := make([]entity.Candle, 0, 5)
	for i := 0; i < 5; i++ {
		batch = append(batch, candleAt(i))
	}
	_, err := repo.InsertIgnoreBatch(ctx, batch)
	require.NoError(t, err)

	// batch[i].OpenTime は "2024-01-02 12:0i" (UTC+2)
	got, err := repo.FindRange(ctx, "BCHUSDT", "1m", batch[1].OpenTime, batch[3].OpenTime, 0)
	require.NoError(t, err)

	require.Len(t, got, 3, "bounds must be inclusive on both ends")
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].OpenTimeMs, got[i].OpenTimeMs, "rows must be ordered ascending")
	}
	assert.Equal(t, batch[1].OpenTimeMs, got[0].OpenTimeMs)
	assert.Equal(t, batch[3].OpenTimeMs, got[2].OpenTimeMs)

	t.Run("limit caps the result", func(t *testing.T) {
		got, err := repo.FindRange(ctx, "BCHUSDT", "1m", batch[0].OpenTime, batch[4].OpenTime, 2)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}

func TestCandleGorm_SelectClosePoints(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewCandleRepository(db)

	batch := make([]entity.Candle, 0, 4)
	for i := 0; i < 4; i++ {
		batch = append(batch, candleAt(i))
	}
	batch[2].Close = nil // NULL close はそのまま読み出せる
	_, err := repo.InsertIgnoreBatch(ctx, batch)
	require.NoError(t, err)

	pts, err := repo.SelectClosePoints(ctx, "BCHUSDT", "1m", batch[0].OpenTime, batch[3].OpenTime)
	require.NoError(t, err)

	require.Len(t, pts, 4)
	for i, p := range pts {
		assert.Equal(t, batch[i].OpenTime, p.OpenTime, fmt.Sprintf("row %d out of order", i))
	}
	assert.Nil(t, pts[2].Close)
	require.NotNil(t, pts[0].Close)
	assert.Equal(t, *batch[0].Close, *pts[0].Close)
}
