package main

import (
	"log"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"candle_sync/internal/app/router"
	"candle_sync/internal/feature/candles/adapters"
	"candle_sync/internal/feature/candles/adapters/binance"
	candleshandler "candle_sync/internal/feature/candles/transport/handler"
	candlesusecase "candle_sync/internal/feature/candles/usecase"
	targethandler "candle_sync/internal/feature/target/transport/handler"
	targetusecase "candle_sync/internal/feature/target/usecase"
	"candle_sync/internal/platform/cache"
	infradb "candle_sync/internal/platform/db"
	infrahttp "candle_sync/internal/platform/http"
	infraredis "candle_sync/internal/platform/redis"
	"candle_sync/internal/shared/ratelimiter"
)

func main() {
	// db
	db := infradb.OpenDB()

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Repository
	candleRepo := adapters.NewCandleRepository(db)

	// Redisキャッシュでラップ（同期カーソルは常にDBを読む）
	cachedStore := cache.NewCachingCandleStore(rdb, 5*time.Minute, candleRepo, "candles")

	// 取引所クライアント
	binanceCfg := binance.LoadConfig()
	limiter := ratelimiter.NewRateLimiter(1200, time.Minute)
	market := binance.NewClient(binanceCfg, infrahttp.NewHTTPClient(binanceCfg.Timeout), limiter)

	// Usecase
	syncCfg := candlesusecase.LoadSyncConfig()
	syncUC := candlesusecase.NewSyncUsecase(market, cachedStore, syncCfg)
	candlesUC := candlesusecase.NewCandlesUsecase(cachedStore, syncCfg.Symbol, syncCfg.Interval)
	targetUC := targetusecase.NewTargetUsecase(cachedStore, syncCfg.Symbol, syncCfg.Interval)

	// Handler
	candlesH := candleshandler.NewCandlesHandler(candlesUC)
	syncH := candleshandler.NewSyncHandler(syncUC)
	targetH := targethandler.NewTargetHandler(targetUC)

	// ルータ生成
	router := router.NewRouter(candlesH, syncH, targetH)

	if err := router.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
