package main

import (
	"context"
	"log"
	"time"

	"candle_sync/internal/feature/candles/adapters"
	"candle_sync/internal/feature/candles/adapters/binance"
	"candle_sync/internal/feature/candles/usecase"
	infradb "candle_sync/internal/platform/db"
	infrahttp "candle_sync/internal/platform/http"
	"candle_sync/internal/shared/ratelimiter"
)

func main() {

	db := infradb.OpenDB()
	store := adapters.NewCandleRepository(db)

	binanceCfg := binance.LoadConfig()
	limiter := ratelimiter.NewRateLimiter(1200, time.Minute)
	market := binance.NewClient(binanceCfg, infrahttp.NewHTTPClient(binanceCfg.Timeout), limiter)

	uc := usecase.NewSyncUsecase(market, store, usecase.LoadSyncConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := uc.Sync(ctx)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("sync ok: status=%s submitted=%d inserted=%d", result.Status, result.Submitted, result.Inserted)
}
