package router

import (
	"github.com/gin-gonic/gin"

	candleshandler "candle_sync/internal/feature/candles/transport/handler"
	targethandler "candle_sync/internal/feature/target/transport/handler"
	"candle_sync/internal/platform/http/handler"
)

func NewRouter(candles *candleshandler.CandlesHandler, sync *candleshandler.SyncHandler,
	target *targethandler.TargetHandler) *gin.Engine {
	r := gin.Default()

	// 導通確認用
	r.GET("/healthz", handler.Health)

	// ローソク足の読み取り
	r.GET("/candles", candles.GetCandlesHandler)
	// 同期の実行（外部スケジューラからの起動を想定）
	r.POST("/sync", sync.SyncHandler)
	// ターゲット比率パーセンタイル
	r.GET("/target", target.GetTargetHandler)

	return r
}
