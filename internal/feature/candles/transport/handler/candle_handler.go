// Package handler はcandlesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"candle_sync/internal/feature/candles/domain/entity"
	"candle_sync/internal/feature/candles/transport/http/dto"
)

// CandlesUsecase はローソク足データ読み取りのユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CandlesUsecase interface {
	GetCandles(ctx context.Context, fromTime, toTime string, limit int) ([]entity.Candle, error)
}

// CandlesHandler はローソク足データのHTTPリクエストを処理します。
type CandlesHandler struct {
	uc CandlesUsecase
}

// NewCandlesHandler は指定されたusecaseでCandlesHandlerの新しいインスタンスを生成します。
func NewCandlesHandler(uc CandlesUsecase) *CandlesHandler {
	return &CandlesHandler{uc: uc}
}

// GetCandlesHandler は表示時刻範囲を受け取り、ローソク足データをJSONで返します。
//
// エンドポイント例:
// GET /candles?from=2024-01-01+00:00&to=2024-01-02+00:00&limit=1000
func (h *CandlesHandler) GetCandlesHandler(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "from and to are required"})
		return
	}
	limitStr := c.DefaultQuery("limit", "0")
	limit, _ := strconv.Atoi(limitStr)

	candles, err := h.uc.GetCandles(c.Request.Context(), from, to, limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
		return
	}

	out := make([]dto.CandleResponse, 0, len(candles))
	for _, x := range candles {
		out = append(out, dto.CandleResponse{
			OpenTimeMs: x.OpenTimeMs,
			OpenTime:   x.OpenTime,
			Open:       x.Open,
			High:       x.High,
			Low:        x.Low,
			Close:      x.Close,
			Volume:     x.Volume,
		})
	}

	c.JSON(http.StatusOK, out)
}
