// Package handler はtargetフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"candle_sync/internal/feature/target/transport/http/dto"
	"candle_sync/internal/feature/target/usecase"
)

// TargetUsecase はターゲット比率計算のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type TargetUsecase interface {
	CalculateTargetPercentiles(ctx context.Context, fromTime, toTime string, window int) (*usecase.TargetPercentiles, error)
}

// TargetHandler はターゲット比率パーセンタイルのHTTPリクエストを処理します。
type TargetHandler struct {
	uc TargetUsecase
}

// NewTargetHandler は指定されたusecaseでTargetHandlerの新しいインスタンスを生成します。
func NewTargetHandler(uc TargetUsecase) *TargetHandler {
	return &TargetHandler{uc: uc}
}

// GetTargetHandler は表示時刻範囲とwindowを受け取り、
// ターゲット比率のパーセンタイルをJSONで返します。
//
// エンドポイント例:
// GET /target?from=2024-01-01+00:00&to=2024-01-02+00:00&window=240
func (h *TargetHandler) GetTargetHandler(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "from and to are required"})
		return
	}
	windowStr := c.DefaultQuery("window", "0")
	window, _ := strconv.Atoi(windowStr)

	res, err := h.uc.CalculateTargetPercentiles(c.Request.Context(), from, to, window)
	if err != nil {
		// 範囲内にデータが無いのは呼び出し側の指定の問題
		if errors.Is(err, usecase.ErrEmptyRange) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.TargetPercentilesResponse{
		P50: res.P50,
		P75: res.P75,
		P90: res.P90,
	})
}
