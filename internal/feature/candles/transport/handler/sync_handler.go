package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"candle_sync/internal/feature/candles/transport/http/dto"
	"candle_sync/internal/feature/candles/usecase"
)

// SyncUsecase は同期実行のユースケースインターフェースを定義します。
type SyncUsecase interface {
	Sync(ctx context.Context) (*usecase.SyncResult, error)
}

// SyncHandler は同期実行のHTTPリクエストを処理します。
type SyncHandler struct {
	uc SyncUsecase
}

// NewSyncHandler は指定されたusecaseでSyncHandlerの新しいインスタンスを生成します。
func NewSyncHandler(uc SyncUsecase) *SyncHandler {
	return &SyncHandler{uc: uc}
}

// SyncHandler は同期を1回実行し、サマリーをJSONで返します。
//
// エンドポイント例:
// POST /sync
func (h *SyncHandler) SyncHandler(c *gin.Context) {
	res, err := h.uc.Sync(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.SyncResponse{
		Status:    string(res.Status),
		Submitted: res.Submitted,
		Inserted:  res.Inserted,
		FromTime:  res.FromTime,
		ToTime:    res.ToTime,
	})
}
