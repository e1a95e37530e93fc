package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-sync/internal/app"
	"github.com/jsamuelsen/quote-sync/internal/domain"
)

// SyncHandler exposes reconciliation cycles and the decisions on their batches.
type SyncHandler struct {
	service *app.SyncService
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(service *app.SyncService) *SyncHandler {
	return &SyncHandler{service: service}
}

// RunCycle handles POST /api/v1/sync.
// A failed fetch answers 503; the cycle result is still recorded in the status.
func (h *SyncHandler) RunCycle(c *gin.Context) {
	result, err := h.service.RunCycle(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewCycleResponse(result))
}

// Status handles GET /api/v1/sync/status.
func (h *SyncHandler) Status(c *gin.Context) {
	status, err := h.service.Status(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSyncStatusResponse(status))
}

// GetBatch handles GET /api/v1/sync/batches/:batchID.
func (h *SyncHandler) GetBatch(c *gin.Context) {
	var param dto.BatchParam
	if err := dto.BindURIAndValidate(c, &param); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	batch, err := h.service.Batch(param.BatchID)
	respondBatch(c, batch, err)
}

// batchAction adapts a whole-batch decision to a handler.
func batchAction(decide func(ctx context.Context, batchID string) (*domain.SyncBatch, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var param dto.BatchParam
		if err := dto.BindURIAndValidate(c, &param); err != nil {
			dto.HandleBindError(c, err)
			return
		}

		batch, err := decide(c.Request.Context(), param.BatchID)
		respondBatch(c, batch, err)
	}
}

// itemAction adapts a per-item decision to a handler.
func itemAction(decide func(ctx context.Context, batchID string, quoteID int64) (*domain.SyncBatch, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var param dto.BatchItemParam
		if err := dto.BindURIAndValidate(c, &param); err != nil {
			dto.HandleBindError(c, err)
			return
		}

		batch, err := decide(c.Request.Context(), param.BatchID, param.QuoteID)
		respondBatch(c, batch, err)
	}
}

func respondBatch(c *gin.Context, batch *domain.SyncBatch, err error) {
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBatchResponse(batch))
}

// RegisterRoutes registers the sync routes under /sync.
//
//	POST /sync                                          run a cycle now
//	GET  /sync/status                                   last outcome and open batches
//	GET  /sync/batches/:batchID                         one batch
//	POST /sync/batches/:batchID/accept-all              merge every pending item
//	POST /sync/batches/:batchID/ignore                  discard the batch
//	POST /sync/batches/:batchID/review                  decide item by item
//	POST /sync/batches/:batchID/items/:quoteID/accept   merge one item
//	POST /sync/batches/:batchID/items/:quoteID/reject   drop one item and its local copy
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/sync")
	group.POST("", h.RunCycle)
	group.GET("/status", h.Status)

	batches := group.Group("/batches/:batchID")
	batches.GET("", h.GetBatch)
	batches.POST("/accept-all", batchAction(h.service.AcceptAll))
	batches.POST("/ignore", batchAction(h.service.Ignore))
	batches.POST("/review", batchAction(h.service.BeginReview))
	batches.POST("/items/:quoteID/accept", itemAction(h.service.AcceptItem))
	batches.POST("/items/:quoteID/reject", itemAction(h.service.RejectItem))
}
