package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-sync/internal/adapters/notify"
	"github.com/jsamuelsen/quote-sync/internal/adapters/view"
	"github.com/jsamuelsen/quote-sync/internal/domain"
)

// ViewSource exposes what a client should display.
type ViewSource interface {
	Snapshot() view.Snapshot
}

// NotificationSource exposes the unexpired notifications.
type NotificationSource interface {
	Active() []notify.Notification
}

// CategorySelection reports the persisted category filter.
type CategorySelection interface {
	SelectedCategory(ctx context.Context) (string, error)
}

// BatchLookup finds a registered sync batch.
type BatchLookup interface {
	Batch(batchID string) (*domain.SyncBatch, error)
}

// ViewHandler serves the rendered view and the notification feed.
type ViewHandler struct {
	view          ViewSource
	notifications NotificationSource
	selection     CategorySelection
	batches       BatchLookup
}

// NewViewHandler creates a new view handler. With a nil batches the last
// presented batch is reported as is.
func NewViewHandler(
	source ViewSource,
	notifications NotificationSource,
	selection CategorySelection,
	batches BatchLookup,
) *ViewHandler {
	return &ViewHandler{view: source, notifications: notifications, selection: selection, batches: batches}
}

// View handles GET /api/v1/view.
func (h *ViewHandler) View(c *gin.Context) {
	selected, err := h.selection.SelectedCategory(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	snap := h.view.Snapshot()

	resp := dto.ViewResponse{
		Categories:       snap.Categories,
		SelectedCategory: selected,
		PendingBatch:     h.openBatch(snap.PendingBatch),
	}

	if snap.Quote != nil {
		q := dto.NewQuoteResponse(*snap.Quote)
		resp.Quote = &q
	}

	if !snap.UpdatedAt.IsZero() {
		resp.UpdatedAt = &snap.UpdatedAt
	}

	c.JSON(http.StatusOK, resp)
}

// openBatch returns id while that batch still awaits a decision.
func (h *ViewHandler) openBatch(id string) string {
	if id == "" || h.batches == nil {
		return id
	}

	b, err := h.batches.Batch(id)
	if err != nil || !b.Open() {
		return ""
	}

	return id
}

// Notifications handles GET /api/v1/notifications.
func (h *ViewHandler) Notifications(c *gin.Context) {
	active := h.notifications.Active()

	resp := dto.NotificationsResponse{Items: make([]dto.NotificationResponse, len(active))}
	for i, n := range active {
		resp.Items[i] = dto.NotificationResponse{
			ID:        n.ID,
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
			ExpiresAt: n.ExpiresAt,
		}
	}

	c.JSON(http.StatusOK, resp)
}

// RegisterRoutes registers the view routes.
func (h *ViewHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/view", h.View)
	rg.GET("/notifications", h.Notifications)
}
