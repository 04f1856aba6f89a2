package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EcMscS/Footnote/internal/adapters/http/dto"
	"github.com/EcMscS/Footnote/internal/app"
)

// WidgetHandler exposes the widget slot for operators. The widget itself
// reads shared storage directly and never calls these endpoints.
type WidgetHandler struct {
	service *app.QuoteService
}

// NewWidgetHandler creates a new widget handler.
func NewWidgetHandler(service *app.QuoteService) *WidgetHandler {
	return &WidgetHandler{service: service}
}

// Sync handles POST /api/v1/widget/sync
// Republishes the full collection to the widget slot.
func (h *WidgetHandler) Sync(c *gin.Context) {
	if err := h.service.SyncWidget(c.Request.Context()); err != nil {
		dto.RespondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Get handles GET /api/v1/widget
// Returns the decoded content of the widget slot.
func (h *WidgetHandler) Get(c *gin.Context) {
	entries, err := h.service.Widget(c.Request.Context())
	if err != nil {
		dto.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewWidgetResponse(h.service.WidgetKey(), entries))
}

// RegisterWidgetRoutes registers widget routes on the given router group.
func (h *WidgetHandler) RegisterWidgetRoutes(rg *gin.RouterGroup) {
	widget := rg.Group("/widget")
	widget.GET("", h.Get)
	widget.POST("/sync", h.Sync)
}
