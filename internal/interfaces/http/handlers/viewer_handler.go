package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ClauseLens/internal/application/analysis"
	"github.com/turtacn/ClauseLens/internal/domain/viewer"
	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/logging"
)

// ViewerHandler exposes the PDF viewer and its highlight overlays.
type ViewerHandler struct {
	svc    analysis.Service
	logger logging.Logger
}

func NewViewerHandler(svc analysis.Service, logger logging.Logger) *ViewerHandler {
	return &ViewerHandler{svc: svc, logger: logging.OrNop(logger)}
}

// RegisterRoutes registers viewer routes.
func (h *ViewerHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/viewer", h.Get)
	r.POST("/viewer/highlights", h.Highlight)
	r.GET("/viewer/overlays", h.Overlays)
	r.POST("/viewer/scroll", h.Scroll)
}

// OverlaysResponse lists the overlays still on screen.
type OverlaysResponse struct {
	Overlays []viewer.Overlay `json:"overlays"`
}

// Get handles GET /viewer. Overlays are advanced to the current time first.
func (h *ViewerHandler) Get(c *gin.Context) {
	ws := workspaceID(c)
	if _, err := h.svc.Overlays(ws); err != nil {
		writeError(c, h.logger, err)
		return
	}
	snap, err := h.svc.Snapshot(ws)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, snap.Viewer)
}

// Highlight handles POST /viewer/highlights, redrawing every clause.
func (h *ViewerHandler) Highlight(c *gin.Context) {
	overlays, err := h.svc.HighlightAll(workspaceID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, OverlaysResponse{Overlays: overlays})
}

// Overlays handles GET /viewer/overlays.
func (h *ViewerHandler) Overlays(c *gin.Context) {
	overlays, err := h.svc.Overlays(workspaceID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, OverlaysResponse{Overlays: overlays})
}

// ScrollRequest is the request body for POST /viewer/scroll.
type ScrollRequest struct {
	ClauseIndex *int `json:"clause_index"`
}

// Scroll handles POST /viewer/scroll, highlighting one clause and scrolling
// to its page.
func (h *ViewerHandler) Scroll(c *gin.Context) {
	var req ScrollRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	if req.ClauseIndex == nil {
		writeError(c, h.logger, errInvalid("clause_index is required"))
		return
	}
	ws := workspaceID(c)
	overlays, err := h.svc.Focus(ws, *req.ClauseIndex)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	snap, err := h.svc.Snapshot(ws)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"overlays": overlays, "scroll": snap.Viewer.Scroll})
}
