package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ClauseLens/internal/application/analysis"
	"github.com/turtacn/ClauseLens/internal/domain/clause"
	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseLens/pkg/errors"
)

// NotificationFeed is the read side of the notifier.
type NotificationFeed interface {
	List(workspace string) []analysis.Notification
	Dismiss(workspace, id string) bool
}

// DashboardHandler serves the workspace overview, notifications and
// settings.
type DashboardHandler struct {
	svc    analysis.Service
	feed   NotificationFeed
	logger logging.Logger
}

// NewDashboardHandler creates a DashboardHandler. feed may be nil, in which
// case notifications are always empty.
func NewDashboardHandler(svc analysis.Service, feed NotificationFeed, logger logging.Logger) *DashboardHandler {
	return &DashboardHandler{svc: svc, feed: feed, logger: logging.OrNop(logger)}
}

// RegisterRoutes registers dashboard routes.
func (h *DashboardHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/dashboard", h.Dashboard)
	r.GET("/workspace", h.Workspace)
	r.GET("/notifications", h.Notifications)
	r.DELETE("/notifications/:id", h.Dismiss)
	r.GET("/settings/profiles", h.Profiles)
	r.PUT("/settings/sensitivity", h.SetSensitivity)
	r.PUT("/settings/mode", h.SetMode)
}

// Dashboard handles GET /dashboard.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	m, err := h.svc.Metrics(workspaceID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// Workspace handles GET /workspace.
func (h *DashboardHandler) Workspace(c *gin.Context) {
	snap, err := h.svc.Snapshot(workspaceID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Notifications handles GET /notifications.
func (h *DashboardHandler) Notifications(c *gin.Context) {
	items := []analysis.Notification{}
	if h.feed != nil {
		items = h.feed.List(workspaceID(c))
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

// Dismiss handles DELETE /notifications/:id.
func (h *DashboardHandler) Dismiss(c *gin.Context) {
	if h.feed == nil || !h.feed.Dismiss(workspaceID(c), c.Param("id")) {
		writeError(c, h.logger, errors.NotFound("notification not found"))
		return
	}
	c.Status(http.StatusNoContent)
}

// Profiles handles GET /settings/profiles.
func (h *DashboardHandler) Profiles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"profiles": clause.Profiles()})
}

// SensitivityRequest is the request body for PUT /settings/sensitivity.
type SensitivityRequest struct {
	Sensitivity string `json:"sensitivity"`
}

// SetSensitivity handles PUT /settings/sensitivity.
func (h *DashboardHandler) SetSensitivity(c *gin.Context) {
	var req SensitivityRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	p, err := h.svc.SetSensitivity(workspaceID(c), req.Sensitivity)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ModeRequest is the request body for PUT /settings/mode.
type ModeRequest struct {
	Mode string `json:"mode"`
}

// SetMode handles PUT /settings/mode.
func (h *DashboardHandler) SetMode(c *gin.Context) {
	var req ModeRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	mode, err := h.svc.SetMode(workspaceID(c), req.Mode)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ModeRequest{Mode: string(mode)})
}
