package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ClauseLens/internal/application/analysis"
	"github.com/turtacn/ClauseLens/internal/application/export"
	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/logging"
)

// ReportHandler serves local exports, the backend PDF report and the audit
// log.
type ReportHandler struct {
	svc    analysis.Service
	logger logging.Logger
}

func NewReportHandler(svc analysis.Service, logger logging.Logger) *ReportHandler {
	return &ReportHandler{svc: svc, logger: logging.OrNop(logger)}
}

// RegisterRoutes registers report routes.
func (h *ReportHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/export/:format", h.Export)
	r.GET("/report", h.Report)
	r.GET("/audit", h.Audit)
}

// Export handles GET /export/json and GET /export/csv.
func (h *ReportHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	data, err := h.svc.Export(workspaceID(c), format)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	attachment(c, format.Filename(), format.ContentType(), data)
}

// Report handles GET /report, proxying the backend-generated PDF.
func (h *ReportHandler) Report(c *gin.Context) {
	rep, err := h.svc.GenerateReport(c.Request.Context(), workspaceID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if rep.Ref.ArchiveKey != "" {
		c.Header("X-Archive-Key", rep.Ref.ArchiveKey)
	}
	attachment(c, rep.Filename, "application/pdf", rep.Data)
}

// Audit handles GET /audit?action=. Missing or "all" returns every entry.
func (h *ReportHandler) Audit(c *gin.Context) {
	views, err := h.svc.AuditLog(c.Request.Context(), c.Query("action"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": views, "total": len(views)})
}
