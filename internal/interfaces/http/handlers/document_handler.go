package handlers

import (
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ClauseLens/internal/application/analysis"
	"github.com/turtacn/ClauseLens/internal/application/dashboard"
	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseLens/pkg/errors"
)

// UploadField is the multipart field carrying the contract.
const UploadField = "file"

// DocumentHandler serves contract upload and the clause table.
type DocumentHandler struct {
	svc      analysis.Service
	logger   logging.Logger
	maxBytes int64
}

// NewDocumentHandler creates a DocumentHandler. maxBytes caps the request
// body; zero leaves it uncapped.
func NewDocumentHandler(svc analysis.Service, logger logging.Logger, maxBytes int64) *DocumentHandler {
	return &DocumentHandler{svc: svc, logger: logging.OrNop(logger), maxBytes: maxBytes}
}

// RegisterRoutes registers document routes.
func (h *DocumentHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/documents", h.Get)
	r.POST("/documents/analyze", h.Analyze)
	r.DELETE("/documents", h.Clear)
	r.GET("/documents/clauses", h.Clauses)
	r.GET("/documents/categories", h.Categories)
}

// Get handles GET /documents.
func (h *DocumentHandler) Get(c *gin.Context) {
	snap, err := h.svc.Snapshot(workspaceID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, snap.Document)
}

// Analyze handles POST /documents/analyze with a multipart PDF upload.
func (h *DocumentHandler) Analyze(c *gin.Context) {
	if h.maxBytes > 0 {
		// Leave room for the multipart envelope; the service enforces the
		// exact file limit.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)
	}
	fh, err := c.FormFile(UploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, h.logger, errors.New(errors.ErrCodeDocumentTooLarge, "document exceeds the upload limit"))
			return
		}
		writeError(c, h.logger, errors.New(errors.ErrCodeValidation, analysis.MsgNoPDF).WithCause(err))
		return
	}
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		mediaType, _, _ := mime.ParseMediaType(ct)
		if mediaType != "application/pdf" && mediaType != "application/octet-stream" {
			writeError(c, h.logger, errors.New(errors.ErrCodeUnsupportedMedia, "only PDF uploads are accepted").WithDetail(mediaType))
			return
		}
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, h.logger, errors.Wrap(err, errors.ErrCodeValidation, "cannot read upload"))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		writeError(c, h.logger, errors.Wrap(err, errors.ErrCodeValidation, "cannot read upload"))
		return
	}

	st, err := h.svc.AnalyzeDocument(c.Request.Context(), workspaceID(c), fh.Filename, data)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Clear handles DELETE /documents.
func (h *DocumentHandler) Clear(c *gin.Context) {
	if err := h.svc.ClearDocument(workspaceID(c)); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClauseTableResponse is the filtered clause table.
type ClauseTableResponse struct {
	Query   dashboard.Query        `json:"query"`
	Total   int                    `json:"total"`
	Clauses []dashboard.ClauseView `json:"clauses"`
}

// Clauses handles GET /documents/clauses?q=&risk=&sort=.
func (h *DocumentHandler) Clauses(c *gin.Context) {
	var q dashboard.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, h.logger, errors.New(errors.ErrCodeValidation, "invalid query").WithDetail(err.Error()))
		return
	}
	rows, err := h.svc.Clauses(workspaceID(c), q)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	norm, _ := q.Normalize()
	c.JSON(http.StatusOK, ClauseTableResponse{Query: norm, Total: len(rows), Clauses: rows})
}

// Categories handles GET /documents/categories, grouping the whole table by
// clause category.
func (h *DocumentHandler) Categories(c *gin.Context) {
	rows, err := h.svc.Clauses(workspaceID(c), dashboard.Query{SortBy: dashboard.SortByIndex})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": dashboard.GroupByCategory(rows)})
}
