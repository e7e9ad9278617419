package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ClauseLens/internal/application/analysis"
	"github.com/turtacn/ClauseLens/internal/domain/clause"
	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

// ClauseHandler serves the single-clause panel.
type ClauseHandler struct {
	svc    analysis.Service
	logger logging.Logger
}

func NewClauseHandler(svc analysis.Service, logger logging.Logger) *ClauseHandler {
	return &ClauseHandler{svc: svc, logger: logging.OrNop(logger)}
}

// AnalyzeClauseRequest is the request body for POST /clauses/analyze.
type AnalyzeClauseRequest struct {
	Text string `json:"text"`
	Mode string `json:"mode"`
}

// ClauseInsight is the normalised reading of a prediction.
type ClauseInsight struct {
	Label          string                `json:"label"`
	Confidence     float64               `json:"confidence"`
	Probabilities  []float64             `json:"probabilities,omitempty"`
	Category       clause.CategoryInfo   `json:"category"`
	Explainability clause.Explainability `json:"explainability"`
	Sections       []clause.Section      `json:"sections"`
}

// ClauseResponse is the clause panel plus its derived insight. Insight is
// absent while there is no result.
type ClauseResponse struct {
	analysis.ClauseState
	Insight *ClauseInsight `json:"insight,omitempty"`
}

func newClauseResponse(st analysis.ClauseState) ClauseResponse {
	resp := ClauseResponse{ClauseState: st}
	if st.Result == nil {
		return resp
	}
	p := st.Result
	if st.Explain != nil {
		p = st.Explain
	}
	ex := clause.ExplainPrediction(p)
	resp.Insight = &ClauseInsight{
		Label:          clause.Label(st.Result),
		Confidence:     clause.Confidence(st.Result),
		Probabilities:  clause.Probabilities(st.Result),
		Category:       clause.Info(clause.Classify(st.Input)),
		Explainability: ex,
		Sections:       clause.Sections(ex),
	}
	return resp
}

// RegisterRoutes registers clause routes.
func (h *ClauseHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/clauses", h.Get)
	r.POST("/clauses/analyze", h.Analyze)
	r.POST("/clauses/explain", h.Explain)
	r.DELETE("/clauses", h.Clear)
}

// Get handles GET /clauses.
func (h *ClauseHandler) Get(c *gin.Context) {
	snap, err := h.svc.Snapshot(workspaceID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newClauseResponse(snap.Clause))
}

// Analyze handles POST /clauses/analyze. An empty mode uses the workspace's
// current model mode.
func (h *ClauseHandler) Analyze(c *gin.Context) {
	var req AnalyzeClauseRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	st, err := h.svc.AnalyzeClause(c.Request.Context(), workspaceID(c), req.Text, contract.PredictionKind(req.Mode))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newClauseResponse(st))
}

// Explain handles POST /clauses/explain, asking the LLM about the current
// clause.
func (h *ClauseHandler) Explain(c *gin.Context) {
	st, err := h.svc.ExplainWithLLM(c.Request.Context(), workspaceID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newClauseResponse(st))
}

// Clear handles DELETE /clauses.
func (h *ClauseHandler) Clear(c *gin.Context) {
	if err := h.svc.ClearClause(workspaceID(c)); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
