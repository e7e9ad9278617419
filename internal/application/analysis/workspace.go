package analysis

import (
	"sync"
	"time"

	"github.com/turtacn/ClauseLens/internal/domain/viewer"
	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

// ClauseState is the single-clause panel of a workspace.
type ClauseState struct {
	Input      string                  `json:"input"`
	Mode       contract.PredictionKind `json:"mode"`
	Result     *contract.Prediction    `json:"result,omitempty"`
	Error      string                  `json:"error,omitempty"`
	Explain    *contract.Prediction    `json:"llm_explain,omitempty"`
	ExplainErr string                  `json:"llm_explain_error,omitempty"`
	AnalyzedAt time.Time               `json:"analyzed_at,omitempty"`
}

// DocumentState is the document panel of a workspace.
type DocumentState struct {
	Name       string                   `json:"name,omitempty"`
	Result     *contract.DocumentResult `json:"result,omitempty"`
	Error      string                   `json:"error,omitempty"`
	ArchiveKey string                   `json:"archive_key,omitempty"`
	AnalyzedAt time.Time                `json:"analyzed_at,omitempty"`
}

// ReportRef points at the last report generated for a workspace.
type ReportRef struct {
	Filename    string    `json:"filename"`
	Size        int       `json:"size"`
	ArchiveKey  string    `json:"archive_key,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Workspace is one user's review session. Every field is guarded by mu; the
// viewer carries its own lock.
type Workspace struct {
	ID string

	mu          sync.Mutex
	mode        contract.PredictionKind
	sensitivity string
	clause      ClauseState
	document    DocumentState
	report      *ReportRef
	viewer      *viewer.Viewer
	createdAt   time.Time
	updatedAt   time.Time
}

func newWorkspace(id string, mode contract.PredictionKind, sensitivity string, v *viewer.Viewer, now time.Time) *Workspace {
	return &Workspace{
		ID:          id,
		mode:        mode,
		sensitivity: sensitivity,
		clause:      ClauseState{Mode: mode},
		viewer:      v,
		createdAt:   now,
		updatedAt:   now,
	}
}

// Viewer returns the workspace's PDF viewer.
func (w *Workspace) Viewer() *viewer.Viewer { return w.viewer }

func (w *Workspace) Mode() contract.PredictionKind {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mode
}

func (w *Workspace) Sensitivity() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sensitivity
}

// Document returns the current document result, or nil.
func (w *Workspace) Document() *contract.DocumentResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.document.Result
}

// Clause returns a copy of the clause panel.
func (w *Workspace) Clause() ClauseState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.clause
}

func (w *Workspace) update(now time.Time, fn func(w *Workspace)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(w)
	w.updatedAt = now
}

// Snapshot is a copy of a workspace for display.
type Snapshot struct {
	ID          string                  `json:"id"`
	Mode        contract.PredictionKind `json:"mode"`
	Sensitivity string                  `json:"sensitivity"`
	Clause      ClauseState             `json:"clause"`
	Document    DocumentState           `json:"document"`
	Report      *ReportRef              `json:"report,omitempty"`
	Viewer      viewer.Snapshot         `json:"viewer"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

func (w *Workspace) Snapshot() Snapshot {
	w.mu.Lock()
	s := Snapshot{
		ID:          w.ID,
		Mode:        w.mode,
		Sensitivity: w.sensitivity,
		Clause:      w.clause,
		Document:    w.document,
		CreatedAt:   w.createdAt,
		UpdatedAt:   w.updatedAt,
	}
	if w.report != nil {
		r := *w.report
		s.Report = &r
	}
	w.mu.Unlock()
	s.Viewer = w.viewer.Snapshot()
	return s
}
