// Package viewer models the contract PDF viewer: pages are parsed and laid
// out once per upload, and clause highlights are kept as a list of overlay
// descriptors whose fade and removal are driven by explicit Tick calls.
package viewer

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/ClauseLens/internal/domain/clause"
	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/ClauseLens/pkg/errors"
	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

// State of the viewer.
type State string

const (
	StateEmpty   State = "empty"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// Overlay colours keyed by lowercase risk level.
var overlayColors = map[string]string{
	"high":    "rgba(255, 80, 80, 0.30)",
	"medium":  "rgba(255, 200, 80, 0.30)",
	"low":     "rgba(69, 201, 122, 0.25)",
	"default": "rgba(80, 150, 255, 0.25)",
}

// ColorFor returns the overlay colour for a risk level.
func ColorFor(level string) string {
	if c, ok := overlayColors[strings.ToLower(level)]; ok {
		return c
	}
	return overlayColors["default"]
}

const (
	visibleOpacity = 0.9
	scrollBehavior = "smooth"
	scrollBlock    = "center"
)

// Config controls layout and overlay timing.
type Config struct {
	Scale          float64
	ContainerWidth float64
	FadeAfter      time.Duration
	RemoveAfter    time.Duration
}

// DefaultConfig matches the dashboard defaults.
func DefaultConfig() Config {
	return Config{
		Scale:       1.5,
		FadeAfter:   3500 * time.Millisecond,
		RemoveAfter: 600 * time.Millisecond,
	}
}

// Entry is a clause to highlight.
type Entry struct {
	ClauseIndex int              `json:"clause_index"`
	RiskLevel   string           `json:"risk_level"`
	Blocks      []contract.Block `json:"blocks"`
}

// EntryFromClause derives a highlight entry. A clause without risk
// information is drawn as low.
func EntryFromClause(c contract.ClauseResult) Entry {
	level := strings.ToLower(clause.ClauseLabel(c))
	if level == strings.ToLower(clause.Unknown) {
		level = "low"
	}
	return Entry{ClauseIndex: c.ClauseIndex, RiskLevel: level, Blocks: c.EffectiveBlocks()}
}

// EntriesFromDocument derives one entry per clause.
func EntriesFromDocument(doc *contract.DocumentResult) []Entry {
	if doc == nil {
		return nil
	}
	entries := make([]Entry, 0, len(doc.Results))
	for _, c := range doc.Results {
		entries = append(entries, EntryFromClause(c))
	}
	return entries
}

// Rect is a pixel rectangle relative to its page.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Overlay is a highlight rectangle drawn over one page.
type Overlay struct {
	ID          string    `json:"id"`
	Page        int       `json:"page"`
	ClauseIndex int       `json:"clause_index"`
	RiskLevel   string    `json:"risk_level"`
	Color       string    `json:"color"`
	Rect        Rect      `json:"rect"`
	Opacity     float64   `json:"opacity"`
	CreatedAt   time.Time `json:"created_at"`
	FadeAt      time.Time `json:"fade_at"`
	ExpireAt    time.Time `json:"expire_at"`
}

// ScrollTarget records the last scroll-to-clause request.
type ScrollTarget struct {
	Page        int       `json:"page"`
	ClauseIndex int       `json:"clause_index"`
	Behavior    string    `json:"behavior"`
	Block       string    `json:"block"`
	RequestedAt time.Time `json:"requested_at"`
}

// Snapshot is a consistent copy of the viewer state.
type Snapshot struct {
	State    State          `json:"state"`
	Document string         `json:"document,omitempty"`
	Pages    []RenderedPage `json:"pages"`
	Overlays []Overlay      `json:"overlays"`
	Scroll   *ScrollTarget  `json:"scroll,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Option configures a Viewer.
type Option func(*Viewer)

func WithConfig(cfg Config) Option {
	return func(v *Viewer) { v.cfg = cfg }
}

func WithParser(p Parser) Option {
	return func(v *Viewer) { v.parser = p }
}

func WithRenderer(r Renderer) Option {
	return func(v *Viewer) { v.renderer = r }
}

// WithClock injects the time source used for overlay timestamps.
func WithClock(now func() time.Time) Option {
	return func(v *Viewer) { v.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(v *Viewer) { v.log = l }
}

// Viewer is safe for concurrent use.
type Viewer struct {
	cfg      Config
	parser   Parser
	renderer Renderer
	now      func() time.Time
	log      logging.Logger

	mu         sync.Mutex
	generation uint64
	state      State
	document   string
	pages      []RenderedPage
	overlays   []Overlay
	scroll     *ScrollTarget
	lastErr    error
}

// New returns an empty viewer.
func New(opts ...Option) *Viewer {
	v := &Viewer{
		cfg:    DefaultConfig(),
		parser: PDFParser{},
		now:    time.Now,
		log:    logging.NewNopLogger(),
		state:  StateEmpty,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.cfg.Scale <= 0 {
		v.cfg.Scale = DefaultConfig().Scale
	}
	if v.renderer == nil {
		v.renderer = LayoutRenderer{ContainerWidth: v.cfg.ContainerWidth}
	}
	v.log = logging.OrNop(v.log)
	return v
}

// State returns the current state.
func (v *Viewer) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Load replaces the current document. Existing overlays and pages are dropped
// immediately. A document with no pages leaves the viewer Empty; a parse or
// render failure leaves it Failed and is also returned. A Load superseded by
// a later Load or Clear is discarded.
func (v *Viewer) Load(ctx context.Context, name string, r io.ReaderAt, size int64) error {
	v.mu.Lock()
	v.generation++
	gen := v.generation
	v.resetLocked(StateLoading)
	v.document = name
	v.mu.Unlock()

	start := time.Now()
	doc, err := v.parser.Parse(r, size)
	if err != nil {
		return v.fail(gen, apperrors.Wrap(err, apperrors.ErrCodeViewerParseFailed, "failed to parse PDF").WithDetail(name))
	}

	n := doc.NumPages()
	pages := make([]RenderedPage, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return v.fail(gen, apperrors.Wrap(err, apperrors.ErrCodeViewerRenderFailed, "rendering cancelled"))
		}
		geom, err := doc.Page(i)
		if err != nil {
			return v.fail(gen, apperrors.Wrap(err, apperrors.ErrCodeViewerParseFailed, "failed to read page"))
		}
		rp, err := v.renderer.Render(ctx, geom, v.cfg.Scale)
		if err != nil {
			return v.fail(gen, apperrors.Wrap(err, apperrors.ErrCodeViewerRenderFailed, "failed to render page").
				WithDetail(name))
		}
		pages = append(pages, rp)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation {
		return nil
	}
	v.pages = pages
	if len(pages) == 0 {
		v.state = StateEmpty
	} else {
		v.state = StateReady
	}
	v.log.Info("document rendered",
		logging.String("document", name),
		logging.Int("pages", len(pages)),
		logging.Duration("elapsed", time.Since(start)))
	return nil
}

func (v *Viewer) fail(gen uint64, err *apperrors.AppError) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation {
		return err
	}
	v.pages = nil
	v.state = StateFailed
	v.lastErr = err
	v.log.Warn("document failed to load", logging.String("document", v.document), logging.Err(err))
	return err
}

// Clear unloads the document.
func (v *Viewer) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.generation++
	v.resetLocked(StateEmpty)
}

func (v *Viewer) resetLocked(s State) {
	v.state = s
	v.document = ""
	v.pages = nil
	v.overlays = nil
	v.scroll = nil
	v.lastErr = nil
}

// HighlightClauses replaces every overlay with one per block of entries.
// Blocks on pages that were not rendered and entries without blocks are
// skipped. It returns the new overlays, or ErrCodeViewerNotReady when no
// document is rendered.
func (v *Viewer) HighlightClauses(entries []Entry) ([]Overlay, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateReady {
		return nil, apperrors.New(apperrors.ErrCodeViewerNotReady, "no rendered document to highlight").
			WithDetail(string(v.state))
	}

	v.overlays = nil
	now := v.now()
	for _, e := range entries {
		color := ColorFor(e.RiskLevel)
		for _, b := range e.Blocks {
			if !b.Valid() || b.Page >= len(v.pages) {
				continue
			}
			s := v.pages[b.Page].ScaleFactor()
			x0, y0, x1, y1 := b.BBox[0], b.BBox[1], b.BBox[2], b.BBox[3]
			v.overlays = append(v.overlays, Overlay{
				ID:          uuid.NewString(),
				Page:        b.Page,
				ClauseIndex: e.ClauseIndex,
				RiskLevel:   strings.ToLower(e.RiskLevel),
				Color:       color,
				Rect: Rect{
					Left:   x0 * s,
					Top:    y0 * s,
					Width:  (x1 - x0) * s,
					Height: (y1 - y0) * s,
				},
				Opacity:   visibleOpacity,
				CreatedAt: now,
				FadeAt:    now.Add(v.cfg.FadeAfter),
				ExpireAt:  now.Add(v.cfg.FadeAfter + v.cfg.RemoveAfter),
			})
		}
	}
	return v.copyOverlaysLocked(), nil
}

// Tick advances overlay timers to now: faded overlays drop to zero opacity
// and expired ones are removed. It returns the number still attached.
func (v *Viewer) Tick(now time.Time) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	kept := v.overlays[:0]
	for _, o := range v.overlays {
		if !now.Before(o.ExpireAt) {
			continue
		}
		if !now.Before(o.FadeAt) {
			o.Opacity = 0
		}
		kept = append(kept, o)
	}
	v.overlays = kept
	return len(kept)
}

// ScrollToClause scrolls to the page of the entry's first block and reports
// whether that page exists.
func (v *Viewer) ScrollToClause(e Entry) bool {
	if len(e.Blocks) == 0 {
		return false
	}
	first := e.Blocks[0]

	v.mu.Lock()
	defer v.mu.Unlock()
	if first.Page < 0 || first.Page >= len(v.pages) {
		return false
	}
	v.scroll = &ScrollTarget{
		Page:        first.Page,
		ClauseIndex: e.ClauseIndex,
		Behavior:    scrollBehavior,
		Block:       scrollBlock,
		RequestedAt: v.now(),
	}
	return true
}

// Overlays returns a copy of the attached overlays.
func (v *Viewer) Overlays() []Overlay {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.copyOverlaysLocked()
}

func (v *Viewer) copyOverlaysLocked() []Overlay {
	out := make([]Overlay, len(v.overlays))
	copy(out, v.overlays)
	return out
}

// Snapshot returns a copy of the full viewer state.
func (v *Viewer) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := Snapshot{
		State:    v.state,
		Document: v.document,
		Pages:    make([]RenderedPage, len(v.pages)),
		Overlays: v.copyOverlaysLocked(),
	}
	copy(s.Pages, v.pages)
	if v.scroll != nil {
		sc := *v.scroll
		s.Scroll = &sc
	}
	if v.lastErr != nil {
		s.Error = v.lastErr.Error()
	}
	return s
}
