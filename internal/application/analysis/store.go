package analysis

import (
	"regexp"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/turtacn/ClauseLens/internal/domain/clause"
	"github.com/turtacn/ClauseLens/internal/domain/viewer"
	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ClauseLens/pkg/errors"
	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

// DefaultWorkspaceID is used when a request names no workspace.
const DefaultWorkspaceID = "default"

var workspaceIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// NormalizeWorkspaceID trims id, defaults it and rejects anything that is
// not a short token.
func NormalizeWorkspaceID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return DefaultWorkspaceID, nil
	}
	if !workspaceIDPattern.MatchString(id) {
		return "", errors.New(errors.ErrCodeValidation, "workspace id must be 1-64 letters, digits, '-' or '_'").WithDetail(id)
	}
	return id, nil
}

// StoreConfig controls workspace lifetime and the defaults of new ones.
type StoreConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	DefaultMode     contract.PredictionKind
	Sensitivity     string
	Viewer          viewer.Config
	// ViewerOptions are applied to every new viewer after the defaults.
	ViewerOptions []viewer.Option
}

// Store holds workspaces in memory. A workspace not touched for TTL is
// evicted and its viewer cleared.
type Store struct {
	cfg     StoreConfig
	items   *gocache.Cache
	mu      sync.Mutex
	now     func() time.Time
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

// NewStore creates a store. With a zero CleanupInterval expired workspaces
// are only dropped when looked up.
func NewStore(cfg StoreConfig, logger logging.Logger, metrics *prometheus.AppMetrics) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = 2 * time.Hour
	}
	if _, ok := contract.ParsePredictionKind(string(cfg.DefaultMode)); !ok {
		cfg.DefaultMode = contract.KindHybrid
	}
	cfg.Sensitivity = string(clause.ProfileOrDefault(cfg.Sensitivity).Name)
	def := viewer.DefaultConfig()
	if cfg.Viewer.FadeAfter <= 0 {
		cfg.Viewer.FadeAfter = def.FadeAfter
	}
	if cfg.Viewer.RemoveAfter <= 0 {
		cfg.Viewer.RemoveAfter = def.RemoveAfter
	}

	s := &Store{
		cfg:     cfg,
		items:   gocache.New(cfg.TTL, cfg.CleanupInterval),
		now:     time.Now,
		logger:  logging.OrNop(logger),
		metrics: metrics,
	}
	s.items.OnEvicted(s.evicted)
	return s
}

func (s *Store) evicted(id string, v interface{}) {
	if ws, ok := v.(*Workspace); ok {
		ws.viewer.Clear()
	}
	s.logger.Debug("workspace evicted", logging.String("workspace", id))
	s.reportCount()
}

func (s *Store) reportCount() {
	if s.metrics != nil {
		s.metrics.ActiveWorkspaces.WithLabelValues().Set(float64(s.items.ItemCount()))
	}
}

// Get returns an existing workspace and extends its lifetime.
func (s *Store) Get(id string) (*Workspace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items.Get(id)
	if !ok {
		return nil, false
	}
	s.items.SetDefault(id, v)
	return v.(*Workspace), true
}

// GetOrCreate returns the workspace named id, creating it when absent.
func (s *Store) GetOrCreate(id string) (*Workspace, error) {
	id, err := NormalizeWorkspaceID(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.items.Get(id); ok {
		s.items.SetDefault(id, v)
		return v.(*Workspace), nil
	}
	opts := append([]viewer.Option{
		viewer.WithConfig(s.cfg.Viewer),
		viewer.WithClock(s.now),
		viewer.WithLogger(s.logger.With(logging.String("workspace", id))),
	}, s.cfg.ViewerOptions...)
	vw := viewer.New(opts...)
	ws := newWorkspace(id, s.cfg.DefaultMode, s.cfg.Sensitivity, vw, s.now())
	s.items.SetDefault(id, ws)
	s.logger.Info("workspace created", logging.String("workspace", id))
	s.reportCount()
	return ws, nil
}

// Delete evicts a workspace.
func (s *Store) Delete(id string) {
	s.items.Delete(id)
}

// Count returns the number of live workspaces.
func (s *Store) Count() int {
	return s.items.ItemCount()
}

// IDs lists the live workspaces.
func (s *Store) IDs() []string {
	items := s.items.Items()
	out := make([]string, 0, len(items))
	for id := range items {
		out = append(out, id)
	}
	return out
}
