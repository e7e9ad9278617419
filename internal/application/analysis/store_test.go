package analysis

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ClauseLens/internal/domain/viewer"
	"github.com/turtacn/ClauseLens/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/ClauseLens/pkg/errors"
	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

func TestNormalizeWorkspaceID(t *testing.T) {
	id, err := NormalizeWorkspaceID("  ")
	require.NoError(t, err)
	assert.Equal(t, DefaultWorkspaceID, id)

	id, err = NormalizeWorkspaceID(" team-a_1 ")
	require.NoError(t, err)
	assert.Equal(t, "team-a_1", id)

	for _, bad := range []string{"a b", "../etc", strings.Repeat("x", 65)} {
		_, err := NormalizeWorkspaceID(bad)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation), bad)
	}
}

func TestStore_GetOrCreateReturnsSameWorkspace(t *testing.T) {
	s := newTestStore(t, pagesParser{n: 1})

	a, err := s.GetOrCreate("alpha")
	require.NoError(t, err)
	b, err := s.GetOrCreate("alpha")
	require.NoError(t, err)
	assert.Same(t, a, b)

	d, err := s.GetOrCreate("")
	require.NoError(t, err)
	assert.Equal(t, DefaultWorkspaceID, d.ID)
	assert.Equal(t, 2, s.Count())
	assert.ElementsMatch(t, []string{"alpha", DefaultWorkspaceID}, s.IDs())
}

func TestStore_Defaults(t *testing.T) {
	s := NewStore(StoreConfig{DefaultMode: "bogus", Sensitivity: "nope"}, nil, nil)
	assert.Equal(t, 2*time.Hour, s.cfg.TTL)
	assert.Equal(t, viewer.DefaultConfig().FadeAfter, s.cfg.Viewer.FadeAfter)

	ws, err := s.GetOrCreate("x")
	require.NoError(t, err)
	assert.Equal(t, contract.KindHybrid, ws.Mode())
	assert.Equal(t, "balanced", ws.Sensitivity())
	assert.Equal(t, viewer.StateEmpty, ws.Viewer().State())
}

func TestStore_KeepsConfiguredDefaults(t *testing.T) {
	s := NewStore(StoreConfig{DefaultMode: contract.KindGNN, Sensitivity: "Conservative"}, logging.NewNopLogger(), nil)
	ws, err := s.GetOrCreate("x")
	require.NoError(t, err)
	assert.Equal(t, contract.KindGNN, ws.Mode())
	assert.Equal(t, "conservative", ws.Sensitivity())
}

func TestStore_DeleteClearsViewer(t *testing.T) {
	s := newTestStore(t, pagesParser{n: 2})
	ws, err := s.GetOrCreate("gone")
	require.NoError(t, err)
	require.NoError(t, ws.Viewer().Load(context.Background(), "c.pdf", strings.NewReader("x"), 1))
	require.Equal(t, viewer.StateReady, ws.Viewer().State())

	s.Delete("gone")
	assert.Equal(t, viewer.StateEmpty, ws.Viewer().State())
	_, ok := s.Get("gone")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Count())
}

func TestStore_ExpiredWorkspaceIsRecreated(t *testing.T) {
	s := NewStore(StoreConfig{TTL: time.Millisecond}, nil, nil)
	first, err := s.GetOrCreate("w")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	_, ok := s.Get("w")
	assert.False(t, ok)
	second, err := s.GetOrCreate("w")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestWorkspace_SnapshotIsACopy(t *testing.T) {
	s := newTestStore(t, pagesParser{n: 1})
	ws, err := s.GetOrCreate("snap")
	require.NoError(t, err)
	ws.update(testNow, func(w *Workspace) {
		w.report = &ReportRef{Filename: "r.pdf", Size: 3}
	})

	snap := ws.Snapshot()
	snap.Report.Size = 99
	assert.Equal(t, 3, ws.Snapshot().Report.Size)
	assert.Equal(t, "snap", snap.ID)
	assert.Equal(t, testNow, snap.CreatedAt)
	assert.Equal(t, viewer.StateEmpty, snap.Viewer.State)
}
