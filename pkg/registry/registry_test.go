// pkg/registry/registry_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Real filesystem (t.TempDir)
// PURPOSE: Test session enumeration, latest lookup, and retention sweep

package registry_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotbak/pkg/errors"
	"github.com/arthur-debert/dotbak/pkg/filesystem"
	"github.com/arthur-debert/dotbak/pkg/manifest"
	"github.com/arthur-debert/dotbak/pkg/paths"
	"github.com/arthur-debert/dotbak/pkg/registry"
	"github.com/arthur-debert/dotbak/pkg/types"
)

func newRegistry(t *testing.T, dryRun bool) (*registry.Registry, *manifest.Store, string) {
	t.Helper()
	root := t.TempDir()
	p, err := paths.New("/home/u/dotfiles", root)
	require.NoError(t, err)

	fs := filesystem.NewOS()
	store := manifest.NewStore(fs, p, false)
	return registry.New(fs, p, store, dryRun), store, root
}

// seedSessions creates n sessions one minute apart, oldest first, and
// returns their ids in creation order.
func seedSessions(t *testing.T, store *manifest.Store, n int) []string {
	t.Helper()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := types.SessionContext{OS: "linux", Arch: "amd64", DotfilesDir: "/home/u/dotfiles"}

	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ts := base.Add(time.Duration(i) * time.Minute)
		id := fmt.Sprintf("install_%s", ts.Format("20060102-150405"))
		require.NoError(t, store.Initialize(id, ts, ctx))
		ids = append(ids, id)
	}
	return ids
}

func TestLatest(t *testing.T) {
	reg, store, _ := newRegistry(t, false)
	ids := seedSessions(t, store, 3)

	latest, err := reg.Latest()
	require.NoError(t, err)
	assert.Equal(t, ids[2], latest)
}

func TestLatest_EmptyRegistry(t *testing.T) {
	reg, _, _ := newRegistry(t, false)

	_, err := reg.Latest()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNoSessionsFound))
}

func TestLatest_MissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "never-created")
	p, err := paths.New("/home/u/dotfiles", root)
	require.NoError(t, err)
	fs := filesystem.NewOS()
	reg := registry.New(fs, p, manifest.NewStore(fs, p, false), false)

	_, err = reg.Latest()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNoSessionsFound))
}

func TestListSessions(t *testing.T) {
	reg, store, root := newRegistry(t, false)
	ids := seedSessions(t, store, 2)

	// a session directory with no manifest is still listed
	orphan := filepath.Join(root, "broken_20240401-000000")
	require.NoError(t, os.MkdirAll(orphan, 0755))

	summaries, err := reg.ListSessions()
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	// newest first: the orphan's date sorts after the seeded ones
	assert.Equal(t, "broken_20240401-000000", summaries[0].ID)
	assert.False(t, summaries[0].HasManifest)

	assert.Equal(t, ids[1], summaries[1].ID)
	assert.True(t, summaries[1].HasManifest)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 1, 0, 0, time.UTC), summaries[1].CreatedAt)
}

func TestExpireOldSessions(t *testing.T) {
	reg, store, root := newRegistry(t, false)
	ids := seedSessions(t, store, 8)

	removed, err := reg.ExpireOldSessions(5)
	require.NoError(t, err)

	// exactly the 3 oldest go away
	assert.ElementsMatch(t, ids[:3], removed)
	for _, id := range ids[:3] {
		_, err := os.Stat(filepath.Join(root, id))
		assert.True(t, os.IsNotExist(err), "expired session %s should be gone", id)
	}
	for _, id := range ids[3:] {
		_, err := os.Stat(filepath.Join(root, id))
		assert.NoError(t, err, "kept session %s should remain", id)
	}
}

func TestExpireOldSessions_NothingToDo(t *testing.T) {
	reg, store, _ := newRegistry(t, false)
	seedSessions(t, store, 3)

	removed, err := reg.ExpireOldSessions(5)
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestExpireOldSessions_ZeroMeansDefault(t *testing.T) {
	reg, store, _ := newRegistry(t, false)
	ids := seedSessions(t, store, 7)

	// DefaultKeep is 5, so the 2 oldest go
	removed, err := reg.ExpireOldSessions(0)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids[:2], removed)
}

func TestExpireOldSessions_RejectsBadKeep(t *testing.T) {
	reg, _, _ := newRegistry(t, false)

	_, err := reg.ExpireOldSessions(-1)
	require.Error(t, err)
}

func TestExpireOldSessions_DryRun(t *testing.T) {
	reg, store, root := newRegistry(t, true)
	ids := seedSessions(t, store, 8)

	removed, err := reg.ExpireOldSessions(5)
	require.NoError(t, err)
	assert.Len(t, removed, 3)

	// nothing actually deleted
	for _, id := range ids {
		_, err := os.Stat(filepath.Join(root, id))
		assert.NoError(t, err)
	}
}
