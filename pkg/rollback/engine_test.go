// pkg/rollback/engine_test.go
// TEST TYPE: Unit + Integration Test
// DEPENDENCIES: Real filesystem (t.TempDir)
// PURPOSE: Test type-aware restore, partial failure containment, dry-run
// purity, and the confirmation gate

package rollback_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotbak/pkg/errors"
	"github.com/arthur-debert/dotbak/pkg/filesystem"
	"github.com/arthur-debert/dotbak/pkg/manifest"
	"github.com/arthur-debert/dotbak/pkg/paths"
	"github.com/arthur-debert/dotbak/pkg/rollback"
	"github.com/arthur-debert/dotbak/pkg/session"
	"github.com/arthur-debert/dotbak/pkg/snapshot"
	"github.com/arthur-debert/dotbak/pkg/types"
)

// stubDialog approves or declines every confirmation
type stubDialog struct {
	approve bool
	err     error
	asked   int
}

func (d *stubDialog) ConfirmRollback(sessionID string, paths []string) (bool, error) {
	d.asked++
	return d.approve, d.err
}

type fixture struct {
	fs      types.FS
	paths   *paths.Paths
	store   *manifest.Store
	service *session.Service
	home    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fs := filesystem.NewOS()
	p, err := paths.New("/home/u/dotfiles", t.TempDir())
	require.NoError(t, err)

	store := manifest.NewStore(fs, p, false)
	snapper := snapshot.New(fs, false)
	svc := session.NewService(fs, p, store, snapper, ".dotbak.orig", false)

	return &fixture{fs: fs, paths: p, store: store, service: svc, home: t.TempDir()}
}

func (f *fixture) engine(dryRun bool, dialog types.ConfirmationDialog) *rollback.Engine {
	return rollback.New(f.fs, f.store, dialog, dryRun)
}

func TestRoundTrip_File(t *testing.T) {
	f := newFixture(t)
	target := filepath.Join(f.home, ".zshrc")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0644))

	sess, err := f.service.Begin("install")
	require.NoError(t, err)
	_, err = f.service.RegisterBackup(sess, target)
	require.NoError(t, err)

	// installer overwrites, then the file is deleted entirely
	require.NoError(t, os.WriteFile(target, []byte("new"), 0644))
	require.NoError(t, os.Remove(target))

	report, err := f.engine(false, &stubDialog{approve: true}).RestoreAll(sess.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, types.StateCompleted, report.State)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestRoundTrip_Directory(t *testing.T) {
	f := newFixture(t)
	target := filepath.Join(f.home, ".config", "nvim")
	require.NoError(t, os.MkdirAll(filepath.Join(target, "lua"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "init.lua"), []byte("-- v1"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(target, "lua", "keys.lua"), []byte("-- keys"), 0644))

	sess, err := f.service.Begin("install")
	require.NoError(t, err)
	_, err = f.service.RegisterBackup(sess, target)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(target))

	report, err := f.engine(false, nil).RestoreAll(sess.ID, nil)
	require.NoError(t, err)
	require.True(t, report.Succeeded())

	data, err := os.ReadFile(filepath.Join(target, "lua", "keys.lua"))
	require.NoError(t, err)
	assert.Equal(t, "-- keys", string(data))
}

func TestRoundTrip_Symlink(t *testing.T) {
	f := newFixture(t)
	linkTarget := filepath.Join(f.home, "dotfiles", "zshrc")
	require.NoError(t, os.MkdirAll(filepath.Dir(linkTarget), 0755))
	require.NoError(t, os.WriteFile(linkTarget, []byte("zsh config"), 0644))

	link := filepath.Join(f.home, ".zshrc")
	require.NoError(t, os.Symlink(linkTarget, link))

	sess, err := f.service.Begin("install")
	require.NoError(t, err)
	_, err = f.service.RegisterBackup(sess, link)
	require.NoError(t, err)

	// installer replaces the link with a regular file
	require.NoError(t, os.Remove(link))
	require.NoError(t, os.WriteFile(link, []byte("plain file now"), 0644))

	report, err := f.engine(false, nil).RestoreAll(sess.ID, nil)
	require.NoError(t, err)
	require.True(t, report.Succeeded())

	// back to a symlink with the same target string
	got, err := os.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, linkTarget, got)
}

func TestPartialFailureContainment(t *testing.T) {
	f := newFixture(t)

	var targets []string
	for _, name := range []string{"one", "two", "three"} {
		target := filepath.Join(f.home, "."+name)
		require.NoError(t, os.WriteFile(target, []byte(name), 0644))
		targets = append(targets, target)
	}

	sess, err := f.service.Begin("install")
	require.NoError(t, err)
	for _, target := range targets {
		_, err = f.service.RegisterBackup(sess, target)
		require.NoError(t, err)
	}

	for _, target := range targets {
		require.NoError(t, os.Remove(target))
	}

	// sabotage entry 2: its snapshot artifact disappears
	entries, err := f.store.ReadAll(sess.ID)
	require.NoError(t, err)
	require.NoError(t, os.Remove(entries[1].Backup))

	report, err := f.engine(false, nil).RestoreAll(sess.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, types.StatePartialFailure, report.State)
	assert.Equal(t, []string{targets[1]}, report.FailedPaths())

	// entries 1 and 3 restored anyway
	for _, target := range []string{targets[0], targets[2]} {
		_, err := os.Stat(target)
		assert.NoError(t, err)
	}
	require.Len(t, report.Results, 3)
	assert.True(t, errors.IsErrorCode(report.Results[1].Err, errors.ErrRestoreFailed))
}

func TestRestoreOrderIrrelevant(t *testing.T) {
	f := newFixture(t)

	targetA := filepath.Join(f.home, ".alpha")
	targetB := filepath.Join(f.home, ".beta")
	require.NoError(t, os.WriteFile(targetA, []byte("alpha"), 0644))
	require.NoError(t, os.WriteFile(targetB, []byte("beta"), 0644))

	sess, err := f.service.Begin("install")
	require.NoError(t, err)
	_, err = f.service.RegisterBackup(sess, targetA)
	require.NoError(t, err)
	_, err = f.service.RegisterBackup(sess, targetB)
	require.NoError(t, err)

	// reverse the manifest order on disk
	doc, err := f.store.Read(sess.ID)
	require.NoError(t, err)
	doc.Backups[0], doc.Backups[1] = doc.Backups[1], doc.Backups[0]
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(f.paths.ManifestPath(sess.ID), data, 0644))

	require.NoError(t, os.Remove(targetA))
	require.NoError(t, os.Remove(targetB))

	report, err := f.engine(false, nil).RestoreAll(sess.ID, nil)
	require.NoError(t, err)
	require.True(t, report.Succeeded())

	for target, want := range map[string]string{targetA: "alpha", targetB: "beta"} {
		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, want, string(data))
	}
}

func TestRun_DeclinedAborts(t *testing.T) {
	f := newFixture(t)
	target := filepath.Join(f.home, ".zshrc")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0644))

	sess, err := f.service.Begin("install")
	require.NoError(t, err)
	_, err = f.service.RegisterBackup(sess, target)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(target, []byte("new"), 0644))

	dialog := &stubDialog{approve: false}
	report, err := f.engine(false, dialog).Run(sess.ID)
	require.Error(t, err)

	assert.Equal(t, types.StateAborted, report.State)
	assert.Equal(t, 1, dialog.asked)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRollbackAborted))

	// nothing touched
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestRun_DryRunSkipsConfirmationAndMutatesNothing(t *testing.T) {
	f := newFixture(t)
	target := filepath.Join(f.home, ".zshrc")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0644))

	sess, err := f.service.Begin("install")
	require.NoError(t, err)
	_, err = f.service.RegisterBackup(sess, target)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(target, []byte("new"), 0644))

	dialog := &stubDialog{approve: false}
	report, err := f.engine(true, dialog).Run(sess.ID)
	require.NoError(t, err)

	// same outcome shape as a real run would report
	assert.Equal(t, types.StateCompleted, report.State)
	assert.Equal(t, 0, dialog.asked)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestPreview(t *testing.T) {
	f := newFixture(t)
	target := filepath.Join(f.home, ".zshrc")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0644))

	sess, err := f.service.Begin("install")
	require.NoError(t, err)
	_, err = f.service.RegisterBackup(sess, target)
	require.NoError(t, err)

	preview, err := f.engine(false, nil).Preview(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{target}, preview)
}
