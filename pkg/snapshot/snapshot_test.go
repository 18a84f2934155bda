// pkg/snapshot/snapshot_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Real filesystem (t.TempDir)
// PURPOSE: Test type-aware snapshotting of files, directories, and symlinks

package snapshot_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotbak/pkg/errors"
	"github.com/arthur-debert/dotbak/pkg/filesystem"
	"github.com/arthur-debert/dotbak/pkg/snapshot"
	"github.com/arthur-debert/dotbak/pkg/types"
)

func TestSnapshot_File(t *testing.T) {
	dir := t.TempDir()
	snapDir := filepath.Join(dir, "session", "files")
	src := filepath.Join(dir, "home", ".zshrc")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0755))
	require.NoError(t, os.WriteFile(src, []byte("export EDITOR=vim"), 0644))

	snapper := snapshot.New(filesystem.NewOS(), false)
	artifact, pathType, err := snapper.Snapshot(src, snapDir)
	require.NoError(t, err)

	assert.Equal(t, types.TypeFile, pathType)
	// artifact nests the full original path under the snapshots dir
	assert.Equal(t, filepath.Join(snapDir, src[1:]), artifact)

	data, err := os.ReadFile(artifact)
	require.NoError(t, err)
	assert.Equal(t, "export EDITOR=vim", string(data))

	// source untouched
	data, err = os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "export EDITOR=vim", string(data))
}

func TestSnapshot_Directory(t *testing.T) {
	dir := t.TempDir()
	snapDir := filepath.Join(dir, "session", "files")
	src := filepath.Join(dir, ".config", "nvim")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "lua"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "init.lua"), []byte("-- init"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "lua", "opts.lua"), []byte("-- opts"), 0644))

	snapper := snapshot.New(filesystem.NewOS(), false)
	artifact, pathType, err := snapper.Snapshot(src, snapDir)
	require.NoError(t, err)

	assert.Equal(t, types.TypeDirectory, pathType)

	data, err := os.ReadFile(filepath.Join(artifact, "lua", "opts.lua"))
	require.NoError(t, err)
	assert.Equal(t, "-- opts", string(data))
}

func TestSnapshot_SymlinkStoresTargetNotData(t *testing.T) {
	dir := t.TempDir()
	snapDir := filepath.Join(dir, "session", "files")

	realFile := filepath.Join(dir, "real.txt")
	require.NoError(t, os.WriteFile(realFile, []byte("real data"), 0644))
	link := filepath.Join(dir, ".vimrc")
	require.NoError(t, os.Symlink(realFile, link))

	snapper := snapshot.New(filesystem.NewOS(), false)
	artifact, pathType, err := snapper.Snapshot(link, snapDir)
	require.NoError(t, err)

	assert.Equal(t, types.TypeSymlink, pathType)

	// the artifact holds the target string, not the pointed-to bytes
	data, err := os.ReadFile(artifact)
	require.NoError(t, err)
	assert.Equal(t, realFile, string(data))
}

func TestSnapshot_SymlinkToDirectoryStaysALink(t *testing.T) {
	dir := t.TempDir()
	snapDir := filepath.Join(dir, "session", "files")

	realDir := filepath.Join(dir, "configs")
	require.NoError(t, os.MkdirAll(realDir, 0755))
	link := filepath.Join(dir, ".config-link")
	require.NoError(t, os.Symlink(realDir, link))

	snapper := snapshot.New(filesystem.NewOS(), false)
	artifact, pathType, err := snapper.Snapshot(link, snapDir)
	require.NoError(t, err)

	// symlink wins over directory
	assert.Equal(t, types.TypeSymlink, pathType)
	data, err := os.ReadFile(artifact)
	require.NoError(t, err)
	assert.Equal(t, realDir, string(data))
}

func TestSnapshot_DanglingSymlink(t *testing.T) {
	dir := t.TempDir()
	snapDir := filepath.Join(dir, "session", "files")

	link := filepath.Join(dir, "broken")
	require.NoError(t, os.Symlink("/nonexistent/target", link))

	snapper := snapshot.New(filesystem.NewOS(), false)
	artifact, pathType, err := snapper.Snapshot(link, snapDir)
	require.NoError(t, err)

	assert.Equal(t, types.TypeSymlink, pathType)
	data, err := os.ReadFile(artifact)
	require.NoError(t, err)
	assert.Equal(t, "/nonexistent/target", string(data))
}

func TestSnapshot_MissingPathIsNotFound(t *testing.T) {
	dir := t.TempDir()

	snapper := snapshot.New(filesystem.NewOS(), false)
	_, _, err := snapper.Snapshot(filepath.Join(dir, "absent"), filepath.Join(dir, "files"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestSnapshot_DryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	snapDir := filepath.Join(dir, "session", "files")
	src := filepath.Join(dir, ".zshrc")
	require.NoError(t, os.WriteFile(src, []byte("old"), 0644))

	snapper := snapshot.New(filesystem.NewOS(), true)
	artifact, pathType, err := snapper.Snapshot(src, snapDir)
	require.NoError(t, err)

	// same outcome shape as a real run
	assert.Equal(t, types.TypeFile, pathType)
	assert.NotEmpty(t, artifact)

	// but no artifact on disk
	_, err = os.Stat(filepath.Join(dir, "session"))
	assert.True(t, os.IsNotExist(err))
}
