// pkg/testutil/environment.go
// DEPENDENCIES: None (base test utilities)
// PURPOSE: Orchestrate isolated test environments for the backup core

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotbak/pkg/filesystem"
	"github.com/arthur-debert/dotbak/pkg/manifest"
	"github.com/arthur-debert/dotbak/pkg/paths"
	"github.com/arthur-debert/dotbak/pkg/registry"
	"github.com/arthur-debert/dotbak/pkg/session"
	"github.com/arthur-debert/dotbak/pkg/snapshot"
	"github.com/arthur-debert/dotbak/pkg/types"
)

// Environment is a fully wired backup core over an isolated temp
// directory: its own fake home, dotfiles root, and registry root, with
// the relevant environment variables pointed at them.
type Environment struct {
	Home         string
	DotfilesRoot string
	RegistryRoot string

	FS       types.FS
	Paths    *paths.Paths
	Store    *manifest.Store
	Sessions *session.Service
	Registry *registry.Registry

	t *testing.T
}

// NewEnvironment creates an isolated environment on the real filesystem.
// Symlink behavior matters to the core, so there is no in-memory variant
// here; manifest-only tests can use filesystem.NewMemory directly.
func NewEnvironment(t *testing.T, dryRun bool) *Environment {
	t.Helper()

	base := t.TempDir()
	env := &Environment{
		Home:         filepath.Join(base, "home"),
		DotfilesRoot: filepath.Join(base, "dotfiles"),
		RegistryRoot: filepath.Join(base, "registry"),
		t:            t,
	}
	for _, dir := range []string{env.Home, env.DotfilesRoot} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}

	t.Setenv("HOME", env.Home)
	t.Setenv(paths.EnvDotfilesRoot, env.DotfilesRoot)
	t.Setenv(paths.EnvBackupDir, env.RegistryRoot)

	p, err := paths.New(env.DotfilesRoot, env.RegistryRoot)
	if err != nil {
		t.Fatalf("failed to create paths: %v", err)
	}
	env.Paths = p

	env.FS = filesystem.NewOS()
	env.Store = manifest.NewStore(env.FS, p, dryRun)
	snapper := snapshot.New(env.FS, dryRun)
	env.Sessions = session.NewService(env.FS, p, env.Store, snapper, ".dotbak.orig", dryRun)
	env.Registry = registry.New(env.FS, p, env.Store, dryRun)

	return env
}

// WriteHomeFile writes a file under the fake home and returns its path
func (e *Environment) WriteHomeFile(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.Home, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		e.t.Fatalf("failed to create parent of %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		e.t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// ReadHomeFile reads a file under the fake home
func (e *Environment) ReadHomeFile(name string) string {
	e.t.Helper()
	data, err := os.ReadFile(filepath.Join(e.Home, name))
	if err != nil {
		e.t.Fatalf("failed to read %s: %v", name, err)
	}
	return string(data)
}
