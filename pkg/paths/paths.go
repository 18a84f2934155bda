// Package paths provides centralized path handling for dotbak.
// It implements XDG Base Directory compliance for the backup registry,
// configuration, and log locations, with environment-variable overrides.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/arthur-debert/dotbak/pkg/errors"
)

// Environment variable names
const (
	// EnvDotfilesRoot is the primary environment variable for the
	// dotfiles location. Recorded in session manifests for display only.
	EnvDotfilesRoot = "DOTFILES_ROOT"

	// EnvBackupDir overrides the registry root where sessions are stored
	EnvBackupDir = "DOTBAK_BACKUP_DIR"

	// EnvConfigDir overrides the XDG config directory for dotbak
	EnvConfigDir = "DOTBAK_CONFIG_DIR"
)

// Internal directory and file names. These define the on-disk registry
// layout and are not user-configurable.
const (
	// DotbakDirName is the directory name for dotbak-specific files
	DotbakDirName = "dotbak"

	// BackupsDirName is the registry root subdirectory under the data dir
	BackupsDirName = "backups"

	// ManifestFileName is the per-session manifest file
	ManifestFileName = "manifest.json"

	// SnapshotsDirName holds snapshot artifacts inside a session dir.
	// Originals keep their full path below it, so names never collide.
	SnapshotsDirName = "files"

	// LogFileName is the name of the log file
	LogFileName = "dotbak.log"
)

// Paths provides centralized path management for dotbak
type Paths struct {
	dotfilesRoot string
	registryRoot string
	configDir    string
	stateDir     string
}

// New creates a Paths instance. If dotfilesRoot is empty it is resolved
// from DOTFILES_ROOT, falling back to the current working directory.
// If registryRoot is empty it is resolved from DOTBAK_BACKUP_DIR, falling
// back to the XDG data directory.
func New(dotfilesRoot, registryRoot string) (*Paths, error) {
	p := &Paths{}

	if dotfilesRoot == "" {
		dotfilesRoot = os.Getenv(EnvDotfilesRoot)
	}
	if dotfilesRoot == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to determine working directory for dotfiles root")
		}
		dotfilesRoot = cwd
	}
	absRoot, err := filepath.Abs(ExpandHome(dotfilesRoot))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to get absolute path for dotfiles root")
	}
	p.dotfilesRoot = absRoot

	if registryRoot == "" {
		registryRoot = os.Getenv(EnvBackupDir)
	}
	if registryRoot == "" {
		registryRoot = filepath.Join(xdg.DataHome, DotbakDirName, BackupsDirName)
	}
	p.registryRoot = ExpandHome(registryRoot)

	if configDir := os.Getenv(EnvConfigDir); configDir != "" {
		p.configDir = ExpandHome(configDir)
	} else {
		p.configDir = filepath.Join(xdg.ConfigHome, DotbakDirName)
	}

	if stateDir := os.Getenv("XDG_STATE_HOME"); stateDir != "" {
		p.stateDir = filepath.Join(stateDir, DotbakDirName)
	} else {
		homeDir, _ := os.UserHomeDir()
		p.stateDir = filepath.Join(homeDir, ".local", "state", DotbakDirName)
	}

	return p, nil
}

// DotfilesRoot returns the dotfiles root. Diagnostic only: it is recorded
// in session manifests but never used for restore logic.
func (p *Paths) DotfilesRoot() string {
	return p.dotfilesRoot
}

// RegistryRoot returns the directory under which all sessions live
func (p *Paths) RegistryRoot() string {
	return p.registryRoot
}

// ConfigDir returns the directory searched for dotbak.toml / dotbak.yaml
func (p *Paths) ConfigDir() string {
	return p.configDir
}

// SessionDir returns the directory owned by the given session
func (p *Paths) SessionDir(sessionID string) string {
	return filepath.Join(p.registryRoot, sessionID)
}

// ManifestPath returns the manifest file for the given session
func (p *Paths) ManifestPath(sessionID string) string {
	return filepath.Join(p.registryRoot, sessionID, ManifestFileName)
}

// SnapshotsDir returns the directory holding a session's snapshot
// artifacts.
func (p *Paths) SnapshotsDir(sessionID string) string {
	return filepath.Join(p.registryRoot, sessionID, SnapshotsDirName)
}

// LogFilePath returns the path to the log file
func (p *Paths) LogFilePath() string {
	return filepath.Join(p.stateDir, LogFileName)
}

// ExpandHome expands a leading ~ or ~/ to the user's home directory
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
