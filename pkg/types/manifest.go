package types

// PathType classifies what kind of filesystem object a manifest entry
// recorded. Symlinks are classified before directories so a link to a
// directory is restored as a link, never as a copied tree.
type PathType string

const (
	TypeFile      PathType = "file"
	TypeDirectory PathType = "directory"
	TypeSymlink   PathType = "symlink"
)

// ManifestEntry records one path the installer was about to overwrite.
// Entries are append-only: never edited or removed in place.
type ManifestEntry struct {
	// Original is the absolute path that existed before the installer
	// acted on it.
	Original string `json:"original"`

	// Backup is the snapshot taken of Original, inside the session
	// directory.
	Backup string `json:"backup"`

	// Type drives restoration: file, directory, or symlink.
	Type PathType `json:"type"`
}

// Manifest is the persisted form of a session's backup record, stored as
// manifest.json in the session directory. The context fields (DotfilesDir,
// OS, Arch) are diagnostic only and never consulted during restore.
type Manifest struct {
	SessionID   string          `json:"sessionId"`
	CreatedAt   string          `json:"createdAt"`
	DotfilesDir string          `json:"dotfilesDir"`
	OS          string          `json:"os"`
	Arch        string          `json:"arch"`
	Backups     []ManifestEntry `json:"backups"`
}
