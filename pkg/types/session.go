package types

import "time"

// SessionContext is an environment snapshot captured when a session
// begins. It is stored in the manifest for diagnostic display only;
// restore logic never reads it.
type SessionContext struct {
	OS          string
	Arch        string
	DotfilesDir string
}

// Session is one bounded unit of backup activity: one installer run.
// It owns a directory under the registry root and the manifest inside it.
type Session struct {
	// ID is label + "_" + timestamp, unique in practice and lexically
	// sortable so the registry can find the most recent session by name.
	ID string

	// Dir is the session directory. It is created when the session
	// begins, together with its manifest.
	Dir string

	CreatedAt time.Time
	Context   SessionContext
}

// SessionSummary is the registry's read-only view of one session on disk.
type SessionSummary struct {
	ID string

	// CreatedAt is zero when the manifest could not be read.
	CreatedAt time.Time

	// HasManifest is false for session directories whose manifest is
	// missing or unreadable. They are still listed.
	HasManifest bool

	// Entries is the number of recorded backups, 0 when HasManifest is
	// false.
	Entries int
}

// BackupOutcome is the result of registering one backup.
type BackupOutcome string

const (
	// BackedUp: the path was snapshotted and recorded in the manifest.
	BackedUp BackupOutcome = "backed-up"

	// NothingToBackUp: the path did not exist. Not an error.
	NothingToBackUp BackupOutcome = "nothing-to-back-up"

	// BackupFailed: the snapshot or the manifest append failed. No
	// manifest entry was recorded.
	BackupFailed BackupOutcome = "failed"
)
