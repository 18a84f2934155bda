package types

import "io/fs"

// FS abstracts the filesystem operations the core needs. The OS-backed
// implementation lives in pkg/filesystem; an afero-backed one is available
// for tests that want an in-memory filesystem.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations. Implementations without real symlink support
	// (afero's MemMapFs) emulate them; Lstat may fall back to Stat there.
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Removal and rename
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error
}
