package filesystem

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/dotbak/pkg/errors"
	"github.com/arthur-debert/dotbak/pkg/types"
)

// CopyFile copies a regular file byte-for-byte, creating parent
// directories for the destination as needed. The source's permission bits
// are preserved.
func CopyFile(fsys types.FS, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", src)
	}

	data, err := fsys.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "failed to read %s", src)
	}

	if err := fsys.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create parent directory for %s", dst)
	}

	if err := fsys.WriteFile(dst, data, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", dst)
	}

	return nil
}

// CopyTree recursively copies the directory at src to dst, preserving
// structure. Symlinks inside the tree are recreated as symlinks with the
// same target, never dereferenced.
func CopyTree(fsys types.FS, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", src)
	}
	if !info.IsDir() {
		return errors.Newf(errors.ErrInvalidInput, "%s is not a directory", src)
	}

	if err := fsys.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dst)
	}

	entries, err := fsys.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read directory %s", src)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		linfo, err := fsys.Lstat(srcPath)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to lstat %s", srcPath)
		}

		switch {
		case linfo.Mode()&os.ModeSymlink != 0:
			target, err := fsys.Readlink(srcPath)
			if err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "failed to read link %s", srcPath)
			}
			if err := fsys.Symlink(target, dstPath); err != nil {
				return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to link %s", dstPath)
			}
		case linfo.IsDir():
			if err := CopyTree(fsys, srcPath, dstPath); err != nil {
				return err
			}
		default:
			if err := CopyFile(fsys, srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	return nil
}

// Exists reports whether a path exists, without following a trailing
// symlink. A dangling symlink still counts as existing.
func Exists(fsys types.FS, path string) bool {
	_, err := fsys.Lstat(path)
	return err == nil
}

// IsNotExist reports whether err means the path was absent
func IsNotExist(err error) bool {
	return stderrors.Is(err, fs.ErrNotExist) || errors.IsErrorCode(err, errors.ErrNotFound)
}
