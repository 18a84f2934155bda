// Package filesystem provides implementations of the types.FS interface:
// an OS-backed one for production use and an afero-backed one so tests can
// run against an in-memory filesystem. It also carries the recursive copy
// helpers used when snapshotting and restoring directory trees.
package filesystem
