// Package types defines the shared data model for dotbak: sessions,
// manifest entries, rollback reports, and the filesystem interface the
// core components are written against.
//
// Keeping these in a leaf package lets snapshot, manifest, session,
// registry, and rollback depend on a common vocabulary without importing
// each other.
package types
