// Package registry enumerates backup sessions on disk, resolves the most
// recent one, and expires old sessions beyond a retention count.
//
// The registry is not a persisted entity of its own: it is derived by
// listing the session directories under the registry root. Session ids
// embed a sortable timestamp, so descending name order is creation order.
package registry

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotbak/pkg/errors"
	"github.com/arthur-debert/dotbak/pkg/filesystem"
	"github.com/arthur-debert/dotbak/pkg/logging"
	"github.com/arthur-debert/dotbak/pkg/manifest"
	"github.com/arthur-debert/dotbak/pkg/paths"
	"github.com/arthur-debert/dotbak/pkg/types"
)

// DefaultKeep is how many sessions a retention sweep keeps when the
// caller does not say otherwise.
const DefaultKeep = 5

// Registry is a read-mostly view over all sessions under the registry
// root. Only ExpireOldSessions mutates anything.
type Registry struct {
	fs     types.FS
	paths  *paths.Paths
	store  *manifest.Store
	logger zerolog.Logger
	dryRun bool
}

// New creates a registry over the configured registry root
func New(fs types.FS, p *paths.Paths, store *manifest.Store, dryRun bool) *Registry {
	return &Registry{
		fs:     fs,
		paths:  p,
		store:  store,
		logger: logging.GetLogger("registry"),
		dryRun: dryRun,
	}
}

// ListSessions returns every session on disk, newest first. Sessions
// whose manifest is missing or unreadable are still listed, flagged via
// HasManifest.
func (r *Registry) ListSessions() ([]types.SessionSummary, error) {
	ids, err := r.sessionIDs()
	if err != nil {
		return nil, err
	}

	summaries := make([]types.SessionSummary, 0, len(ids))
	for _, id := range ids {
		summary := types.SessionSummary{ID: id}
		if doc, err := r.store.Read(id); err == nil {
			summary.HasManifest = true
			summary.Entries = len(doc.Backups)
			if ts, err := time.Parse(time.RFC3339, doc.CreatedAt); err == nil {
				summary.CreatedAt = ts
			}
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// Latest returns the id of the most recent session. It fails with
// ErrNoSessionsFound when the registry root is missing or empty.
func (r *Registry) Latest() (string, error) {
	ids, err := r.sessionIDs()
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", errors.Newf(errors.ErrNoSessionsFound, "no sessions under %s", r.paths.RegistryRoot())
	}
	return ids[0], nil
}

// ExpireOldSessions deletes all but the keep most recent sessions,
// including their manifests and snapshot artifacts. Irreversible; every
// removal is logged. Returns the ids that were removed (or would be, in
// dry-run mode), newest first. A keep of zero selects DefaultKeep.
func (r *Registry) ExpireOldSessions(keep int) ([]string, error) {
	if keep == 0 {
		keep = DefaultKeep
	}
	if keep < 1 {
		return nil, errors.Newf(errors.ErrInvalidInput, "keep must be at least 1, got %d", keep)
	}

	ids, err := r.sessionIDs()
	if err != nil {
		return nil, err
	}
	if len(ids) <= keep {
		return nil, nil
	}

	expired := ids[keep:]
	var removed []string
	for _, id := range expired {
		dir := r.paths.SessionDir(id)

		if r.dryRun {
			r.logger.Info().Str("session", id).Str("dir", dir).Msg("Dry run: would remove expired session")
			removed = append(removed, id)
			continue
		}

		if err := r.fs.RemoveAll(dir); err != nil {
			return removed, errors.Wrapf(err, errors.ErrSessionExpire, "failed to remove expired session %s", id)
		}
		r.logger.Info().Str("session", id).Str("dir", dir).Msg("Expired session removed")
		removed = append(removed, id)
	}

	return removed, nil
}

// sessionIDs lists session directory names, newest first. A missing
// registry root is an empty registry, not an error.
func (r *Registry) sessionIDs() ([]string, error) {
	root := r.paths.RegistryRoot()

	entries, err := r.fs.ReadDir(root)
	if err != nil {
		if filesystem.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to list sessions under %s", root)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			ids = append(ids, entry.Name())
		}
	}

	// ids embed a zero-padded timestamp, so lexical descending order is
	// newest first
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}
