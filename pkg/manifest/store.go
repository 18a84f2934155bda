// Package manifest persists the per-session backup record as a JSON
// document (manifest.json in each session directory).
//
// Appends are whole-document read-modify-write: the updated manifest is
// written to a temporary file and renamed into place, so entries already
// on disk survive an interrupted append.
package manifest

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotbak/pkg/errors"
	"github.com/arthur-debert/dotbak/pkg/filesystem"
	"github.com/arthur-debert/dotbak/pkg/logging"
	"github.com/arthur-debert/dotbak/pkg/paths"
	"github.com/arthur-debert/dotbak/pkg/types"
)

// Store reads and writes session manifests under the registry root
type Store struct {
	fs     types.FS
	paths  *paths.Paths
	logger zerolog.Logger
	dryRun bool
}

// NewStore creates a manifest store. With dryRun set, Initialize and
// Append log what would happen and write nothing.
func NewStore(fs types.FS, p *paths.Paths, dryRun bool) *Store {
	return &Store{
		fs:     fs,
		paths:  p,
		logger: logging.GetLogger("manifest"),
		dryRun: dryRun,
	}
}

// Initialize creates the manifest for a session with zero entries and the
// diagnostic context fields. It must be called exactly once per session,
// before any append.
func (s *Store) Initialize(sessionID string, createdAt time.Time, ctx types.SessionContext) error {
	doc := &types.Manifest{
		SessionID:   sessionID,
		CreatedAt:   createdAt.Format(time.RFC3339),
		DotfilesDir: ctx.DotfilesDir,
		OS:          ctx.OS,
		Arch:        ctx.Arch,
		Backups:     []types.ManifestEntry{},
	}

	if s.dryRun {
		s.logger.Info().Str("session", sessionID).Msg("Dry run: would initialize manifest")
		return nil
	}

	if err := s.fs.MkdirAll(s.paths.SessionDir(sessionID), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create session directory for %s", sessionID)
	}

	if err := s.write(sessionID, doc); err != nil {
		return err
	}

	s.logger.Debug().Str("session", sessionID).Msg("Manifest initialized")
	return nil
}

// Append adds one entry to a session's manifest. Entries already present
// are preserved; the new entry goes at the end so order reflects when
// backups happened. Appending twice for the same path records two
// independent entries.
//
// Appending to a manifest that was never initialized is a programming
// error in the caller and reported as ErrManifestUninitialized.
func (s *Store) Append(sessionID string, entry types.ManifestEntry) error {
	if s.dryRun {
		s.logger.Info().
			Str("session", sessionID).
			Str("original", entry.Original).
			Str("type", string(entry.Type)).
			Msg("Dry run: would append manifest entry")
		return nil
	}

	doc, err := s.Read(sessionID)
	if err != nil {
		return err
	}

	doc.Backups = append(doc.Backups, entry)

	if err := s.write(sessionID, doc); err != nil {
		return err
	}

	s.logger.Debug().
		Str("session", sessionID).
		Str("original", entry.Original).
		Str("backup", entry.Backup).
		Str("type", string(entry.Type)).
		Msg("Manifest entry appended")
	return nil
}

// Read returns a session's full manifest document
func (s *Store) Read(sessionID string) (*types.Manifest, error) {
	path := s.paths.ManifestPath(sessionID)

	data, err := s.fs.ReadFile(path)
	if err != nil {
		if filesystem.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrManifestUninitialized,
				"no manifest for session %s: initialize before appending", sessionID)
		}
		return nil, errors.Wrapf(err, errors.ErrManifestRead, "failed to read manifest for %s", sessionID)
	}

	var doc types.Manifest
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestRead, "failed to parse manifest for %s", sessionID)
	}

	return &doc, nil
}

// ReadAll returns a session's entries in the order they were appended
func (s *Store) ReadAll(sessionID string) ([]types.ManifestEntry, error) {
	doc, err := s.Read(sessionID)
	if err != nil {
		return nil, err
	}
	return doc.Backups, nil
}

// write marshals the document to a temp file and renames it into place
func (s *Store) write(sessionID string, doc *types.Manifest) error {
	path := s.paths.ManifestPath(sessionID)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrapf(err, errors.ErrManifestWrite, "failed to encode manifest for %s", sessionID)
	}
	data = append(data, '\n')

	tmp := filepath.Join(filepath.Dir(path), ".manifest.json.tmp")
	if err := s.fs.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrManifestWrite, "failed to write manifest for %s", sessionID)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		return errors.Wrapf(err, errors.ErrManifestWrite, "failed to replace manifest for %s", sessionID)
	}

	return nil
}
