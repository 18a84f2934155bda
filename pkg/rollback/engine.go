// Package rollback restores every path recorded in a session's manifest
// to its pre-installer state.
//
// Entries restore independently: one failure is recorded and the loop
// moves on, so a half-broken home directory stays incrementally
// recoverable instead of risking an all-or-nothing transaction that could
// leave neither old nor new configuration behind.
package rollback

import (
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotbak/pkg/errors"
	"github.com/arthur-debert/dotbak/pkg/filesystem"
	"github.com/arthur-debert/dotbak/pkg/logging"
	"github.com/arthur-debert/dotbak/pkg/manifest"
	"github.com/arthur-debert/dotbak/pkg/types"
)

// Engine reads a session's manifest and restores its entries
type Engine struct {
	fs      types.FS
	store   *manifest.Store
	confirm types.ConfirmationDialog
	logger  zerolog.Logger
	dryRun  bool
}

// New creates a rollback engine. The dialog gates every destructive run;
// with dryRun set nothing is mutated and no confirmation is requested.
func New(fs types.FS, store *manifest.Store, confirm types.ConfirmationDialog, dryRun bool) *Engine {
	return &Engine{
		fs:      fs,
		store:   store,
		confirm: confirm,
		logger:  logging.GetLogger("rollback"),
		dryRun:  dryRun,
	}
}

// Preview returns the original paths a rollback of sessionID would touch,
// in manifest order, without mutating anything.
func (e *Engine) Preview(sessionID string) ([]string, error) {
	entries, err := e.store.ReadAll(sessionID)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		paths = append(paths, entry.Original)
	}
	return paths, nil
}

// Run drives a full rollback: preview, confirmation, then restore.
// When the user declines (or input cannot be read, which counts as
// declining) the report comes back in the aborted state with no entry
// touched.
func (e *Engine) Run(sessionID string) (*types.RollbackReport, error) {
	report := &types.RollbackReport{SessionID: sessionID, State: types.StateRequested}

	preview, err := e.Preview(sessionID)
	if err != nil {
		return report, err
	}
	report.State = types.StatePreviewed

	if !e.dryRun {
		ok, err := e.confirm.ConfirmRollback(sessionID, preview)
		if err != nil || !ok {
			// unreadable input defaults to declining: never destroy
			// anything from a non-interactive context
			report.State = types.StateAborted
			if err != nil {
				e.logger.Warn().Err(err).Msg("Could not read confirmation, aborting rollback")
			}
			return report, errors.Newf(errors.ErrRollbackAborted, "rollback of %s declined", sessionID)
		}
		report.State = types.StateConfirmed
	}

	return e.RestoreAll(sessionID, report)
}

// RestoreAll restores every manifest entry of sessionID, continuing past
// individual failures. The passed report may be nil; Run threads its own
// so state transitions carry through.
func (e *Engine) RestoreAll(sessionID string, report *types.RollbackReport) (*types.RollbackReport, error) {
	if report == nil {
		report = &types.RollbackReport{SessionID: sessionID, State: types.StateRequested}
	}

	entries, err := e.store.ReadAll(sessionID)
	if err != nil {
		return report, err
	}

	report.State = types.StateRestoring
	for _, entry := range entries {
		res := types.RestoreResult{Original: entry.Original, Type: entry.Type}
		if err := e.restoreEntry(entry); err != nil {
			res.Err = err
			e.logger.Error().Err(err).Str("path", entry.Original).Msg("Restore failed")
		} else {
			e.logger.Info().
				Str("path", entry.Original).
				Str("type", string(entry.Type)).
				Bool("dryRun", e.dryRun).
				Msg("Restored")
		}
		report.Results = append(report.Results, res)
	}

	if report.Succeeded() {
		report.State = types.StateCompleted
	} else {
		report.State = types.StatePartialFailure
	}
	return report, nil
}

// restoreEntry puts one recorded path back: remove whatever currently
// occupies the original location, then recreate it from the snapshot
// according to its recorded type.
func (e *Engine) restoreEntry(entry types.ManifestEntry) error {
	if e.dryRun {
		e.logger.Info().
			Str("path", entry.Original).
			Str("backup", entry.Backup).
			Str("type", string(entry.Type)).
			Msg("Dry run: would restore")
		return nil
	}

	if filesystem.Exists(e.fs, entry.Original) {
		if err := e.fs.RemoveAll(entry.Original); err != nil {
			return errors.Wrapf(err, errors.ErrRestoreFailed, "failed to clear current state of %s", entry.Original)
		}
	}

	switch entry.Type {
	case types.TypeSymlink:
		return e.restoreSymlink(entry)
	case types.TypeDirectory:
		if err := filesystem.CopyTree(e.fs, entry.Backup, entry.Original); err != nil {
			return errors.Wrapf(err, errors.ErrRestoreFailed, "failed to restore directory %s", entry.Original)
		}
		return nil
	case types.TypeFile:
		if err := filesystem.CopyFile(e.fs, entry.Backup, entry.Original); err != nil {
			return errors.Wrapf(err, errors.ErrRestoreFailed, "failed to restore file %s", entry.Original)
		}
		return nil
	default:
		return errors.Newf(errors.ErrRestoreFailed, "unknown entry type %q for %s", entry.Type, entry.Original)
	}
}

// restoreSymlink recreates the link from its stored target string
func (e *Engine) restoreSymlink(entry types.ManifestEntry) error {
	data, err := e.fs.ReadFile(entry.Backup)
	if err != nil {
		return errors.Wrapf(err, errors.ErrRestoreFailed, "failed to read stored link target for %s", entry.Original)
	}
	target := string(data)

	if err := e.fs.MkdirAll(filepath.Dir(entry.Original), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrRestoreFailed, "failed to create parent directory for %s", entry.Original)
	}
	if err := e.fs.Symlink(target, entry.Original); err != nil {
		return errors.Wrapf(err, errors.ErrRestoreFailed, "failed to recreate symlink %s", entry.Original)
	}

	return nil
}
