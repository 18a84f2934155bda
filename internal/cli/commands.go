package cli

import (
	"fmt"
	"runtime"
	"time"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotbak/internal/version"
	"github.com/arthur-debert/dotbak/pkg/errors"
	"github.com/arthur-debert/dotbak/pkg/types"
	"github.com/arthur-debert/dotbak/pkg/ui/confirm"
)

func newBeginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "begin <label>",
		Short: "Begin a backup session",
		Long: `Begin starts a new backup session named after the given label plus a
timestamp, and initializes its manifest. The session id is printed on
stdout so installer scripts can capture it for later backup calls.`,
		Example: `  # Start a session for an installer run
  dotbak begin install

  # Capture the id in a script
  session=$(dotbak begin zsh-setup)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			sess, err := a.sessions.Begin(args[0])
			if err != nil {
				return err
			}

			fmt.Println(sess.ID)
			return nil
		},
	}
}

func newBackupCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "backup <path>...",
		Short: "Register backups of paths before they are overwritten",
		Long: `Backup snapshots each path (file, directory, or symlink) into a session
and records it in the session's manifest. Paths that do not exist are
reported as nothing-to-back-up and skipped without error.

Without --session the most recent session is used.`,
		Example: `  # Back up into the latest session
  dotbak backup ~/.zshrc ~/.config/nvim

  # Back up into an explicit session
  dotbak backup --session install_20240601-093000 ~/.gitconfig`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			id := sessionID
			if id == "" {
				id, err = a.registry.Latest()
				if err != nil {
					return err
				}
			}
			sess := &types.Session{ID: id, Dir: a.paths.SessionDir(id)}

			var failed int
			for _, path := range args {
				outcome, err := a.sessions.RegisterBackup(sess, path)
				switch outcome {
				case types.BackedUp:
					pterm.Success.Printfln("backed up %s", path)
				case types.NothingToBackUp:
					pterm.Info.Printfln("nothing to back up at %s", path)
				case types.BackupFailed:
					failed++
					pterm.Error.Printfln("failed to back up %s: %v", path, err)
				}
			}

			if failed > 0 {
				return errors.Newf(errors.ErrSnapshotFailed, "%d of %d backups failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session id to register into (default: latest)")
	return cmd
}

func newRollbackCmd() *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "rollback [session-id]",
		Short: "Restore every path recorded in a session",
		Long: `Rollback previews the paths a session recorded, asks for confirmation,
and restores each one to its snapshotted state: files byte-for-byte,
directories as full trees, symlinks by recreating the stored target.

Entries are restored independently; failures are reported per path and
never stop the remaining restores. Without a session id the most recent
session is rolled back.`,
		Example: `  # Roll back the latest session
  dotbak rollback

  # Roll back an explicit session without the interactive prompt
  dotbak rollback install_20240601-093000 --yes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			var id string
			if len(args) == 1 {
				id = args[0]
			} else {
				id, err = a.registry.Latest()
				if err != nil {
					return err
				}
			}

			var report *types.RollbackReport
			if assumeYes || a.dryRun {
				// --yes skips only the prompt: the affected paths are
				// still shown before anything is touched
				affected, perr := a.rollback.Preview(id)
				if perr != nil {
					return perr
				}
				confirm.ShowPreview(id, affected)
				report, err = a.rollback.RestoreAll(id, nil)
			} else {
				report, err = a.rollback.Run(id)
			}
			if err != nil {
				return err
			}

			renderReport(report, a.dryRun)
			if report.State == types.StatePartialFailure {
				return errors.Newf(errors.ErrPartialFailure,
					"%d of %d paths failed to restore", len(report.FailedPaths()), len(report.Results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&assumeYes, "yes", false, "Skip the confirmation prompt")
	return cmd
}

func renderReport(report *types.RollbackReport, dryRun bool) {
	if dryRun {
		pterm.Info.Println("Dry run: no changes were made")
	}
	for _, res := range report.Results {
		if res.Ok() {
			pterm.Success.Printfln("restored %s (%s)", res.Original, res.Type)
		} else {
			pterm.Error.Printfln("failed to restore %s: %v", res.Original, res.Err)
		}
	}
	log.Info().
		Str("session", report.SessionID).
		Str("state", string(report.State)).
		Int("entries", len(report.Results)).
		Int("failed", len(report.FailedPaths())).
		Msg("Rollback finished")
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backup sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			summaries, err := a.registry.ListSessions()
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				pterm.Info.Printfln("no sessions under %s", a.paths.RegistryRoot())
				return nil
			}

			rows := pterm.TableData{{"SESSION", "CREATED", "BACKUPS"}}
			for _, s := range summaries {
				created := "no manifest"
				entries := "-"
				if s.HasManifest {
					created = s.CreatedAt.Format(time.RFC3339)
					entries = fmt.Sprintf("%d", s.Entries)
				}
				rows = append(rows, []string{s.ID, created, entries})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		},
	}
}

func newExpireCmd() *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "expire",
		Short: "Delete old sessions beyond the retention count",
		Long: `Expire keeps the most recent sessions and deletes the rest entirely,
including their manifests and snapshot artifacts. This is irreversible.
The retention count comes from --keep, or retention.keep in the config.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			n := keep
			if n == 0 {
				n = a.cfg.Retention.Keep
			}

			removed, err := a.registry.ExpireOldSessions(n)
			if err != nil {
				return err
			}
			if len(removed) == 0 {
				pterm.Info.Printfln("nothing to expire, %d or fewer sessions present", n)
				return nil
			}

			verb := "removed"
			if a.dryRun {
				verb = "would remove"
			}
			for _, id := range removed {
				pterm.Success.Printfln("%s %s", verb, id)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 0, "How many sessions to keep (default: retention.keep from config)")
	return cmd
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the environment dotbak records into new sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			rows := pterm.TableData{
				{"os", runtime.GOOS},
				{"arch", runtime.GOARCH},
				{"dotfiles root", a.paths.DotfilesRoot()},
				{"registry root", a.paths.RegistryRoot()},
				{"config dir", a.paths.ConfigDir()},
				{"retention keep", fmt.Sprintf("%d", a.cfg.Retention.Keep)},
				{"fallback suffix", a.cfg.Backup.Suffix},
			}
			return pterm.DefaultTable.WithData(rows).Render()
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dotbak version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Printf("Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				fmt.Printf("Built:  %s\n", version.Date)
			}
		},
	}
}
