// Package cli wires the dotbak command tree: begin, backup, rollback,
// list, expire, info, and version.
package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotbak/internal/version"
	"github.com/arthur-debert/dotbak/pkg/logging"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity int
		dryRun    bool
	)

	rootCmd := &cobra.Command{
		Use:   "dotbak",
		Short: "Backup and rollback registry for dotfiles installers",
		Long: `dotbak records every file, directory, and symlink an installer run is
about to overwrite, grouped into sessions, and can restore any recorded
session later. Each installer run is one session; each session owns a
directory of snapshots and a manifest describing them.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Report intended actions without touching the filesystem")

	rootCmd.AddCommand(newBeginCmd())
	rootCmd.AddCommand(newBackupCmd())
	rootCmd.AddCommand(newRollbackCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newExpireCmd())
	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
