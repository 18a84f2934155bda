package cli

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotbak/pkg/config"
	"github.com/arthur-debert/dotbak/pkg/filesystem"
	"github.com/arthur-debert/dotbak/pkg/manifest"
	"github.com/arthur-debert/dotbak/pkg/paths"
	"github.com/arthur-debert/dotbak/pkg/registry"
	"github.com/arthur-debert/dotbak/pkg/rollback"
	"github.com/arthur-debert/dotbak/pkg/session"
	"github.com/arthur-debert/dotbak/pkg/snapshot"
	"github.com/arthur-debert/dotbak/pkg/types"
	"github.com/arthur-debert/dotbak/pkg/ui/confirm"
)

// app bundles the wired core components for one command invocation.
// Dry-run is threaded explicitly through every constructor rather than
// read from ambient state.
type app struct {
	cfg      *config.Config
	paths    *paths.Paths
	fs       types.FS
	store    *manifest.Store
	sessions *session.Service
	registry *registry.Registry
	rollback *rollback.Engine
	dryRun   bool
}

// newApp resolves configuration and wires every component. The --dry-run
// flag wins over the config file's dry_run key.
func newApp(cmd *cobra.Command) (*app, error) {
	flagDryRun, _ := cmd.Root().PersistentFlags().GetBool("dry-run")

	p, err := paths.New("", "")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(p.ConfigDir())
	if err != nil {
		return nil, err
	}

	// config may point the registry and dotfiles roots elsewhere
	if cfg.RegistryRoot != "" || cfg.DotfilesRoot != "" {
		p, err = paths.New(cfg.DotfilesRoot, cfg.RegistryRoot)
		if err != nil {
			return nil, err
		}
	}

	dryRun := flagDryRun || cfg.DryRun
	fs := filesystem.NewOS()
	store := manifest.NewStore(fs, p, dryRun)
	snapper := snapshot.New(fs, dryRun)

	return &app{
		cfg:      cfg,
		paths:    p,
		fs:       fs,
		store:    store,
		sessions: session.NewService(fs, p, store, snapper, cfg.Backup.Suffix, dryRun),
		registry: registry.New(fs, p, store, dryRun),
		rollback: rollback.New(fs, store, confirm.NewConsoleDialog(), dryRun),
		dryRun:   dryRun,
	}, nil
}
