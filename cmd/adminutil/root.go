package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sudo-init-do/lotengo/internal/config"
	"github.com/sudo-init-do/lotengo/internal/db"
)

// app is the state shared by every subcommand.
type app struct {
	cfg   *config.Config
	store *db.Store
	close func()
}

// open loads the store selected by the global flags.
func (a *app) open(ctx context.Context) error {
	blobs, closeFn, err := config.OpenBlobs(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", a.cfg.StoreDriver, err)
	}
	a.store = db.NewStore(blobs)
	a.store.Load(ctx)
	a.close = closeFn
	return nil
}

func newRootCommand() *cobra.Command {
	a := &app{cfg: config.Load()}

	cmd := &cobra.Command{
		Use:           "adminutil",
		Short:         "LoTengo store maintenance",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "seed" {
				return nil
			}
			return a.open(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.close != nil {
				a.close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&a.cfg.StoreDriver, "driver", a.cfg.StoreDriver, "store driver (memory|file|sqlite|postgres)")
	cmd.PersistentFlags().StringVar(&a.cfg.StorePath, "path", a.cfg.StorePath, "directory for file and sqlite stores")

	cmd.AddCommand(newResetCommand(a))
	cmd.AddCommand(newStatsCommand(a))
	cmd.AddCommand(newSeedCommand())
	cmd.AddCommand(newRequestsCommand(a))
	cmd.AddCommand(newLoginCommand(a))
	cmd.AddCommand(newWhoamiCommand(a))
	cmd.AddCommand(newLogoutCommand(a))

	return cmd
}
