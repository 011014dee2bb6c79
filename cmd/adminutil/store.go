package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sudo-init-do/lotengo/internal/admin"
	"github.com/sudo-init-do/lotengo/internal/alerts"
	"github.com/sudo-init-do/lotengo/internal/db"
	"github.com/sudo-init-do/lotengo/internal/marketplace"
)

func newResetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Replace the store with the seed dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.store.Reset(cmd.Context())
			if err := a.store.Flush(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "store reset to seed data")
			return nil
		},
	}
}

func newStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print table counts and status breakdowns as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(admin.NewService(a.store).Stats()); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Print the seed dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(db.SeedYAML())
			return err
		},
	}
}

func newRequestsCommand(a *app) *cobra.Command {
	var openOnly bool
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "List requests, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := marketplace.NewService(a.store, alerts.NewLedger(a.store, nil))
			requests := svc.GetAllRequests()
			if openOnly {
				requests = svc.GetOpenRequests()
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tBUYER\tOFFERS\tCREATED\tTITLE")
			for _, r := range requests {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
					r.ID, r.Status, r.BuyerID, len(svc.GetOffersByRequest(r.ID)),
					humanize.Time(r.CreatedAt), r.Title)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&openOnly, "open", false, "only OPEN requests")
	return cmd
}
