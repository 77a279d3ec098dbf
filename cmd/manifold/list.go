package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/manifold/internal/config"
)

func newListCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <manifest>",
		Short: "Register the manifest's plugins and list them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(flags)
			if err != nil {
				return err
			}

			manifest, err := config.ParseManifest(args[0])
			if err != nil {
				return err
			}

			for i := range manifest.Plugins {
				if _, err := app.Registry.Register(cmd.Context(), &manifest.Plugins[i]); err != nil {
					return err
				}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTYPE\tVERSION\tSTATUS")
			for _, name := range app.Registry.List() {
				inst, err := app.Registry.Get(name)
				if err != nil {
					return err
				}
				cfg := inst.Config()
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cfg.Name, cfg.Type, cfg.Version, inst.Status())
			}
			return w.Flush()
		},
	}

	return cmd
}
