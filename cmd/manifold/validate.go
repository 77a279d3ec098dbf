package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/manifold/internal/config"
)

func newValidateCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <manifest>",
		Short: "Validate every plugin configuration in a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := config.ParseManifest(args[0])
			if err != nil {
				return err
			}

			validator := config.NewValidator()
			failures := 0
			for i := range manifest.Plugins {
				cfg := &manifest.Plugins[i]
				if _, err := validator.Validate(cfg); err != nil {
					failures++
					fmt.Fprintf(cmd.OutOrStdout(), "✗ %s: %v\n", cfg.Name, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s (%s %s)\n", cfg.Name, cfg.Type, cfg.Version)
			}

			if failures > 0 {
				return fmt.Errorf("%d of %d plugin configurations failed validation", failures, len(manifest.Plugins))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d plugin configurations valid\n", len(manifest.Plugins))
			return nil
		},
	}

	return cmd
}
