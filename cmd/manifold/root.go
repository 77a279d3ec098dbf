package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type rootFlags struct {
	verbose bool
	cfgFile string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "manifold",
		Short:         "Manifold runs declaratively configured plugins through a validated lifecycle",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initSettings(flags)
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVar(&flags.cfgFile, "config", "", "Settings file (default: ~/.config/manifold/config.yaml)")

	cmd.AddCommand(newValidateCmd(flags))
	cmd.AddCommand(newListCmd(flags))
	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// initSettings resolves CLI settings from the optional settings file.
// Flags win over file values, file values win over defaults.
func initSettings(flags *rootFlags) {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("pretty", true)

	if flags.cfgFile != "" {
		viper.SetConfigFile(flags.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".config", "manifold"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// A missing settings file is fine; defaults apply.
	_ = viper.ReadInConfig()
}

func logLevel(flags *rootFlags) string {
	if flags.verbose {
		return "debug"
	}
	return viper.GetString("log_level")
}

func prettyLogs() bool {
	return viper.GetBool("pretty")
}
