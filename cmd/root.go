// Package cmd wires the CLI surface: distribution detection, catalog
// browsing, package installation and tweak application.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/distroforge/distroforge/common"
	"github.com/distroforge/distroforge/logger"
	"github.com/distroforge/distroforge/manager"
)

var (
	flagVerbose   bool
	flagLogDir    string
	flagConfigDir string
	flagManager   string
)

var rootCmd = &cobra.Command{
	Use:   common.AppName,
	Short: "Install applications and apply system tweaks on Linux",
	Long: `distroforge detects your Linux distribution, merges its application and
tweak catalogs, and drives the native package manager (or raw shell
commands) to install software and apply configuration changes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.InitGlobalLogger(flagLogDir, flagVerbose); err != nil {
			return err
		}
		manager.RegisterBuiltins()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogDir, "log-dir", common.DefaultLogDir(), "directory for rotated log files (empty disables file logging)")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "catalog directory (default: first of "+common.DefaultConfigDirs[0]+", "+common.DefaultConfigDirs[1]+")")
	rootCmd.PersistentFlags().StringVar(&flagManager, "manager", "", "override the detected package manager")

	rootCmd.AddCommand(
		newDetectCmd(),
		newListCmd(),
		newInstallCmd(),
		newTweakCmd(),
		newSearchCmd(),
		newInfoCmd(),
		newUpdateCmd(),
		newUpgradeCmd(),
	)
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
