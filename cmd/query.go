package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the repositories for packages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext()
			if err != nil {
				return err
			}
			mgr, err := app.packageManager()
			if err != nil {
				return err
			}

			packages, err := mgr.SearchPackage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(packages) == 0 {
				fmt.Println(dimStyle.Render("No packages found."))
				return nil
			}
			for _, pkg := range packages {
				version := pkg.Version
				if version != "" {
					version = " " + dimStyle.Render(version)
				}
				fmt.Printf("%s%s\n", pkg.Name, version)
				if pkg.Description != "" {
					fmt.Printf("  %s\n", dimStyle.Render(pkg.Description))
				}
			}
			return nil
		},
	}
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <package>",
		Short: "Show details for one package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext()
			if err != nil {
				return err
			}
			mgr, err := app.packageManager()
			if err != nil {
				return err
			}

			info, err := mgr.GetPackageInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if info == nil {
				return errors.Errorf("package %q not found", args[0])
			}

			fmt.Println(bannerStyle.Render(info.Name))
			fmt.Printf("  Version:     %s\n", info.Version)
			fmt.Printf("  Description: %s\n", info.Description)
			state := "not installed"
			if info.Installed {
				state = "installed"
			}
			fmt.Printf("  Status:      %s\n", state)
			return nil
		},
	}
}

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Refresh the package manager's repository metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext()
			if err != nil {
				return err
			}
			mgr, err := app.packageManager()
			if err != nil {
				return err
			}

			ok, err := mgr.UpdateCache(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("cache update failed")
			}
			fmt.Println(successStyle.Render("Package cache updated."))
			return nil
		},
	}
}

func newUpgradeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade all installed packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext()
			if err != nil {
				return err
			}
			mgr, err := app.packageManager()
			if err != nil {
				return err
			}

			ok, err := mgr.UpgradeSystem(cmd.Context(), printProgress)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("system upgrade failed")
			}
			fmt.Println(successStyle.Render("System upgraded."))
			return nil
		},
	}
}
