package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/distroforge/distroforge/catalog"
	"github.com/distroforge/distroforge/manager"
	"github.com/distroforge/distroforge/service"
)

func newInstallCmd() *cobra.Command {
	var rawPackages bool
	var interactive bool

	cmd := &cobra.Command{
		Use:   "install <app-id>...",
		Short: "Install applications from the catalog",
		Long: `Install one or more catalog applications with the detected package
manager. With --packages the arguments are treated as raw package names
instead of catalog ids. With --interactive the install runs in the
terminal with the native package manager's own prompts.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext()
			if err != nil {
				return err
			}
			mgr, err := app.packageManager()
			if err != nil {
				return err
			}

			if rawPackages {
				return installRawPackages(cmd, app, mgr, args, interactive)
			}

			apps, err := resolveApps(app, args)
			if err != nil {
				return err
			}

			svc := service.NewInstallService(mgr, app.flatpakManager(), app.terminal)
			report, err := svc.InstallApps(cmd.Context(), apps, printProgress)
			if err != nil {
				return err
			}
			printInstallReport(report)
			if !report.Success() {
				return errors.New("some installations failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&rawPackages, "packages", false, "treat arguments as raw package names")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "run the install in an interactive terminal session")
	return cmd
}

func resolveApps(app *appContext, ids []string) ([]catalog.App, error) {
	config, err := app.loader.LoadApps(app.distro)
	if err != nil {
		return nil, err
	}

	var apps []catalog.App
	for _, id := range ids {
		entry, ok := config.FindApp(id)
		if !ok {
			return nil, errors.Errorf("app %q is not in the catalog for %s (try 'list apps')", id, app.distro.Name)
		}
		apps = append(apps, entry)
	}
	return apps, nil
}

func installRawPackages(cmd *cobra.Command, app *appContext, mgr manager.PackageManager, packages []string, interactive bool) error {
	if interactive {
		command := fmt.Sprintf("%s install %s", mgr.Name(), strings.Join(packages, " "))
		result := app.terminal.RunWithConfirmation(
			[]string{command}, true,
			fmt.Sprintf("Installing %d package(s)", len(packages)), "")
		if !result.Success {
			return errors.Errorf("interactive install exited with code %d", result.ExitCode)
		}
		return nil
	}

	result, err := mgr.InstallPackages(cmd.Context(), packages, printProgress)
	if err != nil {
		return err
	}
	printNativeResult(result)
	if !result.AllSuccessful() {
		return errors.New("some installations failed")
	}
	return nil
}

func printProgress(line string) {
	fmt.Println(dimStyle.Render("  " + line))
}

func printInstallReport(report *service.InstallReport) {
	if report.Native != nil {
		printNativeResult(report.Native)
	}
	if report.Flatpak != nil {
		printNativeResult(report.Flatpak)
	}
	if len(report.Custom) > 0 {
		ids := make([]string, 0, len(report.Custom))
		for id := range report.Custom {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			result := report.Custom[id]
			if result.Success {
				fmt.Println(successStyle.Render(fmt.Sprintf("Custom install succeeded: %s", id)))
			} else {
				fmt.Println(errorStyle.Render(fmt.Sprintf("Custom install failed: %s (exit %d)", id, result.ExitCode)))
			}
		}
	}
}

func printNativeResult(result *manager.InstallResult) {
	if len(result.PackagesInstalled) > 0 {
		fmt.Println(successStyle.Render(fmt.Sprintf("Installed: %s", strings.Join(result.PackagesInstalled, ", "))))
	}
	for _, pkg := range result.PackagesFailed {
		fmt.Println(errorStyle.Render(fmt.Sprintf("Failed: %s - %s", pkg, result.Errors[pkg])))
	}
}
