package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/distroforge/distroforge/catalog"
	"github.com/distroforge/distroforge/service"
)

func newTweakCmd() *cobra.Command {
	var applyAll bool

	cmd := &cobra.Command{
		Use:   "tweak <tweak-id>...",
		Short: "Apply system tweaks from the catalog",
		Long: `Apply one or more catalog tweaks. Idempotent tweaks with a verification
check are skipped when already applied. A failing tweak does not stop
the remaining ones.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !applyAll && len(args) == 0 {
				return errors.New("specify tweak ids or --all")
			}

			app, err := newAppContext()
			if err != nil {
				return err
			}
			config, err := app.loader.LoadTweaks(app.distro)
			if err != nil {
				return err
			}

			var tweaks []catalog.Tweak
			if applyAll {
				tweaks = config.Tweaks()
			} else {
				for _, id := range args {
					tweak, ok := config.FindTweak(id)
					if !ok {
						return errors.Errorf("tweak %q is not in the catalog for %s (try 'list tweaks')", id, app.distro.Name)
					}
					tweaks = append(tweaks, tweak)
				}
			}
			if len(tweaks) == 0 {
				fmt.Println(dimStyle.Render("Nothing to apply."))
				return nil
			}

			svc := service.NewTweakService(app.exec)
			report, err := svc.Apply(cmd.Context(), tweaks, func(line string) {
				fmt.Println(dimStyle.Render(line))
			})
			if err != nil {
				return err
			}

			for _, tweak := range tweaks {
				fmt.Println(dimStyle.Render(fmt.Sprintf("  %-8s %s", report.States[tweak.ID].String(), tweak.ID)))
			}

			summary := fmt.Sprintf("Applied: %d", report.Applied)
			if report.Skipped > 0 {
				summary += fmt.Sprintf(", Skipped: %d", report.Skipped)
			}
			if report.Failed > 0 {
				summary += fmt.Sprintf(", Failed: %d", report.Failed)
			}
			if report.Failed == 0 {
				fmt.Println(successStyle.Render(summary))
			} else {
				fmt.Println(errorStyle.Render(summary))
				for id, reason := range report.Failures {
					fmt.Println(errorStyle.Render(fmt.Sprintf("  %s: %s", id, reason)))
				}
			}
			if report.RequiresRestart {
				fmt.Println(warnStyle.Render("A system restart is required for some tweaks to take effect."))
			}
			if report.Failed > 0 {
				return errors.New("some tweaks failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&applyAll, "all", false, "apply every tweak in the catalog")
	return cmd
}
