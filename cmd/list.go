package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries for this distribution",
	}
	cmd.AddCommand(newListAppsCmd(), newListTweaksCmd())
	return cmd
}

func newListAppsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apps",
		Short: "List installable applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext()
			if err != nil {
				return err
			}
			apps, err := app.loader.LoadApps(app.distro)
			if err != nil {
				return err
			}
			if len(apps.Categories) == 0 {
				fmt.Println(dimStyle.Render("No applications available for " + app.distro.PrettyName + "."))
				return nil
			}

			for _, category := range apps.Categories {
				fmt.Println(sectionStyle.Render(fmt.Sprintf("%s (%d)", category.Name, len(category.Applications))))
				for _, entry := range category.Applications {
					fmt.Printf("  %-24s %s\n", entry.ID, dimStyle.Render(entry.Description))
				}
				fmt.Println()
			}
			return nil
		},
	}
}

func newListTweaksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tweaks",
		Short: "List available system tweaks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext()
			if err != nil {
				return err
			}
			tweaks, err := app.loader.LoadTweaks(app.distro)
			if err != nil {
				return err
			}
			if len(tweaks.Sections) == 0 {
				fmt.Println(dimStyle.Render("No tweaks available for " + app.distro.PrettyName + " yet."))
				return nil
			}

			for _, section := range tweaks.Sections {
				fmt.Println(sectionStyle.Render(fmt.Sprintf("%s (%d)", section.Name, len(section.Tweaks))))
				for _, tweak := range section.Tweaks {
					marker := ""
					if tweak.RequiresRestart {
						marker = warnStyle.Render(" [restart]")
					}
					fmt.Printf("  %-24s %s%s\n", tweak.ID, dimStyle.Render(tweak.Description), marker)
				}
				fmt.Println()
			}
			return nil
		},
	}
}
