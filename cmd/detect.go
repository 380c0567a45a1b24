package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Show the detected distribution and package manager",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext()
			if err != nil {
				return err
			}
			info := app.distro

			fmt.Println(bannerStyle.Render(info.PrettyName))
			fmt.Printf("  Name:            %s\n", info.Name)
			fmt.Printf("  Version:         %s\n", info.Version)
			if info.Codename != "" {
				fmt.Printf("  Codename:        %s\n", info.Codename)
			}
			fmt.Printf("  Package manager: %s\n", info.PackageManager)
			if len(info.IDLike) > 0 {
				fmt.Printf("  Similar to:      %s\n", strings.Join(info.IDLike, ", "))
			}
			return nil
		},
	}
}
