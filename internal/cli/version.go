package cli

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/lockbar-io/lockbar/internal/buildinfo"
	"github.com/lockbar-io/lockbar/internal/updater"
)

var flagVersionCheck bool

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Show version information",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", styleBrand.Render("Lockbar"), styleVersion.Render(buildinfo.Version))
		fmt.Printf("  %s %s\n", styleLabel.Render("Commit: "), styleValue.Render(buildinfo.CommitHash))
		fmt.Printf("  %s %s\n", styleLabel.Render("Built:  "), styleValue.Render(buildinfo.BuildDate))
		fmt.Printf("  %s %s\n", styleLabel.Render("OS/Arch:"), styleValue.Render(runtime.GOOS+"/"+runtime.GOARCH))
		fmt.Printf("  %s %s\n", styleLabel.Render("Go:     "), styleValue.Render(runtime.Version()))

		if flagVersionCheck {
			printUpdateNotice()
		}
	},
}

func init() {
	versionCmd.Flags().BoolVar(&flagVersionCheck, "check", false, "check GitHub for a newer release")
}

// printUpdateNotice reports a newer release. Check failures only warn.
func printUpdateNotice() {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	result, err := updater.CheckForUpdate(ctx)
	if err != nil {
		fmt.Printf("\n%s could not check for updates: %v\n", styleWarning.Render("Warning:"), err)
		return
	}
	if !result.Available {
		fmt.Println("\n" + styleSuccess.Render("Up to date."))
		return
	}
	fmt.Printf("\n%s v%s → v%s\n", styleUpdate.Render("Update available:"), result.CurrentVersion, result.LatestVersion)
	fmt.Println(styleHint.Render("Run ") + styleCommand.Render("lockbar update") + styleHint.Render(" to install it."))
}
