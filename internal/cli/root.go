// Package cli implements the lockbar CLI commands.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lockbar",
	Short: "Lock and unlock your vehicles from the terminal",
	Long: `Lockbar logs into the vehicle-control service and issues lock and unlock
commands. The same panel is available from the tray app (lockbard) and as an
interactive terminal UI (lockbar tui).`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagUsername, "username", "u", "", "account username (default $"+envUsername+")")

	// Add subcommands (alphabetical)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(vehiclesCmd)
	rootCmd.AddCommand(versionCmd)
}
