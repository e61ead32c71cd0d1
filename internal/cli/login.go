package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Check your credentials against the vehicle-control service",
	Long: `Log in once to verify your credentials and the configured endpoint.

Sessions are not saved; lock, unlock and vehicles log in on every run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		s, err := login(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s Logged in to %s\n", styleSuccess.Render("✓"), styleValue.Render(s.client.Endpoint()))
		return nil
	},
}
