package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lockbar-io/lockbar/internal/api"
	"github.com/lockbar-io/lockbar/internal/logging"
	"github.com/lockbar-io/lockbar/internal/session"
	"github.com/lockbar-io/lockbar/internal/tui"
	"github.com/lockbar-io/lockbar/internal/views"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive terminal panel",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Log output would corrupt the alt screen.
		log := logging.Nop()
		client, err := api.NewClient(loadSettings().API, log)
		if err != nil {
			return fmt.Errorf("failed to create API client: %w", err)
		}

		controller := views.NewController(session.NewState(client), log)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		controller.Start(ctx)
		defer controller.Stop()

		if err := tui.Run(controller); err != nil {
			return fmt.Errorf("terminal panel failed: %w", err)
		}
		return nil
	},
}
