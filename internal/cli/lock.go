package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lockbar-io/lockbar/internal/api"
	"github.com/lockbar-io/lockbar/internal/models"
)

var lockCmd = &cobra.Command{
	Use:   "lock <vehicle>",
	Short: "Lock a vehicle",
	Long:  `Lock a vehicle by its key or nickname. Run "lockbar vehicles" to list them.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVehicleCommand(args[0], true)
	},
}

var unlockCmd = &cobra.Command{
	Use:   "unlock <vehicle>",
	Short: "Unlock a vehicle",
	Long:  `Unlock a vehicle by its key or nickname. Run "lockbar vehicles" to list them.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVehicleCommand(args[0], false)
	},
}

func runVehicleCommand(key string, lock bool) error {
	ctx, cancel := commandContext()
	defer cancel()

	s, err := login(ctx)
	if err != nil {
		return err
	}
	vehicles, err := s.client.ListVehicles(ctx, s.token)
	if err != nil {
		return fmt.Errorf("failed to list vehicles: %w", err)
	}
	v, err := findVehicle(vehicles, key)
	if err != nil {
		return err
	}

	verb, action, done, badge := "unlock", "Unlocking", "unlocked", badgeUnlocked
	if lock {
		verb, action, done, badge = "lock", "Locking", "locked", badgeLocked
	}
	fmt.Printf("%s %s...", action, v.Label())

	if err := sendCommand(ctx, s.client, s.token, v.Key, lock); err != nil {
		fmt.Println(" " + styleError.Render("failed"))
		return fmt.Errorf("failed to %s vehicle %s: %w", verb, v.Key, err)
	}
	fmt.Println(" " + badge.Render(done))
	return nil
}

func sendCommand(ctx context.Context, client *api.Client, token models.Token, key string, lock bool) error {
	if lock {
		return client.Lock(ctx, token, key)
	}
	return client.Unlock(ctx, token, key)
}
