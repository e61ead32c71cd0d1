package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/lockbar-io/lockbar/internal/config"
	"github.com/lockbar-io/lockbar/internal/updater"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update lockbar to the latest version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		fmt.Println("Checking for updates...")

		result, err := updater.CheckForUpdate(ctx)
		if err != nil {
			return fmt.Errorf("failed to check for updates: %w", err)
		}

		if !result.Available {
			fmt.Printf("Already up to date (v%s).\n", result.CurrentVersion)
			return nil
		}

		fmt.Printf("%s v%s → v%s\n", styleUpdate.Render("Update available:"), result.CurrentVersion, result.LatestVersion)
		fmt.Printf("Release: %s\n", result.ReleaseURL)

		cliAsset := updater.FindAsset(result.Release, updater.CLIAssetName())
		daemonAsset := updater.FindAsset(result.Release, updater.DaemonAssetName())

		if cliAsset == nil {
			return fmt.Errorf("CLI binary not found in release (expected %s)", updater.CLIAssetName())
		}
		if daemonAsset == nil {
			return fmt.Errorf("tray app binary not found in release (expected %s)", updater.DaemonAssetName())
		}

		daemonWasRunning, daemonInfo, _ := config.IsDaemonRunning()

		if daemonWasRunning && daemonInfo != nil {
			fmt.Println("Stopping tray app...")
			if err := stopDaemon(daemonInfo.PID); err != nil {
				fmt.Printf("%s failed to stop tray app: %v\n", styleWarning.Render("Warning:"), err)
			}
		}

		fmt.Printf("Downloading CLI (%s)...\n", cliAsset.Name)
		cliTmpPath, err := updater.DownloadAsset(ctx, cliAsset)
		if err != nil {
			return fmt.Errorf("failed to download CLI: %w", err)
		}
		defer os.Remove(cliTmpPath)

		fmt.Printf("Downloading tray app (%s)...\n", daemonAsset.Name)
		daemonTmpPath, err := updater.DownloadAsset(ctx, daemonAsset)
		if err != nil {
			return fmt.Errorf("failed to download tray app: %w", err)
		}
		defer os.Remove(daemonTmpPath)

		selfPath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to find self: %w", err)
		}
		selfPath, err = filepath.EvalSymlinks(selfPath)
		if err != nil {
			return fmt.Errorf("failed to resolve self: %w", err)
		}

		fmt.Println("Installing CLI...")
		if err := updater.ReplaceBinary(selfPath, cliTmpPath); err != nil {
			return fmt.Errorf("failed to update CLI: %w", err)
		}

		daemonBinPath, err := findDaemonBinary()
		if err != nil {
			return fmt.Errorf("failed to find tray app binary: %w", err)
		}

		fmt.Println("Installing tray app...")
		if err := updater.ReplaceBinary(daemonBinPath, daemonTmpPath); err != nil {
			return fmt.Errorf("failed to update tray app: %w", err)
		}

		if daemonWasRunning {
			fmt.Println("Restarting tray app...")
			if err := startDaemon(); err != nil {
				fmt.Printf("%s failed to restart tray app: %v\n", styleWarning.Render("Warning:"), err)
			}
		}

		fmt.Println(styleSuccess.Render(fmt.Sprintf("Updated to v%s.", result.LatestVersion)))
		return nil
	},
}
