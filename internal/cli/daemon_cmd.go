package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lockbar-io/lockbar/internal/config"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the Lockbar tray app",
	Long:  `Manage the lockbard tray app process.`,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tray app status",
	RunE:  runDaemonStatus,
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the tray app",
	RunE:  runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the tray app",
	RunE:  runDaemonStop,
}

func init() {
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonStopCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	running, info, err := config.IsDaemonRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if running && info != nil {
		fmt.Printf("Lockbar is already running (PID %d).\n", info.PID)
		return nil
	}

	fmt.Print("Starting Lockbar...")
	if err := EnsureDaemon(); err != nil {
		fmt.Println()
		return err
	}

	_, freshInfo, err := GetDaemonStatus()
	if err != nil || freshInfo == nil {
		fmt.Println(" " + styleSuccess.Render("started."))
		return nil
	}

	fmt.Printf(" %s (PID %d).\n", styleSuccess.Render("started"), freshInfo.PID)
	return nil
}

func runDaemonStatus(cmd *cobra.Command, args []string) error {
	running, info, err := GetDaemonStatus()
	if err != nil {
		return err
	}

	if !running || info == nil {
		fmt.Println("Lockbar is not running.")
		fmt.Println(styleHint.Render("Start it with: ") + styleCommand.Render("lockbar daemon start"))
		return nil
	}

	uptime := time.Since(info.StartedAt).Truncate(time.Second)

	fmt.Println("Lockbar is " + styleSuccess.Render("running") + ".")
	fmt.Printf("  %s %s\n", styleLabel.Render("PID:       "), styleValue.Render(fmt.Sprint(info.PID)))
	fmt.Printf("  %s %s\n", styleLabel.Render("Uptime:    "), styleValue.Render(uptime.String()))
	if info.LogFile != "" {
		fmt.Printf("  %s %s\n", styleLabel.Render("Log file:  "), styleValue.Render(info.LogFile))
	}
	return nil
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	running, info, err := config.IsDaemonRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if !running || info == nil {
		fmt.Println("Lockbar is not running.")
		return nil
	}

	if err := stopDaemon(info.PID); err != nil {
		return err
	}
	fmt.Println("Lockbar stopped.")
	return nil
}
